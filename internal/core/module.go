package core

// ModuleID uniquely identifies a module, namespaced by dots
// (e.g., "channel.msteams", "history.sqlite").
type ModuleID string

// Namespace returns the portion of the ID before the last dot, or the
// whole ID when it has no dot.
func (id ModuleID) Namespace() string {
	s := string(id)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[:i]
		}
	}
	return s
}

// Name returns the portion of the ID after the last dot.
func (id ModuleID) Name() string {
	s := string(id)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}

// Module is the minimal contract every module satisfies. Lifecycle
// capabilities (Configure, Provision, Validate, Start, Stop, Reload) are
// optional interfaces discovered at load time.
type Module interface {
	ModuleInfo() ModuleInfo
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique, namespaced module identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}
