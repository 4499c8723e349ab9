package core

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// The global registry holds every module compiled into this binary. The
// blank imports in cmd/teamgate decide what lands here; config validation
// then checks the YAML against it.
var (
	registryMu sync.RWMutex
	registered = make(map[string]ModuleInfo)
)

// RegisterModule records a module so it can be loaded by ID. Called from
// each module package's init(); panics on a duplicate or malformed
// registration because that is a programming error, not a runtime one.
func RegisterModule(instance Module) {
	info := instance.ModuleInfo()
	if info.ID == "" {
		panic("core: module registered with empty ID")
	}
	if info.New == nil {
		panic(fmt.Sprintf("core: module %s registered with nil New", info.ID))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	id := string(info.ID)
	if _, dup := registered[id]; dup {
		panic(fmt.Sprintf("core: module already registered: %s", id))
	}
	registered[id] = info
}

// GetModule looks up a registered module by ID.
func GetModule(id string) (ModuleInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	info, ok := registered[id]
	return info, ok
}

// GetModules returns every registered module, sorted by ID. The version
// command prints this list.
func GetModules() []ModuleInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]ModuleInfo, 0, len(registered))
	for _, info := range registered {
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b ModuleInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// resetRegistry empties the registry between tests.
func resetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registered = make(map[string]ModuleInfo)
}
