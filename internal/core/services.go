package core

import "sync"

// serviceRegistry holds runtime services published by modules for other
// modules to consume. It is shared by every AppContext derived from the
// same root, so a service registered during one module's Provision is
// visible to modules provisioned later.
type serviceRegistry struct {
	mu       sync.RWMutex
	services map[string]any
}

func newServiceRegistry() *serviceRegistry {
	return &serviceRegistry{services: make(map[string]any)}
}

// RegisterService publishes a service under the given name, replacing any
// previous registration.
func (ctx *AppContext) RegisterService(name string, svc any) {
	ctx.registry.mu.Lock()
	defer ctx.registry.mu.Unlock()
	ctx.registry.services[name] = svc
}

// GetService returns the service registered under name, or false when no
// module has published it.
func (ctx *AppContext) GetService(name string) (any, bool) {
	ctx.registry.mu.RLock()
	defer ctx.registry.mu.RUnlock()
	svc, ok := ctx.registry.services[name]
	return svc, ok
}
