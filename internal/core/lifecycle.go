package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// The daemon drives each module through an optional lifecycle:
//
//	New() → Configure() → Provision() → Validate() → Start() → Stop()
//
// Every stage is an interface a module may or may not implement. The
// msteams provider implements all five; a module with no background work
// can stop at Provision.

// Configurable receives the module's section of the YAML config, raw.
// Decoding and defaulting are the module's business.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner wires the module into the running daemon: loggers, service
// registration, sub-component construction. No I/O with the outside world
// should happen here.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator checks that the configured, provisioned module is coherent.
// It must not mutate state; Validate may run during `config check` where
// nothing will ever be started.
type Validator interface {
	Validate() error
}

// Starter begins the module's background work: listeners, schedulers, the
// initial Connect. Runs only after every module has been provisioned and
// validated, so cross-module services are all registered by then.
type Starter interface {
	Start() error
}

// Stopper releases what Start acquired. Called in reverse start order, so
// the HTTP gateway drains before the provider it fronts goes away.
type Stopper interface {
	Stop(ctx context.Context) error
}
