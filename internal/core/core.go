package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Modules get this long to drain on shutdown before the daemon gives up
// on them.
const shutdownTimeout = 30 * time.Second

// App owns the loaded modules and walks them through start and stop. Load
// order is the caller's (config.Resolve sorts IDs, so channel.msteams
// starts before history.sqlite and the provider service exists by the
// time the sync scheduler first fires); stop order is the reverse.
type App struct {
	ctx    *AppContext
	loaded []loadedModule
	logger *slog.Logger
}

type loadedModule struct {
	id      ModuleID
	module  Module
	started bool
}

// NewApp creates an App around the shared context.
func NewApp(ctx *AppContext) *App {
	return &App{
		ctx:    ctx,
		logger: ctx.Logger.With("component", "core"),
	}
}

// LoadModules instantiates, configures, provisions, and validates each ID
// in order. A failure unwinds the modules loaded so far and reports which
// module broke.
func (a *App) LoadModules(ids []string) error {
	for _, id := range ids {
		mod, err := a.ctx.LoadModule(id)
		if err != nil {
			a.unloadAll()
			return fmt.Errorf("loading module %s: %w", id, err)
		}
		a.loaded = append(a.loaded, loadedModule{
			id:     mod.ModuleInfo().ID,
			module: mod,
		})
		a.logger.Info("module loaded", "module", id)
	}
	return nil
}

// Start runs Start on every loaded module that has one, in load order.
// On failure the modules already running are stopped again, newest first,
// so a half-started daemon never lingers.
func (a *App) Start() error {
	for i := range a.loaded {
		lm := &a.loaded[i]
		s, ok := lm.module.(Starter)
		if !ok {
			continue
		}
		a.logger.Info("starting module", "module", string(lm.id))
		if err := s.Start(); err != nil {
			a.logger.Error("module start failed", "module", string(lm.id), "error", err)
			a.stopFrom(i - 1)
			return fmt.Errorf("starting module %s: %w", lm.id, err)
		}
		lm.started = true
	}
	a.logger.Info("all modules started")
	return nil
}

// Stop shuts down every started module in reverse start order.
func (a *App) Stop() {
	a.stopFrom(len(a.loaded) - 1)
}

func (a *App) stopFrom(idx int) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := idx; i >= 0; i-- {
		lm := &a.loaded[i]
		if !lm.started {
			continue
		}
		if s, ok := lm.module.(Stopper); ok {
			a.logger.Info("stopping module", "module", string(lm.id))
			if err := s.Stop(ctx); err != nil {
				a.logger.Error("module stop error", "module", string(lm.id), "error", err)
			}
		}
		lm.started = false
	}
}

// unloadAll stops whatever was loaded when LoadModules fails midway.
// Nothing has Started yet, but provisioned modules may hold resources
// (the history module opens its database during Provision).
func (a *App) unloadAll() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(a.loaded) - 1; i >= 0; i-- {
		if s, ok := a.loaded[i].module.(Stopper); ok {
			_ = s.Stop(ctx)
		}
	}
	a.loaded = nil
}

// Run starts every module and blocks until SIGINT or SIGTERM, then stops
// them all.
func (a *App) Run() error {
	if err := a.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	a.logger.Info("shutdown signal received", "signal", sig.String())

	a.Stop()
	a.logger.Info("shutdown complete")
	return nil
}
