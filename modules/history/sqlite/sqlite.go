// Package sqlite implements a persistent SQLite-backed message history
// cache with a periodic sync job pulling from the channel provider. It uses
// modernc.org/sqlite (pure Go, no CGO) with WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flemzord/teamgate/internal/core"
	"github.com/flemzord/teamgate/internal/cron"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite" // SQLite driver registration
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ cron.HistoryStore = (*historyStore)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module owns the history database and the cron scheduler running the
// sync job against the channel provider.
type Module struct {
	config    Config
	appCtx    *core.AppContext
	db        *sql.DB
	logger    *slog.Logger
	store     *historyStore
	scheduler *cron.Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "history.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.appCtx = ctx
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", m.config.Path)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", m.config.Path, err)
	}

	// SQLite handles one writer at a time; limit pool to 1 connection
	// so PRAGMAs apply consistently.
	db.SetMaxOpenConns(1)

	if m.config.walEnabled() {
		if _, err := db.ExecContext(context.TODO(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}

	if _, err := db.ExecContext(context.TODO(), fmt.Sprintf("PRAGMA busy_timeout=%d", m.config.BusyTimeout)); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return err
	}

	m.db = db
	m.store = &historyStore{db: db}

	ctx.RegisterService("history.store", m.store)

	m.logger.Info("sqlite history module provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
	)

	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}

	if err := m.db.PingContext(context.TODO()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	var n int
	if err := m.db.QueryRowContext(context.TODO(), "SELECT count(*) FROM messages").Scan(&n); err != nil {
		return fmt.Errorf("sqlite: messages table not available: %w", err)
	}

	return nil
}

// Start implements core.Starter. It wires the sync job to the channel
// provider and feed services and starts the scheduler. Without a channel
// provider the module serves the cache read-only.
func (m *Module) Start() error {
	src := m.messageSource()
	if src == nil {
		m.logger.Warn("history sync disabled: no channel provider service")
		return nil
	}

	job := &cron.HistorySyncJob{
		Source:       src,
		Store:        m.store,
		Feed:         m.feedPublisher(),
		Logger:       m.logger,
		ScheduleExpr: m.config.SyncSchedule,
	}

	m.scheduler = cron.NewScheduler(m.logger)
	if err := m.scheduler.RegisterJob(job); err != nil {
		return err
	}
	if err := m.scheduler.Start(); err != nil {
		return err
	}

	m.logger.Info("history sync started", "schedule", job.Schedule())
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler != nil {
		if err := m.scheduler.Stop(ctx); err != nil {
			return err
		}
	}
	m.logger.Info("sqlite history module stopping")
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Store returns the history store implementation.
func (m *Module) Store() cron.HistoryStore {
	return m.store
}

func (m *Module) messageSource() cron.MessageSource {
	svc, ok := m.appCtx.GetService("channel.provider")
	if !ok {
		return nil
	}
	src, ok := svc.(cron.MessageSource)
	if !ok {
		return nil
	}
	return src
}

func (m *Module) feedPublisher() cron.Publisher {
	svc, ok := m.appCtx.GetService("feed.publisher")
	if !ok {
		return nil
	}
	pub, ok := svc.(cron.Publisher)
	if !ok {
		return nil
	}
	return pub
}
