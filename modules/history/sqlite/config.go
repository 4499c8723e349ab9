package sqlite

import "fmt"

const (
	defaultBusyTimeout  = 5000
	defaultDBFile       = "history.db"
	defaultSyncSchedule = "* * * * *"
)

// Config holds the SQLite history module configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/history.db.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode for concurrent reads. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// SyncSchedule is the cron expression for the history sync job.
	// Defaults to every minute.
	SyncSchedule string `yaml:"sync_schedule"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
	if c.SyncSchedule == "" {
		c.SyncSchedule = defaultSyncSchedule
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("sqlite: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	return nil
}
