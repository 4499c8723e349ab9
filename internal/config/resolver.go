package config

import (
	"maps"
	"slices"
)

// Resolve returns the configured module IDs in load order. Sorting by ID
// is the ordering contract the modules rely on: channel.msteams loads and
// starts before history.sqlite, so the provider service is registered and
// connected before the first sync tick can run.
func Resolve(cfg *Config) []string {
	return slices.Sorted(maps.Keys(cfg.Modules))
}
