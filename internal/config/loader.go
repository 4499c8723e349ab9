package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Matches ${VAR} and ${VAR:-default}. Tenant credentials usually come
// from the environment rather than the file, so expansion runs before the
// YAML is parsed.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads the config file at path, expands environment references, and
// decodes the result. The per-module sections stay as raw yaml.Node
// values; each module decodes its own in Configure.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// expandEnv substitutes every ${VAR} reference in the raw bytes. A
// reference with no environment value and no :- default is an error; all
// such variables are reported together so a broken deployment surfaces
// every missing secret at once, not one per restart.
func expandEnv(raw []byte) ([]byte, error) {
	var missing []error

	expanded := envPattern.ReplaceAllFunc(raw, func(ref []byte) []byte {
		groups := envPattern.FindSubmatch(ref)
		name := string(groups[1])

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if groups[2] != nil {
			return groups[2]
		}

		missing = append(missing, fmt.Errorf("unresolved variable: %s", name))
		return ref
	})

	return expanded, errors.Join(missing...)
}
