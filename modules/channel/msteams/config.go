package msteams

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the Microsoft Teams channel provider configuration.
type Config struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// Authority overrides the Azure AD login endpoint; mainly for tests.
	Authority string `yaml:"authority"`

	// Scope defaults to the Graph .default application scope.
	Scope string `yaml:"scope"`

	// APIURL overrides the Graph base URL; mainly for tests.
	APIURL string `yaml:"api_url"`

	// DefaultTeam pins the session to a named team instead of the first
	// entry of the joined-teams listing.
	DefaultTeam string `yaml:"default_team"`

	// ConnectTimeout bounds the Connect call made during Start.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 30 * time.Second
	}
}

// validate checks configuration field constraints beyond basic presence
// checks. It is called from MSTeams.Validate after defaults have been
// applied.
func (c *Config) validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("msteams: tenant_id is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("msteams: client_id is required")
	}

	for _, field := range []struct{ name, value string }{
		{"api_url", c.APIURL},
		{"authority", c.Authority},
	} {
		if field.value == "" {
			continue
		}
		u, err := url.Parse(field.value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("msteams: %s must be a valid http/https URL, got %q", field.name, field.value)
		}
	}

	if c.ConnectTimeout < time.Second || c.ConnectTimeout > 5*time.Minute {
		return fmt.Errorf("msteams: connect_timeout must be 1s-5m, got %s", c.ConnectTimeout)
	}

	return nil
}
