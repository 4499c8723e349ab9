package token

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

// DefaultAuthority is the Azure AD token authority; the %s slot takes the
// tenant identifier.
const DefaultAuthority = "https://login.microsoftonline.com/%s"

// InteractiveFunc runs a user-facing acquisition flow. The UI itself is an
// external collaborator; the daemon only carries the protocol slot for it.
type InteractiveFunc func(ctx context.Context) (Token, error)

// AADSource acquires tokens from Azure Active Directory. Silent
// acquisition uses the OAuth2 client-credentials grant; the interactive
// fallback is delegated to an optional callback supplied by the host.
type AADSource struct {
	cfg         clientcredentials.Config
	interactive InteractiveFunc
}

// AADConfig holds the application registration details.
type AADConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// Authority overrides DefaultAuthority; mainly for tests.
	Authority string
	// Scope defaults to the Graph .default scope.
	Scope string
}

// NewAADSource creates an AADSource. interactive may be nil: silent-only
// deployments then fail with ErrInteractionRequired instead of prompting.
func NewAADSource(cfg AADConfig, interactive InteractiveFunc) *AADSource {
	authority := cfg.Authority
	if authority == "" {
		authority = fmt.Sprintf(DefaultAuthority, cfg.TenantID)
	}
	scope := cfg.Scope
	if scope == "" {
		scope = "https://graph.microsoft.com/.default"
	}

	return &AADSource{
		cfg: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimRight(authority, "/") + "/oauth2/v2.0/token",
			Scopes:       []string{scope},
		},
		interactive: interactive,
	}
}

// AcquireSilent implements Source via the client-credentials grant.
func (s *AADSource) AcquireSilent(ctx context.Context) (Token, error) {
	if s.cfg.ClientSecret == "" {
		// No secret configured: only a user-facing flow can produce a token.
		return Token{}, ErrInteractionRequired
	}

	tok, err := s.cfg.Token(ctx)
	if err != nil {
		return Token{}, fmt.Errorf("token: client-credentials exchange: %w", err)
	}
	return Token{AccessToken: tok.AccessToken, Expiry: tok.Expiry}, nil
}

// AcquireInteractive implements Source by delegating to the host-supplied
// callback.
func (s *AADSource) AcquireInteractive(ctx context.Context) (Token, error) {
	if s.interactive == nil {
		return Token{}, ErrInteractionRequired
	}
	return s.interactive(ctx)
}
