package token

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Source acquires tokens from an identity platform. AcquireSilent must not
// involve the user; it returns ErrInteractionRequired when only a
// user-facing flow can produce a credential.
type Source interface {
	AcquireSilent(ctx context.Context) (Token, error)
	AcquireInteractive(ctx context.Context) (Token, error)
}

// Provider caches the current token and coordinates acquisition.
//
// Acquisition is idempotent: while the cached token is valid, Current
// returns it without a remote exchange. Expiry is handled lazily — the
// provider never refreshes pre-emptively; a caller that sees the remote
// reject the token calls Invalidate and asks again, at most once per
// logical operation.
type Provider struct {
	source Source
	logger *slog.Logger

	mu      sync.Mutex
	current Token
	stale   bool
}

// NewProvider creates a Provider on top of the given source.
func NewProvider(source Source, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{source: source, logger: logger}
}

// Current returns the cached token, or acquires one: silent first, then
// the interactive fallback when the source signals ErrInteractionRequired.
// When both paths fail the result is an *AuthError.
func (p *Provider) Current(ctx context.Context) (Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stale && p.current.Valid() {
		return p.current, nil
	}

	tok, err := p.acquire(ctx)
	if err != nil {
		return Token{}, &AuthError{Err: err}
	}

	p.current = tok
	p.stale = false
	return tok, nil
}

// acquire runs the silent → interactive protocol. Caller holds the lock.
func (p *Provider) acquire(ctx context.Context) (Token, error) {
	tok, err := p.source.AcquireSilent(ctx)
	if err == nil {
		return tok, nil
	}
	if !errors.Is(err, ErrInteractionRequired) {
		return Token{}, err
	}

	p.logger.Info("silent token acquisition unavailable, falling back to interactive flow")
	return p.source.AcquireInteractive(ctx)
}

// Invalidate marks the cached token stale so the next Current call
// performs a fresh exchange. Called after the remote rejects the token.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stale = true
}

// Bearer returns the current access token string. It satisfies the Graph
// binding's token-source contract.
func (p *Provider) Bearer(ctx context.Context) (string, error) {
	tok, err := p.Current(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
