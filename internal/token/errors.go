package token

import (
	"errors"
	"fmt"
)

// ErrInteractionRequired is returned by a Source's silent acquisition when
// no cached credential can satisfy the request and a user-facing challenge
// is needed.
var ErrInteractionRequired = errors.New("token: interaction required")

// AuthError means no token could be obtained at all — both the silent and
// the interactive paths failed. It is fatal for the session: callers
// should not retry the operation that triggered it.
type AuthError struct {
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("token: acquisition failed: %v", e.Err)
}

// Unwrap returns the underlying acquisition error.
func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
