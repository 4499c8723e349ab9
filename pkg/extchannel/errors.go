package extchannel

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all providers.
var (
	// ErrNotConnected indicates an operation was attempted before Connect().
	ErrNotConnected = errors.New("extchannel: provider not connected")

	// ErrNoTeam indicates the provider is connected but no team is selected,
	// so channel-scoped operations cannot be addressed.
	ErrNoTeam = errors.New("extchannel: no team selected")

	// ErrChannelNotFoundAfterCreate indicates a channel creation was accepted
	// by the platform but the channel did not appear in the subsequent
	// listing. This can legitimately occur under eventual-consistency lag.
	ErrChannelNotFoundAfterCreate = errors.New("extchannel: channel not listed after create")
)

// NotFoundError reports that a name-based lookup found no match. Lookup
// operations recover it locally where their contract allows a benign
// "did not apply" outcome; it propagates only where the operation cannot
// proceed without the entity.
type NotFoundError struct {
	Kind string // "channel", "team" or "user"
	Key  string // the display name that was looked up
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("extchannel: %s %q not found", e.Kind, e.Key)
}

// IsNotFound reports whether err is a NotFoundError of any kind.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
