// Package provider defines the bridge between a messaging platform and the
// rest of the daemon. It provides the Provider interface, its blocking
// counterpart, and a mock implementation for tests.
package provider

import (
	"context"
	"time"

	"github.com/flemzord/teamgate/pkg/extchannel"
)

// Provider is the normalized surface over one messaging platform. Every
// concrete provider (Microsoft Teams today) must implement this interface.
//
// All operations except Connect and Name require a prior successful
// Connect; they return extchannel.ErrNotConnected otherwise. Channel
// operations accept display names and resolve them against the current
// team's listing with first-match semantics — display names are not
// guaranteed unique by the platform.
//
// A Provider instance is meant for one logical session at a time; callers
// needing an isolated team scope should use a platform-specific scoped
// handle instead of sharing one instance.
type Provider interface {
	// Name returns the provider identity string.
	Name() string

	// Connect acquires credentials and selects a default team.
	Connect(ctx context.Context) error

	// CreateChannel creates a channel in the current team and then adds
	// each named member sequentially. One member failing does not abort the
	// loop; the result records per-member outcomes. The error is non-nil
	// only when the channel itself could not be established.
	CreateChannel(ctx context.Context, name string, memberNames []string) (extchannel.CreateChannelResult, error)

	// CloseChannel deletes the channel with the given display name.
	// A missing channel is a benign no-op: found reports whether a DELETE
	// was actually issued.
	CloseChannel(ctx context.Context, name string) (found bool, err error)

	// GetAllUsers lists the directory's users, optionally filtered to full
	// names starting with prefix.
	GetAllUsers(ctx context.Context, prefix string) ([]extchannel.ChannelUser, error)

	// GetChannelUsers returns the users able to participate in the named
	// channel. The platform has no per-channel membership, so this is the
	// full roster of the owning team.
	GetChannelUsers(ctx context.Context, name string) ([]extchannel.ChannelUser, error)

	// AddUserToChannel adds the named user to the team that owns the
	// channel (channel membership is team membership on this platform).
	// Returns the resolved user, or a *extchannel.NotFoundError when the
	// team or user was not found.
	AddUserToChannel(ctx context.Context, teamName, userName string) (*extchannel.ChannelUser, error)

	// RemoveUserFromChannel removes the named user from the owning team.
	RemoveUserFromChannel(ctx context.Context, teamName, userName string) error

	// GetMessages fetches the channel's history. When since is non-nil the
	// result is filtered client-side to messages with Time >= *since,
	// preserving server order.
	GetMessages(ctx context.Context, channelName string, since *time.Time) ([]extchannel.ChannelMessage, error)

	// SendMessage posts text to the named channel. Returns a
	// *extchannel.NotFoundError when the channel does not exist.
	SendMessage(ctx context.Context, channelName, text string) error
}

// BlockingProvider mirrors Provider for call sites that cannot carry a
// context. Implementations adapt a Provider through an independent
// execution context (see internal/syncbridge) and propagate the inner
// operation's failure unchanged.
type BlockingProvider interface {
	Name() string
	Connect() error
	CreateChannel(name string, memberNames []string) (extchannel.CreateChannelResult, error)
	CloseChannel(name string) (bool, error)
	GetAllUsers(prefix string) ([]extchannel.ChannelUser, error)
	GetChannelUsers(name string) ([]extchannel.ChannelUser, error)
	AddUserToChannel(teamName, userName string) (*extchannel.ChannelUser, error)
	RemoveUserFromChannel(teamName, userName string) error
	GetMessages(channelName string, since *time.Time) ([]extchannel.ChannelMessage, error)
	SendMessage(channelName, text string) error
}

// ChannelLister is implemented by providers that can enumerate the current
// team's channels. Optional capability: the normalized interface only
// addresses channels by name.
type ChannelLister interface {
	GetChannels(ctx context.Context) ([]extchannel.Channel, error)
}

// Status is a point-in-time health summary of a provider, reported by the
// gateway's health and status endpoints.
type Status struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	TeamID    string `json:"team_id,omitempty"`
}

// Reporter is implemented by providers that can describe their session
// state without a network round-trip.
type Reporter interface {
	Status() Status
}
