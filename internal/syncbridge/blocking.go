package syncbridge

import (
	"context"
	"time"

	"github.com/flemzord/teamgate/internal/provider"
	"github.com/flemzord/teamgate/pkg/extchannel"
)

// Compile-time interface guard.
var _ provider.BlockingProvider = (*Blocking)(nil)

// Blocking adapts a provider.Provider to the no-context
// provider.BlockingProvider interface. Every method bridges through Run,
// so errors from the wrapped provider come back unchanged.
type Blocking struct {
	inner   provider.Provider
	timeout time.Duration
}

// NewBlocking wraps inner. timeout <= 0 selects DefaultTimeout.
func NewBlocking(inner provider.Provider, timeout time.Duration) *Blocking {
	return &Blocking{inner: inner, timeout: timeout}
}

// Name implements provider.BlockingProvider.
func (b *Blocking) Name() string { return b.inner.Name() }

// Connect implements provider.BlockingProvider.
func (b *Blocking) Connect() error {
	return run(b.inner.Connect, b.timeout)
}

// CreateChannel implements provider.BlockingProvider.
func (b *Blocking) CreateChannel(name string, memberNames []string) (extchannel.CreateChannelResult, error) {
	return Run(func(ctx context.Context) (extchannel.CreateChannelResult, error) {
		return b.inner.CreateChannel(ctx, name, memberNames)
	}, b.timeout)
}

// CloseChannel implements provider.BlockingProvider.
func (b *Blocking) CloseChannel(name string) (bool, error) {
	return Run(func(ctx context.Context) (bool, error) {
		return b.inner.CloseChannel(ctx, name)
	}, b.timeout)
}

// GetAllUsers implements provider.BlockingProvider.
func (b *Blocking) GetAllUsers(prefix string) ([]extchannel.ChannelUser, error) {
	return Run(func(ctx context.Context) ([]extchannel.ChannelUser, error) {
		return b.inner.GetAllUsers(ctx, prefix)
	}, b.timeout)
}

// GetChannelUsers implements provider.BlockingProvider.
func (b *Blocking) GetChannelUsers(name string) ([]extchannel.ChannelUser, error) {
	return Run(func(ctx context.Context) ([]extchannel.ChannelUser, error) {
		return b.inner.GetChannelUsers(ctx, name)
	}, b.timeout)
}

// AddUserToChannel implements provider.BlockingProvider.
func (b *Blocking) AddUserToChannel(teamName, userName string) (*extchannel.ChannelUser, error) {
	return Run(func(ctx context.Context) (*extchannel.ChannelUser, error) {
		return b.inner.AddUserToChannel(ctx, teamName, userName)
	}, b.timeout)
}

// RemoveUserFromChannel implements provider.BlockingProvider.
func (b *Blocking) RemoveUserFromChannel(teamName, userName string) error {
	return run(func(ctx context.Context) error {
		return b.inner.RemoveUserFromChannel(ctx, teamName, userName)
	}, b.timeout)
}

// GetMessages implements provider.BlockingProvider.
func (b *Blocking) GetMessages(channelName string, since *time.Time) ([]extchannel.ChannelMessage, error) {
	return Run(func(ctx context.Context) ([]extchannel.ChannelMessage, error) {
		return b.inner.GetMessages(ctx, channelName, since)
	}, b.timeout)
}

// SendMessage implements provider.BlockingProvider.
func (b *Blocking) SendMessage(channelName, text string) error {
	return run(func(ctx context.Context) error {
		return b.inner.SendMessage(ctx, channelName, text)
	}, b.timeout)
}
