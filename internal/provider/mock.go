package provider

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/flemzord/teamgate/pkg/extchannel"
)

// Mock is a test double that implements Provider. It serves canned channels,
// users and messages from memory and records sent messages and call counts.
type Mock struct {
	ProviderName string

	mu        sync.Mutex
	connected bool
	channels  []extchannel.Channel
	users     []extchannel.ChannelUser
	messages  map[string][]extchannel.ChannelMessage
	sent      []SentMessage
	calls     map[string]int

	// ConnectErr, if set, is returned by Connect.
	ConnectErr error
}

// SentMessage records one SendMessage call.
type SentMessage struct {
	Channel string
	Text    string
}

// Compile-time interface guards.
var (
	_ Provider      = (*Mock)(nil)
	_ ChannelLister = (*Mock)(nil)
	_ Reporter      = (*Mock)(nil)
)

// NewMock creates a Mock pre-loaded with the given channels and users.
func NewMock(channels []extchannel.Channel, users []extchannel.ChannelUser) *Mock {
	return &Mock{
		ProviderName: "mock",
		channels:     channels,
		users:        users,
		messages:     make(map[string][]extchannel.ChannelMessage),
		calls:        make(map[string]int),
	}
}

// SetMessages seeds the history for a channel display name.
func (m *Mock) SetMessages(channel string, msgs []extchannel.ChannelMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[channel] = msgs
}

// Calls returns how many times the named operation ran.
func (m *Mock) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Sent returns a copy of all recorded SendMessage calls.
func (m *Mock) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]SentMessage, len(m.sent))
	copy(cp, m.sent)
	return cp
}

func (m *Mock) record(op string) {
	m.calls[op]++
}

// Name implements Provider.
func (m *Mock) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

// Connect implements Provider.
func (m *Mock) Connect(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Connect")
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.connected = true
	return nil
}

func (m *Mock) requireConnected() error {
	if !m.connected {
		return extchannel.ErrNotConnected
	}
	return nil
}

// CreateChannel implements Provider.
func (m *Mock) CreateChannel(_ context.Context, name string, memberNames []string) (extchannel.CreateChannelResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateChannel")
	if err := m.requireConnected(); err != nil {
		return extchannel.CreateChannelResult{}, err
	}

	ch := extchannel.Channel{ID: "mock-" + name, DisplayName: name}
	m.channels = append(m.channels, ch)

	result := extchannel.CreateChannelResult{Channel: &ch}
	for _, member := range memberNames {
		mr := extchannel.MemberResult{Name: member}
		for i := range m.users {
			if m.users[i].FullName == member {
				mr.User = &m.users[i]
				break
			}
		}
		if mr.User == nil {
			mr.Err = &extchannel.NotFoundError{Kind: "user", Key: member}
		}
		result.Members = append(result.Members, mr)
	}
	return result, nil
}

// GetChannels implements ChannelLister.
func (m *Mock) GetChannels(_ context.Context) ([]extchannel.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetChannels")
	if err := m.requireConnected(); err != nil {
		return nil, err
	}
	return append([]extchannel.Channel(nil), m.channels...), nil
}

// CloseChannel implements Provider.
func (m *Mock) CloseChannel(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CloseChannel")
	if err := m.requireConnected(); err != nil {
		return false, err
	}
	for i, ch := range m.channels {
		if ch.DisplayName == name {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// GetAllUsers implements Provider.
func (m *Mock) GetAllUsers(_ context.Context, prefix string) ([]extchannel.ChannelUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetAllUsers")
	if err := m.requireConnected(); err != nil {
		return nil, err
	}
	var out []extchannel.ChannelUser
	for _, u := range m.users {
		if prefix == "" || strings.HasPrefix(u.FullName, prefix) {
			out = append(out, u)
		}
	}
	return out, nil
}

// GetChannelUsers implements Provider. Like the real platform, it returns
// the full roster regardless of channel.
func (m *Mock) GetChannelUsers(ctx context.Context, _ string) ([]extchannel.ChannelUser, error) {
	return m.GetAllUsers(ctx, "")
}

// AddUserToChannel implements Provider.
func (m *Mock) AddUserToChannel(_ context.Context, _, userName string) (*extchannel.ChannelUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("AddUserToChannel")
	if err := m.requireConnected(); err != nil {
		return nil, err
	}
	for i := range m.users {
		if m.users[i].FullName == userName {
			return &m.users[i], nil
		}
	}
	return nil, &extchannel.NotFoundError{Kind: "user", Key: userName}
}

// RemoveUserFromChannel implements Provider.
func (m *Mock) RemoveUserFromChannel(_ context.Context, _, userName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RemoveUserFromChannel")
	if err := m.requireConnected(); err != nil {
		return err
	}
	for _, u := range m.users {
		if u.FullName == userName {
			return nil
		}
	}
	return &extchannel.NotFoundError{Kind: "user", Key: userName}
}

// GetMessages implements Provider.
func (m *Mock) GetMessages(_ context.Context, channelName string, since *time.Time) ([]extchannel.ChannelMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetMessages")
	if err := m.requireConnected(); err != nil {
		return nil, err
	}
	msgs, ok := m.messages[channelName]
	if !ok {
		return nil, &extchannel.NotFoundError{Kind: "channel", Key: channelName}
	}
	if since == nil {
		return append([]extchannel.ChannelMessage(nil), msgs...), nil
	}
	var out []extchannel.ChannelMessage
	for _, msg := range msgs {
		if !msg.Time.Before(*since) {
			out = append(out, msg)
		}
	}
	return out, nil
}

// SendMessage implements Provider.
func (m *Mock) SendMessage(_ context.Context, channelName, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SendMessage")
	if err := m.requireConnected(); err != nil {
		return err
	}
	found := false
	for _, ch := range m.channels {
		if ch.DisplayName == channelName {
			found = true
			break
		}
	}
	if !found {
		return &extchannel.NotFoundError{Kind: "channel", Key: channelName}
	}
	m.sent = append(m.sent, SentMessage{Channel: channelName, Text: text})
	return nil
}

// Status implements Reporter.
func (m *Mock) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{Name: m.Name(), Connected: m.connected}
}
