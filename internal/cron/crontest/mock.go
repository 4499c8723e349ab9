// Package crontest provides test doubles for the cron package.
package crontest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/teamgate/internal/cron"
	"github.com/flemzord/teamgate/pkg/extchannel"
)

// MockJob is a configurable test double for cron.Job.
type MockJob struct {
	NameVal     string
	ScheduleVal string
	RunFunc     func(ctx context.Context) error

	mu       sync.Mutex
	calls    int
	lastCall time.Time
}

// Compile-time interface check.
var _ cron.Job = (*MockJob)(nil)

// Name implements cron.Job.
func (m *MockJob) Name() string { return m.NameVal }

// Schedule implements cron.Job.
func (m *MockJob) Schedule() string { return m.ScheduleVal }

// Run implements cron.Job and increments the call counter.
func (m *MockJob) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.lastCall = time.Now()
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount returns the number of times Run was called.
func (m *MockJob) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastCall returns the time of the last Run call.
func (m *MockJob) LastCall() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}

// MockPublisher is a test double for cron.Publisher that records every
// published message.
type MockPublisher struct {
	mu        sync.Mutex
	published []extchannel.ChannelMessage
}

// Compile-time interface check.
var _ cron.Publisher = (*MockPublisher)(nil)

// Publish implements cron.Publisher.
func (m *MockPublisher) Publish(msg extchannel.ChannelMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, msg)
}

// Published returns a copy of all published messages.
func (m *MockPublisher) Published() []extchannel.ChannelMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]extchannel.ChannelMessage, len(m.published))
	copy(out, m.published)
	return out
}
