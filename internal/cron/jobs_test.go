package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/flemzord/teamgate/pkg/extchannel"
)

// memorySource is an in-memory MessageSource for job tests.
type memorySource struct {
	channels []extchannel.Channel
	messages map[string][]extchannel.ChannelMessage // by display name
	failFor  string                                 // channel name whose fetch fails
}

func (s *memorySource) GetChannels(_ context.Context) ([]extchannel.Channel, error) {
	return s.channels, nil
}

func (s *memorySource) GetMessages(_ context.Context, name string, since *time.Time) ([]extchannel.ChannelMessage, error) {
	if name == s.failFor {
		return nil, errors.New("fetch failed")
	}
	var out []extchannel.ChannelMessage
	for _, m := range s.messages[name] {
		if since != nil && m.Time.Before(*since) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// memoryHistory is an in-memory HistoryStore. Messages carry no server
// identifier, so deduplication uses the same natural key the SQLite store
// does: channel, timestamp, author, text.
type memoryHistory struct {
	seen    map[string]struct{}
	cursors map[string]time.Time
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{
		seen:    make(map[string]struct{}),
		cursors: make(map[string]time.Time),
	}
}

func msgKey(m extchannel.ChannelMessage) string {
	return m.ChannelID + "|" + m.Time.UTC().Format(time.RFC3339Nano) + "|" + m.UserID + "|" + m.Text
}

func (h *memoryHistory) Append(_ context.Context, msgs []extchannel.ChannelMessage) ([]extchannel.ChannelMessage, error) {
	var inserted []extchannel.ChannelMessage
	for _, m := range msgs {
		key := msgKey(m)
		if _, ok := h.seen[key]; ok {
			continue
		}
		h.seen[key] = struct{}{}
		if m.Time.After(h.cursors[m.ChannelID]) {
			h.cursors[m.ChannelID] = m.Time
		}
		inserted = append(inserted, m)
	}
	return inserted, nil
}

func (h *memoryHistory) Cursor(_ context.Context, channelID string) (*time.Time, error) {
	ts, ok := h.cursors[channelID]
	if !ok {
		return nil, nil
	}
	return &ts, nil
}

type recordingPublisher struct {
	published []extchannel.ChannelMessage
}

func (p *recordingPublisher) Publish(msg extchannel.ChannelMessage) {
	p.published = append(p.published, msg)
}

func syncFixture() (*memorySource, *memoryHistory, *recordingPublisher, *HistorySyncJob) {
	src := &memorySource{
		channels: []extchannel.Channel{{ID: "C1", DisplayName: "General"}},
		messages: map[string][]extchannel.ChannelMessage{
			"General": {
				{Text: "one", Time: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
				{Text: "two", Time: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
			},
		},
	}
	store := newMemoryHistory()
	pub := &recordingPublisher{}
	job := &HistorySyncJob{
		Source: src,
		Store:  store,
		Feed:   pub,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return src, store, pub, job
}

func TestHistorySyncJob_Name(t *testing.T) {
	t.Parallel()

	j := &HistorySyncJob{}
	if j.Name() != "history_sync" {
		t.Errorf("Name() = %q", j.Name())
	}
	if j.Schedule() != "* * * * *" {
		t.Errorf("Schedule() = %q, want every-minute default", j.Schedule())
	}
	j.ScheduleExpr = "*/5 * * * *"
	if j.Schedule() != "*/5 * * * *" {
		t.Errorf("Schedule() = %q, want override", j.Schedule())
	}
}

func TestHistorySyncJob_StoresAndPublishes(t *testing.T) {
	t.Parallel()

	_, store, pub, job := syncFixture()

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.seen) != 2 {
		t.Errorf("stored = %d, want 2", len(store.seen))
	}
	if len(pub.published) != 2 {
		t.Fatalf("published = %d, want 2", len(pub.published))
	}
	if pub.published[0].ChannelID != "C1" {
		t.Errorf("ChannelID = %q, want stamped C1", pub.published[0].ChannelID)
	}
}

func TestHistorySyncJob_SecondRunOnlyNewMessages(t *testing.T) {
	t.Parallel()

	src, _, pub, job := syncFixture()

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	src.messages["General"] = append(src.messages["General"],
		extchannel.ChannelMessage{Text: "three", Time: time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)},
	)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(pub.published) != 3 {
		t.Fatalf("published = %d, want 3 (no duplicates)", len(pub.published))
	}
	if pub.published[2].Text != "three" {
		t.Errorf("last published = %q, want three", pub.published[2].Text)
	}
}

func TestHistorySyncJob_OneChannelFailingDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	src, store, _, job := syncFixture()
	src.channels = append([]extchannel.Channel{{ID: "C0", DisplayName: "Broken"}}, src.channels...)
	src.failFor = "Broken"

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected joined error for failing channel")
	}
	if len(store.seen) != 2 {
		t.Errorf("stored = %d, want 2 from the healthy channel", len(store.seen))
	}
}

func TestHistorySyncJob_NilFeed(t *testing.T) {
	t.Parallel()

	_, store, _, job := syncFixture()
	job.Feed = nil

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.seen) != 2 {
		t.Errorf("stored = %d, want 2", len(store.seen))
	}
}
