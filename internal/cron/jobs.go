package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/teamgate/pkg/extchannel"
)

// MessageSource is the subset of a channel provider needed by the history
// sync job. Defined here to avoid a dependency on the provider package.
type MessageSource interface {
	GetChannels(ctx context.Context) ([]extchannel.Channel, error)
	GetMessages(ctx context.Context, channelName string, since *time.Time) ([]extchannel.ChannelMessage, error)
}

// HistoryStore persists fetched messages and remembers how far each
// channel has been synced.
type HistoryStore interface {
	// Append stores msgs, skipping ones already present, and returns the
	// newly inserted subset in input order.
	Append(ctx context.Context, msgs []extchannel.ChannelMessage) ([]extchannel.ChannelMessage, error)

	// Cursor returns the timestamp of the newest stored message for the
	// channel, or nil when nothing is stored yet.
	Cursor(ctx context.Context, channelID string) (*time.Time, error)
}

// Publisher receives messages the sync job discovered. Typically backed by
// the live feed hub.
type Publisher interface {
	Publish(msg extchannel.ChannelMessage)
}

// HistorySyncJob polls every channel for messages newer than the stored
// cursor, persists them, and pushes the new ones to the feed.
type HistorySyncJob struct {
	Source       MessageSource
	Store        HistoryStore
	Feed         Publisher // optional
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "* * * * *"
}

// Compile-time interface check.
var _ Job = (*HistorySyncJob)(nil)

// Name implements Job.
func (j *HistorySyncJob) Name() string { return "history_sync" }

// Schedule implements Job.
func (j *HistorySyncJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "* * * * *"
}

// Run syncs all channels. One channel failing does not stop the others;
// the failures are joined into the returned error.
func (j *HistorySyncJob) Run(ctx context.Context) error {
	channels, err := j.Source.GetChannels(ctx)
	if err != nil {
		return fmt.Errorf("cron: listing channels: %w", err)
	}

	var errs []error
	var total int
	for _, ch := range channels {
		if ctx.Err() != nil {
			return fmt.Errorf("cron: history sync cancelled: %w", ctx.Err())
		}
		n, err := j.syncChannel(ctx, ch)
		if err != nil {
			errs = append(errs, fmt.Errorf("cron: syncing %q: %w", ch.DisplayName, err))
			continue
		}
		total += n
	}

	if total > 0 {
		j.Logger.Info("cron: history synced", "new_messages", total, "channels", len(channels))
	}
	return errors.Join(errs...)
}

func (j *HistorySyncJob) syncChannel(ctx context.Context, ch extchannel.Channel) (int, error) {
	cursor, err := j.Store.Cursor(ctx, ch.ID)
	if err != nil {
		return 0, err
	}

	msgs, err := j.Source.GetMessages(ctx, ch.DisplayName, cursor)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	// Stamp the channel ID: the provider addresses channels by display
	// name and does not set it on returned messages.
	for i := range msgs {
		if msgs[i].ChannelID == "" {
			msgs[i].ChannelID = ch.ID
		}
	}

	inserted, err := j.Store.Append(ctx, msgs)
	if err != nil {
		return 0, err
	}

	if j.Feed != nil {
		for _, msg := range inserted {
			j.Feed.Publish(msg)
		}
	}
	return len(inserted), nil
}
