package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flemzord/teamgate/pkg/extchannel"
)

// timeLayout is the stored timestamp format. RFC 3339 with nanoseconds
// sorts lexicographically, so MAX() and range scans work on the text column.
const timeLayout = time.RFC3339Nano

// historyStore implements cron.HistoryStore backed by SQLite.
type historyStore struct {
	db *sql.DB
}

// Append stores msgs, skipping rows already present, and returns the newly
// inserted subset in input order.
func (h *historyStore) Append(ctx context.Context, msgs []extchannel.ChannelMessage) ([]extchannel.ChannelMessage, error) {
	if len(msgs) == 0 {
		return nil, nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO messages (channel_id, created_at, user_id, user_name, text, is_starred)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: prepare append: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var inserted []extchannel.ChannelMessage
	for _, msg := range msgs {
		starred := 0
		if msg.IsStarred {
			starred = 1
		}
		res, err := stmt.ExecContext(ctx,
			msg.ChannelID, msg.Time.UTC().Format(timeLayout),
			msg.UserID, msg.Username, msg.Text, starred,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: append message: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("sqlite: append rows affected: %w", err)
		}
		if n > 0 {
			inserted = append(inserted, msg)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit append: %w", err)
	}
	return inserted, nil
}

// Cursor returns the timestamp of the newest stored message for the
// channel, or nil when nothing is stored yet.
func (h *historyStore) Cursor(ctx context.Context, channelID string) (*time.Time, error) {
	var raw sql.NullString
	err := h.db.QueryRowContext(ctx,
		"SELECT MAX(created_at) FROM messages WHERE channel_id = ?", channelID,
	).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read cursor: %w", err)
	}
	if !raw.Valid {
		return nil, nil
	}

	ts, err := time.Parse(timeLayout, raw.String)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parse cursor %q: %w", raw.String, err)
	}
	return &ts, nil
}

// Since returns the channel's cached messages in chronological order.
// When since is non-nil, only messages at or after it are returned.
func (h *historyStore) Since(ctx context.Context, channelID string, since *time.Time) ([]extchannel.ChannelMessage, error) {
	query := `
		SELECT created_at, user_id, user_name, text, is_starred
		FROM messages
		WHERE channel_id = ?`
	args := []any{channelID}
	if since != nil {
		query += " AND created_at >= ?"
		args = append(args, since.UTC().Format(timeLayout))
	}
	query += " ORDER BY created_at ASC"

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []extchannel.ChannelMessage
	for rows.Next() {
		var (
			msg     extchannel.ChannelMessage
			rawTime string
			starred int
		)
		if err := rows.Scan(&rawTime, &msg.UserID, &msg.Username, &msg.Text, &starred); err != nil {
			return nil, fmt.Errorf("sqlite: scan message: %w", err)
		}
		msg.Time, err = time.Parse(timeLayout, rawTime)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse timestamp %q: %w", rawTime, err)
		}
		msg.ChannelID = channelID
		msg.IsStarred = starred != 0
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: history rows: %w", err)
	}
	return msgs, nil
}

// Len returns the number of cached messages for a channel.
func (h *historyStore) Len(ctx context.Context, channelID string) (int, error) {
	var count int
	err := h.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE channel_id = ?", channelID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count messages: %w", err)
	}
	return count, nil
}
