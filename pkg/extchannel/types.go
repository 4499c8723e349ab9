// Package extchannel defines the platform-agnostic data contract between a
// messaging-platform provider and its consumers. The shapes here are
// deliberately decoupled from any vendor's REST payloads.
package extchannel

import "time"

// Channel is a named conversation stream inside one team.
type Channel struct {
	// ID is the server-assigned identifier. Empty until the channel exists
	// remotely.
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// ChannelUser is the normalized projection of a platform user.
type ChannelUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`

	// Picture is always empty: the upstream user payload carries no avatar
	// field and none is synthesized.
	Picture string `json:"picture"`
}

// ChannelMessage is one entry of a channel's message history.
type ChannelMessage struct {
	// Time is the server's creation timestamp, passed through without
	// timezone conversion.
	Time time.Time `json:"time"`

	// UserID and Username are empty for system messages and deleted users
	// (the raw message carries no from.user sub-object in those cases).
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`

	Text      string `json:"text"`
	ChannelID string `json:"channel_id"`

	// IsStarred is always false: no upstream field populates it.
	IsStarred bool `json:"is_starred"`
}

// Team is the top-level scoping unit for channels.
type Team struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
