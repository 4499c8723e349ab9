package msteams

import (
	"strings"

	"github.com/flemzord/teamgate/pkg/extchannel"
)

// Converters between raw Graph payloads and the normalized channel model.
// All functions here are pure; policy decisions (empty avatar, starred
// always false, nil author tolerated) live in this file and nowhere else.

// toChannel maps a raw channel resource.
func toChannel(c channel) extchannel.Channel {
	return extchannel.Channel{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		Description: c.Description,
	}
}

// toTeam maps a raw team resource.
func toTeam(t team) extchannel.Team {
	return extchannel.Team{
		ID:          t.ID,
		DisplayName: t.DisplayName,
	}
}

// toChannelUser maps a raw user. Picture is always empty: the user payload
// carries no avatar and none is fetched separately.
func toChannelUser(u user) extchannel.ChannelUser {
	return extchannel.ChannelUser{
		ID:       u.ID,
		FullName: u.DisplayName,
		Picture:  "",
	}
}

// toChannelMessage maps a raw chat message into the channel identified by
// channelID. The author sub-object is absent for system messages and
// deleted users; id and name then stay empty. The timestamp passes through
// without timezone conversion. IsStarred is always false: no upstream field
// populates it.
func toChannelMessage(m chatMessage, channelID string) extchannel.ChannelMessage {
	out := extchannel.ChannelMessage{
		Time:      m.CreatedDateTime,
		Text:      m.Body.Content,
		ChannelID: channelID,
		IsStarred: false,
	}
	if m.From != nil && m.From.User != nil {
		out.UserID = m.From.User.ID
		out.Username = m.From.User.DisplayName
	}
	return out
}

// newChannelBody builds the channel-creation request.
func newChannelBody(name, description string) newChannelRequest {
	return newChannelRequest{DisplayName: name, Description: description}
}

// newGroupBody builds the group-creation request for a private,
// Teams-capable unified group. An empty mail nickname is derived from the
// display name with spaces stripped, as the directory rejects whitespace.
func newGroupBody(name, mailNickname, description string) newGroupRequest {
	if mailNickname == "" {
		mailNickname = strings.ReplaceAll(name, " ", "")
	}
	return newGroupRequest{
		DisplayName:     name,
		MailNickname:    mailNickname,
		Description:     description,
		GroupTypes:      []string{"Unified"},
		MailEnabled:     true,
		SecurityEnabled: false,
		Visibility:      "Private",
	}
}

// newMessageBody builds the message-post request.
func newMessageBody(text string) newMessageRequest {
	return newMessageRequest{Body: itemBody{Content: text}}
}

// memberRef builds the @odata.id reference body pointing at a user
// resource. ref must be the absolute URL of that resource.
func memberRef(ref string) refPayload {
	return refPayload{ODataID: ref}
}
