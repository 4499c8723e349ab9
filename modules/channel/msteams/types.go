package msteams

import "time"

// team is the raw Graph team resource, as returned by /me/joinedTeams and
// /teams/{id}.
type team struct {
	ID            string         `json:"id"`
	DisplayName   string         `json:"displayName"`
	Description   string         `json:"description,omitempty"`
	GuestSettings *guestSettings `json:"guestSettings,omitempty"`
}

// guestSettings are the team-level guest permission flags.
type guestSettings struct {
	AllowCreateUpdateChannels bool `json:"allowCreateUpdateChannels"`
	AllowDeleteChannels       bool `json:"allowDeleteChannels"`
}

// group is the raw directory group underlying a team.
type group struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// newGroupRequest is the POST /groups body for a Teams-capable group.
type newGroupRequest struct {
	DisplayName     string   `json:"displayName"`
	MailNickname    string   `json:"mailNickname"`
	Description     string   `json:"description,omitempty"`
	GroupTypes      []string `json:"groupTypes"`
	MailEnabled     bool     `json:"mailEnabled"`
	SecurityEnabled bool     `json:"securityEnabled"`
	Visibility      string   `json:"visibility"`
}

// teamSettings is the body shared by team promotion (PUT /groups/{id}/team)
// and settings updates (PATCH /teams/{id}).
type teamSettings struct {
	GuestSettings *guestSettings `json:"guestSettings,omitempty"`
}

// channel is the raw Graph channel resource.
type channel struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// newChannelRequest is the POST /teams/{id}/channels body.
type newChannelRequest struct {
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// user is the raw Graph user resource. The payload has no avatar field.
type user struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
}

// chatMessage is one entry of a channel's message listing.
type chatMessage struct {
	ID              string       `json:"id"`
	CreatedDateTime time.Time    `json:"createdDateTime"`
	From            *messageFrom `json:"from,omitempty"`
	Body            itemBody     `json:"body"`
}

// messageFrom identifies a message's author. User is nil for system
// messages and deleted users.
type messageFrom struct {
	User *user `json:"user,omitempty"`
}

// itemBody carries message content.
type itemBody struct {
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content"`
}

// newMessageRequest is the POST .../messages body.
type newMessageRequest struct {
	Body itemBody `json:"body"`
}

// refPayload is the directory-object reference body used by the
// members/$ref and owners/$ref endpoints. The value is an absolute URL to
// the referenced resource.
type refPayload struct {
	ODataID string `json:"@odata.id"`
}
