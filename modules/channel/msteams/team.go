package msteams

import (
	"context"
	"time"

	"github.com/flemzord/teamgate/internal/graph"
	"github.com/flemzord/teamgate/pkg/extchannel"
)

// TeamScope is a handle bound to one team. All operations carry the team
// id as a value, so scopes obtained from UseTeam never interfere with the
// provider's own current scope or with each other.
type TeamScope struct {
	p    *Provider
	id   string
	name string
}

// ID returns the scoped team's id.
func (s *TeamScope) ID() string { return s.id }

// Name returns the scoped team's display name.
func (s *TeamScope) Name() string { return s.name }

// Channels lists the team's channels.
func (s *TeamScope) Channels(ctx context.Context) ([]extchannel.Channel, error) {
	raw, err := listRetry[channel](ctx, s.p, graph.Beta, "/teams/"+s.id+"/channels")
	if err != nil {
		return nil, err
	}
	out := make([]extchannel.Channel, 0, len(raw))
	for _, c := range raw {
		out = append(out, toChannel(c))
	}
	return out, nil
}

// ChannelByName resolves a channel by display name. Display names are not
// unique on the platform; the first listing entry wins. Returns a
// *extchannel.NotFoundError when no entry matches.
func (s *TeamScope) ChannelByName(ctx context.Context, name string) (*extchannel.Channel, error) {
	raw, ok, err := s.rawChannelByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &extchannel.NotFoundError{Kind: "channel", Key: name}
	}
	c := toChannel(raw)
	return &c, nil
}

// ChannelByID resolves a channel by server-assigned id.
func (s *TeamScope) ChannelByID(ctx context.Context, id string) (*extchannel.Channel, error) {
	raw, err := getRetry[channel](ctx, s.p, graph.Beta, "/teams/"+s.id+"/channels/"+id)
	if err != nil {
		if graph.IsNotFound(err) {
			return nil, &extchannel.NotFoundError{Kind: "channel", Key: id}
		}
		return nil, err
	}
	c := toChannel(*raw)
	return &c, nil
}

// rawChannelByName lists the team's channels and returns the first entry
// with the given display name.
func (s *TeamScope) rawChannelByName(ctx context.Context, name string) (channel, bool, error) {
	raw, err := listRetry[channel](ctx, s.p, graph.Beta, "/teams/"+s.id+"/channels")
	if err != nil {
		return channel{}, false, err
	}
	for _, c := range raw {
		if c.DisplayName == name {
			return c, true, nil
		}
	}
	return channel{}, false, nil
}

// CreateChannel creates a channel and then adds each named member. The
// creation response does not carry the new resource, so the channel is
// located by re-listing and matching the display name; a listing miss is
// reported as extchannel.ErrChannelNotFoundAfterCreate, which can
// legitimately occur under eventual-consistency lag.
//
// One member failing does not abort the loop and nothing is rolled back;
// the result records each member's outcome in request order.
func (s *TeamScope) CreateChannel(ctx context.Context, name, description string, memberNames []string) (extchannel.CreateChannelResult, error) {
	var res extchannel.CreateChannelResult

	if _, err := s.p.client.Post(ctx, graph.Beta, "/teams/"+s.id+"/channels", newChannelBody(name, description)); err != nil {
		return res, err
	}

	raw, ok, err := s.rawChannelByName(ctx, name)
	if err != nil {
		return res, err
	}
	if !ok {
		return res, extchannel.ErrChannelNotFoundAfterCreate
	}
	c := toChannel(raw)
	res.Channel = &c

	for _, member := range memberNames {
		u, err := s.AddMember(ctx, member)
		res.Members = append(res.Members, extchannel.MemberResult{Name: member, User: u, Err: err})
		if err != nil {
			s.p.logger.Warn("member add failed", "channel", name, "member", member, "error", err)
		}
	}
	return res, nil
}

// CloseChannel deletes the channel with the given display name. A missing
// channel is a benign no-op: found is false and no DELETE is issued.
func (s *TeamScope) CloseChannel(ctx context.Context, name string) (found bool, err error) {
	raw, ok, err := s.rawChannelByName(ctx, name)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := s.p.client.Delete(ctx, graph.Beta, "/teams/"+s.id+"/channels/"+raw.ID); err != nil {
		return true, err
	}
	return true, nil
}

// Users returns the team's full membership roster.
func (s *TeamScope) Users(ctx context.Context) ([]extchannel.ChannelUser, error) {
	raw, err := listRetry[user](ctx, s.p, graph.V1, "/groups/"+s.id+"/members")
	if err != nil {
		return nil, err
	}
	out := make([]extchannel.ChannelUser, 0, len(raw))
	for _, u := range raw {
		out = append(out, toChannelUser(u))
	}
	return out, nil
}

// AddMember adds the named directory user to the team's underlying group.
func (s *TeamScope) AddMember(ctx context.Context, userName string) (*extchannel.ChannelUser, error) {
	u, err := s.p.userByFullName(ctx, userName)
	if err != nil {
		return nil, err
	}

	ref := memberRef(s.p.client.URL(graph.V1, "/users/"+u.ID))
	if _, err := s.p.client.Post(ctx, graph.Beta, "/groups/"+s.id+"/members/$ref", ref); err != nil {
		return nil, err
	}

	cu := toChannelUser(*u)
	return &cu, nil
}

// RemoveMember removes the named user from the team's underlying group.
func (s *TeamScope) RemoveMember(ctx context.Context, userName string) error {
	u, err := s.p.userByFullName(ctx, userName)
	if err != nil {
		return err
	}
	return s.p.client.Delete(ctx, graph.V1, "/groups/"+s.id+"/members/"+u.ID+"/$ref")
}

// PromoteOwner grants the named user ownership of the team's group.
func (s *TeamScope) PromoteOwner(ctx context.Context, userName string) error {
	u, err := s.p.userByFullName(ctx, userName)
	if err != nil {
		return err
	}
	ref := memberRef(s.p.client.URL(graph.V1, "/users/"+u.ID))
	_, err = s.p.client.Post(ctx, graph.Beta, "/groups/"+s.id+"/owners/$ref", ref)
	return err
}

// Messages fetches the named channel's history. When since is non-nil the
// result is filtered client-side to entries with a timestamp at or after
// it, preserving server order. No server-side time filtering is used.
func (s *TeamScope) Messages(ctx context.Context, channelName string, since *time.Time) ([]extchannel.ChannelMessage, error) {
	c, err := s.ChannelByName(ctx, channelName)
	if err != nil {
		return nil, err
	}

	raw, err := listRetry[chatMessage](ctx, s.p, graph.Beta, "/teams/"+s.id+"/channels/"+c.ID+"/messages")
	if err != nil {
		return nil, err
	}

	out := make([]extchannel.ChannelMessage, 0, len(raw))
	for _, m := range raw {
		msg := toChannelMessage(m, c.ID)
		if since != nil && msg.Time.Before(*since) {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// Send posts text to the named channel.
func (s *TeamScope) Send(ctx context.Context, channelName, text string) error {
	c, err := s.ChannelByName(ctx, channelName)
	if err != nil {
		return err
	}
	_, err = s.p.client.Post(ctx, graph.Beta, "/teams/"+s.id+"/channels/"+c.ID+"/messages", newMessageBody(text))
	return err
}

// UpdateGuestSettings patches the team's guest permission flags.
func (s *TeamScope) UpdateGuestSettings(ctx context.Context, allowCreateUpdateChannels, allowDeleteChannels bool) error {
	body := teamSettings{GuestSettings: &guestSettings{
		AllowCreateUpdateChannels: allowCreateUpdateChannels,
		AllowDeleteChannels:       allowDeleteChannels,
	}}
	return s.p.client.Patch(ctx, graph.Beta, "/teams/"+s.id, body)
}
