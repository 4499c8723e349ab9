package msteams

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/flemzord/teamgate/internal/graph"
	"github.com/flemzord/teamgate/internal/provider"
	"github.com/flemzord/teamgate/pkg/extchannel"
)

// Compile-time interface guards.
var (
	_ provider.Provider = (*Provider)(nil)
	_ provider.Reporter = (*Provider)(nil)
)

// TokenInvalidator marks a cached credential stale after the remote API
// rejects it. Implemented by the token provider.
type TokenInvalidator interface {
	Invalidate()
}

// Provider is the Microsoft Teams implementation of provider.Provider.
//
// A Provider holds session state (connected flag, caller identity, current
// team scope) and is meant for one logical caller at a time; it is not
// safe for concurrent mutation. Read-only operations after Connect are
// safe to share.
type Provider struct {
	client *graph.Client
	tokens TokenInvalidator
	logger *slog.Logger

	// DefaultTeam, when non-empty, pins Connect to a named team instead of
	// the first entry of the joined-teams listing. Set before Connect.
	DefaultTeam string

	connected bool
	myID      string
	current   *TeamScope
}

// NewProvider creates a Provider on top of the given Graph client. tokens
// may be nil, disabling the refresh-and-retry behavior on 401s.
func NewProvider(client *graph.Client, tokens TokenInvalidator, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{client: client, tokens: tokens, logger: logger}
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "msteams" }

// Connect implements provider.Provider. It resolves the caller's identity
// and selects a default team from the joined-teams listing. A directory
// with zero joined teams still connects; channel-scoped operations then
// fail with extchannel.ErrNoTeam until UseTeam succeeds.
func (p *Provider) Connect(ctx context.Context) error {
	me, err := getRetry[user](ctx, p, graph.V1, "/me")
	if err != nil {
		return fmt.Errorf("msteams: resolve own identity: %w", err)
	}

	teams, err := listRetry[team](ctx, p, graph.V1, "/me/joinedTeams")
	if err != nil {
		return fmt.Errorf("msteams: list joined teams: %w", err)
	}

	selected, ok := selectTeam(teams, p.DefaultTeam)
	if !ok && p.DefaultTeam != "" {
		// Leave the provider disconnected: a failed Connect must not
		// expose a half-established session.
		return &extchannel.NotFoundError{Kind: "team", Key: p.DefaultTeam}
	}

	p.myID = me.ID
	p.connected = true
	p.current = nil

	if !ok {
		p.logger.Warn("connected with no joined teams; channel operations unavailable until UseTeam")
		return nil
	}

	p.current = &TeamScope{p: p, id: selected.ID, name: selected.DisplayName}
	p.logger.Info("connected",
		"user_id", me.ID,
		"team_id", selected.ID,
		"team", selected.DisplayName,
	)
	return nil
}

// selectTeam picks the named team, or the first one when name is empty.
func selectTeam(teams []team, name string) (team, bool) {
	if name == "" {
		if len(teams) == 0 {
			return team{}, false
		}
		return teams[0], true
	}
	for _, t := range teams {
		if t.DisplayName == name {
			return t, true
		}
	}
	return team{}, false
}

// MyID returns the connected caller's directory id.
func (p *Provider) MyID() (string, error) {
	if err := p.requireConnected(); err != nil {
		return "", err
	}
	return p.myID, nil
}

// Teams lists the caller's joined teams.
func (p *Provider) Teams(ctx context.Context) ([]extchannel.Team, error) {
	if err := p.requireConnected(); err != nil {
		return nil, err
	}
	raw, err := listRetry[team](ctx, p, graph.V1, "/me/joinedTeams")
	if err != nil {
		return nil, err
	}
	out := make([]extchannel.Team, 0, len(raw))
	for _, t := range raw {
		out = append(out, toTeam(t))
	}
	return out, nil
}

// UseTeam resolves a joined team by display name and returns a scope bound
// to it. The provider's own current scope is left untouched, so callers
// can work across teams without disturbing each other.
func (p *Provider) UseTeam(ctx context.Context, name string) (*TeamScope, error) {
	if err := p.requireConnected(); err != nil {
		return nil, err
	}
	return p.teamByName(ctx, name)
}

// Status implements provider.Reporter.
func (p *Provider) Status() provider.Status {
	s := provider.Status{Name: p.Name(), Connected: p.connected}
	if p.current != nil {
		s.TeamID = p.current.id
	}
	return s
}

// CreateChannel implements provider.Provider.
func (p *Provider) CreateChannel(ctx context.Context, name string, memberNames []string) (extchannel.CreateChannelResult, error) {
	s, err := p.scope()
	if err != nil {
		return extchannel.CreateChannelResult{}, err
	}
	return s.CreateChannel(ctx, name, "", memberNames)
}

// CloseChannel implements provider.Provider.
func (p *Provider) CloseChannel(ctx context.Context, name string) (bool, error) {
	s, err := p.scope()
	if err != nil {
		return false, err
	}
	return s.CloseChannel(ctx, name)
}

// GetChannels lists the current team's channels.
func (p *Provider) GetChannels(ctx context.Context) ([]extchannel.Channel, error) {
	s, err := p.scope()
	if err != nil {
		return nil, err
	}
	return s.Channels(ctx)
}

// GetAllUsers implements provider.Provider. The directory listing is
// paginated server-side; the prefix filter on full names is applied
// client-side.
func (p *Provider) GetAllUsers(ctx context.Context, prefix string) ([]extchannel.ChannelUser, error) {
	if err := p.requireConnected(); err != nil {
		return nil, err
	}

	raw, err := listRetry[user](ctx, p, graph.V1, "/users")
	if err != nil {
		return nil, err
	}

	out := make([]extchannel.ChannelUser, 0, len(raw))
	for _, u := range raw {
		if prefix != "" && !strings.HasPrefix(u.DisplayName, prefix) {
			continue
		}
		out = append(out, toChannelUser(u))
	}
	return out, nil
}

// GetChannelUsers implements provider.Provider. The platform exposes no
// per-channel membership, so after verifying the channel exists this
// returns the owning team's full roster.
func (p *Provider) GetChannelUsers(ctx context.Context, name string) ([]extchannel.ChannelUser, error) {
	s, err := p.scope()
	if err != nil {
		return nil, err
	}
	if _, err := s.ChannelByName(ctx, name); err != nil {
		return nil, err
	}
	return s.Users(ctx)
}

// AddUserToChannel implements provider.Provider. Channel membership is
// team membership on this platform: the user joins the named team's
// underlying group.
func (p *Provider) AddUserToChannel(ctx context.Context, teamName, userName string) (*extchannel.ChannelUser, error) {
	if err := p.requireConnected(); err != nil {
		return nil, err
	}
	s, err := p.teamByName(ctx, teamName)
	if err != nil {
		return nil, err
	}
	return s.AddMember(ctx, userName)
}

// RemoveUserFromChannel implements provider.Provider.
func (p *Provider) RemoveUserFromChannel(ctx context.Context, teamName, userName string) error {
	if err := p.requireConnected(); err != nil {
		return err
	}
	s, err := p.teamByName(ctx, teamName)
	if err != nil {
		return err
	}
	return s.RemoveMember(ctx, userName)
}

// GetMessages implements provider.Provider.
func (p *Provider) GetMessages(ctx context.Context, channelName string, since *time.Time) ([]extchannel.ChannelMessage, error) {
	s, err := p.scope()
	if err != nil {
		return nil, err
	}
	return s.Messages(ctx, channelName, since)
}

// SendMessage implements provider.Provider.
func (p *Provider) SendMessage(ctx context.Context, channelName, text string) error {
	s, err := p.scope()
	if err != nil {
		return err
	}
	return s.Send(ctx, channelName, text)
}

// CreateTeam runs the three-step composite: create the directory group,
// add the caller as a member, promote the group to a team. An empty
// mailNickname falls back to the display name with spaces stripped.
// Committed steps are not rolled back when a later one fails; the result
// records how far the sequence got and the returned error (if any) equals
// the result's.
func (p *Provider) CreateTeam(ctx context.Context, name, mailNickname, description string) (extchannel.CreateTeamResult, error) {
	var res extchannel.CreateTeamResult
	if err := p.requireConnected(); err != nil {
		res.Failed, res.Err = extchannel.StepCreateGroup, err
		return res, err
	}

	g, err := graph.PostJSON[group](ctx, p.client, graph.V1, "/groups", newGroupBody(name, mailNickname, description))
	if err != nil {
		res.Failed, res.Err = extchannel.StepCreateGroup, err
		return res, err
	}
	res.GroupID = g.ID
	res.Completed = append(res.Completed, extchannel.StepCreateGroup)

	selfRef := memberRef(p.client.URL(graph.V1, "/users/"+p.myID))
	if _, err := p.client.Post(ctx, graph.Beta, "/groups/"+g.ID+"/members/$ref", selfRef); err != nil {
		res.Failed, res.Err = extchannel.StepAddSelf, err
		return res, err
	}
	res.Completed = append(res.Completed, extchannel.StepAddSelf)

	settings := teamSettings{GuestSettings: &guestSettings{
		AllowCreateUpdateChannels: false,
		AllowDeleteChannels:       false,
	}}
	if err := p.client.Put(ctx, graph.Beta, "/groups/"+g.ID+"/team", settings); err != nil {
		res.Failed, res.Err = extchannel.StepEnableTeam, err
		return res, err
	}
	res.Completed = append(res.Completed, extchannel.StepEnableTeam)

	p.logger.Info("team created", "group_id", g.ID, "team", name)
	return res, nil
}

// requireConnected gates every operation other than Connect and Name.
func (p *Provider) requireConnected() error {
	if !p.connected {
		return extchannel.ErrNotConnected
	}
	return nil
}

// scope returns the current team scope for channel-addressed operations.
func (p *Provider) scope() (*TeamScope, error) {
	if err := p.requireConnected(); err != nil {
		return nil, err
	}
	if p.current == nil {
		return nil, extchannel.ErrNoTeam
	}
	return p.current, nil
}

// getRetry fetches a single object, refreshing the token and retrying once
// when the remote rejects it. Safe only because GETs are idempotent.
func getRetry[T any](ctx context.Context, p *Provider, v graph.Version, path string) (*T, error) {
	out, err := graph.Get[T](ctx, p.client, v, path)
	if err != nil && graph.IsAuthFailure(err) && p.tokens != nil {
		p.logger.Debug("token rejected, refreshing", "path", path)
		p.tokens.Invalidate()
		return graph.Get[T](ctx, p.client, v, path)
	}
	return out, err
}

// listRetry is getRetry for paginated collections.
func listRetry[T any](ctx context.Context, p *Provider, v graph.Version, path string) ([]T, error) {
	out, err := graph.GetList[T](ctx, p.client, v, path)
	if err != nil && graph.IsAuthFailure(err) && p.tokens != nil {
		p.logger.Debug("token rejected, refreshing", "path", path)
		p.tokens.Invalidate()
		return graph.GetList[T](ctx, p.client, v, path)
	}
	return out, err
}
