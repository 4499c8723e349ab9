package msteams

import (
	"context"

	"github.com/flemzord/teamgate/internal/graph"
	"github.com/flemzord/teamgate/pkg/extchannel"
)

// Name-based resolution against the directory. Display names are not
// unique on the platform; all lookups here take the first match in server
// order and report misses as *extchannel.NotFoundError.

// teamByName resolves one of the caller's joined teams by display name.
func (p *Provider) teamByName(ctx context.Context, name string) (*TeamScope, error) {
	teams, err := listRetry[team](ctx, p, graph.V1, "/me/joinedTeams")
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		if t.DisplayName == name {
			return &TeamScope{p: p, id: t.ID, name: t.DisplayName}, nil
		}
	}
	return nil, &extchannel.NotFoundError{Kind: "team", Key: name}
}

// userByFullName resolves a directory user by display name.
func (p *Provider) userByFullName(ctx context.Context, name string) (*user, error) {
	users, err := listRetry[user](ctx, p, graph.V1, "/users")
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].DisplayName == name {
			return &users[i], nil
		}
	}
	return nil, &extchannel.NotFoundError{Kind: "user", Key: name}
}
