package msteams

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flemzord/teamgate/internal/core"
	"github.com/flemzord/teamgate/internal/graph"
	"github.com/flemzord/teamgate/internal/syncbridge"
	"github.com/flemzord/teamgate/internal/token"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&MSTeams{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*MSTeams)(nil)
	_ core.Provisioner  = (*MSTeams)(nil)
	_ core.Validator    = (*MSTeams)(nil)
	_ core.Starter      = (*MSTeams)(nil)
	_ core.Stopper      = (*MSTeams)(nil)
)

// Service registry names for the provider's two surfaces.
const (
	// ProviderService is the context-aware provider.
	ProviderService = "channel.provider"

	// BlockingService is the no-context adapter for call sites that cannot
	// carry a context.Context.
	BlockingService = "channel.provider.blocking"
)

// MSTeams hosts the Teams channel provider inside the module lifecycle.
type MSTeams struct {
	config   Config
	logger   *slog.Logger
	tokens   *token.Provider
	provider *Provider
}

// ModuleInfo implements core.Module.
func (m *MSTeams) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.msteams",
		New: func() core.Module { return &MSTeams{} },
	}
}

// Configure implements core.Configurable.
func (m *MSTeams) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("msteams: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. It wires the token provider and
// the Graph client, then publishes the channel provider for the gateway,
// feed, and history modules to consume.
func (m *MSTeams) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	source := token.NewAADSource(token.AADConfig{
		TenantID:     m.config.TenantID,
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		Authority:    m.config.Authority,
		Scope:        m.config.Scope,
	}, nil)
	m.tokens = token.NewProvider(source, ctx.Logger)

	client := graph.NewClient(m.tokens, m.config.APIURL)
	m.provider = NewProvider(client, m.tokens, ctx.Logger)
	m.provider.DefaultTeam = m.config.DefaultTeam

	ctx.RegisterService(ProviderService, m.provider)
	ctx.RegisterService(BlockingService, syncbridge.NewBlocking(m.provider, m.config.ConnectTimeout))
	return nil
}

// Validate implements core.Validator.
func (m *MSTeams) Validate() error {
	return m.config.validate()
}

// Start implements core.Starter. It connects the session, which acquires
// the first token and selects the default team.
func (m *MSTeams) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.ConnectTimeout)
	defer cancel()

	if err := m.provider.Connect(ctx); err != nil {
		return fmt.Errorf("msteams: connect: %w", err)
	}
	return nil
}

// Stop implements core.Stopper. The session holds no remote resources, so
// shutdown only logs.
func (m *MSTeams) Stop(_ context.Context) error {
	m.logger.Info("msteams channel provider stopping")
	return nil
}

// Provider returns the provisioned provider. Nil before Provision.
func (m *MSTeams) Provider() *Provider { return m.provider }
