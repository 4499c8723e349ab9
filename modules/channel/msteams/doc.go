// Package msteams implements the Microsoft Teams channel provider for
// teamgate.
//
// It bridges the Graph REST surface to teamgate's platform-agnostic channel
// model, supporting:
//
//   - Session connect with default-team selection from the joined-teams listing
//   - Channel create/close, message fetch/post, directory and roster listings
//   - Team membership management (the platform has no per-channel membership;
//     adding a user to a channel adds them to the owning team's group)
//   - Composite team creation: group create → self add → team promotion,
//     with per-step outcome reporting and no rollback
//   - Scoped team handles via UseTeam for callers working across teams
//
// The module registers itself as "channel.msteams" via init() and implements
// the full teamgate module lifecycle: Configure → Provision → Validate →
// Start → Stop. On Provision it publishes the provider under the
// "channel.provider" service name for the gateway, cron, and feed modules.
//
// REST traffic goes through internal/graph; tokens come from internal/token.
package msteams
