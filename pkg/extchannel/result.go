package extchannel

// MemberResult records the outcome of adding one member during a composite
// operation. Failures do not abort the loop, so callers get one entry per
// requested member.
type MemberResult struct {
	Name string       `json:"name"`
	User *ChannelUser `json:"user,omitempty"`
	Err  error        `json:"-"`
}

// OK reports whether the member was added.
func (r MemberResult) OK() bool { return r.Err == nil && r.User != nil }

// CreateChannelResult is the outcome of a create-channel composite:
// POST create, list-by-display-name, then a sequential member-add loop.
// None of the steps roll back on failure.
type CreateChannelResult struct {
	// Channel is the created channel as seen in the post-create listing.
	// Nil when the listing did not contain the new display name.
	Channel *Channel `json:"channel,omitempty"`

	// Members holds one entry per requested member, in request order.
	Members []MemberResult `json:"members,omitempty"`
}

// AllAdded is the aggregate boolean AND of per-member success. It is also
// false when the channel itself never appeared in the listing.
func (r CreateChannelResult) AllAdded() bool {
	if r.Channel == nil {
		return false
	}
	for _, m := range r.Members {
		if !m.OK() {
			return false
		}
	}
	return true
}

// CreateTeamStep names one step of the create-team composite.
type CreateTeamStep string

// Steps of CreateTeam, in execution order.
const (
	StepCreateGroup CreateTeamStep = "create_group"
	StepAddSelf     CreateTeamStep = "add_self"
	StepEnableTeam  CreateTeamStep = "enable_team"
)

// CreateTeamResult records how far the create-group → add-self →
// promote-to-team sequence got. Earlier steps are not rolled back when a
// later one fails: a group created by a failed run keeps existing, and
// callers needing cleanup can find it through GroupID.
type CreateTeamResult struct {
	// GroupID is set as soon as the directory group exists.
	GroupID string `json:"group_id,omitempty"`

	// Completed lists the steps that committed, in order.
	Completed []CreateTeamStep `json:"completed"`

	// Failed names the step that failed, empty on full success.
	Failed CreateTeamStep `json:"failed,omitempty"`

	// Err is the failure of the Failed step.
	Err error `json:"-"`
}

// OK reports whether every step committed.
func (r CreateTeamResult) OK() bool { return r.Failed == "" && r.Err == nil }
