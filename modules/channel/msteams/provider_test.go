package msteams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flemzord/teamgate/internal/graph"
	"github.com/flemzord/teamgate/pkg/extchannel"
)

func TestConnectSelectsFirstTeam(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	p := newTestProvider(f)

	connect(t, p)

	st := p.Status()
	if !st.Connected {
		t.Error("Status().Connected = false after Connect")
	}
	if st.TeamID != "T1" {
		t.Errorf("Status().TeamID = %q, want %q (first joined team)", st.TeamID, "T1")
	}
}

func TestConnectHonorsDefaultTeam(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	p := newTestProvider(f)
	p.DefaultTeam = "Operations"

	connect(t, p)

	if got := p.Status().TeamID; got != "T2" {
		t.Errorf("Status().TeamID = %q, want %q", got, "T2")
	}
}

func TestConnectDefaultTeamMissing(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	p := newTestProvider(f)
	p.DefaultTeam = "No Such Team"

	err := p.Connect(context.Background())
	if !extchannel.IsNotFound(err) {
		t.Fatalf("Connect() error = %v, want NotFoundError", err)
	}

	// The failed Connect must not leave a half-established session behind.
	if p.Status().Connected {
		t.Error("Status().Connected = true after failed Connect")
	}
	if _, err := p.GetAllUsers(context.Background(), ""); !errors.Is(err, extchannel.ErrNotConnected) {
		t.Errorf("GetAllUsers() after failed Connect: error = %v, want ErrNotConnected", err)
	}
	if _, err := p.MyID(); !errors.Is(err, extchannel.ErrNotConnected) {
		t.Errorf("MyID() after failed Connect: error = %v, want ErrNotConnected", err)
	}
}

func TestConnectWithNoTeams(t *testing.T) {
	f := newFakeGraph(t)
	f.object("GET /v1.0/me", user{ID: "U1", DisplayName: "Test Caller"})
	f.list("GET /v1.0/me/joinedTeams", []team{})
	p := newTestProvider(f)

	connect(t, p)

	if !p.Status().Connected {
		t.Error("zero joined teams should still connect")
	}
	if _, err := p.GetChannels(context.Background()); !errors.Is(err, extchannel.ErrNoTeam) {
		t.Errorf("GetChannels() error = %v, want ErrNoTeam", err)
	}
}

func TestOperationsRequireConnect(t *testing.T) {
	f := newFakeGraph(t)
	p := newTestProvider(f)
	ctx := context.Background()

	ops := map[string]func() error{
		"CreateChannel": func() error { _, err := p.CreateChannel(ctx, "x", nil); return err },
		"CloseChannel":  func() error { _, err := p.CloseChannel(ctx, "x"); return err },
		"GetAllUsers":   func() error { _, err := p.GetAllUsers(ctx, ""); return err },
		"GetMessages":   func() error { _, err := p.GetMessages(ctx, "x", nil); return err },
		"SendMessage":   func() error { return p.SendMessage(ctx, "x", "hi") },
		"UseTeam":       func() error { _, err := p.UseTeam(ctx, "x"); return err },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, extchannel.ErrNotConnected) {
			t.Errorf("%s before Connect: error = %v, want ErrNotConnected", name, err)
		}
	}
	if f.count("") != 0 {
		t.Errorf("disconnected operations issued %d requests, want 0", f.count(""))
	}
}

// channelStore backs a stateful fake: POST appends, GET lists, DELETE
// removes. Created channels get sequential ids starting at C9.
type channelStore struct {
	mu       sync.Mutex
	channels []channel
	nextID   int
}

func newChannelStore(seed ...channel) *channelStore {
	return &channelStore{channels: seed, nextID: 9}
}

func (cs *channelStore) install(f *fakeGraph, teamID string) {
	base := "/beta/teams/" + teamID + "/channels"
	f.handle("GET "+base, func(w http.ResponseWriter, _ *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		writeJSON(f.t, w, map[string]any{"value": cs.channels})
	})
	f.handle("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		var req newChannelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cs.mu.Lock()
		cs.channels = append(cs.channels, channel{
			ID:          fmt.Sprintf("C%d", cs.nextID),
			DisplayName: req.DisplayName,
			Description: req.Description,
		})
		cs.nextID++
		cs.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	f.handle("DELETE "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		cs.mu.Lock()
		for i, c := range cs.channels {
			if c.ID == id {
				cs.channels = append(cs.channels[:i], cs.channels[i+1:]...)
				break
			}
		}
		cs.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestCreateChannelThenListByDisplayName(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore().install(f, "T1")
	p := newTestProvider(f)
	connect(t, p)

	res, err := p.CreateChannel(context.Background(), "General2", nil)
	if err != nil {
		t.Fatalf("CreateChannel() error: %v", err)
	}
	if res.Channel == nil {
		t.Fatal("CreateChannel() result has nil Channel")
	}
	if res.Channel.ID != "C9" {
		t.Errorf("Channel.ID = %q, want %q", res.Channel.ID, "C9")
	}
	if !res.AllAdded() {
		t.Error("AllAdded() = false with zero members requested")
	}
}

func TestCreateChannelDuplicateNamesAllowed(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore().install(f, "T1")
	p := newTestProvider(f)
	connect(t, p)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := p.CreateChannel(ctx, "Standup", nil); err != nil {
			t.Fatalf("CreateChannel() #%d error: %v", i+1, err)
		}
	}

	channels, err := p.GetChannels(ctx)
	if err != nil {
		t.Fatalf("GetChannels() error: %v", err)
	}
	matches := 0
	for _, c := range channels {
		if c.DisplayName == "Standup" {
			matches++
		}
	}
	if matches != 2 {
		t.Errorf("listing has %d channels named Standup, want 2 (create must not deduplicate)", matches)
	}
}

func TestCreateChannelNotListedAfterCreate(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	// Creation is accepted but the listing never shows the new channel,
	// as happens under consistency lag.
	f.handle("POST /beta/teams/T1/channels", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	f.list("GET /beta/teams/T1/channels", []channel{})
	p := newTestProvider(f)
	connect(t, p)

	res, err := p.CreateChannel(context.Background(), "Ghost", nil)
	if !errors.Is(err, extchannel.ErrChannelNotFoundAfterCreate) {
		t.Fatalf("CreateChannel() error = %v, want ErrChannelNotFoundAfterCreate", err)
	}
	if res.Channel != nil {
		t.Error("result Channel should be nil when the listing missed it")
	}
	if res.AllAdded() {
		t.Error("AllAdded() must be false when the channel never appeared")
	}
}

func TestCreateChannelMemberLoopContinuesOnFailure(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore().install(f, "T1")
	f.list("GET /v1.0/users", []user{
		{ID: "U2", DisplayName: "Ada Lovelace"},
		{ID: "U3", DisplayName: "Alan Turing"},
	})
	f.handle("POST /beta/groups/T1/members/$ref", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	p := newTestProvider(f)
	connect(t, p)

	res, err := p.CreateChannel(context.Background(), "War Room",
		[]string{"Ada Lovelace", "Nobody Here", "Alan Turing"})
	if err != nil {
		t.Fatalf("CreateChannel() error: %v", err)
	}

	if len(res.Members) != 3 {
		t.Fatalf("len(Members) = %d, want 3 (one entry per requested member)", len(res.Members))
	}
	if !res.Members[0].OK() || !res.Members[2].OK() {
		t.Error("members before and after the failing one should still be added")
	}
	if res.Members[1].OK() {
		t.Error("unknown member reported as added")
	}
	if !extchannel.IsNotFound(res.Members[1].Err) {
		t.Errorf("Members[1].Err = %v, want NotFoundError", res.Members[1].Err)
	}
	if res.AllAdded() {
		t.Error("AllAdded() = true despite one member failing")
	}
	if got := f.count("POST /beta/groups/T1/members/$ref"); got != 2 {
		t.Errorf("member-add POSTs = %d, want 2", got)
	}
}

func TestCloseChannelMissingIsBenignNoOp(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore(channel{ID: "C1", DisplayName: "General"}).install(f, "T1")
	p := newTestProvider(f)
	connect(t, p)

	found, err := p.CloseChannel(context.Background(), "No Such Channel")
	if err != nil {
		t.Fatalf("CloseChannel() error: %v", err)
	}
	if found {
		t.Error("found = true for a missing channel")
	}
	if got := f.count("DELETE "); got != 0 {
		t.Errorf("DELETE requests = %d, want 0 for a missing channel", got)
	}
}

func TestCloseChannelDeletesByResolvedID(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore(channel{ID: "C1", DisplayName: "General"}).install(f, "T1")
	p := newTestProvider(f)
	connect(t, p)

	found, err := p.CloseChannel(context.Background(), "General")
	if err != nil {
		t.Fatalf("CloseChannel() error: %v", err)
	}
	if !found {
		t.Error("found = false for an existing channel")
	}
	if got := f.count("DELETE /beta/teams/T1/channels/C1"); got != 1 {
		t.Errorf("DELETE /beta/teams/T1/channels/C1 count = %d, want 1", got)
	}
}

func TestGetAllUsersPrefixFilter(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	f.list("GET /v1.0/users", []user{
		{ID: "U2", DisplayName: "Ada Lovelace"},
		{ID: "U3", DisplayName: "Alan Turing"},
		{ID: "U4", DisplayName: "Grace Hopper"},
	})
	p := newTestProvider(f)
	connect(t, p)

	users, err := p.GetAllUsers(context.Background(), "A")
	if err != nil {
		t.Fatalf("GetAllUsers() error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	for _, u := range users {
		if u.Picture != "" {
			t.Errorf("user %s Picture = %q, want empty", u.FullName, u.Picture)
		}
	}
}

func TestGetChannelUsersReturnsTeamRoster(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore(channel{ID: "C1", DisplayName: "General"}).install(f, "T1")
	f.list("GET /v1.0/groups/T1/members", []user{
		{ID: "U2", DisplayName: "Ada Lovelace"},
		{ID: "U3", DisplayName: "Alan Turing"},
	})
	p := newTestProvider(f)
	connect(t, p)

	users, err := p.GetChannelUsers(context.Background(), "General")
	if err != nil {
		t.Fatalf("GetChannelUsers() error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d, want the full team roster of 2", len(users))
	}

	_, err = p.GetChannelUsers(context.Background(), "No Such Channel")
	if !extchannel.IsNotFound(err) {
		t.Errorf("GetChannelUsers(missing) error = %v, want NotFoundError", err)
	}
}

func TestAddUserToChannelJoinsOwningTeam(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	f.list("GET /v1.0/users", []user{{ID: "U7", DisplayName: "Grace Hopper"}})
	f.handle("POST /beta/groups/T2/members/$ref", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	p := newTestProvider(f)
	connect(t, p)

	u, err := p.AddUserToChannel(context.Background(), "Operations", "Grace Hopper")
	if err != nil {
		t.Fatalf("AddUserToChannel() error: %v", err)
	}
	if u.ID != "U7" {
		t.Errorf("user ID = %q, want %q", u.ID, "U7")
	}
	if got := f.count("POST /beta/groups/T2/members/$ref"); got != 1 {
		t.Errorf("member-add POSTs against T2 = %d, want 1", got)
	}

	ref := f.body("POST /beta/groups/T2/members/$ref")
	var payload refPayload
	if err := json.Unmarshal([]byte(ref), &payload); err != nil {
		t.Fatalf("decode $ref body: %v", err)
	}
	if want := f.srv.URL + "/v1.0/users/U7"; payload.ODataID != want {
		t.Errorf("@odata.id = %q, want %q", payload.ODataID, want)
	}
}

func TestAddUserToChannelUnknownTeam(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	p := newTestProvider(f)
	connect(t, p)

	_, err := p.AddUserToChannel(context.Background(), "No Such Team", "Grace Hopper")
	if !extchannel.IsNotFound(err) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestRemoveUserFromChannel(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	f.list("GET /v1.0/users", []user{{ID: "U7", DisplayName: "Grace Hopper"}})
	f.handle("DELETE /v1.0/groups/T1/members/U7/$ref", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	p := newTestProvider(f)
	connect(t, p)

	if err := p.RemoveUserFromChannel(context.Background(), "Engineering", "Grace Hopper"); err != nil {
		t.Fatalf("RemoveUserFromChannel() error: %v", err)
	}
	if got := f.count("DELETE /v1.0/groups/T1/members/U7/$ref"); got != 1 {
		t.Errorf("member-remove DELETEs = %d, want 1", got)
	}
}

func messageFixture(f *fakeGraph) []chatMessage {
	msgs := []chatMessage{
		{
			ID:              "1",
			CreatedDateTime: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			From:            &messageFrom{User: &user{ID: "U2", DisplayName: "Ada Lovelace"}},
			Body:            itemBody{Content: "morning"},
		},
		{
			ID:              "2",
			CreatedDateTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			From:            nil, // system message
			Body:            itemBody{Content: "Ada Lovelace joined"},
		},
		{
			ID:              "3",
			CreatedDateTime: time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
			From:            &messageFrom{User: &user{ID: "U3", DisplayName: "Alan Turing"}},
			Body:            itemBody{Content: "standup in 5"},
		},
	}
	f.list("GET /beta/teams/T1/channels/C1/messages", msgs)
	return msgs
}

func TestGetMessagesSinceIsOrderPreservingSubset(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore(channel{ID: "C1", DisplayName: "General"}).install(f, "T1")
	messageFixture(f)
	p := newTestProvider(f)
	connect(t, p)
	ctx := context.Background()

	full, err := p.GetMessages(ctx, "General", nil)
	if err != nil {
		t.Fatalf("GetMessages() error: %v", err)
	}
	if len(full) != 3 {
		t.Fatalf("len(full) = %d, want 3", len(full))
	}

	since := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	filtered, err := p.GetMessages(ctx, "General", &since)
	if err != nil {
		t.Fatalf("GetMessages(since) error: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("len(filtered) = %d, want 2 (timestamp >= since, inclusive)", len(filtered))
	}
	if filtered[0].Text != full[1].Text || filtered[1].Text != full[2].Text {
		t.Error("filtered result does not preserve the full listing's relative order")
	}
	for _, m := range filtered {
		if m.Time.Before(since) {
			t.Errorf("message at %s predates since=%s", m.Time, since)
		}
	}
}

func TestGetMessagesToleratesMissingAuthor(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore(channel{ID: "C1", DisplayName: "General"}).install(f, "T1")
	messageFixture(f)
	p := newTestProvider(f)
	connect(t, p)

	msgs, err := p.GetMessages(context.Background(), "General", nil)
	if err != nil {
		t.Fatalf("GetMessages() error: %v", err)
	}
	system := msgs[1]
	if system.UserID != "" || system.Username != "" {
		t.Errorf("system message author = (%q, %q), want empty", system.UserID, system.Username)
	}
	if system.Text == "" {
		t.Error("system message text should survive mapping")
	}
}

func TestSendMessageUnknownChannel(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore().install(f, "T1")
	p := newTestProvider(f)
	connect(t, p)

	err := p.SendMessage(context.Background(), "No Such Channel", "hi")
	if !extchannel.IsNotFound(err) {
		t.Fatalf("SendMessage() error = %v, want NotFoundError", err)
	}
}

// TestConnectCreateSendScenario drives the connect → create → send flow
// end to end against the stateful fake.
func TestConnectCreateSendScenario(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	newChannelStore().install(f, "T1")
	f.handle("POST /beta/teams/T1/channels/{id}/messages", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	p := newTestProvider(f)
	ctx := context.Background()

	connect(t, p)
	if got := p.Status().TeamID; got != "T1" {
		t.Fatalf("current team = %q, want %q", got, "T1")
	}

	res, err := p.CreateChannel(ctx, "General2", nil)
	if err != nil {
		t.Fatalf("CreateChannel() error: %v", err)
	}
	if !res.AllAdded() {
		t.Fatal("CreateChannel() did not fully succeed")
	}

	if err := p.SendMessage(ctx, "General2", "hi"); err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	key := "POST /beta/teams/T1/channels/C9/messages"
	if got := f.count(key); got != 1 {
		t.Fatalf("%s count = %d, want 1", key, got)
	}

	var req newMessageRequest
	if err := json.Unmarshal([]byte(f.body(key)), &req); err != nil {
		t.Fatalf("decode message body: %v", err)
	}
	if req.Body.Content != "hi" {
		t.Errorf("posted content = %q, want %q", req.Body.Content, "hi")
	}
}

func TestUseTeamReturnsIndependentScope(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	p := newTestProvider(f)
	connect(t, p)

	scope, err := p.UseTeam(context.Background(), "Operations")
	if err != nil {
		t.Fatalf("UseTeam() error: %v", err)
	}
	if scope.ID() != "T2" {
		t.Errorf("scope.ID() = %q, want %q", scope.ID(), "T2")
	}
	if got := p.Status().TeamID; got != "T1" {
		t.Errorf("UseTeam mutated the provider's current team: %q", got)
	}
}

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate() { c.calls.Add(1) }

func TestAuthFailureRefreshesTokenAndRetriesOnce(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)

	var hits atomic.Int32
	f.handle("GET /v1.0/users", func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, `{"error":"InvalidAuthenticationToken"}`, http.StatusUnauthorized)
			return
		}
		writeJSON(f.t, w, map[string]any{"value": []user{{ID: "U2", DisplayName: "Ada Lovelace"}}})
	})

	inv := &countingInvalidator{}
	client := graph.NewClient(staticTokens("test-token"), f.srv.URL)
	p := NewProvider(client, inv, discardLogger())
	connect(t, p)

	users, err := p.GetAllUsers(context.Background(), "")
	if err != nil {
		t.Fatalf("GetAllUsers() error after retry: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}
	if n := inv.calls.Load(); n != 1 {
		t.Errorf("Invalidate calls = %d, want 1", n)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("listing requests = %d, want 2 (original + one retry)", n)
	}
}

func TestAuthFailureOnRetryPropagates(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	f.handle("GET /v1.0/users", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	inv := &countingInvalidator{}
	client := graph.NewClient(staticTokens("test-token"), f.srv.URL)
	p := NewProvider(client, inv, discardLogger())
	connect(t, p)

	_, err := p.GetAllUsers(context.Background(), "")
	var apiErr *graph.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("error = %v, want 401 APIError", err)
	}
	if n := inv.calls.Load(); n != 1 {
		t.Errorf("Invalidate calls = %d, want exactly 1 (single retry per operation)", n)
	}
}

func TestCreateTeamCompositeFullSuccess(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	f.handle("POST /v1.0/groups", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, group{ID: "G1", DisplayName: "Skunkworks"})
	})
	f.handle("POST /beta/groups/G1/members/$ref", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	f.handle("PUT /beta/groups/G1/team", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	p := newTestProvider(f)
	connect(t, p)

	res, err := p.CreateTeam(context.Background(), "Skunkworks", "skunk", "secret projects")
	if err != nil {
		t.Fatalf("CreateTeam() error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("result not OK: failed=%s err=%v", res.Failed, res.Err)
	}
	if res.GroupID != "G1" {
		t.Errorf("GroupID = %q, want %q", res.GroupID, "G1")
	}
	want := []extchannel.CreateTeamStep{
		extchannel.StepCreateGroup,
		extchannel.StepAddSelf,
		extchannel.StepEnableTeam,
	}
	if len(res.Completed) != len(want) {
		t.Fatalf("Completed = %v, want %v", res.Completed, want)
	}
	for i := range want {
		if res.Completed[i] != want[i] {
			t.Errorf("Completed[%d] = %s, want %s", i, res.Completed[i], want[i])
		}
	}

	var req newGroupRequest
	if err := json.Unmarshal([]byte(f.body("POST /v1.0/groups")), &req); err != nil {
		t.Fatalf("decode group body: %v", err)
	}
	if req.MailNickname != "skunk" || req.Visibility != "Private" {
		t.Errorf("group request = %+v, want Private group with the given mail nickname", req)
	}
}

func TestCreateTeamPromotionFailureKeepsCommittedSteps(t *testing.T) {
	f := newFakeGraph(t)
	identityFixture(f)
	f.handle("POST /v1.0/groups", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, group{ID: "G1"})
	})
	f.handle("POST /beta/groups/G1/members/$ref", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	f.handle("PUT /beta/groups/G1/team", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "promotion rejected", http.StatusBadRequest)
	})
	p := newTestProvider(f)
	connect(t, p)

	res, err := p.CreateTeam(context.Background(), "Skunkworks", "", "")
	if err == nil {
		t.Fatal("expected error when promotion fails")
	}
	if res.OK() {
		t.Error("result reports OK despite promotion failure")
	}
	if res.Failed != extchannel.StepEnableTeam {
		t.Errorf("Failed = %s, want %s", res.Failed, extchannel.StepEnableTeam)
	}
	if res.GroupID != "G1" {
		t.Error("GroupID must stay set so callers can clean up the orphaned group")
	}
	if len(res.Completed) != 2 {
		t.Errorf("Completed = %v, want the two committed steps", res.Completed)
	}
	// No rollback: the group must not be deleted.
	if got := f.count("DELETE "); got != 0 {
		t.Errorf("rollback DELETEs = %d, want 0", got)
	}
}
