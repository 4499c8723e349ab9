package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/flemzord/teamgate/internal/core"
	"github.com/flemzord/teamgate/internal/provider"
	"github.com/flemzord/teamgate/pkg/extchannel"
	"github.com/go-chi/chi/v5"
)

// pathParam returns a chi URL parameter with percent-escapes decoded, so
// channel and user display names containing spaces route correctly.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// measure is a middleware recording request count and latency.
func (g *Gateway) measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		g.metrics.RecordRequest(time.Since(start))
	})
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps provider errors onto HTTP statuses: not-found lookups
// become 404, a disconnected session 503, everything else 500.
func (g *Gateway) writeError(w http.ResponseWriter, err error) {
	g.metrics.RecordError()
	switch {
	case extchannel.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, extchannel.ErrNotConnected), errors.Is(err, extchannel.ErrNoTeam):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// requireProvider answers 503 when no channel provider is registered.
func (g *Gateway) requireProvider(w http.ResponseWriter) bool {
	if g.prov == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "channel provider not available"})
		return false
	}
	return true
}

// handleListChannels serves GET /api/channels.
func (g *Gateway) handleListChannels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.requireProvider(w) {
			return
		}
		lister, ok := g.prov.(provider.ChannelLister)
		if !ok {
			writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "provider cannot enumerate channels"})
			return
		}
		channels, err := lister.GetChannels(r.Context())
		if err != nil {
			g.writeError(w, err)
			return
		}
		if channels == nil {
			channels = []extchannel.Channel{}
		}
		writeJSON(w, http.StatusOK, channels)
	}
}

// createChannelRequest is the POST /api/channels body.
type createChannelRequest struct {
	Name        string   `json:"name"`
	Members     []string `json:"members,omitempty"`
	Description string   `json:"description,omitempty"`
}

// handleCreateChannel serves POST /api/channels. The response carries the
// composite result, including per-member outcomes for partial success.
func (g *Gateway) handleCreateChannel() http.HandlerFunc {
	type memberJSON struct {
		Name  string                  `json:"name"`
		Added bool                    `json:"added"`
		User  *extchannel.ChannelUser `json:"user,omitempty"`
		Error string                  `json:"error,omitempty"`
	}
	type responseJSON struct {
		Channel  *extchannel.Channel `json:"channel,omitempty"`
		Members  []memberJSON        `json:"members,omitempty"`
		AllAdded bool                `json:"all_added"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !g.requireProvider(w) {
			return
		}
		var req createChannelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}

		res, err := g.prov.CreateChannel(r.Context(), req.Name, req.Members)
		if err != nil {
			g.writeError(w, err)
			return
		}

		resp := responseJSON{Channel: res.Channel, AllAdded: res.AllAdded()}
		for _, m := range res.Members {
			mj := memberJSON{Name: m.Name, Added: m.OK(), User: m.User}
			if m.Err != nil {
				mj.Error = m.Err.Error()
			}
			resp.Members = append(resp.Members, mj)
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// handleCloseChannel serves DELETE /api/channels/{name}. A missing channel
// is reported as 404, matching the provider's benign no-op outcome.
func (g *Gateway) handleCloseChannel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.requireProvider(w) {
			return
		}
		name := pathParam(r, "name")
		found, err := g.prov.CloseChannel(r.Context(), name)
		if err != nil {
			g.writeError(w, err)
			return
		}
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "channel not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleListUsers serves GET /api/users?prefix=.
func (g *Gateway) handleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.requireProvider(w) {
			return
		}
		users, err := g.prov.GetAllUsers(r.Context(), r.URL.Query().Get("prefix"))
		if err != nil {
			g.writeError(w, err)
			return
		}
		if users == nil {
			users = []extchannel.ChannelUser{}
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// handleChannelUsers serves GET /api/channels/{name}/users.
func (g *Gateway) handleChannelUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.requireProvider(w) {
			return
		}
		users, err := g.prov.GetChannelUsers(r.Context(), pathParam(r, "name"))
		if err != nil {
			g.writeError(w, err)
			return
		}
		if users == nil {
			users = []extchannel.ChannelUser{}
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// handleGetMessages serves GET /api/channels/{name}/messages?since=RFC3339.
func (g *Gateway) handleGetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.requireProvider(w) {
			return
		}

		var since *time.Time
		if raw := r.URL.Query().Get("since"); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be RFC3339"})
				return
			}
			since = &ts
		}

		msgs, err := g.prov.GetMessages(r.Context(), pathParam(r, "name"), since)
		if err != nil {
			g.writeError(w, err)
			return
		}
		g.metrics.RecordFetched(len(msgs))
		if msgs == nil {
			msgs = []extchannel.ChannelMessage{}
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

// sendMessageRequest is the POST /api/channels/{name}/messages body.
type sendMessageRequest struct {
	Text string `json:"text"`
}

// handleSendMessage serves POST /api/channels/{name}/messages.
func (g *Gateway) handleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.requireProvider(w) {
			return
		}
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
			return
		}
		if err := g.prov.SendMessage(r.Context(), pathParam(r, "name"), req.Text); err != nil {
			g.writeError(w, err)
			return
		}
		g.metrics.RecordSent()
		w.WriteHeader(http.StatusAccepted)
	}
}

// addMemberRequest is the POST /api/teams/{team}/members body.
type addMemberRequest struct {
	User string `json:"user"`
}

// handleAddMember serves POST /api/teams/{team}/members. Membership is
// team-wide: the platform has no per-channel membership.
func (g *Gateway) handleAddMember() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.requireProvider(w) {
			return
		}
		var req addMemberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user is required"})
			return
		}
		u, err := g.prov.AddUserToChannel(r.Context(), pathParam(r, "team"), req.User)
		if err != nil {
			g.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

// handleRemoveMember serves DELETE /api/teams/{team}/members/{user}.
func (g *Gateway) handleRemoveMember() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.requireProvider(w) {
			return
		}
		team, userName := pathParam(r, "team"), pathParam(r, "user")
		if err := g.prov.RemoveUserFromChannel(r.Context(), team, userName); err != nil {
			g.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// moduleJSON is a serializable module info snapshot.
type moduleJSON struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// handleListModules lists all compiled modules (for /api/modules).
func (g *Gateway) handleListModules() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		mods := core.GetModules()
		out := make([]moduleJSON, 0, len(mods))
		for _, m := range mods {
			out = append(out, moduleJSON{
				ID:        string(m.ID),
				Namespace: m.ID.Namespace(),
				Name:      m.ID.Name(),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
