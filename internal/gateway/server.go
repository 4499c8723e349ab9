package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())

	// Live message feed — websocket, mounted when the feed module is loaded.
	if g.feed != nil {
		r.Handle("/ws/feed", g.feed)
	}

	// Admin endpoints — auth required. Not mounted if no auth configured.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth))
			r.Use(g.measure)
			r.Get("/status", g.handleStatus())
			r.Route("/api", func(r chi.Router) {
				r.Get("/channels", g.handleListChannels())
				r.Post("/channels", g.handleCreateChannel())
				r.Delete("/channels/{name}", g.handleCloseChannel())
				r.Get("/channels/{name}/users", g.handleChannelUsers())
				r.Get("/channels/{name}/messages", g.handleGetMessages())
				r.Post("/channels/{name}/messages", g.handleSendMessage())
				r.Get("/users", g.handleListUsers())
				r.Post("/teams/{team}/members", g.handleAddMember())
				r.Delete("/teams/{team}/members/{user}", g.handleRemoveMember())
				r.Get("/modules", g.handleListModules())
			})
		})
	}

	return r
}
