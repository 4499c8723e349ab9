// Package feed pushes new channel messages to WebSocket subscribers in
// real time. It registers an http.Handler under "feed.handler" for the
// gateway to mount, and the fan-out hub under "feed.publisher" for the
// history sync job to feed.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/flemzord/teamgate/internal/core"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Feed{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Feed)(nil)
	_ core.Provisioner  = (*Feed)(nil)
	_ core.Validator    = (*Feed)(nil)
	_ core.Starter      = (*Feed)(nil)
	_ core.Stopper      = (*Feed)(nil)
)

const (
	defaultMaxClients = 64
	defaultSendBuffer = 16
)

// Config holds YAML configuration for the feed module.
type Config struct {
	// Token, when set, is required as a ?token= query parameter on the
	// WebSocket upgrade. The feed mounts outside the gateway's admin auth
	// so browser clients can reach it.
	Token      string `yaml:"token"`
	MaxClients int    `yaml:"max_clients"`
	SendBuffer int    `yaml:"send_buffer"`
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.MaxClients <= 0 {
		c.MaxClients = defaultMaxClients
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = defaultSendBuffer
	}
}

// Feed is the live message feed module.
type Feed struct {
	config Config
	logger *slog.Logger
	hub    *Hub
}

// ModuleInfo implements core.Module.
func (f *Feed) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "feed.ws",
		New: func() core.Module { return &Feed{} },
	}
}

// Configure implements core.Configurable.
func (f *Feed) Configure(node *yaml.Node) error {
	if err := node.Decode(&f.config); err != nil {
		return err
	}
	f.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (f *Feed) Provision(ctx *core.AppContext) error {
	f.logger = ctx.Logger
	f.hub = NewHub(ctx.Logger, f.config.SendBuffer)

	ctx.RegisterService("feed.handler", http.HandlerFunc(f.handleWebSocket))
	ctx.RegisterService("feed.publisher", f.hub)
	return nil
}

// Validate implements core.Validator.
func (f *Feed) Validate() error {
	if f.config.MaxClients <= 0 {
		return errors.New("feed: max_clients must be positive")
	}
	return nil
}

// Start implements core.Starter.
func (f *Feed) Start() error {
	f.logger.Info("feed started", "max_clients", f.config.MaxClients)
	return nil
}

// Stop implements core.Stopper. It signals all subscriber handlers to
// close their connections.
func (f *Feed) Stop(_ context.Context) error {
	f.hub.closeAll()
	f.logger.Info("feed stopped")
	return nil
}

// Hub returns the fan-out hub. Exposed for wiring in tests.
func (f *Feed) Hub() *Hub { return f.hub }

// handleWebSocket upgrades the connection and pumps hub frames to the
// subscriber until either side goes away.
func (f *Feed) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if f.config.Token != "" && r.URL.Query().Get("token") != f.config.Token {
		http.Error(w, "invalid feed token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		f.logger.Error("feed: websocket accept failed", "error", err)
		return
	}
	defer func() {
		_ = conn.Close(websocket.StatusInternalError, "unexpected close")
	}()

	id, err := generateClientID()
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "internal error")
		return
	}

	c := &client{
		id:   id,
		send: make(chan []byte, f.config.SendBuffer),
		done: make(chan struct{}),
	}
	if !f.hub.addIfUnder(c, f.config.MaxClients) {
		_ = conn.Close(websocket.StatusTryAgainLater, "maximum subscribers reached")
		return
	}
	defer f.hub.remove(id)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	f.sendHello(ctx, conn, id)
	f.logger.Info("feed client connected", "client_id", id)

	// Inbound frames are ignored; reading only detects disconnects.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("feed client disconnected", "client_id", id)
			return
		case <-c.done:
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case data := <-c.send:
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				f.logger.Warn("feed: write failed", "client_id", id, "error", err)
				return
			}
		}
	}
}

func (f *Feed) sendHello(ctx context.Context, conn *websocket.Conn, id string) {
	payload, _ := json.Marshal(HelloPayload{ClientID: id})
	data, err := json.Marshal(Envelope{
		Type:      MsgHello,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		f.logger.Error("feed: marshal hello failed", "error", err)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		f.logger.Warn("feed: hello write failed", "client_id", id, "error", err)
	}
}
