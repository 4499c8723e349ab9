package feed

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/flemzord/teamgate/pkg/extchannel"
)

// client is one connected feed subscriber. Frames are delivered through a
// buffered send channel; the websocket handler drains it.
type client struct {
	id   string
	send chan []byte
	done chan struct{}
}

// Hub fans channel messages out to all connected feed subscribers. It is
// safe for concurrent use.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*client
	sendBuffer int
	logger     *slog.Logger
}

// NewHub creates an empty Hub. sendBuffer is the per-client frame queue
// size; a subscriber whose queue is full misses frames instead of blocking
// the publisher.
func NewHub(logger *slog.Logger, sendBuffer int) *Hub {
	return &Hub{
		clients:    make(map[string]*client),
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

// Publish sends one channel message to every connected subscriber.
// Slow subscribers are skipped, never waited on.
func (h *Hub) Publish(msg extchannel.ChannelMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("feed: marshal message failed", "error", err)
		return
	}
	data, err := json.Marshal(Envelope{
		Type:      MsgMessage,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		h.logger.Error("feed: marshal envelope failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("feed client lagging, dropping frame", "client_id", id)
		}
	}
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// addIfUnder registers a client only while the subscriber count is below
// max. The check and the add are one operation to avoid a TOCTOU race.
func (h *Hub) addIfUnder(c *client, max int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) >= max {
		return false
	}
	h.clients[c.id] = c
	return true
}

// remove unregisters a client.
func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// closeAll signals every subscriber's handler to shut down.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.done)
		delete(h.clients, id)
	}
}

func generateClientID() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return "sub-" + hex.EncodeToString(buf[:]), nil
}
