package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/focusflow/core/internal/application/services"
	"github.com/focusflow/core/internal/infrastructure/cache"
	"github.com/focusflow/core/internal/infrastructure/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

// Hub fans notification events out to connected websocket clients. Events
// arrive over the Redis channel the dispatcher publishes on, so every API
// instance sees every event regardless of which one delivered it.
type Hub struct {
	redis   *cache.Redis
	channel string
	logger  *logger.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*client]struct{}

	stop chan struct{}
	done chan struct{}
}

type client struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
}

// NewHub creates a hub reading from the given Redis channel
func NewHub(redis *cache.Redis, channel string, logger *logger.Logger) *Hub {
	return &Hub{
		redis:   redis,
		channel: channel,
		logger:  logger,
		clients: make(map[uuid.UUID]map[*client]struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start consumes the Redis subscription until Stop is called
func (h *Hub) Start(ctx context.Context) {
	go func() {
		defer close(h.done)

		sub := h.redis.Subscribe(ctx, h.channel)
		defer sub.Close()

		h.logger.Info("Realtime hub started", "channel", h.channel)

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stop:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				h.deliver([]byte(msg.Payload))
			}
		}
	}()
}

// Stop shuts the hub down and disconnects every client
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done

	h.mu.Lock()
	for _, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
	}
	h.clients = make(map[uuid.UUID]map[*client]struct{})
	h.mu.Unlock()

	h.logger.Info("Realtime hub stopped")
}

func (h *Hub) deliver(payload []byte) {
	var event services.NotificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Warn("Dropping malformed realtime event", "error", err)
		return
	}

	h.mu.RLock()
	conns := h.clients[event.UserID]
	for c := range conns {
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop the event rather than block the hub.
			h.logger.Warn("Realtime send buffer full", "user_id", event.UserID)
		}
	}
	h.mu.RUnlock()
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

// Attach registers a websocket connection for a user and services it
// until the peer disconnects.
func (h *Hub) Attach(userID uuid.UUID, conn *websocket.Conn) {
	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	if conns, ok := h.clients[c.userID]; ok {
		if _, present := conns[c]; present {
			delete(conns, c)
			close(c.send)
		}
		if len(conns) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
}

// readPump discards client messages; the stream is one-way. It exists to
// process control frames and detect disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
