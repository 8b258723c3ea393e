// internal/feed/hub.go
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/blackjack/internal/middleware"
	"github.com/sirupsen/logrus"
)

// clientBuffer is how many pending messages a slow client may lag behind
// before older ones are dropped.
const clientBuffer = 8

const writeTimeout = 3 * time.Second

// Hub fans published values out to every connected websocket client and keeps
// the latest one for late joiners and the /snapshot endpoint.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]chan []byte
	latest  []byte

	logger  *logrus.Logger
	origins []string
}

// NewHub returns an empty hub. origins are the websocket origin patterns
// accepted in addition to same-host requests.
func NewHub(logger *logrus.Logger, origins ...string) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[uuid.UUID]chan []byte),
		logger:  logger,
		origins: origins,
	}
}

// Publish marshals v and sends it to every client without blocking.
func (h *Hub) Publish(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Errorf("Failed to marshal feed message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = data
	for id, ch := range h.clients {
		select {
		case ch <- data:
		default:
			// drop the oldest message to make room
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- data:
			default:
				h.logger.Warnf("Feed client %s is not keeping up, message dropped", id)
			}
		}
	}
}

// Latest returns the last published message, or nil.
func (h *Hub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) subscribe() (uuid.UUID, chan []byte, []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.New()
	ch := make(chan []byte, clientBuffer)
	h.clients[id] = ch
	return id, ch, h.latest
}

func (h *Hub) unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// ServeSnapshot writes the latest published message as JSON, or 204 if none.
func (h *Hub) ServeSnapshot(w http.ResponseWriter, r *http.Request) {
	data := h.Latest()
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ServeWS upgrades the request to a websocket and streams published messages
// until the client goes away. Incoming messages are ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warnf("WebSocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "feed closed")

	middleware.LogWebSocketConnect(h.logger, r.RemoteAddr, r.URL.Path)

	id, ch, latest := h.subscribe()
	defer h.unsubscribe(id)

	ctx := c.CloseRead(r.Context())

	if latest != nil {
		if err := write(ctx, c, latest); err != nil {
			middleware.LogWebSocketDisconnect(h.logger, r.RemoteAddr, r.URL.Path, err)
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			middleware.LogWebSocketDisconnect(h.logger, r.RemoteAddr, r.URL.Path, nil)
			c.Close(websocket.StatusNormalClosure, "")
			return
		case data := <-ch:
			if err := write(ctx, c, data); err != nil {
				middleware.LogWebSocketDisconnect(h.logger, r.RemoteAddr, r.URL.Path, err)
				return
			}
		}
	}
}

func write(ctx context.Context, c *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageText, data)
}
