package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"github.com/secmon-lab/tablero/pkg/utils/pubsub"
	"github.com/secmon-lab/tablero/pkg/utils/safe"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Message types pushed to browsers
const (
	MessageChange = "change"
	MessageNotice = "notice"
)

// Message is one websocket frame. A change tells the client to refetch the
// named table; a notice is shown as a toast.
type Message struct {
	Type   string             `json:"type"`
	Change *model.ChangeEvent `json:"change,omitempty"`
	Notice *model.Notice      `json:"notice,omitempty"`
}

// Hub pushes remote changes and notices to every connected browser
type Hub struct {
	messages *pubsub.Hub[Message]
	upgrader websocket.Upgrader
}

// NewHub creates a hub that accepts same-origin websocket connections
func NewHub() *Hub {
	return &Hub{
		messages: pubsub.New[Message](),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Publish sends a change event to all clients
func (h *Hub) Publish(ev model.ChangeEvent) {
	h.messages.Publish(Message{Type: MessageChange, Change: &ev})
}

// Notify sends a toast to all clients
func (h *Hub) Notify(ctx context.Context, notice model.Notice) {
	logging.From(ctx).Debug("notice", "level", notice.Level, "message", notice.Message)
	h.messages.Publish(Message{Type: MessageNotice, Notice: &notice})
}

// Clients returns the number of connected browsers
func (h *Hub) Clients() int {
	return h.messages.Len()
}

// ServeHTTP upgrades the request and streams messages until the client goes
// away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.From(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an error status
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer safe.Close(ctx, conn)

	msgs := h.messages.Subscribe(ctx)

	// The client never sends data; reading detects the close frame.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
