package ws

import (
	"context"

	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/pkg/logger"
	"github.com/vedran77/campusconnect/pkg/metrics"
)

// Hub manages all active WebSocket clients and routes thread messages to the
// clients that currently have the thread open.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
	stopped    chan struct{}

	log     logger.Logger
	metrics *metrics.Manager
}

type broadcastMsg struct {
	threadID  string
	messageID string
	data      []byte
}

func NewHub(log logger.Logger, m *metrics.Manager) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		stopped:    make(chan struct{}),
		log:        log,
		metrics:    m,
	}
}

// Run starts the Hub's main event loop and returns when ctx is done.
// Call this in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.metrics.WSClientConnected()
			h.log.Debug(ctx, "client connected",
				logger.Stringer("account_id", client.accountID),
				logger.Int("clients", len(h.clients)),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.Debug(ctx, "client disconnected",
					logger.Stringer("account_id", client.accountID),
					logger.Int("clients", len(h.clients)),
				)
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.deliver(msg.threadID, msg.messageID, msg.data) {
					// Client buffer full - disconnect
					h.log.Warn(ctx, "dropping slow client", logger.Stringer("account_id", client.accountID))
					h.drop(client)
				}
			}
		}
	}
}

// Register adds a client to the hub. It reports false if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// BroadcastMessage delivers a new thread message to every client that has
// the thread open.
func (h *Hub) BroadcastMessage(msg *domain.Message) {
	data, err := encodeEvent(EventTypeMessageNew, msg.ThreadID, MessagePayload{Message: *msg})
	if err != nil {
		h.log.Error(context.Background(), "marshal message event", logger.Err(err))
		return
	}
	select {
	case h.broadcast <- &broadcastMsg{
		threadID:  msg.ThreadID,
		messageID: msg.ID.String(),
		data:      data,
	}:
	case <-h.stopped:
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	c.close()
	h.metrics.WSClientDisconnected()
}
