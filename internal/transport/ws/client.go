package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/pkg/logger"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait       = 10 * time.Second
	pingInterval    = 30 * time.Second
	snapshotTimeout = 5 * time.Second
	maxMessageSize  = 4096
	sendBufSize     = 256
)

// ThreadReader loads a thread's messages on behalf of a participant.
type ThreadReader interface {
	Messages(ctx context.Context, callerID uuid.UUID, threadID string) ([]domain.Message, error)
}

// Client represents a single WebSocket connection. It has at most one thread
// open at a time and only receives that thread's messages.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	accountID uuid.UUID
	threads   ThreadReader
	log       logger.Logger

	mu       sync.Mutex
	threadID string
	openSeq  uint64
	// While a snapshot loads, live messages for the thread are held back
	// so that they follow the snapshot.
	buffering bool
	buffered  []broadcastMsg
	// inSnapshot holds the ids sent in the open thread's snapshot. A message
	// stored before the snapshot read can still reach the hub after it.
	inSnapshot map[string]struct{}
	closed     bool

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, accountID uuid.UUID, threads ThreadReader, log logger.Logger) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		accountID: accountID,
		threads:   threads,
		log:       log,
		send:      make(chan []byte, sendBufSize),
		done:      make(chan struct{}),
	}
}

// OpenThread reports the id of the thread the client has open, if any.
func (c *Client) OpenThread() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threadID
}

// ReadPump reads events from the WebSocket until the connection ends.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var event Event
		err := wsjson.Read(ctx, c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.Debug(ctx, "client closed connection", logger.Stringer("account_id", c.accountID))
			} else {
				c.log.Debug(ctx, "read error", logger.Stringer("account_id", c.accountID), logger.Err(err))
			}
			return
		}

		if !c.handleEvent(ctx, &event) {
			c.log.Warn(ctx, "send buffer full, closing", logger.Stringer("account_id", c.accountID))
			return
		}
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(wctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.log.Debug(ctx, "write error", logger.Stringer("account_id", c.accountID), logger.Err(err))
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				c.log.Debug(ctx, "ping error", logger.Stringer("account_id", c.accountID), logger.Err(err))
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event. It returns false when the
// client can no longer keep up and should be disconnected.
func (c *Client) handleEvent(ctx context.Context, event *Event) bool {
	switch event.Type {
	case EventTypeThreadOpen:
		var p ThreadOpenPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return c.sendError("INVALID_PAYLOAD", "invalid thread.open payload")
		}
		threadID := p.ThreadID
		if p.UserID != nil {
			id, err := domain.DeriveThreadID(c.accountID.String(), p.UserID.String())
			if err != nil {
				return c.sendError("INVALID_PAYLOAD", "cannot open a thread with yourself")
			}
			threadID = id
		}
		if threadID == "" {
			return c.sendError("INVALID_PAYLOAD", "thread_id or user_id required")
		}
		return c.openThread(ctx, threadID)

	case EventTypeThreadClose:
		c.closeThread()
		return true

	case EventTypePing:
		data, _ := json.Marshal(Event{Type: EventTypePong})
		return c.enqueue(data)

	default:
		return c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// openThread replaces the open thread with threadID, sends its snapshot and
// then any messages that arrived while the snapshot was loading.
func (c *Client) openThread(ctx context.Context, threadID string) bool {
	c.mu.Lock()
	c.openSeq++
	seq := c.openSeq
	c.threadID = threadID
	c.buffering = true
	c.buffered = nil
	c.inSnapshot = nil
	c.mu.Unlock()

	loadCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	msgs, err := c.threads.Messages(loadCtx, c.accountID, threadID)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	if c.openSeq != seq {
		return true
	}

	if err != nil {
		c.threadID = ""
		c.buffering = false
		c.buffered = nil

		code, message := "INTERNAL", "could not load thread"
		switch {
		case errors.Is(err, service.ErrNotParticipant):
			code, message = "NOT_PARTICIPANT", "you are not a participant of this thread"
		case errors.Is(err, service.ErrThreadNotFound):
			code, message = "NOT_FOUND", "thread not found"
		default:
			c.log.Error(ctx, "load thread snapshot", logger.String("thread_id", threadID), logger.Err(err))
		}
		return c.sendErrorLocked(code, message)
	}

	snapshot, err := encodeEvent(EventTypeThreadSnapshot, threadID, SnapshotPayload{ThreadID: threadID, Messages: msgs})
	if err != nil {
		c.log.Error(ctx, "marshal snapshot", logger.Err(err))
		return true
	}
	if !c.enqueueLocked(snapshot) {
		return false
	}

	c.inSnapshot = make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		c.inSnapshot[m.ID.String()] = struct{}{}
	}
	for _, b := range c.buffered {
		if _, ok := c.inSnapshot[b.messageID]; ok {
			continue
		}
		if !c.enqueueLocked(b.data) {
			return false
		}
	}

	c.buffering = false
	c.buffered = nil
	return true
}

func (c *Client) closeThread() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openSeq++
	c.threadID = ""
	c.buffering = false
	c.buffered = nil
	c.inSnapshot = nil
}

// deliver is called by the hub for every new message. It returns false if the
// client's buffer is full.
func (c *Client) deliver(threadID, messageID string, data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.threadID != threadID {
		return true
	}
	if c.buffering {
		c.buffered = append(c.buffered, broadcastMsg{threadID: threadID, messageID: messageID, data: data})
		return true
	}
	if _, ok := c.inSnapshot[messageID]; ok {
		return true
	}
	return c.enqueueLocked(data)
}

func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enqueueLocked(data)
}

func (c *Client) enqueueLocked(data []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) sendError(code, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendErrorLocked(code, message)
}

func (c *Client) sendErrorLocked(code, message string) bool {
	data, err := encodeEvent(EventTypeError, "", ErrorPayload{Code: code, Message: message})
	if err != nil {
		return true
	}
	return c.enqueueLocked(data)
}

// close is called by the hub exactly when it forgets the client.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	close(c.done)
}
