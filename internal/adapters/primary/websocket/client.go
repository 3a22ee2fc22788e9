package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lorrc/dm-backend/internal/core/bus"
	"github.com/lorrc/dm-backend/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Client bridges one websocket connection to the event bus. On construction
// it subscribes the authenticated user to both event topics with a
// visibility filter, so the connection only ever sees events from the user's
// own conversations.
type Client struct {
	// Conn is the underlying websocket connection.
	Conn *websocket.Conn

	// Username of the authenticated user behind this connection.
	Username string

	eventBus    *bus.Bus
	messageSub  *bus.Subscription
	reactionSub *bus.Subscription

	// closeOnce ensures the subscriptions are torn down exactly once
	closeOnce sync.Once

	logger *slog.Logger
}

// NewClient subscribes the user to live message and reaction events and
// returns a client ready to pump. Fails if the username is empty.
func NewClient(eventBus *bus.Bus, conn *websocket.Conn, username string, logger *slog.Logger) (*Client, error) {
	filter := domain.VisibleTo(username)

	messageSub, err := eventBus.Subscribe(domain.TopicMessageCreated, username, filter)
	if err != nil {
		return nil, err
	}

	reactionSub, err := eventBus.Subscribe(domain.TopicReactionChanged, username, filter)
	if err != nil {
		eventBus.Unsubscribe(messageSub)
		return nil, err
	}

	return &Client{
		Conn:        conn,
		Username:    username,
		eventBus:    eventBus,
		messageSub:  messageSub,
		reactionSub: reactionSub,
		logger:      logger.With("username", username),
	}, nil
}

// Close tears down the bus subscriptions exactly once. Safe to call from
// either pump.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.eventBus.Unsubscribe(c.messageSub)
		c.eventBus.Unsubscribe(c.reactionSub)
	})
}

// ReadPump drains the websocket connection until the peer disconnects. The
// connection is read-mostly-idle; reads exist to surface close frames and to
// service the ping/pong keep-alive. This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Close()
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}
		// Inbound frames carry no commands; mutations go through the REST
		// API. Anything the client sends is ignored.
	}
}

// WritePump forwards bus events to the websocket connection and keeps the
// connection alive with periodic pings. It exits when either subscription
// channel closes or a write fails. This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.messageSub.Events():
			if !c.forward(event, ok) {
				return
			}

		case event, ok := <-c.reactionSub.Events():
			if !c.forward(event, ok) {
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// forward writes one event to the peer. Returns false when the pump should
// stop, either because the subscription closed or the write failed.
func (c *Client) forward(event domain.Event, ok bool) bool {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error("failed to set write deadline", "error", err)
		return false
	}

	if !ok {
		// Subscription closed underneath us. Send close message.
		if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug("failed to send close message", "error", err)
		}
		return false
	}

	if err := c.writeJSON(event); err != nil {
		c.logger.Error("failed to write message", "error", err)
		return false
	}
	return true
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}
