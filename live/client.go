// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only listen; anything larger than this from them is dropped
	maxMessageSize = 512

	// Size of the send channel buffer
	sendBufferSize = 64
)

// Subscriber receives messages for one poll
type Subscriber interface {
	ID() string
	Send(msg any) error
	Close() error
}

// Client is a websocket subscriber
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	pollID string
	id     string
	send   chan []byte
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, hub *Hub, pollID, id string) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		pollID: pollID,
		id:     id,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the subscriber ID
func (c *Client) ID() string {
	return c.id
}

// Send queues a message; it is dropped if the client cannot keep up
func (c *Client) Send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("send buffer full, message dropped", "poll_id", c.pollID, "subscriber", c.id)
	}
	return nil
}

// Close shuts the connection down once
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// run starts the write pump and blocks in the read pump until the peer leaves
func (c *Client) run() {
	go c.writePump()
	c.readPump()
}

// readPump only watches for pongs and disconnects
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c.pollID, c.id)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read error", "poll_id", c.pollID, "error", err)
			}
			return
		}
	}
}

// writePump writes queued messages, one per frame, and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
