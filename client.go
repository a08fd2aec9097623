package main

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
	binaryMarker   = 0xFF
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	connID     string
	playerID   int
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	closeOnce  sync.Once
	log        *slog.Logger
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	id := GenerateUUID()
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		connID:     id,
		remoteAddr: remoteAddr,
		log:        hub.log.With(slog.String("conn", id), slog.String("remote", remoteAddr)),
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.Close()
	}()

	timeout := c.hub.cfg.KeepAliveTimeout
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(timeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		c.hub.world.Heartbeat(c.playerID)
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("ws read error", slog.Any("err", err))
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > c.hub.cfg.MaxMessagesPerSec {
			c.log.Warn("rate limit exceeded, disconnecting", slog.Int("player", c.playerID))
			break
		}

		if msgType != websocket.TextMessage {
			c.log.Debug("ignoring binary frame", slog.Int("bytes", len(message)))
			continue
		}
		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection and pings it
// every keep-alive interval.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.cfg.KeepAliveInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == binaryMarker {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
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

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal error", slog.Any("err", err))
		return
	}
	c.SendRaw(data)
}

// SendRaw queues pre-marshaled bytes as a text message. The world only
// sends to registered clients, and the hub disconnects a client from the
// world before closing send.
func (c *Client) SendRaw(data []byte) {
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes a marker byte so WritePump can distinguish it from text.
func (c *Client) SendBinary(data []byte) {
	msg := make([]byte, len(data)+1)
	msg[0] = binaryMarker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// Close drops the underlying connection. The read pump then unregisters
// the client. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// handleMessage decodes one text frame and hands it to the world
func (c *Client) handleMessage(raw []byte) {
	req, err := DecodeRequest(raw)
	if err != nil {
		c.log.Debug("dropping message", slog.Int("player", c.playerID), slog.Any("err", err))
		return
	}
	c.hub.world.Handle(c.playerID, req)
}
