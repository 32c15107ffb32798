package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mino-dev/mino-web/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID

	// canvasID is only touched from the read pump goroutine.
	canvasID uuid.UUID

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
	}
}

// Close makes the write pump drain and shut the connection. Safe to call
// more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// trySend queues a message unless the client is closed or its buffer is
// full. Reports whether the message was queued.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
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

func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ERROR [websocket.Client] read: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ERROR [websocket.Client] unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeJoinCanvas:
		var payload JoinCanvasPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.CanvasID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "Invalid join canvas payload")
			return
		}
		c.canvasID = payload.CanvasID
		c.hub.join <- &joinRequest{Client: c, CanvasID: payload.CanvasID}

	case MessageTypeViewport:
		if c.canvasID == uuid.Nil {
			c.sendError("NOT_JOINED", "Join a canvas first")
			return
		}
		var payload ViewportPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid viewport payload")
			return
		}

		// Persist the sender's viewport so a reload restores it.
		uc := &domain.UserCanvas{
			UserID:   c.userID,
			CanvasID: c.canvasID,
			Scale:    payload.Scale,
			X:        payload.X,
			Y:        payload.Y,
		}
		if err := c.hub.userCanvasRepo.Upsert(context.Background(), uc); err != nil {
			log.Printf("ERROR [websocket.Client] persisting viewport for %s: %v", c.userID, err)
		}

		payload.UserID = c.userID
		out, err := NewMessage(MessageTypeViewport, payload)
		if err != nil {
			return
		}
		data, _ := json.Marshal(out)
		c.hub.broadcast <- &broadcastRequest{CanvasID: c.canvasID, Sender: c, Data: data}

	default:
		c.sendError("UNKNOWN_TYPE", "Unknown message type")
	}
}

func (c *Client) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, _ := json.Marshal(msg)
	c.trySend(data)
}
