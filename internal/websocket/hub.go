// Package websocket is the realtime layer of the canvas editor: every
// client viewing a canvas shares a room, sees peers come and go and
// receives their viewport updates live.
package websocket

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/repository"
)

type Hub struct {
	// canvases maps canvas id to the clients currently viewing it,
	// membership is the reverse index. All state is owned by the Run
	// goroutine; clients talk to it through the channels only.
	canvases   map[uuid.UUID]map[*Client]bool
	membership map[*Client]uuid.UUID

	register   chan *Client
	unregister chan *Client
	join       chan *joinRequest
	broadcast  chan *broadcastRequest
	stop       chan struct{}
	done       chan struct{}

	userCanvasRepo repository.UserCanvasRepository
}

type joinRequest struct {
	Client   *Client
	CanvasID uuid.UUID
}

type broadcastRequest struct {
	CanvasID uuid.UUID
	Sender   *Client
	Data     []byte
}

func NewHub(userCanvasRepo repository.UserCanvasRepository) *Hub {
	return &Hub{
		canvases:       make(map[uuid.UUID]map[*Client]bool),
		membership:     make(map[*Client]uuid.UUID),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		join:           make(chan *joinRequest),
		broadcast:      make(chan *broadcastRequest),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
		userCanvasRepo: userCanvasRepo,
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			for _, clients := range h.canvases {
				for client := range clients {
					client.Close()
				}
			}
			h.canvases = make(map[uuid.UUID]map[*Client]bool)
			h.membership = make(map[*Client]uuid.UUID)
			return

		case <-h.register:
			// Clients only become visible to peers once they join a canvas.

		case client := <-h.unregister:
			h.removeClient(client)
			client.Close()

		case req := <-h.join:
			h.joinCanvas(req.Client, req.CanvasID)

		case req := <-h.broadcast:
			// Only broadcast on behalf of an actual member of the canvas.
			if h.membership[req.Sender] == req.CanvasID {
				h.broadcastToCanvas(req.CanvasID, req.Sender, req.Data)
			}
		}
	}
}

// Stop shuts the hub down and waits for Run to exit.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

func (h *Hub) joinCanvas(client *Client, canvasID uuid.UUID) {
	// Leaving the previous canvas first keeps a client in at most one room.
	h.removeClient(client)

	clients, ok := h.canvases[canvasID]
	if !ok {
		clients = make(map[*Client]bool)
		h.canvases[canvasID] = clients
	}
	clients[client] = true
	h.membership[client] = canvasID

	h.announce(canvasID, client, MessageTypePeerJoined)
}

func (h *Hub) removeClient(client *Client) {
	canvasID, ok := h.membership[client]
	if !ok {
		return
	}
	delete(h.membership, client)

	clients, ok := h.canvases[canvasID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.canvases, canvasID)
		return
	}
	h.announce(canvasID, client, MessageTypePeerLeft)
}

func (h *Hub) announce(canvasID uuid.UUID, about *Client, msgType MessageType) {
	msg, err := NewMessage(msgType, PeerPayload{UserID: about.userID})
	if err != nil {
		log.Printf("ERROR [websocket.Hub] marshaling %s: %v", msgType, err)
		return
	}
	data, _ := json.Marshal(msg)
	h.broadcastToCanvas(canvasID, about, data)
}

func (h *Hub) broadcastToCanvas(canvasID uuid.UUID, sender *Client, data []byte) {
	for client := range h.canvases[canvasID] {
		if client == sender {
			continue
		}
		if !client.trySend(data) {
			// Slow consumer; drop it rather than stalling the room.
			h.removeClient(client)
			client.Close()
		}
	}
}
