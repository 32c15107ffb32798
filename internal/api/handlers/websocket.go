package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/websocket"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type WebSocketHandler struct {
	hub      *websocket.Hub
	provider *authprovider.Client
}

func NewWebSocketHandler(hub *websocket.Hub, provider *authprovider.Client) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		provider: provider,
	}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	user, err := h.provider.GetUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrMissingSession) {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		log.Printf("ERROR [handlers.WebSocketHandler] resolving user: %v", err)
		http.Error(w, "Authentication unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR [handlers.WebSocketHandler] upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, user.ID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
