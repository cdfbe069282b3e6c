package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/leonelm2/PotreroMobile/brackets"
	"github.com/leonelm2/PotreroMobile/middleware"
	"github.com/leonelm2/PotreroMobile/services"
)

type WebSocketHandler struct {
	hub                 *brackets.Hub
	championshipService services.ChampionshipService
	upgrader            websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" or an
// empty list accepts any origin.
func NewWebSocketHandler(hub *brackets.Hub, cs services.ChampionshipService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                 hub,
		championshipService: cs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWs subscribes the client to /ws/championships/{championshipID}. The
// current championship is sent first, then every update.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	championship, err := h.championshipService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	logger := middleware.LoggerFromContext(r.Context())
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logger.Warn("websocket upgrade failed", slog.Int("championship_id", id), slog.Any("error", err))
		return
	}

	room := brackets.RoomID(id)
	client := brackets.NewClient(h.hub, conn, room)
	snapshot, err := json.Marshal(brackets.WebSocketMessage{
		Type:    brackets.EventChampionshipUpdated,
		Payload: championship,
		RoomID:  room,
	})
	if err == nil {
		client.Send <- snapshot
	}

	if !h.hub.Subscribe(client) {
		conn.Close()
		return
	}
	go client.WritePump()
	go client.ReadPump()

	logger.Info("websocket client subscribed", slog.String("room", room))
}
