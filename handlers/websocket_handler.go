package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/torneos-api/live"
	"github.com/Dosada05/torneos-api/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить Origin доверенными доменами перед продакшеном.
		return true
	},
}

type WebSocketHandler struct {
	hub               *live.Hub
	tournamentService services.TournamentService
	logger            *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, ts services.TournamentService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		logger:            logger,
	}
}

// ServeWs обрабатывает GET /ws/torneos/{id}: подписка на события турнира
// (обновления таблицы, партидов, состава участников).
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.tournamentService.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrTournamentNotFound) {
			notFoundResponse(w, r, err.Error())
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту при ошибке.
		h.logger.Error("websocket upgrade failed",
			slog.String("torneo_id", id),
			slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: id,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
