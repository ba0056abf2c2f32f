package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/team-training-system/live"
	"github.com/Dosada05/team-training-system/services"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub            *live.Hub
	sessionService services.SessionService
	logger         *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, ss services.SessionService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		sessionService: ss,
		logger:         logger,
	}
}

// ServeWs подключает клиента к комнате тренировки. Клиент получает события
// ATTENDANCE_UPDATED и SESSION_UPDATED по мере отметок и смены статуса.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Комната создаётся только для существующей тренировки.
	if _, err := h.sessionService.GetSessionByID(r.Context(), sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту.
		h.logger.Warn("failed to upgrade websocket connection",
			slog.Int("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return
	}

	h.hub.NewClient(conn, live.SessionRoom(sessionID))
}
