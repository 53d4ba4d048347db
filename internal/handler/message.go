package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/middleware"
	"github.com/iliyamo/colocetudiant/internal/queue"
	"github.com/iliyamo/colocetudiant/internal/repository"
	"github.com/iliyamo/colocetudiant/internal/service"
	"github.com/iliyamo/colocetudiant/internal/ws"
)

const msgEmptyMessage = "Le message est vide."

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// MessageHandler serves the shared chat.
type MessageHandler struct {
	Messages  *repository.MessageRepo
	Hub       *ws.Hub
	Publisher service.Publisher
	Log       *zap.Logger
}

func (h *MessageHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	msgs, err := h.Messages.List(ctx)
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/messages", msgGenericError)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": msgs})
}

type sendReq struct {
	Content string `json:"content"`
}

// Send stores a message from the session user, pushes it to the live feed
// and returns the whole conversation.
func (h *MessageHandler) Send(c echo.Context) error {
	var req sendReq
	if err := c.Bind(&req); err != nil {
		return invalid(c, msgInvalidBody, nil)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgEmptyMessage})
	}
	sender := middleware.CurrentUser(c).Username

	ctx, cancel := dbCtx(c)
	defer cancel()
	m, err := h.Messages.Create(ctx, sender, content)
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/messages", "Impossible d'envoyer le message.")
	}
	if payload, err := json.Marshal(m); err == nil {
		h.Hub.Broadcast(payload)
	}
	service.PublishAsync(h.Publisher, queue.MessageSent, queue.MessageSentEvent{
		MessageID: m.ID,
		Sender:    m.Sender,
		Length:    len([]rune(m.Content)),
		SentAt:    m.Timestamp.Format(time.RFC3339),
	})

	msgs, err := h.Messages.List(ctx)
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/messages", msgGenericError)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": m, "items": msgs})
}

// Feed upgrades to a websocket that receives every new message.
func (h *MessageHandler) Feed(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.Log.Debug("ws upgrade failed", zap.Error(err))
		return nil
	}
	h.Hub.Serve(conn)
	return nil
}
