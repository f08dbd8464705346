package handler

import (
	"github.com/gin-gonic/gin"

	"tradelog/internal/notify"
)

type EventsHandler struct {
	Hub *notify.Hub
}

func (h *EventsHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/events", h.stream)
}

// @Summary Stream data_changed events over a websocket
// @Tags events
// @Success 101
// @Router /api/v1/events [get]
func (h *EventsHandler) stream(c *gin.Context) {
	h.Hub.ServeWS(c.Writer, c.Request)
}
