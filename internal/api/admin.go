package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AdminStats(c *gin.Context) {
	s, err := h.svc.Stats.Admin(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) ModerationEvents(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		h.fail(c, badRequest("limit must be an integer"))
		return
	}
	events, err := h.svc.Journal.List(c.Request.Context(), actorFrom(c), c.Query("entityId"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
