package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landmarket/server/internal/inquiry"
)

type messageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) CreateInquiry(c *gin.Context) {
	var in inquiry.CreateInput
	if !h.bindJSON(c, &in) {
		return
	}
	i, err := h.svc.Inquiries.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, i)
}

func (h *Handler) PropertyInquiries(c *gin.Context) {
	var page inquiry.Page
	if !h.bindQuery(c, &page) {
		return
	}
	list, err := h.svc.Inquiries.ListForProperty(c.Request.Context(), actorFrom(c), c.Param("propertyId"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) MyInquiries(c *gin.Context) {
	var page inquiry.Page
	if !h.bindQuery(c, &page) {
		return
	}
	list, err := h.svc.Inquiries.Mine(c.Request.Context(), actorFrom(c), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ReceivedInquiries(c *gin.Context) {
	var page inquiry.Page
	if !h.bindQuery(c, &page) {
		return
	}
	list, err := h.svc.Inquiries.Received(c.Request.Context(), actorFrom(c), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetInquiry(c *gin.Context) {
	i, err := h.svc.Inquiries.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, i)
}

func (h *Handler) UpdateInquiry(c *gin.Context) {
	var req messageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	i, err := h.svc.Inquiries.Update(c.Request.Context(), actorFrom(c), c.Param("id"), req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, i)
}

func (h *Handler) DeleteInquiry(c *gin.Context) {
	if err := h.svc.Inquiries.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
