package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landmarket/server/internal/listing"
)

func (h *Handler) CreateProperty(c *gin.Context) {
	var in listing.CreateInput
	if !h.bindJSON(c, &in) {
		return
	}
	p, err := h.svc.Listings.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) QueryProperties(c *gin.Context) {
	var filter listing.Filter
	if !h.bindQuery(c, &filter) {
		return
	}
	props, err := h.svc.Listings.Query(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (h *Handler) FeaturedProperties(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		h.fail(c, badRequest("limit must be an integer"))
		return
	}
	props, err := h.svc.Listings.Featured(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (h *Handler) MyProperties(c *gin.Context) {
	var filter listing.Filter
	if !h.bindQuery(c, &filter) {
		return
	}
	props, err := h.svc.Listings.MyListings(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (h *Handler) PendingProperties(c *gin.Context) {
	var filter listing.Filter
	if !h.bindQuery(c, &filter) {
		return
	}
	props, err := h.svc.Listings.Pending(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (h *Handler) GetProperty(c *gin.Context) {
	p, err := h.svc.Listings.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	var patch listing.Patch
	if !h.bindJSON(c, &patch) {
		return
	}
	p, err := h.svc.Listings.Update(c.Request.Context(), actorFrom(c), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	if err := h.svc.Listings.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.statsChanged(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ApproveProperty(c *gin.Context) {
	p, err := h.svc.Workflow.ApproveProperty(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.statsChanged(c)
	c.JSON(http.StatusOK, p)
}
