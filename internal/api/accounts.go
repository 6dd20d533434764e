package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"landmarket/server/internal/account"
	"landmarket/server/internal/apperr"
	"landmarket/server/internal/database"
	"landmarket/server/internal/models"
)

type userQuery struct {
	Role         string `form:"role"`
	AccountState string `form:"accountState"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

func (h *Handler) Register(c *gin.Context) {
	var in account.RegisterInput
	if !h.bindJSON(c, &in) {
		return
	}
	u, err := h.svc.Accounts.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.statsChanged(c)
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c *gin.Context) {
	var in account.LoginInput
	if !h.bindJSON(c, &in) {
		return
	}
	session, err := h.svc.Accounts.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) Me(c *gin.Context) {
	v, ok := c.Get(userKey)
	if !ok {
		h.fail(c, apperr.Unauthorized("authentication required"))
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) ListUsers(c *gin.Context) {
	var q userQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.Offset < 0 {
		h.fail(c, apperr.Validation("offset", "offset must not be negative"))
		return
	}
	users, err := h.svc.Accounts.List(c.Request.Context(), actorFrom(c), database.UserFilter{
		Role:         models.Role(q.Role),
		AccountState: models.AccountState(q.AccountState),
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.svc.Accounts.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var in account.RegisterInput
	if !h.bindJSON(c, &in) {
		return
	}
	u, err := h.svc.Accounts.CreateUser(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.statsChanged(c)
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var patch account.Patch
	if !h.bindJSON(c, &patch) {
		return
	}
	u, err := h.svc.Accounts.Update(c.Request.Context(), actorFrom(c), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.svc.Accounts.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.statsChanged(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ApproveUser(c *gin.Context) {
	u, err := h.svc.Workflow.ApproveUser(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) SuspendUser(c *gin.Context) {
	u, err := h.svc.Workflow.SuspendUser(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
