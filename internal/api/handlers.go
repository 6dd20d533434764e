package api

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"landmarket/server/config"
	"landmarket/server/internal/account"
	"landmarket/server/internal/apperr"
	"landmarket/server/internal/inquiry"
	"landmarket/server/internal/listing"
	"landmarket/server/internal/moderation"
	"landmarket/server/internal/stats"
	"landmarket/server/internal/storage"
)

// Services are the operations the transport exposes. Every field is
// required except Uploads, which may be nil when storage is disabled.
type Services struct {
	Listings  *listing.Service
	Workflow  *moderation.Workflow
	Journal   *moderation.Journal
	Accounts  *account.Service
	Inquiries *inquiry.Service
	Stats     *stats.Service
	Uploads   *storage.Uploader
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc    Services
	health Pinger
	logger *logrus.Logger
}

func NewHandler(svc Services, health Pinger, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if svc.Uploads == nil {
		svc.Uploads = storage.NewUploader(nil, nil, 0)
	}
	return &Handler{svc: svc, health: health, logger: logger}
}

func (h *Handler) fail(c *gin.Context, err error) {
	respondError(c, h.logger, err)
}

// statsChanged is called after writes that move the public counters.
func (h *Handler) statsChanged(c *gin.Context) {
	if h.svc.Stats != nil {
		h.svc.Stats.Invalidate(c.Request.Context())
	}
}

// bindJSON reports a malformed body as a validation error.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, badRequest("request body is not valid JSON for this endpoint"))
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		h.fail(c, badRequest("invalid query parameters"))
		return false
	}
	return true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			h.logger.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetPublicStats(c *gin.Context) {
	s, err := h.svc.Stats.Public(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) GetCounties(c *gin.Context) {
	c.JSON(http.StatusOK, config.Counties)
}

func (h *Handler) Upload(c *gin.Context) {
	if !h.svc.Uploads.Enabled() {
		h.fail(c, apperr.Unavailable("file uploads are not configured"))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.fail(c, badRequest("multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	up, err := h.svc.Uploads.Upload(c.Request.Context(), actorFrom(c), f, fh.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, up)
}
