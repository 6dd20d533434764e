package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"landmarket/server/internal/metrics"
)

type RouterOptions struct {
	CORSOrigins []string
	// Metrics and Gatherer are optional; without a gatherer /metrics is
	// not mounted.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter builds the engine with the middleware chain and every route.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger), corsMiddleware(opts.CORSOrigins))
	if opts.Metrics != nil {
		router.Use(observeRequests(opts.Metrics))
	}

	router.GET("/health", h.Health)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	SetupRoutes(router, h)
	return router
}

func SetupRoutes(router *gin.Engine, h *Handler) {
	api := router.Group("/api")
	api.Use(resolveActor(h.svc.Accounts, h.logger))
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.GET("/auth/me", h.Me)

		api.GET("/properties", h.QueryProperties)
		api.POST("/properties", h.CreateProperty)
		api.GET("/properties/featured", h.FeaturedProperties)
		api.GET("/properties/mine", h.MyProperties)
		api.GET("/properties/:id", h.GetProperty)
		api.PUT("/properties/:id", h.UpdateProperty)
		api.DELETE("/properties/:id", h.DeleteProperty)
		api.PUT("/properties/:id/approve", h.ApproveProperty)

		api.POST("/inquiries", h.CreateInquiry)
		api.GET("/inquiries/mine", h.MyInquiries)
		api.GET("/inquiries/received", h.ReceivedInquiries)
		api.GET("/inquiries/property/:propertyId", h.PropertyInquiries)
		api.GET("/inquiries/:id", h.GetInquiry)
		api.PUT("/inquiries/:id", h.UpdateInquiry)
		api.DELETE("/inquiries/:id", h.DeleteInquiry)

		api.GET("/users", h.ListUsers)
		api.POST("/users", h.CreateUser)
		api.GET("/users/:id", h.GetUser)
		api.PUT("/users/:id", h.UpdateUser)
		api.DELETE("/users/:id", h.DeleteUser)
		api.PUT("/users/:id/approve", h.ApproveUser)
		api.PUT("/users/:id/suspend", h.SuspendUser)

		api.GET("/admin/stats", h.AdminStats)
		api.GET("/admin/properties/pending", h.PendingProperties)
		api.GET("/admin/moderation-events", h.ModerationEvents)

		api.GET("/stats", h.GetPublicStats)
		api.GET("/counties", h.GetCounties)
		api.POST("/uploads", h.Upload)
	}
}

// SetMode follows the log level: debug logging also turns on gin's debug
// route dump.
func SetMode(level logrus.Level) {
	if level >= logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
