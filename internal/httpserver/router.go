package httpserver

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habitpulse/internal/api"
	"habitpulse/pkg/auth"
	"habitpulse/pkg/otel"
	"habitpulse/pkg/rbac"
)

// ReadinessCheck reports whether one dependency is usable.
type ReadinessCheck func(ctx context.Context) error

type Dependencies struct {
	Dashboard *api.DashboardHandler
	JWTSecret string
	// Checks are run by /readyz, keyed by dependency name.
	Checks map[string]ReadinessCheck
	Logger *zap.Logger
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(deps Dependencies) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), otel.GinMiddleware(), api.RequestLogger(deps.Logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", readyHandler(deps.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected
	v1 := r.Group("/v1")
	v1.Use(auth.Middleware(deps.JWTSecret, deps.Logger))
	{
		read := v1.Group("/", auth.RequirePermission(rbac.PermissionReadDashboard))
		read.GET("/dashboard/overview", deps.Dashboard.GetOverview)
		read.GET("/dashboard/due", deps.Dashboard.GetDue)
		read.GET("/habits/:id/analytics", deps.Dashboard.GetHabitAnalytics)
		read.GET("/habits/:id/intervals", deps.Dashboard.GetHabitIntervals)

		v1.POST("/analytics/compute", auth.RequirePermission(rbac.PermissionComputeAnalytics), deps.Dashboard.Compute)
	}

	return &Router{Engine: r}
}

func readyHandler(checks map[string]ReadinessCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": name + "_not_ready",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// Server wraps the engine in an http.Server listening on addr.
func (r *Router) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
