package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-clinic-scheduler/internal/interface/http"
	"github.com/oksasatya/go-clinic-scheduler/internal/interface/middleware"
)

// AppointmentModule registers /appointments routes.
type AppointmentModule struct {
	Handler *handlers.AppointmentHandler
	Redis   *redis.Client
}

func NewAppointmentModule(h *handlers.AppointmentHandler, rdb *redis.Client) *AppointmentModule {
	return &AppointmentModule{Handler: h, Redis: rdb}
}

func (m *AppointmentModule) Name() string { return "appointments" }

func (m *AppointmentModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/appointments")
	g.Use(middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	writes := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIPAndPath(), nil)
	// cancel links arrive from the public internet
	tokenLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIP(), nil)
	{
		g.GET("", m.Handler.List)
		g.POST("", writes, m.Handler.Create)
		g.POST("/cancel-by-token", tokenLimiter, m.Handler.CancelByToken)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id/cancel", writes, m.Handler.Cancel)
		g.PUT("/:id/complete", writes, m.Handler.Complete)
	}
}
