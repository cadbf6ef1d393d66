package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-clinic-scheduler/internal/interface/http"
	"github.com/oksasatya/go-clinic-scheduler/internal/interface/middleware"
)

// PatientModule registers /patients routes.
type PatientModule struct {
	Handler *handlers.PatientHandler
	Redis   *redis.Client
}

func NewPatientModule(h *handlers.PatientHandler, rdb *redis.Client) *PatientModule {
	return &PatientModule{Handler: h, Redis: rdb}
}

func (m *PatientModule) Name() string { return "patients" }

func (m *PatientModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/patients")
	g.Use(middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	writes := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	{
		g.GET("", m.Handler.List)
		g.POST("", writes, m.Handler.Create)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id", writes, m.Handler.Update)
		g.DELETE("/:id", writes, m.Handler.Delete)
		g.GET("/:id/history", m.Handler.History)
	}
}
