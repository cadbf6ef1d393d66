package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-clinic-scheduler/internal/interface/http"
	"github.com/oksasatya/go-clinic-scheduler/internal/interface/middleware"
)

type StatsModule struct {
	Handler *handlers.StatsHandler
	Redis   *redis.Client
}

func NewStatsModule(h *handlers.StatsHandler, rdb *redis.Client) *StatsModule {
	return &StatsModule{Handler: h, Redis: rdb}
}

func (m *StatsModule) Name() string { return "stats" }

func (m *StatsModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/stats")
	g.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	{
		g.GET("/summary", m.Handler.Summary)
		g.GET("/doctors", m.Handler.Doctors)
		g.GET("/specialties", m.Handler.Specialties)
	}
}
