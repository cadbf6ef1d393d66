package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-clinic-scheduler/internal/interface/http"
	"github.com/oksasatya/go-clinic-scheduler/internal/interface/middleware"
)

// DoctorModule registers /doctors routes.
type DoctorModule struct {
	Handler *handlers.DoctorHandler
	Redis   *redis.Client
}

func NewDoctorModule(h *handlers.DoctorHandler, rdb *redis.Client) *DoctorModule {
	return &DoctorModule{Handler: h, Redis: rdb}
}

func (m *DoctorModule) Name() string { return "doctors" }

func (m *DoctorModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/doctors")
	g.Use(middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	writes := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	uploads := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	{
		g.GET("", m.Handler.List)
		g.POST("", writes, m.Handler.Create)
		g.GET("/specialties", m.Handler.Specialties)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id", writes, m.Handler.Update)
		g.GET("/:id/agenda", m.Handler.Agenda)
		g.POST("/:id/photo", uploads, m.Handler.UploadPhoto)
	}
}
