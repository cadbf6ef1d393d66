package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/pkg/response"
)

type StatsHandler struct {
	Svc    *application.StatsService
	Logger *logrus.Logger
}

func NewStatsHandler(svc *application.StatsService, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{Svc: svc, Logger: logger}
}

func (h *StatsHandler) Summary(c *gin.Context) {
	sum, err := h.Svc.Summary(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, sum, "summary", nil)
}

func (h *StatsHandler) Doctors(c *gin.Context) {
	ranking, err := h.Svc.DoctorRanking(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	var busiest *application.DoctorStat
	if len(ranking) > 0 && ranking[0].Appointments > 0 {
		busiest = &ranking[0]
	}
	response.Success(c, http.StatusOK, gin.H{"busiest": busiest, "ranking": ranking}, "doctor stats", nil)
}

func (h *StatsHandler) Specialties(c *gin.Context) {
	ranking, err := h.Svc.SpecialtyRanking(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	var top *application.SpecialtyStat
	if len(ranking) > 0 && ranking[0].Appointments > 0 {
		top = &ranking[0]
	}
	response.Success(c, http.StatusOK, gin.H{"top": top, "ranking": ranking}, "specialty stats", nil)
}
