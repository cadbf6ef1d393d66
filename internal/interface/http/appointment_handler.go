package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	"github.com/oksasatya/go-clinic-scheduler/pkg/response"
)

type AppointmentHandler struct {
	Scheduler *application.Scheduler
	Logger    *logrus.Logger
}

func NewAppointmentHandler(scheduler *application.Scheduler, logger *logrus.Logger) *AppointmentHandler {
	return &AppointmentHandler{Scheduler: scheduler, Logger: logger}
}

// Fields are not tagged as required: the scheduler reports missing fields
// itself so that rejections keep their kind.
type scheduleRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Reason    string `json:"reason"`
}

type cancelByTokenRequest struct {
	Token string `json:"token" form:"token" binding:"required"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.Scheduler.Schedule(c.Request.Context(), application.ScheduleRequest{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, a, "appointment scheduled", nil)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	a, err := h.Scheduler.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, a, "appointment", nil)
}

// List serves GET /appointments?status=&date=&doctor_id=&patient_id=.
func (h *AppointmentHandler) List(c *gin.Context) {
	f := application.ListFilter{
		Date:      c.Query("date"),
		DoctorID:  c.Query("doctor_id"),
		PatientID: c.Query("patient_id"),
	}
	if s := c.Query("status"); s != "" {
		st, ok := entity.ParseStatus(s)
		if !ok {
			invalidQuery(c, "status", "must be one of: scheduled, completed, cancelled")
			return
		}
		f.Status = st
	}
	if f.Date != "" && !entity.IsValidDate(f.Date) {
		invalidQuery(c, "date", "must be a date in YYYY-MM-DD format")
		return
	}
	views, err := h.Scheduler.List(c.Request.Context(), f)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, views, "appointments", gin.H{"count": len(views)})
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	a, err := h.Scheduler.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, a, "appointment cancelled", nil)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	a, err := h.Scheduler.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, a, "appointment completed", nil)
}

// CancelByToken accepts the token from the JSON body or the ?token= query.
func (h *AppointmentHandler) CancelByToken(c *gin.Context) {
	var req cancelByTokenRequest
	if err := c.ShouldBind(&req); err != nil {
		if req.Token = c.Query("token"); req.Token == "" {
			badRequest(c, err)
			return
		}
	}
	a, err := h.Scheduler.CancelByToken(c.Request.Context(), req.Token)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, a, "appointment cancelled", nil)
}
