package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/scheduling"
	"github.com/oksasatya/go-clinic-scheduler/pkg/response"
)

const maxPhotoBytes = 5 << 20

type DoctorHandler struct {
	Svc       *application.DoctorService
	Scheduler *application.Scheduler
	Logger    *logrus.Logger
}

func NewDoctorHandler(svc *application.DoctorService, scheduler *application.Scheduler, logger *logrus.Logger) *DoctorHandler {
	return &DoctorHandler{Svc: svc, Scheduler: scheduler, Logger: logger}
}

type doctorRequest struct {
	Name          string           `json:"name" binding:"required"`
	Specialty     string           `json:"specialty" binding:"required"`
	WorkStart     string           `json:"work_start" binding:"required,hhmm"`
	WorkEnd       string           `json:"work_end" binding:"required,hhmm"`
	AvailableDays []entity.Weekday `json:"available_days" binding:"required,min=1,unique,dive,weekday"`
}

func (r doctorRequest) input() application.DoctorInput {
	return application.DoctorInput{
		Name:          r.Name,
		Specialty:     r.Specialty,
		WorkStart:     r.WorkStart,
		WorkEnd:       r.WorkEnd,
		AvailableDays: r.AvailableDays,
	}
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req doctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Svc.Register(c.Request.Context(), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, d, "doctor registered", nil)
}

func (h *DoctorHandler) Update(c *gin.Context) {
	var req doctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, d, "doctor updated", nil)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	d, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, d, "doctor", nil)
}

func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.Svc.List(c.Request.Context(), c.Query("specialty"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, doctors, "doctors", gin.H{"count": len(doctors)})
}

func (h *DoctorHandler) Specialties(c *gin.Context) {
	specialties, err := h.Svc.Specialties(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, specialties, "specialties", nil)
}

// Agenda serves GET /doctors/:id/agenda?range=today|thisWeek|next7Days|all.
func (h *DoctorHandler) Agenda(c *gin.Context) {
	r, ok := scheduling.ParseRange(c.Query("range"))
	if !ok {
		invalidQuery(c, "range", "must be one of: today, thisWeek, next7Days, all")
		return
	}
	agenda, err := h.Scheduler.AgendaFor(c.Request.Context(), c.Param("id"), r)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, agenda, "agenda", gin.H{"range": r, "count": len(agenda)})
}

// UploadPhoto accepts a multipart "photo" file.
func (h *DoctorHandler) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes)
	fh, err := c.FormFile("photo")
	if err != nil {
		invalidQuery(c, "photo", "is required and must be at most 5MB")
		return
	}
	f, err := fh.Open()
	if err != nil {
		invalidQuery(c, "photo", "could not be read")
		return
	}
	defer func() { _ = f.Close() }()

	d, err := h.Svc.UploadPhoto(c.Request.Context(), c.Param("id"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, d, "photo uploaded", nil)
}
