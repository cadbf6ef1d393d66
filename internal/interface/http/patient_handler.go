package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/pkg/response"
)

type PatientHandler struct {
	Svc       *application.PatientService
	Scheduler *application.Scheduler
	Logger    *logrus.Logger
}

func NewPatientHandler(svc *application.PatientService, scheduler *application.Scheduler, logger *logrus.Logger) *PatientHandler {
	return &PatientHandler{Svc: svc, Scheduler: scheduler, Logger: logger}
}

type patientRequest struct {
	Name  string `json:"name" binding:"required,max=120"`
	Age   int    `json:"age" binding:"required,min=1,max=120"`
	Phone string `json:"phone" binding:"required,phone10"`
	Email string `json:"email" binding:"required,email"`
}

func (r patientRequest) input() application.PatientInput {
	return application.PatientInput{Name: r.Name, Age: r.Age, Phone: r.Phone, Email: r.Email}
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Svc.Register(c.Request.Context(), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "patient registered", nil)
}

func (h *PatientHandler) Update(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "patient updated", nil)
}

func (h *PatientHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "patient", nil)
}

func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, patients, "patients", gin.H{"count": len(patients)})
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "deleted": true}, "patient deleted", nil)
}

func (h *PatientHandler) Search(c *gin.Context) {
	patients, err := h.Svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, patients, "patients", gin.H{"count": len(patients), "q": c.Query("q")})
}

func (h *PatientHandler) History(c *gin.Context) {
	history, err := h.Scheduler.PatientHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, history, "patient history", gin.H{"count": len(history)})
}
