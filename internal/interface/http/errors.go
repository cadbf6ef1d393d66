package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/pkg/response"
	"github.com/oksasatya/go-clinic-scheduler/pkg/validation"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k application.Kind) int {
	switch k {
	case application.KindPatientNotFound, application.KindDoctorNotFound, application.KindNotFound:
		return http.StatusNotFound
	case application.KindSlotTaken, application.KindEmailTaken, application.KindInvalidTransition:
		return http.StatusConflict
	case application.KindStorage:
		return http.StatusServiceUnavailable
	case "":
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// fail writes err as an error envelope carrying its kind.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	var e *application.Error
	if !errors.As(err, &e) {
		if logger != nil {
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("unhandled error")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	status := StatusFor(e.Kind)
	if e.Retryable() {
		c.Header("Retry-After", "1")
	}
	response.Error[any](c, status, e.Message, response.ErrorBody{Kind: string(e.Kind), Details: e.Details})
}

// badRequest reports a payload or query that could not be bound.
func badRequest(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", response.ErrorBody{
		Kind:    string(application.KindInvalidInput),
		Details: validation.ToDetails(err),
	})
}

func invalidQuery(c *gin.Context, field, msg string) {
	response.Error[any](c, http.StatusBadRequest, "invalid query", response.ErrorBody{
		Kind:    string(application.KindInvalidInput),
		Details: map[string]string{field: msg},
	})
}
