package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limaJavier/timetabling/internal/logger"
	"github.com/limaJavier/timetabling/pkg/assignment"
	"github.com/limaJavier/timetabling/pkg/coloring"
	"github.com/limaJavier/timetabling/pkg/dataset"
	"github.com/limaJavier/timetabling/pkg/timetable"
)

// Envelope is the body of every JSON response but /healthz and /metrics.
type Envelope struct {
	Data  any            `json:"data,omitempty"`
	Error *Error         `json:"error,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInvalidRun = "INVALID_RUN"
	CodeInfeasible = "INFEASIBLE"
	CodeInternal   = "INTERNAL_ERROR"
)

func JSON(c *gin.Context, status int, data any) {
	c.Header("Cache-Control", "no-store")
	envelope := Envelope{Data: data}
	if runID := c.GetString(logger.RunIDKey); runID != "" {
		envelope.Meta = map[string]any{logger.RunIDKey: runID}
	}
	c.JSON(status, envelope)
}

func Fail(c *gin.Context, err error) {
	appErr := classify(err)
	c.Header("Cache-Control", "no-store")
	envelope := Envelope{Error: appErr}
	if runID := c.GetString(logger.RunIDKey); runID != "" {
		envelope.Meta = map[string]any{logger.RunIDKey: runID}
	}
	c.AbortWithStatusJSON(appErr.Status, envelope)
}

// classify maps domain errors onto HTTP statuses.
func classify(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var infeasible *assignment.InfeasibleError
	switch {
	case errors.As(err, &infeasible):
		return &Error{Code: CodeInfeasible, Message: err.Error(), Status: http.StatusUnprocessableEntity}
	case errors.Is(err, coloring.ErrUnknownStrategy),
		errors.Is(err, assignment.ErrUnknownMatcher),
		errors.Is(err, dataset.ErrMissingColumn),
		errors.Is(err, dataset.ErrNoHeader):
		return &Error{Code: CodeValidation, Message: err.Error(), Status: http.StatusBadRequest}
	case errors.Is(err, coloring.ErrIncomplete),
		errors.Is(err, coloring.ErrConflict),
		errors.Is(err, timetable.ErrUnscheduled),
		errors.Is(err, timetable.ErrSlotClash):
		return &Error{Code: CodeInvalidRun, Message: err.Error(), Status: http.StatusUnprocessableEntity}
	}
	return &Error{Code: CodeInternal, Message: "internal server error", Status: http.StatusInternalServerError}
}

func (err *Error) Error() string {
	return err.Message
}

func validationError(err error) *Error {
	return &Error{Code: CodeValidation, Message: err.Error(), Status: http.StatusBadRequest}
}
