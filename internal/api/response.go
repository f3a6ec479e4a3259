package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitgrid/internal/errors"
)

// Envelope is the body of every API response
type Envelope struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *APIError      `json:"error,omitempty"`
}

// APIError describes a failed request
type APIError struct {
	Code      int      `json:"code"`
	Kind      string   `json:"kind"`
	Message   string   `json:"message"`
	Retryable bool     `json:"retryable,omitempty"`
	Weekday   string   `json:"weekday,omitempty"`
	Invalid   []string `json:"invalid,omitempty"`
}

// Success writes data in the envelope
func Success(c *gin.Context, status int, data any, meta map[string]any) {
	c.JSON(status, Envelope{Data: data, Meta: meta})
}

// Fail writes a bare error with the given status and kind
func Fail(c *gin.Context, status int, kind, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Error: &APIError{Code: status, Kind: kind, Message: msg}})
}

// StatusFor maps an error kind to an HTTP status
func StatusFor(err error) int {
	switch errors.KindOf(err) {
	case errors.KindHabitNotFound, errors.KindEntryNotFound:
		return http.StatusNotFound
	case errors.KindNotScheduled:
		return http.StatusUnprocessableEntity
	case errors.KindDuplicateEntry:
		return http.StatusConflict
	case errors.KindSystemDefinedHabit:
		return http.StatusForbidden
	case errors.KindStorage, "":
		return http.StatusInternalServerError
	}
	if errors.IsValidation(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// HandleError logs err with the request id and writes the matching error envelope
func HandleError(c *gin.Context, err error) {
	status := StatusFor(err)
	kind := string(errors.KindOf(err))
	if kind == "" {
		kind = string(errors.KindStorage)
	}

	log := requestLogger(c)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
	} else {
		log.Debug("request rejected", "status", status, "kind", kind, "error", err)
	}

	apiErr := &APIError{
		Code:      status,
		Kind:      kind,
		Message:   err.Error(),
		Retryable: errors.Retryable(err) || status == http.StatusInternalServerError,
	}
	if status == http.StatusInternalServerError {
		// storage details stay in the log
		apiErr.Message = "internal error, please retry"
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		apiErr.Weekday = e.Weekday
		apiErr.Invalid = e.Invalid
	}
	c.AbortWithStatusJSON(status, Envelope{Error: apiErr})
}
