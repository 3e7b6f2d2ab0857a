package handler

import (
	"net/http"

	"worktracker/internal/service"
	"worktracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// writeError maps service errors onto HTTP statuses. Unknown errors become 500 and are
// attached to the context for the request log.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, response.Error(status, "Internal server error"))
		return
	}
	c.JSON(status, response.Error(status, err.Error()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRequestNotPending):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotRequestParty):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidRequestID),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidRequestType),
		errors.Is(err, service.ErrInvalidDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
