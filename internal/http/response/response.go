package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daydif/daydif-backend/internal/platform/apperr"
)

// OK wraps payload fields in the success envelope.
func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Fail writes the error envelope with the given status. Retryable marks
// failures the client may resolve by calling retry, not by resending the
// same request.
func Fail(c *gin.Context, status int, err error, retryable bool) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	body := gin.H{"success": false, "error": msg}
	if retryable {
		body["retryable"] = true
	}
	c.JSON(status, body)
}

// StatusFor maps service errors onto HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the error envelope with the mapped status.
func FromError(c *gin.Context, err error) {
	Fail(c, StatusFor(err), err, false)
}
