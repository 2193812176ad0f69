package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/procurehq/procure/pkg/apperror"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware turns the last error attached to the context into
// a JSON error response.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return apperror.BadRequest("invalid request")
}

func mapError(err error) (int, errorPayload) {
	if kind, ok := apperror.KindOf(err); ok {
		message := err.Error()
		switch kind {
		case apperror.KindBadRequest:
			return http.StatusBadRequest, errorPayload{Type: "invalid_request", Message: message}
		case apperror.KindNotFound:
			return http.StatusNotFound, errorPayload{Type: "not_found", Message: message}
		case apperror.KindForbidden:
			return http.StatusForbidden, errorPayload{Type: "forbidden", Message: message}
		case apperror.KindUnauthorized:
			return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: message}
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "not found"}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}
