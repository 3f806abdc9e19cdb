package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperrors"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    apperrors.Code    `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// NewErrorResponse maps err to its status and client-safe body. Errors
// that are not domain errors are reported as internal.
func NewErrorResponse(err error) (int, ErrorResponse) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code == apperrors.CodeInternal {
		return http.StatusInternalServerError, ErrorResponse{
			Error: apperrors.ErrInternal.Message,
			Code:  apperrors.CodeInternal,
		}
	}
	return appErr.HTTPStatus(), ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	}
}

// AbortWithError records err on the context and stops the chain. The
// response is written by ErrorHandler.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler writes the JSON response for the last error a handler
// recorded with c.Error. Internal errors are logged with their cause.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := NewErrorResponse(err)

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
		} else {
			log.Debug("request rejected", "path", c.Request.URL.Path, "code", body.Code, "error", err)
		}
		c.JSON(status, body)
	}
}

// Recovery turns a panic into a 500 JSON response.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: apperrors.ErrInternal.Message,
			Code:  apperrors.CodeInternal,
		})
	})
}
