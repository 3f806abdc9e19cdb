// Package api holds the gin handlers of the REST API.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// fail records err for middleware.ErrorHandler and stops the chain.
func fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// pathID parses the :id path parameter. A malformed id is reported as
// NotFound since no resource can live under it.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.NotFound("not found"))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes and validates the request body into v.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, validation.FromBindError(err))
		return false
	}
	return true
}

// queryFlag reads boolean filters sent as 1/0 or true/false.
func queryFlag(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "1", "true", "True":
		return true
	}
	return false
}
