package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/permissions"
)

// Authenticator resolves a bearer token to the acting user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*permissions.Actor, error)
}

// Authenticate resolves the Authorization header when present. Requests
// without the header continue anonymously; a malformed or invalid token is
// rejected with 401.
//
// Both "Bearer <jwt>" and "Token <jwt>" are accepted.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || token == "" || (!strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token")) {
			AbortWithError(c, apperrors.Unauthenticated("invalid authorization header format"))
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFrom(c) == nil {
			AbortWithError(c, apperrors.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}
