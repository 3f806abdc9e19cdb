package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/permissions"
)

const (
	actorKey  = "actor"
	userIDKey = "user_id"
)

// SetActor stores the authenticated caller on the request context.
func SetActor(c *gin.Context, actor *permissions.Actor) {
	c.Set(actorKey, actor)
	c.Set(userIDKey, actor.ID)
}

// ActorFrom returns the authenticated caller, or nil for anonymous requests.
func ActorFrom(c *gin.Context) *permissions.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*permissions.Actor)
	return actor
}
