// Package permissions holds the access-control predicates. They are pure
// functions of the request method, the acting user and the resource owner.
package permissions

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
)

// Actor is the authenticated caller. A nil *Actor is an anonymous caller.
type Actor struct {
	ID       uuid.UUID
	Username string
	Role     models.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// IsSafeMethod reports whether method only reads state.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isOwnerMethod(method string) bool {
	switch method {
	case http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// CanMutateRecipe decides whether actor may perform method on a recipe
// written by authorID. Creation only needs an authenticated actor.
func CanMutateRecipe(method string, actor *Actor, authorID uuid.UUID) error {
	if IsSafeMethod(method) {
		return nil
	}
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if actor.IsAdmin() {
		return nil
	}
	if method == http.MethodPost {
		return nil
	}
	if isOwnerMethod(method) && actor.ID == authorID {
		return nil
	}
	return apperrors.Forbidden("you do not have permission to perform this action")
}

// CanMutateUser decides whether actor may edit or remove user accounts
// through the admin endpoints.
func CanMutateUser(method string, actor *Actor) error {
	if IsSafeMethod(method) {
		return nil
	}
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if actor.IsAdmin() {
		return nil
	}
	return apperrors.Forbidden("you do not have permission to perform this action")
}
