package types

import (
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
)

// RegisterRequest represents the request body for user registration
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest represents the request body for token login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest represents the request body for a password change
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// UpdateUserRequest is the admin-only user edit payload.
type UpdateUserRequest struct {
	FirstName *string      `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string      `json:"last_name" binding:"omitempty,max=150"`
	Role      *models.Role `json:"role" binding:"omitempty,oneof=user admin"`
}

// IngredientAmount is one ingredient line of a recipe payload.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" binding:"required"`
	Tags        []uuid.UUID        `json:"tags" binding:"required"`
	Image       string             `json:"image" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time" binding:"required"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Nil fields are left untouched; non-nil lists replace the current set.
type UpdateRecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uuid.UUID        `json:"tags"`
	Image       *string            `json:"image"`
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
}

// RecipeFilter holds the list query for recipes.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	PageRequest
}

// PageRequest is a page number plus page size, both 1-based and positive.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the row offset of the page.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
