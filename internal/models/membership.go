package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Relation names one of the user-to-recipe membership lists.
type Relation string

const (
	RelationFavorite Relation = "favorite"
	RelationCart     Relation = "shopping_cart"
)

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool {
	return r == RelationFavorite || r == RelationCart
}

// Table returns the join table backing the relation.
func (r Relation) Table() string {
	if r == RelationCart {
		return "shopping_cart_entries"
	}
	return "favorites"
}

// NewRow returns a new persisted row for the relation.
func (r Relation) NewRow(userID, recipeID uuid.UUID) any {
	if r == RelationCart {
		return &ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	}
	return &Favorite{UserID: userID, RecipeID: recipeID}
}

// Label is the human readable list name used in error messages.
func (r Relation) Label() string {
	if r == RelationCart {
		return "shopping cart"
	}
	return "favorites"
}

type Favorite struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_recipe" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_recipe;index" json:"recipe_id"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

type ShoppingCartEntry struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_recipe;index" json:"recipe_id"`
	Recipe    *Recipe   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (e *ShoppingCartEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Follow{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&RecipeTag{},
		&Favorite{},
		&ShoppingCartEntry{},
	}
}
