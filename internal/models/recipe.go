package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe is owned by its author. Join rows pointing at a deleted recipe keep
// existing with a NULL recipe reference.
type Recipe struct {
	ID                uuid.UUID          `gorm:"type:varchar(36);primarykey" json:"id"`
	AuthorID          uuid.UUID          `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipes_author_name" json:"author_id"`
	Author            *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Name              string             `gorm:"size:200;not null;uniqueIndex:idx_recipes_author_name" json:"name"`
	Image             string             `gorm:"size:512;not null" json:"image"`
	Text              string             `gorm:"type:text;not null" json:"text"`
	CookingTime       int                `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1" json:"cooking_time"`
	PubDate           time.Time          `gorm:"not null;index" json:"pub_date"`
	RecipeIngredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:SET NULL" json:"ingredients,omitempty"`
	RecipeTags        []RecipeTag        `gorm:"foreignKey:RecipeID;constraint:OnDelete:SET NULL" json:"tags,omitempty"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.PubDate.IsZero() {
		r.PubDate = time.Now().UTC()
	}
	return nil
}

// Tags returns the tags attached through loaded RecipeTag rows, skipping
// rows whose tag was deleted.
func (r *Recipe) Tags() []Tag {
	tags := make([]Tag, 0, len(r.RecipeTags))
	for _, rt := range r.RecipeTags {
		if rt.Tag != nil {
			tags = append(tags, *rt.Tag)
		}
	}
	return tags
}

// RecipeIngredient says the recipe needs Amount units of the ingredient.
type RecipeIngredient struct {
	ID           uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID     *uuid.UUID  `gorm:"type:varchar(36);uniqueIndex:idx_recipe_ingredients_pair" json:"recipe_id"`
	IngredientID *uuid.UUID  `gorm:"type:varchar(36);uniqueIndex:idx_recipe_ingredients_pair;index" json:"ingredient_id"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:SET NULL" json:"ingredient,omitempty"`
	Amount       int         `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1" json:"amount"`
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}

type RecipeTag struct {
	ID       uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID *uuid.UUID `gorm:"type:varchar(36);uniqueIndex:idx_recipe_tags_pair" json:"recipe_id"`
	TagID    *uuid.UUID `gorm:"type:varchar(36);uniqueIndex:idx_recipe_tags_pair;index" json:"tag_id"`
	Tag      *Tag       `gorm:"foreignKey:TagID;constraint:OnDelete:SET NULL" json:"tag,omitempty"`
}

func (rt *RecipeTag) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}
