package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

func (r *Repository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.conn(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, translate(err, "tags")
	}
	return tags, nil
}

func (r *Repository) FindTagByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := r.conn(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, translate(err, "tag")
	}
	return &tag, nil
}

// FindTagsByIDs returns the tags that exist among ids.
func (r *Repository) FindTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.conn(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, translate(err, "tags")
	}
	return tags, nil
}

// ListIngredients searches by name, case-insensitively. Prefix matches come
// before other substring matches; each group is ordered by name.
func (r *Repository) ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	query := r.conn(ctx).Model(&models.Ingredient{})

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		query = query.Order("name")
	} else {
		query = query.Where("LOWER(name) LIKE ?", "%"+name+"%").
			Clauses(clause.OrderBy{Expression: clause.Expr{
				SQL:  "CASE WHEN LOWER(name) LIKE ? THEN 0 ELSE 1 END, LOWER(name)",
				Vars: []any{name + "%"},
			}})
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, translate(err, "ingredients")
	}
	return ingredients, nil
}

func (r *Repository) FindIngredientByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.conn(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, translate(err, "ingredient")
	}
	return &ingredient, nil
}

// FindIngredientsByIDs returns the ingredients that exist among ids.
func (r *Repository) FindIngredientsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.conn(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, translate(err, "ingredients")
	}
	return ingredients, nil
}
