package repository

import (
	"context"

	"github.com/google/uuid"
)

// CartIngredientRow is one (recipe, ingredient, amount) line reachable from
// a user's shopping cart.
type CartIngredientRow struct {
	RecipeID        uuid.UUID
	IngredientID    uuid.UUID
	Name            string
	MeasurementUnit string
	Amount          int
}

// CartIngredientRows returns every ingredient line of every recipe in the
// user's cart, at most limit rows. Lines whose ingredient was deleted are
// skipped by the inner join.
func (r *Repository) CartIngredientRows(ctx context.Context, userID uuid.UUID, limit int) ([]CartIngredientRow, error) {
	var rows []CartIngredientRow
	query := r.conn(ctx).Table("shopping_cart_entries AS c").
		Select("c.recipe_id AS recipe_id, ri.ingredient_id AS ingredient_id, i.name AS name, i.measurement_unit AS measurement_unit, ri.amount AS amount").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = c.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("c.user_id = ?", userID)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, translate(err, "shopping cart")
	}
	return rows, nil
}
