package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
)

// RecipeFilter narrows a recipe listing. Every set field must match.
type RecipeFilter struct {
	AuthorID *uuid.UUID
	// TagSlugs requires the recipe to carry every listed tag.
	TagSlugs []string
	// FavoritedBy and InCartOf restrict to recipes in that user's lists.
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Page        Page
}

func withRecipeDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("RecipeTags.Tag").
		Preload("RecipeIngredients.Ingredient")
}

// CreateRecipe inserts the recipe row only; join rows are inserted
// separately.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	err := r.conn(ctx).Omit(clause.Associations).Create(recipe).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("you already have a recipe with this name").WithCause(err)
	}
	return translate(err, "recipe")
}

// FindRecipeByID loads the bare recipe row.
func (r *Repository) FindRecipeByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.conn(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, translate(err, "recipe")
	}
	return &recipe, nil
}

// FindRecipeDetail loads the recipe with author, tags and ingredients.
func (r *Repository) FindRecipeDetail(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withRecipeDetail(r.conn(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, translate(err, "recipe")
	}
	return &recipe, nil
}

// RecipeNameTaken reports whether author already has a recipe called name,
// ignoring the recipe identified by except.
func (r *Repository) RecipeNameTaken(ctx context.Context, authorID uuid.UUID, name string, except uuid.UUID) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&models.Recipe{}).
		Where("author_id = ? AND name = ? AND id <> ?", authorID, name, except).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "recipe")
	}
	return count > 0, nil
}

// ListRecipes returns one page of recipes, newest first, plus the total
// number of matches.
func (r *Repository) ListRecipes(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	query := r.conn(ctx).Model(&models.Recipe{})

	if f.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *f.AuthorID)
	}
	for _, slug := range f.TagSlugs {
		query = query.Where(
			"EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE rt.recipe_id = recipes.id AND t.slug = ?)",
			slug,
		)
	}
	if f.FavoritedBy != nil {
		query = query.Where("EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?)", *f.FavoritedBy)
	}
	if f.InCartOf != nil {
		query = query.Where("EXISTS (SELECT 1 FROM shopping_cart_entries c WHERE c.recipe_id = recipes.id AND c.user_id = ?)", *f.InCartOf)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "recipes")
	}

	var recipes []models.Recipe
	err := f.Page.apply(withRecipeDetail(query)).
		Order("recipes.pub_date DESC").
		Order("recipes.id").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, translate(err, "recipes")
	}
	return recipes, total, nil
}

// UpdateRecipeFields applies scalar column updates.
func (r *Repository) UpdateRecipeFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.conn(ctx).Model(&models.Recipe{}).Where("id = ?", id).Updates(fields).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("you already have a recipe with this name").WithCause(err)
	}
	return translate(err, "recipe")
}

func (r *Repository) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	res := r.conn(ctx).Delete(&models.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "recipe")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("recipe not found")
	}
	return nil
}

// RecipeIngredients returns the ingredient rows of a recipe.
func (r *Repository) RecipeIngredients(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeIngredient, error) {
	var rows []models.RecipeIngredient
	if err := r.conn(ctx).Where("recipe_id = ?", recipeID).Find(&rows).Error; err != nil {
		return nil, translate(err, "recipe ingredients")
	}
	return rows, nil
}

func (r *Repository) InsertRecipeIngredients(ctx context.Context, rows []models.RecipeIngredient) error {
	if len(rows) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Omit(clause.Associations).Create(&rows).Error, "recipe ingredient")
}

// DeleteRecipeIngredients removes the rows linking recipeID to the given
// ingredients.
func (r *Repository) DeleteRecipeIngredients(ctx context.Context, recipeID uuid.UUID, ingredientIDs []uuid.UUID) error {
	if len(ingredientIDs) == 0 {
		return nil
	}
	err := r.conn(ctx).
		Where("recipe_id = ? AND ingredient_id IN ?", recipeID, ingredientIDs).
		Delete(&models.RecipeIngredient{}).Error
	return translate(err, "recipe ingredients")
}

// DeleteOrphanedRecipeLinks removes ingredient and tag rows of a recipe
// whose ingredient or tag was deleted.
func (r *Repository) DeleteOrphanedRecipeLinks(ctx context.Context, recipeID uuid.UUID) error {
	db := r.conn(ctx)
	if err := db.Where("recipe_id = ? AND ingredient_id IS NULL", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return translate(err, "recipe ingredients")
	}
	return translate(db.Where("recipe_id = ? AND tag_id IS NULL", recipeID).Delete(&models.RecipeTag{}).Error, "recipe tags")
}

func (r *Repository) UpdateRecipeIngredientAmount(ctx context.Context, rowID uuid.UUID, amount int) error {
	err := r.conn(ctx).Model(&models.RecipeIngredient{}).Where("id = ?", rowID).Update("amount", amount).Error
	return translate(err, "recipe ingredient")
}

// RecipeTagIDs returns the ids of the live tags attached to a recipe.
func (r *Repository) RecipeTagIDs(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	var rows []models.RecipeTag
	if err := r.conn(ctx).Where("recipe_id = ? AND tag_id IS NOT NULL", recipeID).Find(&rows).Error; err != nil {
		return nil, translate(err, "recipe tags")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, *row.TagID)
	}
	return ids, nil
}

func (r *Repository) InsertRecipeTags(ctx context.Context, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rid, tid := recipeID, id
		rows = append(rows, models.RecipeTag{RecipeID: &rid, TagID: &tid})
	}
	return translate(r.conn(ctx).Omit(clause.Associations).Create(&rows).Error, "recipe tag")
}

func (r *Repository) DeleteRecipeTags(ctx context.Context, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	err := r.conn(ctx).
		Where("recipe_id = ? AND tag_id IN ?", recipeID, tagIDs).
		Delete(&models.RecipeTag{}).Error
	return translate(err, "recipe tags")
}

// ListRecipesByAuthor returns the author's newest recipes, at most limit.
// A limit below one returns every recipe.
func (r *Repository) ListRecipesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	query := r.conn(ctx).Where("author_id = ?", authorID).Order("pub_date DESC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, translate(err, "recipes")
	}
	return recipes, nil
}

type groupCount struct {
	GroupKey uuid.UUID
	Total    int64
}

// CountRecipesByAuthors returns the number of recipes per author.
func (r *Repository) CountRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &models.Recipe{}, "author_id", authorIDs)
}

// CountFavorites returns how many users favorited each recipe.
func (r *Repository) CountFavorites(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &models.Favorite{}, "recipe_id", recipeIDs)
}

func (r *Repository) countBy(ctx context.Context, model any, column string, keys []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(keys))
	if len(keys) == 0 {
		return counts, nil
	}

	var rows []groupCount
	err := r.conn(ctx).Model(model).
		Select(column+" AS group_key, COUNT(*) AS total").
		Where(column+" IN ?", keys).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "counts")
	}
	for _, row := range rows {
		counts[row.GroupKey] = row.Total
	}
	return counts, nil
}
