package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/events"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/permissions"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// RecipeService handles recipe operations
type RecipeService struct {
	repo      *repository.Repository
	images    *ImageService
	publisher events.Publisher
	log       *slog.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(repo *repository.Repository, images *ImageService, publisher events.Publisher, log *slog.Logger) *RecipeService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &RecipeService{
		repo:      repo,
		images:    images,
		publisher: publisher,
		log:       log.With("component", "recipe_service"),
	}
}

// CreateRecipe stores a recipe authored by actor together with its
// ingredient and tag links.
func (s *RecipeService) CreateRecipe(ctx context.Context, actor *permissions.Actor, req *types.CreateRecipeRequest) (types.RecipeResponse, error) {
	if err := permissions.CanMutateRecipe(http.MethodPost, actor, uuid.Nil); err != nil {
		return types.RecipeResponse{}, err
	}
	if err := validation.Apply(req, validation.CreateRecipeRules); err != nil {
		return types.RecipeResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, actor.ID, name, uuid.Nil); err != nil {
		return types.RecipeResponse{}, err
	}

	imageURL, err := s.images.Upload(ctx, req.Image)
	if err != nil {
		return types.RecipeResponse{}, err
	}

	recipe := &models.Recipe{
		AuthorID:    actor.ID,
		Name:        name,
		Image:       imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateRecipe(ctx, recipe); err != nil {
			return err
		}
		if err := addIngredients(ctx, tx, recipe.ID, req.Ingredients); err != nil {
			return err
		}
		return addTags(ctx, tx, recipe.ID, req.Tags)
	})
	if err != nil {
		s.images.Remove(ctx, imageURL)
		return types.RecipeResponse{}, err
	}

	s.log.Info("recipe created", "recipe_id", recipe.ID, "author_id", actor.ID)
	events.Emit(ctx, s.publisher, s.log, events.RecipeCreated, events.RecipeEvent{
		RecipeID:   recipe.ID,
		AuthorID:   actor.ID,
		Name:       recipe.Name,
		OccurredAt: time.Now().UTC(),
	})

	return s.GetRecipe(ctx, actor, recipe.ID)
}

// UpdateRecipe applies a partial update. Ingredient and tag lists, when
// present, replace the current sets: removed links are deleted, new links
// inserted and changed amounts updated.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor *permissions.Actor, id uuid.UUID, req *types.UpdateRecipeRequest) (types.RecipeResponse, error) {
	recipe, err := s.repo.FindRecipeByID(ctx, id)
	if err != nil {
		return types.RecipeResponse{}, err
	}
	if err := permissions.CanMutateRecipe(http.MethodPatch, actor, recipe.AuthorID); err != nil {
		return types.RecipeResponse{}, err
	}
	if err := validation.Apply(req, validation.UpdateRecipeRules); err != nil {
		return types.RecipeResponse{}, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != recipe.Name {
			if err := s.ensureNameFree(ctx, recipe.AuthorID, name, recipe.ID); err != nil {
				return types.RecipeResponse{}, err
			}
		}
		fields["name"] = name
	}
	if req.Text != nil {
		fields["text"] = *req.Text
	}
	if req.CookingTime != nil {
		fields["cooking_time"] = *req.CookingTime
	}

	var newImage string
	if req.Image != nil {
		newImage, err = s.images.Upload(ctx, *req.Image)
		if err != nil {
			return types.RecipeResponse{}, err
		}
		fields["image"] = newImage
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.UpdateRecipeFields(ctx, id, fields); err != nil {
			return err
		}
		if req.Ingredients != nil || req.Tags != nil {
			if err := tx.DeleteOrphanedRecipeLinks(ctx, id); err != nil {
				return err
			}
		}
		if req.Ingredients != nil {
			if err := reconcileIngredients(ctx, tx, id, req.Ingredients); err != nil {
				return err
			}
		}
		if req.Tags != nil {
			if err := reconcileTags(ctx, tx, id, req.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.images.Remove(ctx, newImage)
		return types.RecipeResponse{}, err
	}
	if newImage != "" && recipe.Image != newImage {
		s.images.Remove(ctx, recipe.Image)
	}

	s.log.Info("recipe updated", "recipe_id", id, "by", actor.ID)
	return s.GetRecipe(ctx, actor, id)
}

// DeleteRecipe removes a recipe. Favorites and cart entries go with it;
// ingredient and tag links lose their recipe reference.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actor *permissions.Actor, id uuid.UUID) error {
	recipe, err := s.repo.FindRecipeByID(ctx, id)
	if err != nil {
		return err
	}
	if err := permissions.CanMutateRecipe(http.MethodDelete, actor, recipe.AuthorID); err != nil {
		return err
	}
	if err := s.repo.DeleteRecipe(ctx, id); err != nil {
		return err
	}

	s.images.Remove(ctx, recipe.Image)
	s.log.Info("recipe deleted", "recipe_id", id, "by", actor.ID)
	events.Emit(ctx, s.publisher, s.log, events.RecipeDeleted, events.RecipeEvent{
		RecipeID:   id,
		AuthorID:   recipe.AuthorID,
		Name:       recipe.Name,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// GetRecipe returns the full projection of a recipe as seen by viewer.
func (s *RecipeService) GetRecipe(ctx context.Context, viewer *permissions.Actor, id uuid.UUID) (types.RecipeResponse, error) {
	recipe, err := s.repo.FindRecipeDetail(ctx, id)
	if err != nil {
		return types.RecipeResponse{}, err
	}
	out, err := s.project(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return types.RecipeResponse{}, err
	}
	return out[0], nil
}

// ListRecipes returns one page of recipes plus the total match count.
// The favorited and in-cart filters match nothing for anonymous viewers.
func (s *RecipeService) ListRecipes(ctx context.Context, viewer *permissions.Actor, f types.RecipeFilter) ([]types.RecipeResponse, int64, error) {
	filter := repository.RecipeFilter{
		AuthorID: f.AuthorID,
		TagSlugs: f.TagSlugs,
		Page:     repository.Page{Limit: f.Limit, Offset: f.Offset()},
	}
	if f.IsFavorited || f.IsInShoppingCart {
		if viewer == nil {
			return []types.RecipeResponse{}, 0, nil
		}
		if f.IsFavorited {
			filter.FavoritedBy = &viewer.ID
		}
		if f.IsInShoppingCart {
			filter.InCartOf = &viewer.ID
		}
	}

	recipes, total, err := s.repo.ListRecipes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.project(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// project resolves the viewer-dependent flags for a batch of recipes.
func (s *RecipeService) project(ctx context.Context, viewer *permissions.Actor, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	ids := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favoritesCount, err := s.repo.CountFavorites(ctx, ids)
	if err != nil {
		return nil, err
	}

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	followed := map[uuid.UUID]bool{}
	if viewer != nil {
		if favorited, err = s.repo.MemberRecipeIDs(ctx, models.RelationFavorite, viewer.ID, ids); err != nil {
			return nil, err
		}
		if inCart, err = s.repo.MemberRecipeIDs(ctx, models.RelationCart, viewer.ID, ids); err != nil {
			return nil, err
		}
		if followed, err = s.repo.FollowedAuthorIDs(ctx, viewer.ID, authorIDs); err != nil {
			return nil, err
		}
	}

	out := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		out = append(out, types.NewRecipeResponse(r, types.RecipeFlags{
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			AuthorSubscribed: followed[r.AuthorID],
			FavoritesCount:   favoritesCount[r.ID],
		}))
	}
	return out, nil
}

func (s *RecipeService) ensureNameFree(ctx context.Context, authorID uuid.UUID, name string, except uuid.UUID) error {
	taken, err := s.repo.RecipeNameTaken(ctx, authorID, name, except)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.Conflict("you already have a recipe with this name")
	}
	return nil
}

func addIngredients(ctx context.Context, tx *repository.Repository, recipeID uuid.UUID, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	if err := ensureIngredientsExist(ctx, tx, ids); err != nil {
		return err
	}

	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rid, iid := recipeID, item.ID
		rows = append(rows, models.RecipeIngredient{RecipeID: &rid, IngredientID: &iid, Amount: item.Amount})
	}
	return tx.InsertRecipeIngredients(ctx, rows)
}

func addTags(ctx context.Context, tx *repository.Repository, recipeID uuid.UUID, ids []uuid.UUID) error {
	if err := ensureTagsExist(ctx, tx, ids); err != nil {
		return err
	}
	return tx.InsertRecipeTags(ctx, recipeID, ids)
}

// reconcileIngredients makes the recipe's ingredient rows equal to items in
// three steps: delete removed, insert added, update changed amounts.
func reconcileIngredients(ctx context.Context, tx *repository.Repository, recipeID uuid.UUID, items []types.IngredientAmount) error {
	current, err := tx.RecipeIngredients(ctx, recipeID)
	if err != nil {
		return err
	}
	existing := make(map[uuid.UUID]models.RecipeIngredient, len(current))
	for _, row := range current {
		if row.IngredientID != nil {
			existing[*row.IngredientID] = row
		}
	}
	wanted := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		wanted[item.ID] = item.Amount
	}

	var removed []uuid.UUID
	for id := range existing {
		if _, keep := wanted[id]; !keep {
			removed = append(removed, id)
		}
	}
	if err := tx.DeleteRecipeIngredients(ctx, recipeID, removed); err != nil {
		return err
	}

	var added []types.IngredientAmount
	for _, item := range items {
		row, ok := existing[item.ID]
		if !ok {
			added = append(added, item)
			continue
		}
		if row.Amount != item.Amount {
			if err := tx.UpdateRecipeIngredientAmount(ctx, row.ID, item.Amount); err != nil {
				return err
			}
		}
	}
	if len(added) == 0 {
		return nil
	}
	return addIngredients(ctx, tx, recipeID, added)
}

func reconcileTags(ctx context.Context, tx *repository.Repository, recipeID uuid.UUID, ids []uuid.UUID) error {
	current, err := tx.RecipeTagIDs(ctx, recipeID)
	if err != nil {
		return err
	}
	existing := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		existing[id] = true
	}
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var removed, added []uuid.UUID
	for _, id := range current {
		if !wanted[id] {
			removed = append(removed, id)
		}
	}
	for _, id := range ids {
		if !existing[id] {
			added = append(added, id)
		}
	}

	if err := tx.DeleteRecipeTags(ctx, recipeID, removed); err != nil {
		return err
	}
	if len(added) == 0 {
		return nil
	}
	return addTags(ctx, tx, recipeID, added)
}

func ensureIngredientsExist(ctx context.Context, tx *repository.Repository, ids []uuid.UUID) error {
	found, err := tx.FindIngredientsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(found))
	for _, i := range found {
		known[i.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return apperrors.NotFound(fmt.Sprintf("ingredient %s not found", id))
		}
	}
	return nil
}

func ensureTagsExist(ctx context.Context, tx *repository.Repository, ids []uuid.UUID) error {
	found, err := tx.FindTagsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(found))
	for _, t := range found {
		known[t.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return apperrors.NotFound(fmt.Sprintf("tag %s not found", id))
		}
	}
	return nil
}
