package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/permissions"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ToggleOp selects whether Toggle adds or removes the pair.
type ToggleOp int

const (
	OpAdd ToggleOp = iota
	OpRemove
)

// MembershipService maintains a user's favorites and shopping cart. Both
// relations share one implementation parametrized by models.Relation.
type MembershipService struct {
	repo *repository.Repository
	log  *slog.Logger
}

func NewMembershipService(repo *repository.Repository, log *slog.Logger) *MembershipService {
	return &MembershipService{repo: repo, log: log.With("component", "membership_service")}
}

// Toggle adds recipeID to or removes it from the actor's rel list inside one
// transaction. Adding returns the recipe summary; removing returns nil.
//
// Adding fails with NotFound for an unknown recipe and Conflict when the
// pair exists. Removing fails with NotFound when the pair does not exist.
func (s *MembershipService) Toggle(ctx context.Context, actor *permissions.Actor, recipeID uuid.UUID, rel models.Relation, op ToggleOp) (*types.RecipeSummary, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if !rel.Valid() {
		return nil, apperrors.InvalidArgument(fmt.Sprintf("unknown relation %q", rel))
	}

	var summary *types.RecipeSummary
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		recipe, err := tx.FindRecipeByID(ctx, recipeID)
		if err != nil {
			return err
		}

		switch op {
		case OpAdd:
			exists, err := tx.MembershipExists(ctx, rel, actor.ID, recipeID)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.Conflict(fmt.Sprintf("recipe is already in %s", rel.Label()))
			}
			if err := tx.InsertMembership(ctx, rel, actor.ID, recipeID); err != nil {
				return err
			}
			projection := types.NewRecipeSummary(recipe)
			summary = &projection
		case OpRemove:
			removed, err := tx.DeleteMembership(ctx, rel, actor.ID, recipeID)
			if err != nil {
				return err
			}
			if removed == 0 {
				return apperrors.NotFound(fmt.Sprintf("recipe is not in %s", rel.Label()))
			}
		default:
			return apperrors.InvalidArgument("unknown toggle operation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("membership changed", "relation", rel, "user_id", actor.ID, "recipe_id", recipeID, "add", op == OpAdd)
	return summary, nil
}

// Add is Toggle with OpAdd.
func (s *MembershipService) Add(ctx context.Context, actor *permissions.Actor, recipeID uuid.UUID, rel models.Relation) (types.RecipeSummary, error) {
	summary, err := s.Toggle(ctx, actor, recipeID, rel, OpAdd)
	if err != nil {
		return types.RecipeSummary{}, err
	}
	return *summary, nil
}

// Remove is Toggle with OpRemove.
func (s *MembershipService) Remove(ctx context.Context, actor *permissions.Actor, recipeID uuid.UUID, rel models.Relation) error {
	_, err := s.Toggle(ctx, actor, recipeID, rel, OpRemove)
	return err
}
