package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
)

// InsertMembership adds recipeID to the user's list. The unique index turns
// a concurrent duplicate into a Conflict.
func (r *Repository) InsertMembership(ctx context.Context, rel models.Relation, userID, recipeID uuid.UUID) error {
	err := r.conn(ctx).Create(rel.NewRow(userID, recipeID)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict(fmt.Sprintf("recipe is already in %s", rel.Label())).WithCause(err)
	}
	return translate(err, string(rel))
}

func (r *Repository) MembershipExists(ctx context.Context, rel models.Relation, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := r.conn(ctx).Table(rel.Table()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, string(rel))
	}
	return count > 0, nil
}

// DeleteMembership removes the pair and reports how many rows went away.
func (r *Repository) DeleteMembership(ctx context.Context, rel models.Relation, userID, recipeID uuid.UUID) (int64, error) {
	res := r.conn(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(rel.NewRow(uuid.Nil, uuid.Nil))
	if res.Error != nil {
		return 0, translate(res.Error, string(rel))
	}
	return res.RowsAffected, nil
}

// MemberRecipeIDs returns which of recipeIDs are in the user's list.
func (r *Repository) MemberRecipeIDs(ctx context.Context, rel models.Relation, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	members := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return members, nil
	}

	var ids []uuid.UUID
	err := r.conn(ctx).Table(rel.Table()).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, translate(err, string(rel))
	}
	for _, id := range ids {
		members[id] = true
	}
	return members, nil
}
