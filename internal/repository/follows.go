package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
)

func (r *Repository) InsertFollow(ctx context.Context, userID, authorID uuid.UUID) error {
	err := r.conn(ctx).Create(&models.Follow{UserID: userID, AuthorID: authorID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("you are already subscribed to this author").WithCause(err)
	}
	return translate(err, "subscription")
}

func (r *Repository) FollowExists(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "subscription")
	}
	return count > 0, nil
}

// DeleteFollow removes the subscription and reports how many rows went away.
func (r *Repository) DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) (int64, error) {
	res := r.conn(ctx).Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if res.Error != nil {
		return 0, translate(res.Error, "subscription")
	}
	return res.RowsAffected, nil
}

// FollowedAuthorIDs returns which of authorIDs the user follows.
func (r *Repository) FollowedAuthorIDs(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	followed := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return followed, nil
	}

	var ids []uuid.UUID
	err := r.conn(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, translate(err, "subscriptions")
	}
	for _, id := range ids {
		followed[id] = true
	}
	return followed, nil
}

// ListFollowedAuthors returns one page of the authors userID follows,
// ordered by username, plus the total.
func (r *Repository) ListFollowedAuthors(ctx context.Context, userID uuid.UUID, page Page) ([]models.User, int64, error) {
	query := r.conn(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "subscriptions")
	}

	var authors []models.User
	if err := page.apply(query.Select("users.*").Order("users.username")).Find(&authors).Error; err != nil {
		return nil, 0, translate(err, "subscriptions")
	}
	return authors, total, nil
}
