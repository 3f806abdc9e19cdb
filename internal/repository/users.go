package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
)

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.conn(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("a user with that email or username already exists").WithCause(err)
	}
	return translate(err, "user")
}

func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.conn(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.conn(ctx).First(&user, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// ListUsers returns one page of users ordered by username, plus the total.
func (r *Repository) ListUsers(ctx context.Context, page Page) ([]models.User, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "users")
	}

	var users []models.User
	if err := page.apply(r.conn(ctx).Order("username")).Find(&users).Error; err != nil {
		return nil, 0, translate(err, "users")
	}
	return users, total, nil
}

// UpdateUser applies the given column values.
func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.conn(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.UpdateUser(ctx, id, map[string]any{"password_hash": hash})
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := r.conn(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}
