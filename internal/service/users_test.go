package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestUserListAndGet(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewUserService(repository.New(db), logger.Discard())
	ctx := context.Background()

	fan := testhelpers.CreateUser(t, db, "fan")
	cook := testhelpers.CreateUser(t, db, "cook")
	testhelpers.Follow(t, db, fan, cook)

	users, total, err := svc.List(ctx, actorOf(fan), types.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 2)
	assert.Equal(t, "cook", users[0].Username)
	assert.True(t, users[0].IsSubscribed)
	assert.False(t, users[1].IsSubscribed)

	got, err := svc.Get(ctx, nil, cook.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSubscribed)
	assert.Equal(t, "cook@example.com", got.Email)

	me, err := svc.Me(ctx, actorOf(fan))
	require.NoError(t, err)
	assert.Equal(t, fan.ID, me.ID)

	_, err = svc.Me(ctx, nil)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}

func TestUserAdministration(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewUserService(repository.New(db), logger.Discard())
	ctx := context.Background()

	admin := testhelpers.CreateAdmin(t, db, "admin")
	cook := testhelpers.CreateUser(t, db, "cook")

	first := "Chef"
	_, err := svc.Update(ctx, actorOf(cook), cook.ID, &types.UpdateUserRequest{FirstName: &first})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden), "got %v", err)

	role := models.RoleAdmin
	got, err := svc.Update(ctx, actorOf(admin), cook.ID, &types.UpdateUserRequest{FirstName: &first, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Chef", got.FirstName)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", cook.ID).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	err = svc.Delete(ctx, actorOf(cook), admin.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	require.NoError(t, svc.Delete(ctx, actorOf(admin), cook.ID))
	_, err = svc.Get(ctx, nil, cook.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
