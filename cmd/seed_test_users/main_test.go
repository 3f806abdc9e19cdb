package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSeedUsersIsRepeatable(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	created, err := seedUsers(context.Background(), db, "seed-password")
	require.NoError(t, err)
	assert.Equal(t, len(testUsers), created)

	created, err = seedUsers(context.Background(), db, "seed-password")
	require.NoError(t, err)
	assert.Zero(t, created)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("seed-password")))
}

func TestSeedTagsIsRepeatable(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	created, err := seedTags(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, len(defaultTags), created)

	created, err = seedTags(context.Background(), db)
	require.NoError(t, err)
	assert.Zero(t, created)
}
