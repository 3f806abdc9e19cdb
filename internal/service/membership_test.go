package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

var relations = []models.Relation{models.RelationFavorite, models.RelationCart}

func TestToggleAddAndRemove(t *testing.T) {
	for _, rel := range relations {
		t.Run(string(rel), func(t *testing.T) {
			db := testhelpers.SetupTestDatabase(t)
			svc := service.NewMembershipService(repository.New(db), logger.Discard())
			ctx := context.Background()

			cook := testhelpers.CreateUser(t, db, "cook")
			soup := testhelpers.CreateRecipe(t, db, cook, "Soup", nil)
			actor := actorOf(cook)

			summary, err := svc.Add(ctx, actor, soup.ID, rel)
			require.NoError(t, err)
			assert.Equal(t, soup.ID, summary.ID)
			assert.Equal(t, "Soup", summary.Name)
			assert.Equal(t, soup.Image, summary.Image)
			assert.Equal(t, soup.CookingTime, summary.CookingTime)

			_, err = svc.Add(ctx, actor, soup.ID, rel)
			assert.True(t, errors.Is(err, apperrors.ErrConflict), "got %v", err)

			require.NoError(t, svc.Remove(ctx, actor, soup.ID, rel))

			err = svc.Remove(ctx, actor, soup.ID, rel)
			assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)
		})
	}
}

func TestToggleUnknownRecipe(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewMembershipService(repository.New(db), logger.Discard())
	cook := testhelpers.CreateUser(t, db, "cook")

	for _, rel := range relations {
		_, err := svc.Add(context.Background(), actorOf(cook), uuid.New(), rel)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound), "%s: got %v", rel, err)
	}
}

func TestToggleRelationsAreIndependent(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := repository.New(db)
	svc := service.NewMembershipService(repo, logger.Discard())
	ctx := context.Background()

	cook := testhelpers.CreateUser(t, db, "cook")
	soup := testhelpers.CreateRecipe(t, db, cook, "Soup", nil)

	_, err := svc.Add(ctx, actorOf(cook), soup.ID, models.RelationFavorite)
	require.NoError(t, err)

	inCart, err := repo.MembershipExists(ctx, models.RelationCart, cook.ID, soup.ID)
	require.NoError(t, err)
	assert.False(t, inCart)

	err = svc.Remove(ctx, actorOf(cook), soup.ID, models.RelationCart)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestToggleRequiresActor(t *testing.T) {
	svc := service.NewMembershipService(repository.New(testhelpers.SetupTestDatabase(t)), logger.Discard())

	_, err := svc.Toggle(context.Background(), nil, uuid.New(), models.RelationFavorite, service.OpAdd)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}

func TestConcurrentAddLeavesOneRow(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewMembershipService(repository.New(db), logger.Discard())

	cook := testhelpers.CreateUser(t, db, "cook")
	soup := testhelpers.CreateRecipe(t, db, cook, "Soup", nil)
	actor := actorOf(cook)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Add(context.Background(), actor, soup.ID, models.RelationFavorite)
		}(i)
	}
	wg.Wait()

	succeeded, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", cook.ID, soup.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
