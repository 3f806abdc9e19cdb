package service_test

import (
	"testing"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/permissions"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func actorOf(u *models.User) *permissions.Actor {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	return &permissions.Actor{ID: u.ID, Username: u.Username, Role: role}
}

type recipeFixture struct {
	db        *gorm.DB
	repo      *repository.Repository
	svc       *service.RecipeService
	store     *mocks.ImageStore
	publisher *mocks.Publisher
}

func setupRecipeService(t *testing.T) *recipeFixture {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	repo := repository.New(db)
	store := &mocks.ImageStore{}
	publisher := &mocks.Publisher{}
	log := logger.Discard()

	images := service.NewImageService(store, 1<<20, log)
	return &recipeFixture{
		db:        db,
		repo:      repo,
		svc:       service.NewRecipeService(repo, images, publisher, log),
		store:     store,
		publisher: publisher,
	}
}
