package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogService serves the read-only tag and ingredient catalogs.
type CatalogService struct {
	repo *repository.Repository
}

func NewCatalogService(repo *repository.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagResponse, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, types.NewTagResponse(t))
	}
	return out, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (types.TagResponse, error) {
	tag, err := s.repo.FindTagByID(ctx, id)
	if err != nil {
		return types.TagResponse{}, err
	}
	return types.NewTagResponse(*tag), nil
}

// SearchIngredients lists ingredients whose name contains name, prefix
// matches first. An empty name lists everything.
func (s *CatalogService) SearchIngredients(ctx context.Context, name string) ([]types.IngredientResponse, error) {
	ingredients, err := s.repo.ListIngredients(ctx, name)
	if err != nil {
		return nil, err
	}
	out := make([]types.IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, types.NewIngredientResponse(i))
	}
	return out, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (types.IngredientResponse, error) {
	ingredient, err := s.repo.FindIngredientByID(ctx, id)
	if err != nil {
		return types.IngredientResponse{}, err
	}
	return types.NewIngredientResponse(*ingredient), nil
}
