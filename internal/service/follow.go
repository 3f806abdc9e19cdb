package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/events"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/permissions"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// FollowService manages subscriptions between users and authors.
type FollowService struct {
	repo                *repository.Repository
	publisher           events.Publisher
	defaultRecipesLimit int
	log                 *slog.Logger
}

func NewFollowService(repo *repository.Repository, publisher events.Publisher, defaultRecipesLimit int, log *slog.Logger) *FollowService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &FollowService{
		repo:                repo,
		publisher:           publisher,
		defaultRecipesLimit: defaultRecipesLimit,
		log:                 log.With("component", "follow_service"),
	}
}

// Subscribe makes actor follow authorID and returns the subscription item.
// Following yourself is InvalidArgument; following twice is Conflict.
func (s *FollowService) Subscribe(ctx context.Context, actor *permissions.Actor, authorID uuid.UUID, recipesLimit int) (types.SubscriptionResponse, error) {
	if actor == nil {
		return types.SubscriptionResponse{}, apperrors.ErrUnauthenticated
	}
	if actor.ID == authorID {
		return types.SubscriptionResponse{}, apperrors.InvalidArgument("you cannot subscribe to yourself")
	}

	var author *models.User
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if author, err = tx.FindUserByID(ctx, authorID); err != nil {
			return err
		}
		exists, err := tx.FollowExists(ctx, actor.ID, authorID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict("you are already subscribed to this author")
		}
		return tx.InsertFollow(ctx, actor.ID, authorID)
	})
	if err != nil {
		return types.SubscriptionResponse{}, err
	}

	s.log.Info("subscribed", "user_id", actor.ID, "author_id", authorID)
	events.Emit(ctx, s.publisher, s.log, events.UserSubscribed, events.SubscriptionEvent{
		UserID:     actor.ID,
		AuthorID:   authorID,
		OccurredAt: time.Now().UTC(),
	})

	items, err := s.subscriptionItems(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return types.SubscriptionResponse{}, err
	}
	return items[0], nil
}

// Unsubscribe removes the subscription. It fails with NotFound when actor
// does not follow authorID.
func (s *FollowService) Unsubscribe(ctx context.Context, actor *permissions.Actor, authorID uuid.UUID) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.FindUserByID(ctx, authorID); err != nil {
			return err
		}
		removed, err := tx.DeleteFollow(ctx, actor.ID, authorID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return apperrors.NotFound("you are not subscribed to this author")
		}
		s.log.Info("unsubscribed", "user_id", actor.ID, "author_id", authorID)
		return nil
	})
}

// ListSubscriptions returns one page of the authors actor follows, each with
// its recipe count and newest recipes capped at recipesLimit.
func (s *FollowService) ListSubscriptions(ctx context.Context, actor *permissions.Actor, page types.PageRequest, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	if actor == nil {
		return nil, 0, apperrors.ErrUnauthenticated
	}

	authors, total, err := s.repo.ListFollowedAuthors(ctx, actor.ID, repository.Page{Limit: page.Limit, Offset: page.Offset()})
	if err != nil {
		return nil, 0, err
	}
	items, err := s.subscriptionItems(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// subscriptionItems builds items for authors the caller follows.
func (s *FollowService) subscriptionItems(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	if recipesLimit <= 0 {
		recipesLimit = s.defaultRecipesLimit
	}

	ids := make([]uuid.UUID, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := s.repo.CountRecipesByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		author := &authors[i]
		recipes, err := s.repo.ListRecipesByAuthor(ctx, author.ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		summaries := make([]types.RecipeSummary, 0, len(recipes))
		for j := range recipes {
			summaries = append(summaries, types.NewRecipeSummary(&recipes[j]))
		}
		items = append(items, types.SubscriptionResponse{
			UserResponse: types.NewUserResponse(author, true),
			Recipes:      summaries,
			RecipesCount: counts[author.ID],
		})
	}
	return items, nil
}
