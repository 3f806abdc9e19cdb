package service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/permissions"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService lists and administers user accounts.
type UserService struct {
	repo *repository.Repository
	log  *slog.Logger
}

func NewUserService(repo *repository.Repository, log *slog.Logger) *UserService {
	return &UserService{repo: repo, log: log.With("component", "user_service")}
}

// List returns one page of users with is_subscribed resolved for viewer.
func (s *UserService) List(ctx context.Context, viewer *permissions.Actor, page types.PageRequest) ([]types.UserResponse, int64, error) {
	users, total, err := s.repo.ListUsers(ctx, repository.Page{Limit: page.Limit, Offset: page.Offset()})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	followed, err := s.followed(ctx, viewer, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]types.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, types.NewUserResponse(&users[i], followed[users[i].ID]))
	}
	return out, total, nil
}

func (s *UserService) Get(ctx context.Context, viewer *permissions.Actor, id uuid.UUID) (types.UserResponse, error) {
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return types.UserResponse{}, err
	}
	followed, err := s.followed(ctx, viewer, []uuid.UUID{id})
	if err != nil {
		return types.UserResponse{}, err
	}
	return types.NewUserResponse(user, followed[id]), nil
}

// Me returns the caller's own projection.
func (s *UserService) Me(ctx context.Context, actor *permissions.Actor) (types.UserResponse, error) {
	if actor == nil {
		return types.UserResponse{}, apperrors.ErrUnauthenticated
	}
	return s.Get(ctx, actor, actor.ID)
}

// Update edits names and role. Only admins may call it.
func (s *UserService) Update(ctx context.Context, actor *permissions.Actor, id uuid.UUID, req *types.UpdateUserRequest) (types.UserResponse, error) {
	if err := permissions.CanMutateUser(http.MethodPatch, actor); err != nil {
		return types.UserResponse{}, err
	}

	fields := map[string]any{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Role != nil {
		if *req.Role != models.RoleUser && *req.Role != models.RoleAdmin {
			return types.UserResponse{}, apperrors.InvalidArgument("invalid role").
				WithDetails(map[string]string{"role": "must be user or admin"})
		}
		fields["role"] = *req.Role
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateUser(ctx, id, fields); err != nil {
			return types.UserResponse{}, err
		}
		s.log.Info("user updated", "user_id", id, "by", actor.ID)
	}
	return s.Get(ctx, actor, id)
}

// Delete removes a user account and, through cascades, everything it owns.
func (s *UserService) Delete(ctx context.Context, actor *permissions.Actor, id uuid.UUID) error {
	if err := permissions.CanMutateUser(http.MethodDelete, actor); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", id, "by", actor.ID)
	return nil
}

func (s *UserService) followed(ctx context.Context, viewer *permissions.Actor, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	if viewer == nil {
		return map[uuid.UUID]bool{}, nil
	}
	return s.repo.FollowedAuthorIDs(ctx, viewer.ID, ids)
}
