package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/repositories"
)

const (
	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

// AdminUserService даёт администратору просмотр пользователей и смену ролей:
// организаторы и администраторы не регистрируются сами.
type AdminUserService interface {
	ListUsers(ctx context.Context, actor Actor, filter models.UserFilter) (models.UserListResponse, error)
	SetUserRole(ctx context.Context, actor Actor, userID int, role models.UserRole) (*models.User, error)
}

type adminUserService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAdminUserService(userRepo repositories.UserRepository, logger *slog.Logger) AdminUserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminUserService{userRepo: userRepo, logger: logger}
}

func (s *adminUserService) ListUsers(ctx context.Context, actor Actor, filter models.UserFilter) (models.UserListResponse, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return models.UserListResponse{}, err
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return models.UserListResponse{}, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, *filter.Role)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultUserPageSize
	}
	if filter.Limit > maxUserPageSize {
		filter.Limit = maxUserPageSize
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return models.UserListResponse{}, translateRepoError(err)
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	return models.UserListResponse{
		Users:      users,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *adminUserService) SetUserRole(ctx context.Context, actor Actor, userID int, role models.UserRole) (*models.User, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
	}
	if userID == actor.UserID && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: an admin cannot demote themselves", ErrValidationFailed)
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, translateRepoError(err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	user.PasswordHash = ""

	s.logger.InfoContext(ctx, "user role changed",
		slog.Int("user_id", userID),
		slog.String("role", string(role)),
		slog.Int("actor_id", actor.UserID),
	)
	return user, nil
}
