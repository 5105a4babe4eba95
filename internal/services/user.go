package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/versatil/versatil-backend/internal/data/repos"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type UserService interface {
	// AvatarPNG renders the user's initials avatar.
	AvatarPNG(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	avatars  AvatarService
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo, avatars AvatarService) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		avatars:  avatars,
	}
}

func (s *userService) AvatarPNG(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	u, err := s.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	return s.avatars.Render(u)
}
