package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/a5adamaty/booking-platform/internal/core/domain"
	"github.com/a5adamaty/booking-platform/internal/core/ports"
)

// UserService implements account management beyond auth.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, actor ports.Actor) ([]*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.repo.List(ctx)
}

func (s *UserService) UpdateProfile(ctx context.Context, actor ports.Actor, id string, upd ports.ProfileUpdate) (*domain.User, error) {
	if actor.UserID != id && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	user, err := s.repo.UpdateProfile(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Msg("profile updated")
	return user, nil
}

func (s *UserService) UpdateRole(ctx context.Context, actor ports.Actor, id string, role string) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if role != domain.RoleAdmin && role != domain.RoleStandard {
		return nil, &domain.ValidationError{Fields: []string{"role"}}
	}
	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Str("role", role).Msg("role changed")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
