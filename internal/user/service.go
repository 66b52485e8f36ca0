package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/auth"
	"github.com/saulo-duarte/studio-ops/internal/config"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
)

type UserService interface {
	Me(ctx context.Context) (*User, error)
	List(ctx context.Context) ([]User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role string) error
}

type userService struct {
	repo UserRepository
}

func NewService(repo UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Me(ctx context.Context) (*User, error) {
	log := config.WithContext(ctx)

	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnauthorized, "unauthorized", err)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.Invalid("malformed user id in token")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to load current user")
		return nil, err
	}
	if u == nil {
		return nil, apperror.Wrap(apperror.KindNotFound, "user not found", ErrUserNotFound)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *userService) ChangeRole(ctx context.Context, id uuid.UUID, role string) error {
	log := config.WithContext(ctx)

	if role != auth.RoleAdmin && role != auth.RoleMember {
		return apperror.Wrap(apperror.KindInvalid, "role must be admin or member", ErrInvalidRole)
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.Wrap(apperror.KindNotFound, "user not found", err)
		}
		log.WithError(err).Error("Failed to update user role")
		return err
	}

	log.WithField("target_user_id", id).Infof("User role changed to %s", role)
	return nil
}
