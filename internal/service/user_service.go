package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"authgate/internal/models"
	"authgate/internal/repository"
)

type UserDirectory interface {
	UserStore
	List(ctx context.Context, limit int, offset int) ([]models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type SessionRevoker interface {
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// UserService covers the user-profile surface around authentication:
// listing, lookup, and the administrative active flag.
type UserService struct {
	users    UserDirectory
	sessions SessionRevoker
	log      zerolog.Logger
}

func NewUserService(users UserDirectory, sessions SessionRevoker, log zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		log:      log,
	}
}

func (s *UserService) List(ctx context.Context, limit int, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *UserService) Get(ctx context.Context, username string) (models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// SetActive toggles the soft-disable flag. Deactivation also drops the
// user's refresh sessions, so the account cannot mint new access tokens.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.users.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !active {
		revoked, err := s.sessions.DeleteByUser(ctx, id)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", id).Msg("revoke sessions on deactivate failed")
			return err
		}
		s.log.Info().Str("user_id", id).Int64("revoked", revoked).Msg("user deactivated")
	}
	return nil
}
