package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"authgate/internal/ids"
	"authgate/internal/limiter"
	"authgate/internal/models"
	"authgate/internal/repository"
	"authgate/internal/security"
)

// Every authentication failure is one of these values. Store and signing
// internals never cross this boundary.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrSessionNotFound    = errors.New("refresh session not found")
	ErrSessionExpired     = errors.New("refresh session expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user inactive")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.RefreshSession) error
	Claim(ctx context.Context, tokenHash []byte) (models.RefreshSession, error)
	DeleteByTokenHash(ctx context.Context, tokenHash []byte) error
}

// TokenPair is the outcome of a successful authenticate or refresh: a signed
// access token plus the plaintext refresh token backing the new session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// AuthService owns the session lifecycle: credential verification, token
// issuance, rotation on refresh, and revocation. Session state lives only
// in the store, never in process memory.
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	minter     *security.TokenMinter
	attempts   *limiter.LoginLimiter
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	minter *security.TokenMinter,
	attempts *limiter.LoginLimiter,
	refreshTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		minter:     minter,
		attempts:   attempts,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsPublic bool
}

// Register creates a user without logging them in. Username is checked
// before email, so a request colliding on both reports the username
// conflict.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		IsPublic:     input.IsPublic,
		IsActive:     true,
		RegisteredAt: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The unique indexes backstop the checks above against a racing
		// registration.
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return models.User{}, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate verifies the password and opens a new refresh session. A
// missing user and a wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username string, password string) (TokenPair, error) {
	if allowed := s.allowAttempt(ctx, username); !allowed {
		return TokenPair{}, ErrTooManyAttempts
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn().Str("user_id", user.ID).Msg("stored password hash unreadable")
		}
		return TokenPair{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return TokenPair{}, ErrUserInactive
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Msg("reset login attempts failed")
		}
	}

	return s.issueSession(ctx, user)
}

// Refresh rotates a refresh session: the presented token is claimed
// (deleted) atomically, then a replacement session and a fresh access token
// are issued. A second presentation of the same token finds nothing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	tokenHash := security.HashRefreshToken(refreshToken)

	session, err := s.sessions.Claim(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return TokenPair{}, ErrSessionNotFound
		}
		return TokenPair{}, err
	}

	// The claim already removed the row, so an expired session is gone
	// after this check.
	if !session.ExpiresAt.After(time.Now()) {
		return TokenPair{}, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrSessionNotFound
		}
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, ErrUserInactive
	}

	return s.issueSession(ctx, user)
}

// Logout revokes the session behind the token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := security.HashRefreshToken(refreshToken)
	return s.sessions.DeleteByTokenHash(ctx, tokenHash)
}

// AuthenticatedUser resolves a bearer access token to its user.
func (s *AuthService) AuthenticatedUser(ctx context.Context, accessToken string) (models.User, error) {
	subject, err := s.minter.Verify(accessToken)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if !user.IsActive {
		return models.User{}, ErrUserInactive
	}
	return user, nil
}

func (s *AuthService) issueSession(ctx context.Context, user models.User) (TokenPair, error) {
	accessToken, err := s.minter.Mint(user.Username)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, tokenHash, err := security.NewRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now().UTC()
	session := models.RefreshSession{
		ID:        ids.New(),
		UserID:    user.ID,
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (s *AuthService) allowAttempt(ctx context.Context, username string) bool {
	if s.attempts == nil {
		return true
	}
	allowed, err := s.attempts.Allow(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, failing open")
		return true
	}
	return allowed
}
