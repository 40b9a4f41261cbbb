package auth

import (
	"context"
	"errors"
	"time"

	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"
	dirrepo "github.com/niketshah083/lead-management-backend-sub002/internal/directory/repository"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"
	"github.com/niketshah083/lead-management-backend-sub002/platform/config"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserReader is the slice of the directory the login flow needs.
type UserReader interface {
	GetUserByEmail(ctx context.Context, email string) (dirrepo.User, error)
}

// Service handles credential checks and token issuance.
type Service struct {
	users UserReader
	cfg   config.AuthServiceConfig
	log   *logger.Logger
	now   func() time.Time
}

func NewService(users UserReader, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{users: users, cfg: cfg, log: log, now: time.Now}
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      uuid.UUID
	Email       string
	FirstName   string
	LastName    string
	Role        dirdomain.Role
}

// Login verifies the credentials and signs an access token. Unknown email
// and wrong password produce the same error so the endpoint does not leak
// which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dirrepo.ErrNotFound) {
			s.log.AuthEvent("login", email, false, "unknown email")
			return LoginResult{}, apperr.Unauthorized("invalid credentials")
		}
		return LoginResult{}, err
	}

	if !user.IsActive {
		s.log.AuthEvent("login", email, false, "account disabled")
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	token, expiresAt, err := IssueAccessToken(s.cfg.GetJWTAccessSecret(), user.ID, string(user.Role),
		s.cfg.GetAccessTokenTTL(), s.now())
	if err != nil {
		return LoginResult{}, err
	}

	s.log.AuthEvent("login", email, true, "")
	return LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.Role,
	}, nil
}
