package app

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/otti-labs/otti-workspace/internal/clock"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

type PanelUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.PanelUser, error)
}

// AuthService authenticates panel users and issues bearer tokens. Stored
// passwords are bcrypt hashes.
type AuthService struct {
	users     PanelUserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	clock     clock.Clock
}

func NewAuthService(users PanelUserRepository, jwtSecret []byte, tokenTTL time.Duration, clk clock.Clock) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		clock:     clk,
	}
}

// SessionClaims is the JWT payload for a panel session.
type SessionClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.PanelUser
}

// Login verifies credentials and returns a signed session token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if user == nil {
		return Session{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.tokenTTL)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID: user.TenantID,
		Role:     user.Role,
		Name:     user.Name,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	}, nil
}
