package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig carries the token secrets and lifetimes.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AuthService issues and verifies tokens. The refresh token is persisted on
// the user and rotated on every refresh.
type AuthService struct {
	users repository.UserRepository
	cfg   AuthConfig
}

func NewAuthService(users repository.UserRepository, cfg AuthConfig) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

type authClaims struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult is returned to the client after login or refresh.
type LoginResult struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

func (s *AuthService) sign(user *entity.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := authClaims{
		Email:    user.Email,
		Phone:    user.Phone,
		FullName: user.FullName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *AuthService) issue(ctx context.Context, user *entity.User) (*LoginResult, error) {
	access, err := s.sign(user, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Login checks credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		var notFound *entity.NotFoundError
		if errors.As(err, &notFound) {
			return nil, entity.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, entity.ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

// Refresh rotates a valid refresh token into a new token pair. The presented
// token must verify and match the one stored on the user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if _, err := s.parse(refreshToken, s.cfg.RefreshSecret); err != nil {
		return nil, entity.ErrInvalidCredentials
	}
	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		var notFound *entity.NotFoundError
		if errors.As(err, &notFound) {
			return nil, entity.ErrInvalidCredentials
		}
		return nil, err
	}
	return s.issue(ctx, user)
}

// Logout invalidates the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.users.UpdateRefreshToken(ctx, userID, "")
}

func (s *AuthService) parse(token, secret string) (*authClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &authClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*authClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// VerifyAccessToken validates an access token and extracts the acting user.
func (s *AuthService) VerifyAccessToken(token string) (entity.ActingUser, error) {
	claims, err := s.parse(token, s.cfg.AccessSecret)
	if err != nil {
		return entity.ActingUser{}, err
	}
	return entity.ActingUser{
		ID:    claims.Subject,
		Email: claims.Email,
		Phone: claims.Phone,
		Role:  claims.Role,
	}, nil
}
