package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles account management.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// RegisterRequest is the public signup form. CreateUserRequest adds the role
// field for admin-created accounts.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type CreateUserRequest struct {
	RegisterRequest
	Role string `json:"role"`
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *UserService) create(ctx context.Context, req *RegisterRequest, role string) (*entity.User, error) {
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return nil, fmt.Errorf("email, password and full name are required")
	}

	var notFound *entity.NotFoundError
	_, err := s.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, entity.ErrEmailTaken
	}
	if !errors.As(err, &notFound) {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         role,
		Address:      req.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates a regular account.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	return s.create(ctx, req, entity.RoleUser)
}

// Create is the admin path and honors the requested role.
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*entity.User, error) {
	role := req.Role
	if role != entity.RoleAdmin {
		role = entity.RoleUser
	}
	return s.create(ctx, &req.RegisterRequest, role)
}

func (s *UserService) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) FindAll(ctx context.Context, offset, limit int) ([]entity.User, int, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.users.FindAll(ctx, offset, limit)
}

// UpdateInfoRequest changes profile fields only; email and role are fixed.
type UpdateInfoRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Avatar   string `json:"avatar"`
	Address  string `json:"address"`
}

func (s *UserService) UpdateInfo(ctx context.Context, userID string, req *UpdateInfoRequest) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Phone = req.Phone
	user.Avatar = req.Avatar
	user.Address = req.Address

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

// ChangePassword verifies the old password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return entity.ErrInvalidCredentials
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}
