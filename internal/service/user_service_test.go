package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
)

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	user, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "new@example.com",
		Password: "s3cret",
		FullName: "New User",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo(&entity.User{ID: "u1", Email: "taken@example.com"})
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "taken@example.com",
		Password: "s3cret",
		FullName: "Dup",
	})
	require.ErrorIs(t, err, entity.ErrEmailTaken)
}

func TestAdminCreateHonorsRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	admin, err := svc.Create(context.Background(), &CreateUserRequest{
		RegisterRequest: RegisterRequest{Email: "a@example.com", Password: "pw", FullName: "Admin"},
		Role:            entity.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, admin.Role)

	// Unknown roles collapse to USER.
	user, err := svc.Create(context.Background(), &CreateUserRequest{
		RegisterRequest: RegisterRequest{Email: "b@example.com", Password: "pw", FullName: "Bob"},
		Role:            "SUPERUSER",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, user.Role)
}

func TestChangePasswordVerifiesOldPassword(t *testing.T) {
	user := seedUser(t, "oldpw")
	repo := newFakeUserRepo(user)
	svc := NewUserService(repo)

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "newpw")
	require.ErrorIs(t, err, entity.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "oldpw", "newpw"))
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(repo.users[user.ID].PasswordHash), []byte("newpw")))
}

func TestUpdateInfoLeavesEmailAndRoleAlone(t *testing.T) {
	user := seedUser(t, "pw")
	repo := newFakeUserRepo(user)
	svc := NewUserService(repo)

	updated, err := svc.UpdateInfo(context.Background(), user.ID, &UpdateInfoRequest{
		FullName: "Renamed",
		Phone:    "555-0199",
		Address:  "2 Side St",
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.FullName)
	assert.Equal(t, user.Email, updated.Email)
	assert.Equal(t, user.Role, updated.Role)
}
