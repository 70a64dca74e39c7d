package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
)

// fakeUserRepo keys users by id and mirrors the postgres repository's
// not-found behavior.
type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, &entity.NotFoundError{Kind: "user", ID: id}
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &entity.NotFoundError{Kind: "user", ID: email}
}

func (f *fakeUserRepo) FindByRefreshToken(ctx context.Context, token string) (*entity.User, error) {
	for _, u := range f.users {
		if u.RefreshToken != "" && u.RefreshToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &entity.NotFoundError{Kind: "user", ID: "refresh-token"}
}

func (f *fakeUserRepo) FindAll(ctx context.Context, offset, limit int) ([]entity.User, int, error) {
	var out []entity.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return &entity.NotFoundError{Kind: "user", ID: user.ID}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	user, ok := f.users[userID]
	if !ok {
		return &entity.NotFoundError{Kind: "user", ID: userID}
	}
	user.RefreshToken = token
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	user, ok := f.users[userID]
	if !ok {
		return &entity.NotFoundError{Kind: "user", ID: userID}
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	delete(f.users, id)
	return nil
}

var testAuthConfig = AuthConfig{
	AccessSecret:  "test-access-secret",
	RefreshSecret: "test-refresh-secret",
	AccessTTL:     time.Minute,
	RefreshTTL:    time.Hour,
}

func seedUser(t *testing.T, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{
		ID:           "user-1",
		Email:        "buyer@example.com",
		FullName:     "Buyer One",
		PasswordHash: string(hash),
		Role:         entity.RoleUser,
	}
}

func TestLoginIssuesVerifiableTokens(t *testing.T) {
	user := seedUser(t, "hunter2")
	repo := newFakeUserRepo(user)
	svc := NewAuthService(repo, testAuthConfig)

	result, err := svc.Login(context.Background(), user.Email, "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)

	acting, err := svc.VerifyAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, acting.ID)
	assert.Equal(t, user.Email, acting.Email)
	assert.Equal(t, entity.RoleUser, acting.Role)

	// The refresh token is persisted for the later rotation check.
	assert.Equal(t, result.RefreshToken, repo.users[user.ID].RefreshToken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	user := seedUser(t, "hunter2")
	svc := NewAuthService(newFakeUserRepo(user), testAuthConfig)

	_, err := svc.Login(context.Background(), user.Email, "wrong")
	require.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter2")
	require.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	user := seedUser(t, "hunter2")
	repo := newFakeUserRepo(user)
	svc := NewAuthService(repo, testAuthConfig)

	login, err := svc.Login(context.Background(), user.Email, "hunter2")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.RefreshToken)

	// The old token no longer matches the stored one.
	assert.Equal(t, refreshed.RefreshToken, repo.users[user.ID].RefreshToken)

	_, err = svc.VerifyAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	user := seedUser(t, "hunter2")
	svc := NewAuthService(newFakeUserRepo(user), testAuthConfig)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, entity.ErrInvalidCredentials)

	// A structurally valid token signed with the wrong secret.
	other := NewAuthService(newFakeUserRepo(user), AuthConfig{
		AccessSecret:  "other-access",
		RefreshSecret: "other-refresh",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	forged, err := other.Login(context.Background(), user.Email, "hunter2")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), forged.RefreshToken)
	require.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	user := seedUser(t, "hunter2")
	repo := newFakeUserRepo(user)
	svc := NewAuthService(repo, testAuthConfig)

	login, err := svc.Login(context.Background(), user.Email, "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), user.ID))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestVerifyAccessTokenRejectsRefreshToken(t *testing.T) {
	user := seedUser(t, "hunter2")
	svc := NewAuthService(newFakeUserRepo(user), testAuthConfig)

	login, err := svc.Login(context.Background(), user.Email, "hunter2")
	require.NoError(t, err)

	// Tokens are signed with different secrets per purpose.
	_, err = svc.VerifyAccessToken(login.RefreshToken)
	require.Error(t, err)
}
