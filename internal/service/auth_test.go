package service

import (
	"context"
	"testing"
	"time"

	"market-tips/config"
	"market-tips/internal/dto"
	"market-tips/internal/model"
	"market-tips/internal/repository"
	"market-tips/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*model.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	delete(f.users, id)
	return nil
}

func newAuthForTest(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key-for-unit-tests"
	cfg.JWT.AccessTokenExpire = 15 * time.Minute
	cfg.JWT.RefreshTokenExpire = 7 * 24 * time.Hour

	repo := newFakeUserRepo()
	return NewAuthService(cfg, logger.NewNop(), repo, NewTokenService(cfg)), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthForTest(t)

	user, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "trader@example.com",
		Password: "Sufficient1!",
		Name:     "Trader",
	})

	require.NoError(t, err)
	assert.Equal(t, "trader@example.com", user.Email)
	assert.True(t, user.HasPassword)
	assert.False(t, user.IsEmailVerified)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthForTest(t)

	req := dto.RegisterRequest{Email: "trader@example.com", Password: "Sufficient1!", Name: "Trader"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newAuthForTest(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "trader@example.com",
		Password: "short",
		Name:     "Trader",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthForTest(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "trader@example.com",
		Password: "Sufficient1!",
		Name:     "Trader",
	})
	require.NoError(t, err)

	tokens, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "trader@example.com",
		Password: "Sufficient1!",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.Equal(t, int((15 * time.Minute).Seconds()), tokens.ExpiresIn)
}

// Unknown email and wrong password must be indistinguishable.
func TestLogin_FailuresAreGeneric(t *testing.T) {
	svc, _ := newAuthForTest(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "trader@example.com",
		Password: "Sufficient1!",
		Name:     "Trader",
	})
	require.NoError(t, err)

	_, unknownErr := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "Sufficient1!",
	})
	_, wrongErr := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "trader@example.com",
		Password: "WrongPass1!",
	})

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLogin_OAuthOnlyAccountRejected(t *testing.T) {
	svc, repo := newAuthForTest(t)

	require.NoError(t, repo.Create(context.Background(), &model.User{
		Email: "oauth@example.com",
		Name:  "OAuth User",
	}))

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "oauth@example.com",
		Password: "Anything1!",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthForTest(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "trader@example.com",
		Password: "Sufficient1!",
		Name:     "Trader",
	})
	require.NoError(t, err)

	tokens, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "trader@example.com",
		Password: "Sufficient1!",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted as a refresh token.
	_, err = svc.Refresh(context.Background(), tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_DeletedUserRejected(t *testing.T) {
	svc, repo := newAuthForTest(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "trader@example.com",
		Password: "Sufficient1!",
		Name:     "Trader",
	})
	require.NoError(t, err)

	tokens, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "trader@example.com",
		Password: "Sufficient1!",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), 1))

	_, err = svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
