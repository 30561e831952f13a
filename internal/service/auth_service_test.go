package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/pkg/config"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
)

type stubAuthUserStore struct {
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	revokedIDs    []string
}

func newStubAuthUserStore() *stubAuthUserStore {
	return &stubAuthUserStore{
		users:         map[string]*models.User{},
		refreshTokens: map[string]*models.RefreshToken{},
	}
}

func (s *stubAuthUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubAuthUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubAuthUserStore) FindByEmailOrUsername(_ context.Context, email, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubAuthUserStore) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = testUserID
	}
	s.users[user.Email] = user
	return nil
}

func (s *stubAuthUserStore) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	s.refreshTokens[token.Token] = token
	return nil
}

func (s *stubAuthUserStore) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.refreshTokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubAuthUserStore) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	s.revokedIDs = append(s.revokedIDs, id)
	return nil
}

func newAuthService(store *stubAuthUserStore) *AuthService {
	cfg := config.JWTConfig{
		Secret:            "test_secret",
		Expiration:        10 * time.Minute,
		RefreshExpiration: 168 * time.Hour,
		Issuer:            "classtime-api",
	}
	return NewAuthService(store, validator.New(), cfg, zap.NewNop())
}

func TestRegisterReturnsUserInfo(t *testing.T) {
	store := newStubAuthUserStore()
	svc := newAuthService(store)

	info, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "bw@marvel.com",
		Username:  "blackwidow",
		Password:  "this is a very secure password",
		FirstName: "Scarlett",
		LastName:  "Johanson",
	})
	require.NoError(t, err)
	assert.Equal(t, "Scarlett", info.FirstName)
	assert.Equal(t, "Johanson", info.LastName)
	assert.Equal(t, "bw@marvel.com", info.Email)
	assert.Equal(t, models.RoleStudent, info.Role)

	stored := store.users["bw@marvel.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "this is a very secure password", stored.PasswordHash)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	store := newStubAuthUserStore()
	store.users["bw@marvel.com"] = &models.User{ID: testUserID, Email: "bw@marvel.com", Username: "blackwidow"}
	svc := newAuthService(store)

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "bw@marvel.com",
		Username:  "other",
		Password:  "another good password",
		FirstName: "Scarlett",
		LastName:  "Johanson",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newAuthService(newStubAuthUserStore())

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "bw@marvel.com",
		Username:  "blackwidow",
		Password:  "short",
		FirstName: "Scarlett",
		LastName:  "Johanson",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestLoginAfterRegister(t *testing.T) {
	store := newStubAuthUserStore()
	svc := newAuthService(store)

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:     "bw@marvel.com",
		Username:  "blackwidow",
		Password:  "this is a very secure password",
		FirstName: "Scarlett",
		LastName:  "Johanson",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "bw@marvel.com",
		Password: "this is a very secure password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bw@marvel.com", resp.User.Email)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "bw@marvel.com", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newStubAuthUserStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct password"), bcrypt.MinCost)
	require.NoError(t, err)
	store.users["bw@marvel.com"] = &models.User{ID: testUserID, Email: "bw@marvel.com", PasswordHash: string(hash)}
	svc := newAuthService(store)

	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Email:    "bw@marvel.com",
		Password: "wrong password",
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(newStubAuthUserStore())

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever password",
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestRefreshTokenRotatesSession(t *testing.T) {
	store := newStubAuthUserStore()
	store.users["bw@marvel.com"] = &models.User{ID: testUserID, Email: "bw@marvel.com"}
	store.refreshTokens["old-token"] = &models.RefreshToken{
		ID:        "rt1",
		UserID:    testUserID,
		Token:     "old-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	svc := newAuthService(store)

	resp, err := svc.RefreshToken(context.Background(), &models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Contains(t, store.revokedIDs, "rt1")
}

func TestRefreshTokenRevokedRejected(t *testing.T) {
	store := newStubAuthUserStore()
	store.refreshTokens["old-token"] = &models.RefreshToken{
		ID:        "rt1",
		UserID:    testUserID,
		Token:     "old-token",
		ExpiresAt: time.Now().Add(time.Hour),
		Revoked:   true,
	}
	svc := newAuthService(store)

	_, err := svc.RefreshToken(context.Background(), &models.RefreshTokenRequest{RefreshToken: "old-token"})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestRefreshTokenExpiredRejected(t *testing.T) {
	store := newStubAuthUserStore()
	store.refreshTokens["old-token"] = &models.RefreshToken{
		ID:        "rt1",
		UserID:    testUserID,
		Token:     "old-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	svc := newAuthService(store)

	_, err := svc.RefreshToken(context.Background(), &models.RefreshTokenRequest{RefreshToken: "old-token"})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := newAuthService(newStubAuthUserStore())

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
