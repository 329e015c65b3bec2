package services_test

import (
	"testing"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterUser(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(bcrypt.MinCost)

	user, err := svc.RegisterUser(db, "  alice  ", "secret")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username, "username is trimmed")
	require.NotEqual(t, "secret", user.Password, "password is never stored in plaintext")
	require.True(t, services.VerifyPassword(user.Password, "secret"))
}

func TestRegisterUserDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(bcrypt.MinCost)

	_, err := svc.RegisterUser(db, "alice", "secret")
	require.NoError(t, err)

	_, err = svc.RegisterUser(db, "alice", "other")
	require.ErrorIs(t, err, services.ErrUsernameTaken)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Count(&count).Error)
	require.Equal(t, int64(1), count, "conflict creates no second row")
}

func TestLoginUser(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(bcrypt.MinCost)

	registered, err := svc.RegisterUser(db, "alice", "secret")
	require.NoError(t, err)

	user, err := svc.LoginUser(db, "alice", "secret")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	_, err = svc.LoginUser(db, "alice", "wrong")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.LoginUser(db, "nobody", "secret")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestResolveFederated(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(bcrypt.MinCost)

	first, err := svc.ResolveFederated(db, "alice@example.com", "Alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", first.Username)

	// Same email resolves to the same durable row on every login.
	second, err := svc.ResolveFederated(db, "alice@example.com", "Alice A.")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	// The placeholder digest is unusable as a password.
	_, err = svc.LoginUser(db, "alice@example.com", "")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestResolveFederatedEmptyEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewAuthService(bcrypt.MinCost)

	_, err := svc.ResolveFederated(db, "   ", "Nameless")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}
