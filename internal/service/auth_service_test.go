package service

import (
	"context"
	"errors"
	"testing"

	"buildledger/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTest(t)

	user, tokens, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:        "pat@builder.example",
		Password:     "hunter22",
		BusinessName: "Pat's Construction",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Pat's Construction", user.BusinessName)

	_, _, err = env.auth.Register(context.Background(), RegisterRequest{
		Email:        "pat@builder.example",
		Password:     "another1",
		BusinessName: "Duplicate",
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, loginTokens, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "pat@builder.example",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, loginTokens.AccessToken)

	_, _, err = env.auth.Login(context.Background(), LoginRequest{
		Email:    "pat@builder.example",
		Password: "wrong",
	})
	assert.Error(t, err)
}

func TestRegisterValidation(t *testing.T) {
	env := setupTest(t)

	_, _, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:        "not-an-email",
		Password:     "hunter22",
		BusinessName: "X",
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, _, err = env.auth.Register(context.Background(), RegisterRequest{
		Email:        "ok@example.com",
		Password:     "short",
		BusinessName: "X",
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestRefreshRotatesToken(t *testing.T) {
	env := setupTest(t)

	_, tokens, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:        "rotate@example.com",
		Password:     "hunter22",
		BusinessName: "Rotation LLC",
	})
	require.NoError(t, err)

	fresh, err := env.auth.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	// The consumed token no longer works.
	_, err = env.auth.Refresh(context.Background(), tokens.RefreshToken)
	assert.Error(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := setupTest(t)

	_, tokens, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:        "bye@example.com",
		Password:     "hunter22",
		BusinessName: "Logout Inc",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(context.Background(), tokens.RefreshToken))

	_, err = env.auth.Refresh(context.Background(), tokens.RefreshToken)
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	env := setupTest(t)

	user, _, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:        "profile@example.com",
		Password:     "hunter22",
		BusinessName: "Before LLC",
	})
	require.NoError(t, err)

	updated, err := env.auth.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{
		BusinessName: strPtr("After LLC"),
		Phone:        strPtr("555-0177"),
	})
	require.NoError(t, err)
	assert.Equal(t, "After LLC", updated.BusinessName)
	assert.Equal(t, "555-0177", updated.Phone)

	_, err = env.auth.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{
		BusinessName: strPtr(""),
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
