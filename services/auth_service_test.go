package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories/memory"
	"github.com/leonelm2/PotreroMobile/utils"
)

func newAuthService(t *testing.T) (AuthService, *utils.TokenManager) {
	t.Helper()
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(memory.NewStore().Users(), tokens, nil), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Username: "dt_bianchi", Email: "Carlos@Example.com", Password: "secreto1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoach, res.User.Role)
	assert.Equal(t, "carlos@example.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)

	actor, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, actor.UserID)
	assert.False(t, actor.IsAdmin())

	for _, login := range []string{"dt_bianchi", "CARLOS@example.com"} {
		res, err := svc.Login(ctx, LoginInput{Login: login, Password: "secreto1"})
		require.NoError(t, err, login)
		assert.NotEmpty(t, res.Token)
	}

	_, err = svc.Login(ctx, LoginInput{Login: "dt_bianchi", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Login: "nobody", Password: "secreto1"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	me, err := svc.Me(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "dt_bianchi", me.Username)

	_, err = svc.Me(ctx, models.Actor{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"missing username", RegisterInput{Email: "a@b.c", Password: "secreto1"}, ErrValidation},
		{"bad email", RegisterInput{Username: "a", Email: "nope", Password: "secreto1"}, ErrValidation},
		{"short password", RegisterInput{Username: "a", Email: "a@b.c", Password: "123"}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := svc.Register(ctx, RegisterInput{Username: "a", Email: "a@b.c", Password: "secreto1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Username: "A", Email: "other@b.c", Password: "secreto1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	input := RegisterInput{Username: "admin", Email: "admin@potrero.local", Password: "admin123"}

	first, err := svc.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)

	second, err := svc.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	res, err := svc.Login(ctx, LoginInput{Login: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}
