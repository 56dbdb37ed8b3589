package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
	"github.com/secmon-lab/tablero/pkg/repository/memory"
	"github.com/secmon-lab/tablero/pkg/usecase"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func setupAuth(t *testing.T) (*usecase.AuthUseCase, *memory.Memory, *clock) {
	t.Helper()
	repo := memory.New()
	clk := newClock(baseTime)
	uc := usecase.NewAuthUseCase(repo, testSecret,
		usecase.WithTokenLifetime(time.Hour),
		usecase.WithAuthClock(clk.Now),
	)
	_, err := uc.CreateUser(context.Background(), " Ana@Example.com ", "correct horse", "Ana")
	gt.NoError(t, err).Required()
	return uc, repo, clk
}

func TestAuthCreateUser(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := setupAuth(t)

	user, err := repo.User().GetByEmail(ctx, "ana@example.com")
	gt.NoError(t, err).Required()
	gt.Value(t, user.Name).Equal("Ana")
	gt.Bool(t, strings.HasPrefix(user.PasswordHash, "$2")).True()

	t.Run("duplicate email", func(t *testing.T) {
		_, err := uc.CreateUser(ctx, "ana@example.com", "another password", "Ana 2")
		gt.Error(t, err).Is(interfaces.ErrConflict)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := uc.CreateUser(ctx, "bo@example.com", "short", "Bo")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := uc.CreateUser(ctx, "bo", "long enough", "Bo")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})
}

func TestAuthLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("session round trip", func(t *testing.T) {
		uc, _, _ := setupAuth(t)

		token, err := uc.Login(ctx, "ANA@example.com", "correct horse")
		gt.NoError(t, err).Required()
		gt.Value(t, token.Email).Equal("ana@example.com")
		gt.Bool(t, token.ExpiresAt.Equal(baseTime.Add(time.Hour))).True()

		signed, err := uc.SignToken(token)
		gt.NoError(t, err).Required()

		tokenID, err := uc.ParseSession(signed)
		gt.NoError(t, err).Required()
		gt.Value(t, tokenID).Equal(token.ID)

		session, err := uc.ValidateToken(ctx, tokenID)
		gt.NoError(t, err).Required()
		gt.Value(t, session.Name).Equal("Ana")
	})

	t.Run("wrong password", func(t *testing.T) {
		uc, _, _ := setupAuth(t)
		_, err := uc.Login(ctx, "ana@example.com", "wrong horse")
		gt.Error(t, err).Is(usecase.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		uc, _, _ := setupAuth(t)
		_, err := uc.Login(ctx, "nobody@example.com", "correct horse")
		gt.Error(t, err).Is(usecase.ErrInvalidCredentials)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		uc, _, _ := setupAuth(t)
		token, err := uc.Login(ctx, "ana@example.com", "correct horse")
		gt.NoError(t, err).Required()

		other := usecase.NewAuthUseCase(memory.New(), []byte("another-secret-another-secret-00"))
		signed, err := other.SignToken(token)
		gt.NoError(t, err).Required()

		_, err = uc.ParseSession(signed)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)

		_, err = uc.ParseSession("not-a-jwt")
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})

	t.Run("expired session", func(t *testing.T) {
		uc, repo, clk := setupAuth(t)
		token, err := uc.Login(ctx, "ana@example.com", "correct horse")
		gt.NoError(t, err).Required()
		signed, err := uc.SignToken(token)
		gt.NoError(t, err).Required()

		_, err = uc.ValidateToken(ctx, token.ID)
		gt.NoError(t, err).Required()

		clk.Advance(2 * time.Hour)
		_, err = uc.ParseSession(signed)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
		_, err = uc.ValidateToken(ctx, token.ID)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)

		// the expired session is purged from the store
		_, err = repo.GetToken(ctx, token.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("logout", func(t *testing.T) {
		uc, _, _ := setupAuth(t)
		token, err := uc.Login(ctx, "ana@example.com", "correct horse")
		gt.NoError(t, err).Required()
		_, err = uc.ValidateToken(ctx, token.ID)
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.Logout(ctx, token.ID)).Required()
		_, err = uc.ValidateToken(ctx, token.ID)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)

		gt.NoError(t, uc.Logout(ctx, token.ID))
	})

	t.Run("unknown session", func(t *testing.T) {
		uc, _, _ := setupAuth(t)
		_, err := uc.ValidateToken(ctx, auth.NewTokenID())
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})
}
