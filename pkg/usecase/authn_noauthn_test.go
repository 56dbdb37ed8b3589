package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tablero/pkg/usecase"
)

func TestNoAuthnUseCase(t *testing.T) {
	ctx := context.Background()
	var uc usecase.AuthUseCaseInterface = usecase.NewNoAuthnUseCase("ana", "ana@example.com", "Ana")

	gt.Bool(t, uc.IsNoAuthn()).True()

	t.Run("any cookie names the fixed session", func(t *testing.T) {
		first, err := uc.ParseSession("garbage")
		gt.NoError(t, err).Required()
		second, err := uc.ParseSession("")
		gt.NoError(t, err).Required()
		gt.Value(t, first).Equal(second)

		token, err := uc.ValidateToken(ctx, first)
		gt.NoError(t, err).Required()
		gt.Value(t, token.ID).Equal(first)
		gt.Value(t, token.UserID).Equal("ana")
		gt.Value(t, token.Email).Equal("ana@example.com")
		gt.Value(t, token.Name).Equal("Ana")
	})

	t.Run("login ignores credentials", func(t *testing.T) {
		token, err := uc.Login(ctx, "someone@example.com", "wrong")
		gt.NoError(t, err).Required()
		gt.Value(t, token.UserID).Equal("ana")

		raw, err := uc.SignToken(token)
		gt.NoError(t, err).Required()
		gt.Value(t, raw).Equal("")
	})

	t.Run("returned sessions are copies", func(t *testing.T) {
		token, err := uc.ValidateToken(ctx, "")
		gt.NoError(t, err).Required()
		token.Name = "changed"

		again, err := uc.ValidateToken(ctx, "")
		gt.NoError(t, err).Required()
		gt.Value(t, again.Name).Equal("Ana")
	})

	t.Run("logout is a no-op", func(t *testing.T) {
		gt.NoError(t, uc.Logout(ctx, "whatever"))
		_, err := uc.ValidateToken(ctx, "")
		gt.NoError(t, err)
	})
}
