package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
)

// noAuthnLifetime keeps the development session valid for the life of the
// process
const noAuthnLifetime = 100 * 365 * 24 * time.Hour

// NoAuthnUseCase treats every request as the same signed-in user. It backs
// --no-auth and the server default when no authenticator is given.
type NoAuthnUseCase struct {
	session *auth.Token
}

// NewNoAuthnUseCase creates the use case. The session is created once, so
// every request sees the same token ID.
func NewNoAuthnUseCase(userID, email, name string) *NoAuthnUseCase {
	return &NoAuthnUseCase{session: auth.NewToken(userID, email, name, noAuthnLifetime)}
}

func (uc *NoAuthnUseCase) current() *auth.Token {
	s := *uc.session
	return &s
}

func (uc *NoAuthnUseCase) Login(ctx context.Context, email, password string) (*auth.Token, error) {
	return uc.current(), nil
}

// SignToken returns no cookie value since none is checked
func (uc *NoAuthnUseCase) SignToken(token *auth.Token) (string, error) {
	return "", nil
}

func (uc *NoAuthnUseCase) ParseSession(raw string) (auth.TokenID, error) {
	return uc.session.ID, nil
}

func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	return uc.current(), nil
}

func (uc *NoAuthnUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return nil
}

func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
