package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TokenID names a login session
type TokenID string

var ErrInvalidToken = goerr.New("invalid token")

// NewTokenID returns a random token ID
func NewTokenID() TokenID {
	return TokenID(uuid.NewString())
}

func (x TokenID) String() string {
	return string(x)
}

// Validate checks that the ID is a UUID
func (x TokenID) Validate() error {
	if x == "" {
		return goerr.Wrap(ErrInvalidToken, "token ID is empty")
	}
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(ErrInvalidToken, "token ID is not a UUID", goerr.V("token_id", string(x)))
	}
	return nil
}

// DefaultTokenLifetime is how long a login session stays valid
const DefaultTokenLifetime = 7 * 24 * time.Hour

// Token is a persisted login session
type Token struct {
	ID        TokenID
	UserID    string
	Email     string
	Name      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewToken creates a session for the user valid for lifetime
func NewToken(userID, email, name string, lifetime time.Duration) *Token {
	now := time.Now().UTC()
	return &Token{
		ID:        NewTokenID(),
		UserID:    userID,
		Email:     email,
		Name:      name,
		ExpiresAt: now.Add(lifetime),
		CreatedAt: now,
	}
}

// Validate checks the token fields
func (t *Token) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return err
	}
	if t.UserID == "" {
		return goerr.Wrap(ErrInvalidToken, "user ID is empty", goerr.V("token_id", t.ID))
	}
	if t.ExpiresAt.IsZero() {
		return goerr.Wrap(ErrInvalidToken, "expiry is not set", goerr.V("token_id", t.ID))
	}
	return nil
}

// IsExpired reports whether the session ended before now
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
