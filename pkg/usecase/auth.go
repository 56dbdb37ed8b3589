package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"golang.org/x/crypto/bcrypt"
)

// AuthUseCaseInterface is what the HTTP layer needs to sign users in and out
type AuthUseCaseInterface interface {
	// Login checks the password and opens a session
	Login(ctx context.Context, email, password string) (*auth.Token, error)
	// SignToken encodes a session as the signed cookie value
	SignToken(token *auth.Token) (string, error)
	// ParseSession verifies a cookie value and returns the session ID it names
	ParseSession(raw string) (auth.TokenID, error)
	// ValidateToken returns the live session for tokenID
	ValidateToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	// Logout ends the session
	Logout(ctx context.Context, tokenID auth.TokenID) error
	IsNoAuthn() bool
}

const sessionIssuer = "tablero"

// dummyHash is compared against when the email is unknown so a failed login
// takes the same time either way
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tablero-dummy-password"), bcrypt.DefaultCost)

type AuthUseCase struct {
	repo     interfaces.Repository
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
	cache    *sessionCache
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithTokenLifetime sets how long a session stays valid. Non-positive values
// keep the default.
func WithTokenLifetime(d time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		if d > 0 {
			uc.lifetime = d
		}
	}
}

// WithAuthClock replaces the clock used for expiry checks
func WithAuthClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

// NewAuthUseCase creates password authentication. secret signs the session
// cookie.
func NewAuthUseCase(repo interfaces.Repository, secret []byte, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:     repo,
		secret:   secret,
		lifetime: auth.DefaultTokenLifetime,
		now:      time.Now,
		cache:    newSessionCache(),
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// CreateUser registers a hub user with a bcrypt password hash
func (uc *AuthUseCase) CreateUser(ctx context.Context, email, password, name string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, goerr.Wrap(ErrInvalidInput, "valid email is required", goerr.V(EmailKey, email))
	}
	if len(password) < 8 {
		return nil, goerr.Wrap(ErrInvalidInput, "password must have at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}

	user, err := uc.repo.User().Create(ctx, &model.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    uc.now().UTC(),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create user", goerr.V(EmailKey, email))
	}
	return user, nil
}

// Login checks the password and stores a new session
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*auth.Token, error) {
	email = normalizeEmail(email)

	user, err := uc.repo.User().GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to look up user", goerr.V(EmailKey, email))
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, goerr.Wrap(ErrInvalidCredentials, "unknown email", goerr.V(EmailKey, email))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, goerr.Wrap(ErrInvalidCredentials, "password mismatch", goerr.V(EmailKey, email))
	}

	token := auth.NewToken(user.ID, user.Email, user.Name, uc.lifetime)
	token.CreatedAt = uc.now().UTC()
	token.ExpiresAt = token.CreatedAt.Add(uc.lifetime)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store token", goerr.V("token_id", token.ID))
	}

	logging.From(ctx).Info("user signed in", "user_id", user.ID)
	return token, nil
}

// SignToken returns an HS256 JWT whose jti is the session ID
func (uc *AuthUseCase) SignToken(token *auth.Token) (string, error) {
	t, err := jwt.NewBuilder().
		Issuer(sessionIssuer).
		JwtID(token.ID.String()).
		Subject(token.UserID).
		IssuedAt(token.CreatedAt).
		Expiration(token.ExpiresAt).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build session token")
	}

	signed, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign session token")
	}
	return string(signed), nil
}

// ParseSession verifies the signature and expiry of a session cookie
func (uc *AuthUseCase) ParseSession(raw string) (auth.TokenID, error) {
	t, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return "", goerr.Wrap(ErrUnauthenticated, "invalid session token", goerr.V("cause", err.Error()))
	}

	tokenID := auth.TokenID(t.JwtID())
	if err := tokenID.Validate(); err != nil {
		return "", goerr.Wrap(ErrUnauthenticated, "session token has no valid id")
	}
	return tokenID, nil
}

// ValidateToken returns the stored session if it exists and has not expired
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	return uc.lookupSession(ctx, tokenID)
}

// Logout deletes the token
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	// Remove from cache first
	uc.cache.remove(tokenID)

	if err := uc.repo.DeleteToken(ctx, tokenID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(err, "failed to delete token", goerr.V("token_id", tokenID))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
