package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
)

func (s *SQLite) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO tokens(id, user_id, email, name, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			name = excluded.name,
			expires_at = excluded.expires_at`,
		token.ID.String(), token.UserID, token.Email, token.Name, ts(token.ExpiresAt), ts(token.CreatedAt))
	if err != nil {
		return goerr.Wrap(err, "failed to put token to sqlite")
	}
	return nil
}

func (s *SQLite) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token ID")
	}

	var (
		token                  auth.Token
		id                     string
		expiresRaw, createdRaw string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, user_id, email, name, expires_at, created_at FROM tokens WHERE id = ?`,
		tokenID.String()).Scan(&id, &token.UserID, &token.Email, &token.Name, &expiresRaw, &createdRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "token not found", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(err, "failed to get token from sqlite")
	}

	token.ID = auth.TokenID(id)
	token.ExpiresAt = parseTS(expiresRaw)
	token.CreatedAt = parseTS(createdRaw)
	return &token, nil
}

func (s *SQLite) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = ?`, tokenID.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete token from sqlite")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.Wrap(ErrNotFound, "token not found", goerr.V("token_id", tokenID))
	}
	return nil
}
