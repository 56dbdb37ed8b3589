package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

type analyticsRepository struct {
	db *sql.DB
}

func (r *analyticsRepository) LoadView(ctx context.Context, name string) ([]byte, error) {
	var rows string
	err := r.db.QueryRowContext(ctx, `SELECT rows_json FROM analytics_views WHERE name = ?`, name).Scan(&rows)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "view not found", goerr.V("view", name))
		}
		return nil, goerr.Wrap(err, "failed to load view", goerr.V("view", name))
	}
	return []byte(rows), nil
}

func (r *analyticsRepository) PutView(ctx context.Context, name string, rows []byte) error {
	if !json.Valid(rows) {
		return goerr.New("view rows are not valid JSON", goerr.V("view", name))
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO analytics_views(name, rows_json) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET rows_json = excluded.rows_json`, name, string(rows))
	if err != nil {
		return goerr.Wrap(err, "failed to store view", goerr.V("view", name))
	}
	return nil
}
