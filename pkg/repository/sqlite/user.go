package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
)

const userColumns = `id, email, name, password_hash, created_at`

type userRepository struct {
	db *sql.DB
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u          model.User
		createdRaw string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &createdRaw); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTS(createdRaw)
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO users(`+userColumns+`) VALUES (?, ?, ?, ?, ?)`,
		created.ID, created.Email, created.Name, created.PasswordHash, ts(created.CreatedAt))
	if err != nil {
		if isUniqueErr(err) {
			return nil, goerr.Wrap(ErrConflict, "email already registered", goerr.V("email", created.Email))
		}
		return nil, goerr.Wrap(err, "failed to insert user")
	}
	return &created, nil
}

func (r *userRepository) get(ctx context.Context, where string, arg string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = ?`, arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V(where, arg))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(where, arg))
	}
	return u, nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	return r.get(ctx, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.get(ctx, "email", email)
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query users")
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan user")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate users")
	}
	return users, nil
}
