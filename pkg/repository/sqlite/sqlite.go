package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/pubsub"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = interfaces.ErrNotFound
	// ErrConflict is returned when a unique key is taken
	ErrConflict = interfaces.ErrConflict
	// ErrUnconfirmed is returned when an update landed but the follow-up read failed
	ErrUnconfirmed = interfaces.ErrUnconfirmed
)

// SQLite is a self-hosted backend on a single database file. Changes made
// through this process are published to in-process watchers.
type SQLite struct {
	db          *sql.DB
	ticket      *ticketRepository
	contentItem *contentItemRepository
	material    *materialRepository
	talkSlide   *talkSlideRepository
	analytics   *analyticsRepository
	user        *userRepository
}

var _ interfaces.Repository = &SQLite{}

// New opens (and creates when missing) the database at path
func New(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, goerr.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create sqlite dir", goerr.V("path", path))
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("path", path))
	}
	// one writer keeps SQLite free of SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{
		db:          db,
		ticket:      &ticketRepository{db: db, hub: pubsub.New[model.ChangeEvent]()},
		contentItem: &contentItemRepository{db: db, hub: pubsub.New[model.ChangeEvent]()},
		material:    &materialRepository{db: db},
		talkSlide:   &talkSlideRepository{db: db},
		analytics:   &analyticsRepository{db: db},
		user:        &userRepository{db: db},
	}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tickets (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			assignee TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			completed_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS content_calendar (
			id TEXT PRIMARY KEY,
			week INTEGER,
			day_of_week TEXT,
			pillar TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			scheduled_date TEXT NOT NULL DEFAULT '',
			has_idea INTEGER NOT NULL DEFAULT 0,
			has_script INTEGER NOT NULL DEFAULT 0,
			has_recording INTEGER NOT NULL DEFAULT 0,
			has_edit INTEGER NOT NULL DEFAULT 0,
			is_ready INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			instagram_caption TEXT NOT NULL DEFAULT '',
			tiktok_caption TEXT NOT NULL DEFAULT '',
			script TEXT NOT NULL DEFAULT '',
			effort TEXT NOT NULL DEFAULT 'low',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS card_materials (
			id TEXT PRIMARY KEY,
			card_key TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_name TEXT NOT NULL,
			display_label TEXT NOT NULL,
			uploaded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS talk_slides (
			talk_key TEXT PRIMARY KEY,
			file_path TEXT NOT NULL,
			file_name TEXT NOT NULL,
			uploaded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS analytics_views (
			name TEXT PRIMARY KEY,
			rows_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE COLLATE NOCASE,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			email TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			expires_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_card_materials_card ON card_materials(card_key, uploaded_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to migrate sqlite")
		}
	}
	return nil
}

func (s *SQLite) Ticket() interfaces.TicketRepository {
	return s.ticket
}

func (s *SQLite) ContentItem() interfaces.ContentItemRepository {
	return s.contentItem
}

func (s *SQLite) Material() interfaces.MaterialRepository {
	return s.material
}

func (s *SQLite) TalkSlide() interfaces.TalkSlideRepository {
	return s.talkSlide
}

func (s *SQLite) Analytics() interfaces.AnalyticsRepository {
	return s.analytics
}

func (s *SQLite) User() interfaces.UserRepository {
	return s.user
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// tsLayout is fixed width so text order matches time order
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func ts(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ts(*t)
}

func parseTS(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	t := parseTS(v.String)
	return &t
}

// sqlValue converts a patch value to its column representation
func sqlValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return ts(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return x
	}
}

// buildUpdate renders "UPDATE table SET a = ?, b = ? WHERE id = ?" for the
// changed fields. columns maps patch field names to column names.
func buildUpdate(table string, columns map[string]string, changes []model.FieldChange, id string) (string, []any, error) {
	sets := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	for _, c := range changes {
		col, ok := columns[c.Name]
		if !ok {
			return "", nil, goerr.New("unknown field in patch", goerr.V("table", table), goerr.V("field", c.Name))
		}
		sets = append(sets, col+" = ?")
		args = append(args, sqlValue(c.Value))
	}
	args = append(args, id)
	return "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?", args, nil
}

func isUniqueErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
