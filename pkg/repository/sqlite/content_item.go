package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/secmon-lab/tablero/pkg/utils/pubsub"
)

const contentItemColumns = `id, week, day_of_week, pillar, title, description, scheduled_date,
	has_idea, has_script, has_recording, has_edit, is_ready,
	notes, instagram_caption, tiktok_caption, script, effort, created_at, updated_at`

var contentItemFieldColumns = map[string]string{
	"Week":             "week",
	"DayOfWeek":        "day_of_week",
	"Pillar":           "pillar",
	"Title":            "title",
	"Description":      "description",
	"ScheduledDate":    "scheduled_date",
	"HasIdea":          "has_idea",
	"HasScript":        "has_script",
	"HasRecording":     "has_recording",
	"HasEdit":          "has_edit",
	"IsReady":          "is_ready",
	"Notes":            "notes",
	"InstagramCaption": "instagram_caption",
	"TiktokCaption":    "tiktok_caption",
	"Script":           "script",
	"Effort":           "effort",
	"UpdatedAt":        "updated_at",
}

type contentItemRepository struct {
	db  *sql.DB
	hub *pubsub.Hub[model.ChangeEvent]
}

func scanContentItem(row rowScanner) (*model.ContentItem, error) {
	var (
		c                      model.ContentItem
		week                   sql.NullInt64
		dayOfWeek              sql.NullString
		pillar, date, effort   string
		createdRaw, updatedRaw string
	)
	if err := row.Scan(&c.ID, &week, &dayOfWeek, &pillar, &c.Title, &c.Description, &date,
		&c.HasIdea, &c.HasScript, &c.HasRecording, &c.HasEdit, &c.IsReady,
		&c.Notes, &c.InstagramCaption, &c.TiktokCaption, &c.Script, &effort,
		&createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if week.Valid {
		w := int(week.Int64)
		c.Week = &w
	}
	if dayOfWeek.Valid {
		d := dayOfWeek.String
		c.DayOfWeek = &d
	}
	c.Pillar = types.Pillar(pillar)
	c.ScheduledDate = types.Date(date)
	c.Effort = types.Effort(effort)
	c.CreatedAt = parseTS(createdRaw)
	c.UpdatedAt = parseTS(updatedRaw)
	return &c, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func (r *contentItemRepository) publish(kind model.ChangeKind, id string) {
	r.hub.Publish(model.ChangeEvent{Table: model.TableContentItems, Kind: kind, ID: id})
}

func (r *contentItemRepository) Create(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error) {
	created := item.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO content_calendar(`+contentItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, nullableInt(created.Week), nullableString(created.DayOfWeek),
		string(created.Pillar), created.Title, created.Description, string(created.ScheduledDate),
		sqlValue(created.HasIdea), sqlValue(created.HasScript), sqlValue(created.HasRecording),
		sqlValue(created.HasEdit), sqlValue(created.IsReady),
		created.Notes, created.InstagramCaption, created.TiktokCaption, created.Script,
		string(created.Effort), ts(created.CreatedAt), ts(created.UpdatedAt))
	if err != nil {
		if isUniqueErr(err) {
			return nil, goerr.Wrap(ErrConflict, "content item already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to insert content item", goerr.V("id", created.ID))
	}

	r.publish(model.ChangeInsert, created.ID)
	return created, nil
}

func (r *contentItemRepository) Get(ctx context.Context, id string) (*model.ContentItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contentItemColumns+` FROM content_calendar WHERE id = ?`, id)
	c, err := scanContentItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get content item", goerr.V("id", id))
	}
	return c, nil
}

func (r *contentItemRepository) List(ctx context.Context) ([]*model.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contentItemColumns+` FROM content_calendar`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query content items")
	}
	defer rows.Close()

	items := make([]*model.ContentItem, 0)
	for rows.Next() {
		c, err := scanContentItem(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan content item")
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate content items")
	}

	slices.SortStableFunc(items, model.ContentItemKey)
	return items, nil
}

func (r *contentItemRepository) Update(ctx context.Context, id string, patch model.ContentItemPatch) (*model.ContentItem, error) {
	changes := patch.Changes()
	if len(changes) == 0 {
		return r.Get(ctx, id)
	}

	query, args, err := buildUpdate("content_calendar", contentItemFieldColumns, changes, id)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update content item", goerr.V("id", id))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
	}

	r.publish(model.ChangeUpdate, id)
	stored, err := r.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrUnconfirmed, "updated content item could not be read back",
			goerr.V("id", id), goerr.V("cause", err.Error()))
	}
	return stored, nil
}

func (r *contentItemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM content_calendar WHERE id = ?`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete content item", goerr.V("id", id))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
	}

	r.publish(model.ChangeDelete, id)
	return nil
}

func (r *contentItemRepository) Watch(ctx context.Context) (<-chan model.ChangeEvent, error) {
	return r.hub.Subscribe(ctx), nil
}
