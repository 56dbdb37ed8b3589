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

const materialColumns = `id, card_key, file_path, file_name, display_label, uploaded_at`

type materialRepository struct {
	db *sql.DB
}

func scanMaterial(row rowScanner) (*model.Material, error) {
	var (
		m           model.Material
		uploadedRaw string
	)
	if err := row.Scan(&m.ID, &m.CardKey, &m.FilePath, &m.FileName, &m.DisplayLabel, &uploadedRaw); err != nil {
		return nil, err
	}
	m.UploadedAt = parseTS(uploadedRaw)
	return &m, nil
}

func (r *materialRepository) Create(ctx context.Context, material *model.Material) (*model.Material, error) {
	created := *material
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.UploadedAt.IsZero() {
		created.UploadedAt = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO card_materials(`+materialColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		created.ID, created.CardKey, created.FilePath, created.FileName, created.DisplayLabel,
		ts(created.UploadedAt)); err != nil {
		return nil, goerr.Wrap(err, "failed to insert material", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *materialRepository) Get(ctx context.Context, id string) (*model.Material, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+materialColumns+` FROM card_materials WHERE id = ?`, id)
	m, err := scanMaterial(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "material not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get material", goerr.V("id", id))
	}
	return m, nil
}

func (r *materialRepository) List(ctx context.Context) ([]*model.Material, error) {
	return r.query(ctx, `SELECT `+materialColumns+` FROM card_materials ORDER BY uploaded_at ASC`)
}

func (r *materialRepository) ListByCard(ctx context.Context, cardKey string) ([]*model.Material, error) {
	return r.query(ctx, `SELECT `+materialColumns+` FROM card_materials WHERE card_key = ? ORDER BY uploaded_at ASC`, cardKey)
}

func (r *materialRepository) query(ctx context.Context, query string, args ...any) ([]*model.Material, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query materials")
	}
	defer rows.Close()

	materials := make([]*model.Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan material")
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate materials")
	}
	return materials, nil
}

func (r *materialRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM card_materials WHERE id = ?`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete material", goerr.V("id", id))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.Wrap(ErrNotFound, "material not found", goerr.V("id", id))
	}
	return nil
}

type talkSlideRepository struct {
	db *sql.DB
}

func scanTalkSlide(row rowScanner) (*model.TalkSlide, error) {
	var (
		s           model.TalkSlide
		uploadedRaw string
	)
	if err := row.Scan(&s.TalkKey, &s.FilePath, &s.FileName, &uploadedRaw); err != nil {
		return nil, err
	}
	s.UploadedAt = parseTS(uploadedRaw)
	return &s, nil
}

func (r *talkSlideRepository) Put(ctx context.Context, slide *model.TalkSlide) error {
	uploadedAt := slide.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO talk_slides(talk_key, file_path, file_name, uploaded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(talk_key) DO UPDATE SET
			file_path = excluded.file_path,
			file_name = excluded.file_name,
			uploaded_at = excluded.uploaded_at`,
		slide.TalkKey, slide.FilePath, slide.FileName, ts(uploadedAt))
	if err != nil {
		return goerr.Wrap(err, "failed to upsert talk slide", goerr.V("talk_key", slide.TalkKey))
	}
	return nil
}

func (r *talkSlideRepository) Get(ctx context.Context, talkKey string) (*model.TalkSlide, error) {
	row := r.db.QueryRowContext(ctx, `SELECT talk_key, file_path, file_name, uploaded_at FROM talk_slides WHERE talk_key = ?`, talkKey)
	s, err := scanTalkSlide(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "talk slide not found", goerr.V("talk_key", talkKey))
		}
		return nil, goerr.Wrap(err, "failed to get talk slide", goerr.V("talk_key", talkKey))
	}
	return s, nil
}

func (r *talkSlideRepository) List(ctx context.Context) ([]*model.TalkSlide, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT talk_key, file_path, file_name, uploaded_at FROM talk_slides ORDER BY talk_key`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query talk slides")
	}
	defer rows.Close()

	slides := make([]*model.TalkSlide, 0)
	for rows.Next() {
		s, err := scanTalkSlide(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan talk slide")
		}
		slides = append(slides, s)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate talk slides")
	}
	return slides, nil
}

func (r *talkSlideRepository) Delete(ctx context.Context, talkKey string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM talk_slides WHERE talk_key = ?`, talkKey)
	if err != nil {
		return goerr.Wrap(err, "failed to delete talk slide", goerr.V("talk_key", talkKey))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.Wrap(ErrNotFound, "talk slide not found", goerr.V("talk_key", talkKey))
	}
	return nil
}
