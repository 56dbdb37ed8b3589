package usecase

import (
	"context"
	"errors"
	"io"
	"path"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/model/config"
	"github.com/secmon-lab/tablero/pkg/utils/async"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// Upload is a file received from the browser
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// MaterialView is a material with its download link
type MaterialView struct {
	*model.Material
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SlideView is a talk slide deck with its download link
type SlideView struct {
	*model.TalkSlide
	Title string `json:"title"`
	URL   string `json:"url"`
}

// MaterialUseCase manages card materials, the CV and talk slides
type MaterialUseCase struct {
	repo    interfaces.Repository
	storage interfaces.BlobStorage
	app     *config.App
	now     func() time.Time
}

// NewMaterialUseCase creates the materials use case. storage may be nil, in
// which case every operation fails with ErrStorageNotConfigured.
func NewMaterialUseCase(repo interfaces.Repository, storage interfaces.BlobStorage, app *config.App, now func() time.Time) *MaterialUseCase {
	if now == nil {
		now = time.Now
	}
	return &MaterialUseCase{repo: repo, storage: storage, app: app, now: now}
}

func (uc *MaterialUseCase) ready() error {
	if uc.storage == nil {
		return goerr.Wrap(ErrStorageNotConfigured, "file storage is unavailable")
	}
	return nil
}

func cleanUpload(f Upload) (string, error) {
	name := model.CleanFileName(f.FileName)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", goerr.Wrap(ErrInvalidInput, "file name is required")
	}
	return name, nil
}

// Upload stores a file for a card. An existing file with the same name is
// overwritten in storage and gets a new metadata record.
func (uc *MaterialUseCase) Upload(ctx context.Context, cardKey string, f Upload) (*MaterialView, error) {
	if err := uc.ready(); err != nil {
		return nil, err
	}
	if !uc.app.HasCard(cardKey) {
		return nil, goerr.Wrap(ErrUnknownCard, "card is not configured", goerr.V(CardKeyKey, cardKey))
	}
	name, err := cleanUpload(f)
	if err != nil {
		return nil, err
	}

	filePath := path.Join(cardKey, name)
	if err := uc.storage.Upload(ctx, model.BucketMaterials, filePath, f.Body, f.ContentType); err != nil {
		return nil, goerr.Wrap(err, "failed to upload material", goerr.V(CardKeyKey, cardKey), goerr.V("path", filePath))
	}

	created, err := uc.repo.Material().Create(ctx, &model.Material{
		CardKey:      cardKey,
		FilePath:     filePath,
		FileName:     name,
		DisplayLabel: model.DisplayLabel(name),
		UploadedAt:   uc.now().UTC(),
	})
	if err != nil {
		if rmErr := uc.storage.Remove(ctx, model.BucketMaterials, filePath); rmErr != nil {
			logging.From(ctx).Warn("failed to remove orphaned upload", "path", filePath, "error", rmErr)
		}
		return nil, goerr.Wrap(err, "failed to save material", goerr.V(CardKeyKey, cardKey))
	}

	logging.From(ctx).Info("material uploaded", "card_key", cardKey, "file", name)
	return uc.materialView(created), nil
}

// List returns every material, oldest upload first
func (uc *MaterialUseCase) List(ctx context.Context) ([]*MaterialView, error) {
	materials, err := uc.repo.Material().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list materials")
	}
	return uc.materialViews(materials), nil
}

// ListByCard returns the materials of one card with label and public URL
func (uc *MaterialUseCase) ListByCard(ctx context.Context, cardKey string) ([]*MaterialView, error) {
	materials, err := uc.repo.Material().ListByCard(ctx, cardKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list materials", goerr.V(CardKeyKey, cardKey))
	}
	return uc.materialViews(materials), nil
}

// Delete removes the file and its record
func (uc *MaterialUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.ready(); err != nil {
		return err
	}

	m, err := uc.repo.Material().Get(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(ErrMaterialNotFound, "material does not exist", goerr.V(RecordIDKey, id))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to get material", goerr.V(RecordIDKey, id))
	}

	if err := uc.storage.Remove(ctx, model.BucketMaterials, m.FilePath); err != nil {
		return goerr.Wrap(err, "failed to remove material file", goerr.V(RecordIDKey, id))
	}
	if err := uc.repo.Material().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete material", goerr.V(RecordIDKey, id))
	}
	return nil
}

func (uc *MaterialUseCase) materialViews(materials []*model.Material) []*MaterialView {
	views := make([]*MaterialView, 0, len(materials))
	for _, m := range materials {
		views = append(views, uc.materialView(m))
	}
	return views
}

func (uc *MaterialUseCase) materialView(m *model.Material) *MaterialView {
	label := m.DisplayLabel
	if label == "" {
		label = m.FileName
	}
	v := &MaterialView{Material: m, Label: label}
	if uc.storage != nil {
		v.URL = uc.storage.PublicURL(model.BucketMaterials, m.FilePath)
	}
	return v
}

// GetCV returns the current CV
func (uc *MaterialUseCase) GetCV(ctx context.Context) (*model.BlobObject, error) {
	if err := uc.ready(); err != nil {
		return nil, err
	}

	paths, err := uc.storage.List(ctx, model.BucketCV, "")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list cv bucket")
	}
	if len(paths) == 0 {
		return nil, goerr.Wrap(ErrCVNotFound, "no cv uploaded")
	}

	p := paths[0]
	return &model.BlobObject{
		Bucket: model.BucketCV,
		Path:   p,
		Name:   path.Base(p),
		URL:    uc.storage.PublicURL(model.BucketCV, p),
	}, nil
}

// UploadCV replaces the CV
func (uc *MaterialUseCase) UploadCV(ctx context.Context, f Upload) (*model.BlobObject, error) {
	if err := uc.ready(); err != nil {
		return nil, err
	}
	name, err := cleanUpload(f)
	if err != nil {
		return nil, err
	}

	existing, err := uc.storage.List(ctx, model.BucketCV, "")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list cv bucket")
	}
	if len(existing) > 0 {
		if err := uc.storage.Remove(ctx, model.BucketCV, existing...); err != nil {
			return nil, goerr.Wrap(err, "failed to remove previous cv")
		}
	}

	if err := uc.storage.Upload(ctx, model.BucketCV, name, f.Body, f.ContentType); err != nil {
		return nil, goerr.Wrap(err, "failed to upload cv", goerr.V("file", name))
	}

	logging.From(ctx).Info("cv uploaded", "file", name)
	return &model.BlobObject{
		Bucket: model.BucketCV,
		Path:   name,
		Name:   name,
		URL:    uc.storage.PublicURL(model.BucketCV, name),
	}, nil
}

// DeleteCV removes the CV
func (uc *MaterialUseCase) DeleteCV(ctx context.Context) error {
	cv, err := uc.GetCV(ctx)
	if err != nil {
		return err
	}
	if err := uc.storage.Remove(ctx, model.BucketCV, cv.Path); err != nil {
		return goerr.Wrap(err, "failed to remove cv", goerr.V("path", cv.Path))
	}
	return nil
}

// UploadSlides stores the slide deck of a talk, replacing the previous one
func (uc *MaterialUseCase) UploadSlides(ctx context.Context, talkKey string, f Upload) (*SlideView, error) {
	if err := uc.ready(); err != nil {
		return nil, err
	}
	if !uc.app.HasTalk(talkKey) {
		return nil, goerr.Wrap(ErrUnknownTalk, "talk is not configured", goerr.V(TalkKeyKey, talkKey))
	}
	name, err := cleanUpload(f)
	if err != nil {
		return nil, err
	}

	previous, err := uc.repo.TalkSlide().Get(ctx, talkKey)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to get slides", goerr.V(TalkKeyKey, talkKey))
	}

	filePath := path.Join(talkKey, name)
	if err := uc.storage.Upload(ctx, model.BucketTalkSlides, filePath, f.Body, f.ContentType); err != nil {
		return nil, goerr.Wrap(err, "failed to upload slides", goerr.V(TalkKeyKey, talkKey))
	}

	slide := &model.TalkSlide{
		TalkKey:    talkKey,
		FilePath:   filePath,
		FileName:   name,
		UploadedAt: uc.now().UTC(),
	}
	if err := uc.repo.TalkSlide().Put(ctx, slide); err != nil {
		return nil, goerr.Wrap(err, "failed to save slides", goerr.V(TalkKeyKey, talkKey))
	}

	// The replaced deck is no longer referenced; remove it after responding.
	if previous != nil && previous.FilePath != filePath {
		stale := previous.FilePath
		async.Dispatch(ctx, func(ctx context.Context) error {
			if err := uc.storage.Remove(ctx, model.BucketTalkSlides, stale); err != nil {
				return goerr.Wrap(err, "failed to remove replaced slides", goerr.V("path", stale))
			}
			return nil
		})
	}

	logging.From(ctx).Info("slides uploaded", "talk_key", talkKey, "file", name)
	return uc.slideView(slide), nil
}

// ListSlides returns every uploaded slide deck
func (uc *MaterialUseCase) ListSlides(ctx context.Context) ([]*SlideView, error) {
	slides, err := uc.repo.TalkSlide().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list slides")
	}
	views := make([]*SlideView, 0, len(slides))
	for _, s := range slides {
		views = append(views, uc.slideView(s))
	}
	return views, nil
}

// DeleteSlides removes the slide deck of a talk
func (uc *MaterialUseCase) DeleteSlides(ctx context.Context, talkKey string) error {
	if err := uc.ready(); err != nil {
		return err
	}

	slide, err := uc.repo.TalkSlide().Get(ctx, talkKey)
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(ErrSlideNotFound, "talk has no slides", goerr.V(TalkKeyKey, talkKey))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to get slides", goerr.V(TalkKeyKey, talkKey))
	}

	if err := uc.storage.Remove(ctx, model.BucketTalkSlides, slide.FilePath); err != nil {
		return goerr.Wrap(err, "failed to remove slides file", goerr.V(TalkKeyKey, talkKey))
	}
	if err := uc.repo.TalkSlide().Delete(ctx, talkKey); err != nil {
		return goerr.Wrap(err, "failed to delete slides", goerr.V(TalkKeyKey, talkKey))
	}
	return nil
}

func (uc *MaterialUseCase) slideView(s *model.TalkSlide) *SlideView {
	v := &SlideView{TalkSlide: s, Title: uc.app.TalkTitle(s.TalkKey)}
	if uc.storage != nil {
		v.URL = uc.storage.PublicURL(model.BucketTalkSlides, s.FilePath)
	}
	return v
}
