package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
)

type materialRepository struct {
	mu        sync.RWMutex
	materials map[string]*model.Material
}

func newMaterialRepository() *materialRepository {
	return &materialRepository{
		materials: make(map[string]*model.Material),
	}
}

func copyMaterial(m *model.Material) *model.Material {
	c := *m
	return &c
}

func byUploadedAt(a, b *model.Material) int {
	return a.UploadedAt.Compare(b.UploadedAt)
}

func (r *materialRepository) Create(ctx context.Context, material *model.Material) (*model.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyMaterial(material)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.UploadedAt.IsZero() {
		created.UploadedAt = time.Now().UTC()
	}

	r.materials[created.ID] = created
	return copyMaterial(created), nil
}

func (r *materialRepository) Get(ctx context.Context, id string) (*model.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.materials[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "material not found", goerr.V("id", id))
	}
	return copyMaterial(m), nil
}

func (r *materialRepository) List(ctx context.Context) ([]*model.Material, error) {
	return r.filter(func(*model.Material) bool { return true }), nil
}

func (r *materialRepository) ListByCard(ctx context.Context, cardKey string) ([]*model.Material, error) {
	return r.filter(func(m *model.Material) bool { return m.CardKey == cardKey }), nil
}

func (r *materialRepository) filter(match func(*model.Material) bool) []*model.Material {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Material, 0, len(r.materials))
	for _, m := range r.materials {
		if match(m) {
			result = append(result, copyMaterial(m))
		}
	}
	slices.SortStableFunc(result, byUploadedAt)
	return result
}

func (r *materialRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.materials[id]; !exists {
		return goerr.Wrap(ErrNotFound, "material not found", goerr.V("id", id))
	}
	delete(r.materials, id)
	return nil
}

type talkSlideRepository struct {
	mu     sync.RWMutex
	slides map[string]*model.TalkSlide
}

func newTalkSlideRepository() *talkSlideRepository {
	return &talkSlideRepository{
		slides: make(map[string]*model.TalkSlide),
	}
}

func (r *talkSlideRepository) Put(ctx context.Context, slide *model.TalkSlide) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *slide
	if c.UploadedAt.IsZero() {
		c.UploadedAt = time.Now().UTC()
	}
	r.slides[c.TalkKey] = &c
	return nil
}

func (r *talkSlideRepository) Get(ctx context.Context, talkKey string) (*model.TalkSlide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.slides[talkKey]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "talk slide not found", goerr.V("talk_key", talkKey))
	}
	c := *s
	return &c, nil
}

func (r *talkSlideRepository) List(ctx context.Context) ([]*model.TalkSlide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.TalkSlide, 0, len(r.slides))
	for _, s := range r.slides {
		c := *s
		result = append(result, &c)
	}
	slices.SortFunc(result, func(a, b *model.TalkSlide) int {
		if a.TalkKey < b.TalkKey {
			return -1
		}
		if a.TalkKey > b.TalkKey {
			return 1
		}
		return 0
	})
	return result, nil
}

func (r *talkSlideRepository) Delete(ctx context.Context, talkKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slides[talkKey]; !exists {
		return goerr.Wrap(ErrNotFound, "talk slide not found", goerr.V("talk_key", talkKey))
	}
	delete(r.slides, talkKey)
	return nil
}
