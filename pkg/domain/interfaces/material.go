package interfaces

import (
	"context"

	"github.com/secmon-lab/tablero/pkg/domain/model"
)

// MaterialRepository stores metadata of card materials
type MaterialRepository interface {
	Create(ctx context.Context, material *model.Material) (*model.Material, error)
	Get(ctx context.Context, id string) (*model.Material, error)
	// List returns all materials, oldest upload first
	List(ctx context.Context) ([]*model.Material, error)
	ListByCard(ctx context.Context, cardKey string) ([]*model.Material, error)
	Delete(ctx context.Context, id string) error
}

// TalkSlideRepository stores one slide deck record per talk
type TalkSlideRepository interface {
	// Put inserts or replaces the record for slide.TalkKey
	Put(ctx context.Context, slide *model.TalkSlide) error
	Get(ctx context.Context, talkKey string) (*model.TalkSlide, error)
	List(ctx context.Context) ([]*model.TalkSlide, error)
	Delete(ctx context.Context, talkKey string) error
}
