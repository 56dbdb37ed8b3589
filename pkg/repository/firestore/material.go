package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type materialRepository struct {
	client     *firestore.Client
	collection string
}

func (r *materialRepository) Create(ctx context.Context, material *model.Material) (*model.Material, error) {
	created := *material
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.UploadedAt.IsZero() {
		created.UploadedAt = time.Now().UTC()
	}

	if _, err := r.client.Collection(r.collection).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create material", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *materialRepository) Get(ctx context.Context, id string) (*model.Material, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "material not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get material", goerr.V("id", id))
	}

	var m model.Material
	if err := docSnap.DataTo(&m); err != nil {
		return nil, goerr.Wrap(err, "failed to decode material", goerr.V("id", id))
	}
	return &m, nil
}

func (r *materialRepository) List(ctx context.Context) ([]*model.Material, error) {
	q := r.client.Collection(r.collection).OrderBy("UploadedAt", firestore.Asc)
	return r.query(ctx, q)
}

// ListByCard needs the composite index (CardKey, UploadedAt) created by the
// migrate command
func (r *materialRepository) ListByCard(ctx context.Context, cardKey string) ([]*model.Material, error) {
	q := r.client.Collection(r.collection).
		Where("CardKey", "==", cardKey).
		OrderBy("UploadedAt", firestore.Asc)
	return r.query(ctx, q)
}

func (r *materialRepository) query(ctx context.Context, q firestore.Query) ([]*model.Material, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	materials := make([]*model.Material, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate materials")
		}

		var m model.Material
		if err := docSnap.DataTo(&m); err != nil {
			return nil, goerr.Wrap(err, "failed to decode material", goerr.V("doc_id", docSnap.Ref.ID))
		}
		materials = append(materials, &m)
	}
	return materials, nil
}

func (r *materialRepository) Delete(ctx context.Context, id string) error {
	docRef := r.client.Collection(r.collection).Doc(id)
	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "material not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check material existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete material", goerr.V("id", id))
	}
	return nil
}

// talkSlideRepository keys documents by talk key, so Set is an upsert
type talkSlideRepository struct {
	client     *firestore.Client
	collection string
}

func (r *talkSlideRepository) Put(ctx context.Context, slide *model.TalkSlide) error {
	stored := *slide
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}
	if _, err := r.client.Collection(r.collection).Doc(stored.TalkKey).Set(ctx, &stored); err != nil {
		return goerr.Wrap(err, "failed to put talk slide", goerr.V("talk_key", slide.TalkKey))
	}
	return nil
}

func (r *talkSlideRepository) Get(ctx context.Context, talkKey string) (*model.TalkSlide, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(talkKey).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "talk slide not found", goerr.V("talk_key", talkKey))
		}
		return nil, goerr.Wrap(err, "failed to get talk slide", goerr.V("talk_key", talkKey))
	}

	var s model.TalkSlide
	if err := docSnap.DataTo(&s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode talk slide", goerr.V("talk_key", talkKey))
	}
	return &s, nil
}

func (r *talkSlideRepository) List(ctx context.Context) ([]*model.TalkSlide, error) {
	iter := r.client.Collection(r.collection).OrderBy("TalkKey", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	slides := make([]*model.TalkSlide, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate talk slides")
		}

		var s model.TalkSlide
		if err := docSnap.DataTo(&s); err != nil {
			return nil, goerr.Wrap(err, "failed to decode talk slide", goerr.V("doc_id", docSnap.Ref.ID))
		}
		slides = append(slides, &s)
	}
	return slides, nil
}

func (r *talkSlideRepository) Delete(ctx context.Context, talkKey string) error {
	docRef := r.client.Collection(r.collection).Doc(talkKey)
	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "talk slide not found", goerr.V("talk_key", talkKey))
		}
		return goerr.Wrap(err, "failed to check talk slide existence", goerr.V("talk_key", talkKey))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete talk slide", goerr.V("talk_key", talkKey))
	}
	return nil
}
