package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type userRepository struct {
	client     *firestore.Client
	collection string
}

// userDoc stores the password hash, which model.User hides from JSON only
type userDoc struct {
	ID           string
	Email        string
	EmailKey     string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	doc := &userDoc{
		ID:           user.ID,
		Email:        user.Email,
		EmailKey:     emailKey(user.Email),
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	col := r.client.Collection(r.collection)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(col.Where("EmailKey", "==", doc.EmailKey).Limit(1)).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to look up email")
		}
		if len(existing) > 0 {
			return goerr.Wrap(ErrConflict, "email already registered", goerr.V("email", user.Email))
		}
		return tx.Create(col.Doc(doc.ID), doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create user", goerr.V("email", user.Email))
	}

	return doc.toModel(), nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var doc userDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("id", id))
	}
	return doc.toModel(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	iter := r.client.Collection(r.collection).Where("EmailKey", "==", emailKey(email)).Limit(1).Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query user", goerr.V("email", email))
	}

	var doc userDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", docSnap.Ref.ID))
	}
	return doc.toModel(), nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.client.Collection(r.collection).OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	users := make([]*model.User, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var doc userDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", docSnap.Ref.ID))
		}
		users = append(users, doc.toModel())
	}
	return users, nil
}
