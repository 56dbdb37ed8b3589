package firestore

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
)

type analyticsRepository struct {
	client     *firestore.Client
	collection string
}

// viewDoc holds the rows of one view as a JSON string
type viewDoc struct {
	Rows string
}

func (r *analyticsRepository) LoadView(ctx context.Context, name string) ([]byte, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(name).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "view not found", goerr.V("view", name))
		}
		return nil, goerr.Wrap(err, "failed to load view", goerr.V("view", name))
	}

	var doc viewDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode view", goerr.V("view", name))
	}
	return []byte(doc.Rows), nil
}

func (r *analyticsRepository) PutView(ctx context.Context, name string, rows []byte) error {
	if !json.Valid(rows) {
		return goerr.New("view rows are not valid JSON", goerr.V("view", name))
	}

	if _, err := r.client.Collection(r.collection).Doc(name).Set(ctx, viewDoc{Rows: string(rows)}); err != nil {
		return goerr.Wrap(err, "failed to store view", goerr.V("view", name))
	}
	return nil
}
