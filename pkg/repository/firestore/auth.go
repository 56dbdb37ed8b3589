package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
)

const sessionsCollection = "sessions"

// sessionDoc is a login session as stored in Firestore. The document ID is
// the token ID so it is not repeated in the body.
type sessionDoc struct {
	UserID    string    `firestore:"user_id"`
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name"`
	ExpiresAt time.Time `firestore:"expires_at"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (r *Firestore) session(id auth.TokenID) *firestore.DocumentRef {
	return r.client.Collection(r.collection(sessionsCollection)).Doc(id.String())
}

func (r *Firestore) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	doc := sessionDoc{
		UserID:    token.UserID,
		Email:     token.Email,
		Name:      token.Name,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
	if _, err := r.session(token.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save session", goerr.V("token_id", token.ID))
	}
	return nil
}

func (r *Firestore) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token ID")
	}

	snap, err := r.session(tokenID).Get(ctx)
	if isNotFound(err) {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("token_id", tokenID))
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session", goerr.V("token_id", tokenID))
	}
	return &auth.Token{
		ID:        tokenID,
		UserID:    doc.UserID,
		Email:     doc.Email,
		Name:      doc.Name,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// DeleteToken removes the session. The Exists precondition turns a missing
// document into NotFound in a single round trip.
func (r *Firestore) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}

	_, err := r.session(tokenID).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return goerr.Wrap(ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to delete session", goerr.V("token_id", tokenID))
	}
	return nil
}
