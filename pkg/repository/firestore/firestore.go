package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = interfaces.ErrNotFound
	// ErrConflict is returned when a unique key is taken
	ErrConflict = interfaces.ErrConflict
	// ErrUnconfirmed is returned when an update landed but the follow-up read failed
	ErrUnconfirmed = interfaces.ErrUnconfirmed
)

// Collection names
const (
	CollectionTickets      = "tickets"
	CollectionContentItems = "content_calendar"
	CollectionMaterials    = "card_materials"
	CollectionTalkSlides   = "talk_slides"
	CollectionAnalytics    = "analytics_views"
	CollectionUsers        = "users"
)

type Firestore struct {
	client      *firestore.Client
	prefix      string
	ticket      *ticketRepository
	contentItem *contentItemRepository
	material    *materialRepository
	talkSlide   *talkSlideRepository
	analytics   *analyticsRepository
	user        *userRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, e.g. for test isolation
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.prefix = prefix
	}
}

// New creates the Firestore backend. An empty databaseID selects the default
// database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	f.ticket = &ticketRepository{client: client, collection: f.collection(CollectionTickets)}
	f.contentItem = &contentItemRepository{client: client, collection: f.collection(CollectionContentItems)}
	f.material = &materialRepository{client: client, collection: f.collection(CollectionMaterials)}
	f.talkSlide = &talkSlideRepository{client: client, collection: f.collection(CollectionTalkSlides)}
	f.analytics = &analyticsRepository{client: client, collection: f.collection(CollectionAnalytics)}
	f.user = &userRepository{client: client, collection: f.collection(CollectionUsers)}

	return f, nil
}

func (f *Firestore) collection(name string) string {
	if f.prefix != "" {
		return f.prefix + "_" + name
	}
	return name
}

func (f *Firestore) Ticket() interfaces.TicketRepository {
	return f.ticket
}

func (f *Firestore) ContentItem() interfaces.ContentItemRepository {
	return f.contentItem
}

func (f *Firestore) Material() interfaces.MaterialRepository {
	return f.material
}

func (f *Firestore) TalkSlide() interfaces.TalkSlideRepository {
	return f.talkSlide
}

func (f *Firestore) Analytics() interfaces.AnalyticsRepository {
	return f.analytics
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}

func toUpdates(changes []model.FieldChange) []firestore.Update {
	updates := make([]firestore.Update, 0, len(changes))
	for _, c := range changes {
		updates = append(updates, firestore.Update{Path: c.Name, Value: c.Value})
	}
	return updates
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// watchCollection turns query snapshots of a collection into change events.
// The first snapshot holds the current contents and is skipped.
func watchCollection(ctx context.Context, client *firestore.Client, collection, table string) <-chan model.ChangeEvent {
	ch := make(chan model.ChangeEvent, 16)
	iter := client.Collection(collection).Snapshots(ctx)

	go func() {
		defer close(ch)
		defer iter.Stop()

		first := true
		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					logging.From(ctx).Error("firestore snapshot listener stopped",
						"collection", collection, "error", err)
				}
				return
			}
			if first {
				first = false
				continue
			}

			for _, change := range snap.Changes {
				ev := model.ChangeEvent{Table: table, ID: change.Doc.Ref.ID}
				switch change.Kind {
				case firestore.DocumentAdded:
					ev.Kind = model.ChangeInsert
				case firestore.DocumentModified:
					ev.Kind = model.ChangeUpdate
				case firestore.DocumentRemoved:
					ev.Kind = model.ChangeDelete
				}

				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch
}
