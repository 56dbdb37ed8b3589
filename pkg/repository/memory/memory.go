package memory

import (
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/pubsub"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = interfaces.ErrNotFound
	// ErrConflict is returned when a unique key is taken
	ErrConflict = interfaces.ErrConflict
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every collection in process. Changes are published to
// in-process watchers.
type Memory struct {
	ticket      *ticketRepository
	contentItem *contentItemRepository
	material    *materialRepository
	talkSlide   *talkSlideRepository
	analytics   *analyticsRepository
	user        *userRepository
	tokens      *tokenStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		ticket:      newTicketRepository(pubsub.New[model.ChangeEvent]()),
		contentItem: newContentItemRepository(pubsub.New[model.ChangeEvent]()),
		material:    newMaterialRepository(),
		talkSlide:   newTalkSlideRepository(),
		analytics:   newAnalyticsRepository(),
		user:        newUserRepository(),
		tokens:      newTokenStore(),
	}
}

func (m *Memory) Ticket() interfaces.TicketRepository {
	return m.ticket
}

func (m *Memory) ContentItem() interfaces.ContentItemRepository {
	return m.contentItem
}

func (m *Memory) Material() interfaces.MaterialRepository {
	return m.material
}

func (m *Memory) TalkSlide() interfaces.TalkSlideRepository {
	return m.talkSlide
}

func (m *Memory) Analytics() interfaces.AnalyticsRepository {
	return m.analytics
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Close() error {
	return nil
}
