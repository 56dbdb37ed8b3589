package usecase

import "github.com/secmon-lab/tablero/pkg/domain/model"

// FallbackReply is exported for testing
const FallbackReply = fallbackReply

// DefaultChatPrompt is exported for testing
var DefaultChatPrompt = defaultChatPrompt

// DateOf is exported for testing
var DateOf = dateOf

// Cache is exported for testing
func (uc *KanbanUseCase) Cache() *Collection[*model.Ticket] {
	return uc.cache
}

// Cache is exported for testing
func (uc *CalendarUseCase) Cache() *Collection[*model.ContentItem] {
	return uc.cache
}
