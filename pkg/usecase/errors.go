package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrContentItemNotFound = errors.New("content item not found")
	ErrMaterialNotFound    = errors.New("material not found")
	ErrSlideNotFound       = errors.New("slides not found")
	ErrCVNotFound          = errors.New("cv not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownCard  = errors.New("unknown card")
	ErrUnknownTalk  = errors.New("unknown talk")
	ErrEmptyChat    = errors.New("chat has no messages")

	// Configuration errors
	ErrLLMNotConfigured     = errors.New("llm is not configured")
	ErrStorageNotConfigured = errors.New("storage is not configured")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// Context keys for error values
const (
	CollectionKey = "collection"
	RecordIDKey   = "record_id"
	TicketIDKey   = "ticket_id"
	ItemIDKey     = "item_id"
	CardKeyKey    = "card_key"
	TalkKeyKey    = "talk_key"
	EmailKey      = "email"
)
