package model

import "errors"

// Validation errors
var (
	ErrInvalidTicket      = errors.New("invalid ticket")
	ErrInvalidContentItem = errors.New("invalid content item")
	ErrInvalidProgress    = errors.New("progress flags must be prefix-closed")
	ErrInvalidMaterial    = errors.New("invalid material")
)

// Context keys for error values
const (
	TicketIDKey      = "ticket_id"
	ContentItemIDKey = "content_item_id"
	FieldKey         = "field"
	ValueKey         = "value"
)
