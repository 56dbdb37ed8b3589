package model

// ChangeKind is the kind of a realtime change
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// ChangeEvent reports that a record of a table changed remotely
type ChangeEvent struct {
	Table string     `json:"table"`
	Kind  ChangeKind `json:"kind"`
	ID    string     `json:"id"`
}

// Table names used in change events and reports
const (
	TableTickets      = "tickets"
	TableContentItems = "content_calendar"
	TableMaterials    = "card_materials"
	TableTalkSlides   = "talk_slides"
)

// NoticeLevel is the severity of a transient notice
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient message shown to the user (a toast)
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
