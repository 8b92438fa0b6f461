package models

import (
	"time"

	"gorm.io/gorm"
)

// ArchivedTicket is a local copy of a ticket and its full transcript, written
// when the ticket transitions to closed. The unique index on (ticket, closedAt)
// keeps one archive row per close transition even if the change event replays.
type ArchivedTicket struct {
	gorm.Model
	ArchiveID      string    `json:"archive_id" gorm:"uniqueIndex"`
	TicketID       string    `json:"ticket_id" gorm:"uniqueIndex:idx_ticket_close"`
	ClosedAt       time.Time `json:"closed_at" gorm:"uniqueIndex:idx_ticket_close"`
	ServerID       string    `json:"server_id"`
	ThreadID       string    `json:"thread_id"`
	OpenerID       string    `json:"opener_id"`
	OpenerUsername string    `json:"opener_username"`
	Title          string    `json:"title"`
	MessageCount   int       `json:"message_count"`
	Transcript     string    `json:"transcript" gorm:"type:text"` // JSON-encoded []Message
}
