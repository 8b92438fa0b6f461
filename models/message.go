package models

import "time"

// MessageTypeEvent marks system-generated narrative messages
// ("Ticket closed by staff.") rather than user content.
const MessageTypeEvent = "event"

// Attachment is a media reference copied from a Discord message.
type Attachment struct {
	URL         string `firestore:"url" json:"url"`
	Name        string `firestore:"name" json:"name"`
	ContentType string `firestore:"contentType" json:"contentType"`
}

// Message is a single entry in a ticket's conversation, ordered by Timestamp.
// IsStaff is true for dashboard-authored replies; those carry SentToDiscord,
// the delivery acknowledgment flipped once the reply was rendered into the
// thread. PingUser asks the renderer to mention the ticket opener.
type Message struct {
	ID             string       `firestore:"-" json:"id"`
	AuthorID       string       `firestore:"authorId" json:"authorId"`
	AuthorUsername string       `firestore:"authorUsername" json:"authorUsername"`
	AuthorAvatar   string       `firestore:"authorAvatar" json:"authorAvatar"`
	Content        string       `firestore:"content" json:"content"`
	Timestamp      time.Time    `firestore:"timestamp,serverTimestamp" json:"timestamp"`
	IsStaff        bool         `firestore:"isStaff" json:"isStaff"`
	PingUser       bool         `firestore:"pingUser,omitempty" json:"pingUser,omitempty"`
	SentToDiscord  bool         `firestore:"sentToDiscord" json:"sentToDiscord,omitempty"`
	Type           string       `firestore:"type,omitempty" json:"type,omitempty"`
	Attachments    []Attachment `firestore:"attachments,omitempty" json:"attachments,omitempty"`
	Stickers       []string     `firestore:"stickers,omitempty" json:"stickers,omitempty"`
}

// PendingReply is a staff message still waiting to be rendered into its thread.
type PendingReply struct {
	TicketID  string
	MessageID string
	Message   Message
}
