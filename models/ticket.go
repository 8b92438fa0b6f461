package models

import "time"

// Ticket status values. A closed ticket always carries a ClosedAt timestamp;
// leaving the closed state clears it again.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
	StatusClosed   = "closed"
)

// Ticket priority values
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Ticket is a support ticket backed by exactly one Discord thread.
// Opener and assignee fields are display snapshots taken at write time,
// they are not refreshed when the Discord profile changes.
type Ticket struct {
	ID               string     `firestore:"-" json:"id"`
	ServerID         string     `firestore:"serverId" json:"serverId"`
	ThreadID         string     `firestore:"threadId" json:"threadId"`
	OpenerID         string     `firestore:"openerId" json:"openerId"`
	OpenerUsername   string     `firestore:"openerUsername" json:"openerUsername"`
	OpenerAvatar     string     `firestore:"openerAvatar" json:"openerAvatar"`
	Title            string     `firestore:"title" json:"title"`
	Status           string     `firestore:"status" json:"status"`
	Priority         string     `firestore:"priority" json:"priority"`
	AssignedTo       string     `firestore:"assignedTo" json:"assignedTo"`
	AssignedToName   string     `firestore:"assignedToName" json:"assignedToName"`
	AssignedToAvatar string     `firestore:"assignedToAvatar" json:"assignedToAvatar"`
	Tags             []string   `firestore:"tags" json:"tags"`
	CreatedAt        time.Time  `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	ClosedAt         *time.Time `firestore:"closedAt" json:"closedAt"`
	LastMessageAt    time.Time  `firestore:"lastMessageAt,serverTimestamp" json:"lastMessageAt"`
	IsRead           bool       `firestore:"isRead" json:"isRead"`
}

// ValidStatus reports whether s is one of the known ticket statuses.
func ValidStatus(s string) bool {
	return s == StatusOpen || s == StatusResolved || s == StatusClosed
}

// ValidPriority reports whether p is one of the known ticket priorities.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
