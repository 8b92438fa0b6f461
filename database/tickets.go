package database

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"tickethub/models"
)

// TicketFilter narrows ListTickets. Empty fields are ignored.
type TicketFilter struct {
	ServerID   string
	Status     string
	Priority   string
	AssignedTo string
	Page       int
	Limit      int
}

// CreateTicket stores a new ticket and returns its generated id.
func (c *Client) CreateTicket(ctx context.Context, ticket *models.Ticket) (string, error) {
	ref, _, err := c.Tickets().Add(ctx, ticket)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// TicketByID fetches one ticket. Missing documents surface as an error.
func (c *Client) TicketByID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	if ticketID == "" {
		return nil, errors.New("ticket ID is required")
	}

	doc, err := c.Tickets().Doc(ticketID).Get(ctx)
	if err != nil {
		return nil, err
	}

	var ticket models.Ticket
	if err := doc.DataTo(&ticket); err != nil {
		return nil, err
	}
	ticket.ID = doc.Ref.ID
	return &ticket, nil
}

// TicketByThreadID resolves the ticket owning a Discord thread. Returns
// (nil, nil) when no ticket matches, so message mirroring can ignore
// unrelated threads without treating them as failures.
func (c *Client) TicketByThreadID(ctx context.Context, threadID string) (*models.Ticket, error) {
	if threadID == "" {
		return nil, errors.New("thread ID is required")
	}

	docs, err := c.Tickets().Where("threadId", "==", threadID).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var ticket models.Ticket
	if err := docs[0].DataTo(&ticket); err != nil {
		return nil, err
	}
	ticket.ID = docs[0].Ref.ID
	return &ticket, nil
}

// ListTickets returns tickets newest-first with optional equality filters.
func (c *Client) ListTickets(ctx context.Context, filter TicketFilter) ([]models.Ticket, error) {
	q := c.Tickets().Query
	if filter.ServerID != "" {
		q = q.Where("serverId", "==", filter.ServerID)
	}
	if filter.Status != "" {
		q = q.Where("status", "==", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority", "==", filter.Priority)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assignedTo", "==", filter.AssignedTo)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	q = q.OrderBy("createdAt", firestore.Desc).Offset((page - 1) * limit).Limit(limit)

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(docs))
	for _, doc := range docs {
		var ticket models.Ticket
		if err := doc.DataTo(&ticket); err != nil {
			return nil, err
		}
		ticket.ID = doc.Ref.ID
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// UpdateTicket applies partial field updates to one ticket.
func (c *Client) UpdateTicket(ctx context.Context, ticketID string, updates []firestore.Update) error {
	_, err := c.Tickets().Doc(ticketID).Update(ctx, updates)
	return err
}

// AppendMessage appends a message to a ticket's conversation and returns its id.
func (c *Client) AppendMessage(ctx context.Context, ticketID string, message *models.Message) (string, error) {
	ref, _, err := c.Messages(ticketID).Add(ctx, message)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// AppendEvent appends a system "event" message to the ticket's audit history.
// Events are not staff messages, so the staff-reply subscription never
// re-renders them into the thread.
func (c *Client) AppendEvent(ctx context.Context, ticketID, content string) error {
	event := &models.Message{
		AuthorID:       uuid.NewString(),
		AuthorUsername: "System",
		Content:        content,
		IsStaff:        false,
		Type:           models.MessageTypeEvent,
	}
	_, err := c.AppendMessage(ctx, ticketID, event)
	return err
}

// TouchLastMessage bumps the freshness flags after an inbound message.
func (c *Client) TouchLastMessage(ctx context.Context, ticketID string) error {
	return c.UpdateTicket(ctx, ticketID, []firestore.Update{
		{Path: "lastMessageAt", Value: firestore.ServerTimestamp},
		{Path: "isRead", Value: false},
	})
}

// MarkRead flags a ticket as seen by staff.
func (c *Client) MarkRead(ctx context.Context, ticketID string) error {
	return c.UpdateTicket(ctx, ticketID, []firestore.Update{
		{Path: "isRead", Value: true},
	})
}

// MarkReplyDelivered flips the delivery acknowledgment on a staff message.
func (c *Client) MarkReplyDelivered(ctx context.Context, ticketID, messageID string) error {
	_, err := c.Messages(ticketID).Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "sentToDiscord", Value: true},
	})
	return err
}

// Transcript returns a ticket's full conversation ordered by timestamp.
func (c *Client) Transcript(ctx context.Context, ticketID string) ([]models.Message, error) {
	docs, err := c.Messages(ticketID).OrderBy("timestamp", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(docs))
	for _, doc := range docs {
		var message models.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, err
		}
		message.ID = doc.Ref.ID
		messages = append(messages, message)
	}
	return messages, nil
}

// UndeliveredReplies scans all tickets for staff messages whose delivery
// acknowledgment is still unset. Used by the outbox sweep after restarts.
func (c *Client) UndeliveredReplies(ctx context.Context) ([]models.PendingReply, error) {
	docs, err := c.fs.CollectionGroup("messages").
		Where("isStaff", "==", true).
		Where("sentToDiscord", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	pending := make([]models.PendingReply, 0, len(docs))
	for _, doc := range docs {
		ticketRef := doc.Ref.Parent.Parent
		if ticketRef == nil {
			continue
		}
		var message models.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, err
		}
		message.ID = doc.Ref.ID
		pending = append(pending, models.PendingReply{
			TicketID:  ticketRef.ID,
			MessageID: doc.Ref.ID,
			Message:   message,
		})
	}
	return pending, nil
}

// CountTickets counts tickets for a guild, optionally narrowed to one status.
func (c *Client) CountTickets(ctx context.Context, serverID, status string) (int, error) {
	q := c.Tickets().Query
	if serverID != "" {
		q = q.Where("serverId", "==", serverID)
	}
	if status != "" {
		q = q.Where("status", "==", status)
	}
	docs, err := q.Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// CountTicketsSince counts tickets created at or after the given time.
func (c *Client) CountTicketsSince(ctx context.Context, serverID string, since time.Time) (int, error) {
	q := c.Tickets().Query
	if serverID != "" {
		q = q.Where("serverId", "==", serverID)
	}
	docs, err := q.Where("createdAt", ">=", since).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}
