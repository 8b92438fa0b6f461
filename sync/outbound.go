package sync

import (
	"context"
	"fmt"
	"log"

	"tickethub/models"
)

// Gateway is the slice of the chat surface the outbound sync drives.
type Gateway interface {
	ThreadLocked(threadID string) (bool, error)
	SendNotice(threadID, title, description string, color int) error
	SendStaffReply(threadID string, message *models.Message, mentionUserID string) error
	SetThreadLocked(threadID string, locked bool, reason string) error
}

// Store is the slice of the ticket store the outbound sync reads and writes.
type Store interface {
	TicketByID(ctx context.Context, ticketID string) (*models.Ticket, error)
	MarkReplyDelivered(ctx context.Context, ticketID, messageID string) error
	AppendEvent(ctx context.Context, ticketID, content string) error
	Transcript(ctx context.Context, ticketID string) ([]models.Message, error)
}

// Archiver persists transcripts of closed tickets.
type Archiver interface {
	ArchiveTicket(ticket *models.Ticket, transcript []models.Message) error
}

// Broadcaster pushes ticket change events to connected dashboard clients.
type Broadcaster interface {
	BroadcastTicket(kind string, ticket *models.Ticket)
}

// ChangeKind mirrors the store change feed's event types.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

// Outbound reconciles store-side changes back into chat: it renders staff
// replies into ticket threads and narrates status and assignment changes
// made from the web panel.
type Outbound struct {
	reconciler *Reconciler
	gateway    Gateway
	store      Store
	archiver   Archiver
	events     Broadcaster
}

// NewOutbound wires the outbound sync. archiver and events may be nil, in
// which case archiving and dashboard broadcasts are skipped.
func NewOutbound(reconciler *Reconciler, gateway Gateway, store Store, archiver Archiver, events Broadcaster) *Outbound {
	return &Outbound{
		reconciler: reconciler,
		gateway:    gateway,
		store:      store,
		archiver:   archiver,
		events:     events,
	}
}

// HandleStaffReply renders one staff reply into its ticket thread and marks
// it delivered. Replies already flagged as delivered are skipped, so replays
// from the snapshot feed or the outbox sweep are harmless.
func (o *Outbound) HandleStaffReply(ctx context.Context, pending models.PendingReply) error {
	if pending.Message.SentToDiscord {
		return nil
	}

	ticket, err := o.store.TicketByID(ctx, pending.TicketID)
	if err != nil {
		return fmt.Errorf("resolve ticket %s: %w", pending.TicketID, err)
	}

	mention := ""
	if pending.Message.PingUser {
		mention = ticket.OpenerID
	}
	if err := o.gateway.SendStaffReply(ticket.ThreadID, &pending.Message, mention); err != nil {
		return fmt.Errorf("render reply %s: %w", pending.MessageID, err)
	}

	// Flag only after the render landed. A crash between the two means a
	// duplicate render on replay, never a silently lost reply.
	if err := o.store.MarkReplyDelivered(ctx, pending.TicketID, pending.MessageID); err != nil {
		return fmt.Errorf("mark reply %s delivered: %w", pending.MessageID, err)
	}
	return nil
}

// HandleTicketChange reconciles a single ticket change feed event against
// the chat thread.
func (o *Outbound) HandleTicketChange(ctx context.Context, kind ChangeKind, ticket *models.Ticket) error {
	switch kind {
	case ChangeAdded:
		// Initial snapshot state, not an edit.
		o.reconciler.Seed(ticket.ID, ticket.AssignedTo)
		o.broadcast("added", ticket)
		return nil
	case ChangeRemoved:
		o.reconciler.Forget(ticket.ID)
		o.broadcast("removed", ticket)
		return nil
	}

	o.broadcast("modified", ticket)

	// An assignment edge wins over a simultaneous status change: one edit
	// gets one narrative in the thread.
	if o.reconciler.Observe(ticket.ID, ticket.AssignedTo) {
		return o.announceAssignment(ctx, ticket)
	}

	locked, err := o.gateway.ThreadLocked(ticket.ThreadID)
	if err != nil {
		return fmt.Errorf("inspect thread %s: %w", ticket.ThreadID, err)
	}

	transition, ok := statusTransitions[statusKey{ticket.Status, locked}]
	if !ok {
		return nil
	}

	if err := o.gateway.SendNotice(ticket.ThreadID, transition.title, transition.description, transition.color); err != nil {
		return fmt.Errorf("notify thread %s: %w", ticket.ThreadID, err)
	}
	if err := o.store.AppendEvent(ctx, ticket.ID, transition.event); err != nil {
		log.Printf("[SYNC] Error recording event on ticket %s: %v", ticket.ID, err)
	}
	if transition.setLocked != nil {
		if err := o.gateway.SetThreadLocked(ticket.ThreadID, *transition.setLocked, transition.lockReason); err != nil {
			return fmt.Errorf("set lock on thread %s: %w", ticket.ThreadID, err)
		}
	}
	if transition.archive && o.archiver != nil {
		o.archiveTicket(ctx, ticket)
	}
	return nil
}

func (o *Outbound) announceAssignment(ctx context.Context, ticket *models.Ticket) error {
	description := "This ticket has been **unassigned** and is now available for all staff."
	event := "Ticket unassigned."
	if ticket.AssignedTo != "" {
		description = "This ticket has been assigned to **" + ticket.AssignedToName + "**."
		event = "Ticket assigned to " + ticket.AssignedToName + "."
	}

	if err := o.gateway.SendNotice(ticket.ThreadID, "Ticket Assigned", description, colorYellow); err != nil {
		return fmt.Errorf("notify thread %s: %w", ticket.ThreadID, err)
	}
	if err := o.store.AppendEvent(ctx, ticket.ID, event); err != nil {
		log.Printf("[SYNC] Error recording event on ticket %s: %v", ticket.ID, err)
	}
	return nil
}

func (o *Outbound) archiveTicket(ctx context.Context, ticket *models.Ticket) {
	transcript, err := o.store.Transcript(ctx, ticket.ID)
	if err != nil {
		log.Printf("[SYNC] Error loading transcript for ticket %s: %v", ticket.ID, err)
		return
	}
	if err := o.archiver.ArchiveTicket(ticket, transcript); err != nil {
		log.Printf("[SYNC] Error archiving ticket %s: %v", ticket.ID, err)
	}
}

func (o *Outbound) broadcast(kind string, ticket *models.Ticket) {
	if o.events != nil {
		o.events.BroadcastTicket(kind, ticket)
	}
}
