package sync

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"

	"tickethub/models"
)

// Listener pumps the store's snapshot feeds into the outbound sync: one
// subscription for staff replies across all tickets, one for the ticket
// documents themselves.
type Listener struct {
	client  *firestore.Client
	tickets string
	out     *Outbound
}

func NewListener(client *firestore.Client, ticketsCollection string, out *Outbound) *Listener {
	return &Listener{client: client, tickets: ticketsCollection, out: out}
}

// Start launches both subscriptions. They run until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) {
	go l.watchStaffReplies(ctx)
	go l.watchTickets(ctx)
	log.Println("[SYNC] Ticket store listeners are now active")
}

func (l *Listener) watchStaffReplies(ctx context.Context) {
	snapshots := l.client.CollectionGroup("messages").
		Where("isStaff", "==", true).
		Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snapshot, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[SYNC] Staff reply subscription ended: %v", err)
			return
		}
		for _, change := range snapshot.Changes {
			if change.Kind != firestore.DocumentAdded {
				continue
			}
			ticketRef := change.Doc.Ref.Parent.Parent
			if ticketRef == nil {
				continue
			}
			var message models.Message
			if err := change.Doc.DataTo(&message); err != nil {
				log.Printf("[SYNC] Error decoding staff reply %s: %v", change.Doc.Ref.ID, err)
				continue
			}
			message.ID = change.Doc.Ref.ID

			pending := models.PendingReply{
				TicketID:  ticketRef.ID,
				MessageID: change.Doc.Ref.ID,
				Message:   message,
			}
			if err := l.out.HandleStaffReply(ctx, pending); err != nil {
				log.Printf("[SYNC] Error delivering staff reply %s on ticket %s: %v", pending.MessageID, pending.TicketID, err)
			}
		}
	}
}

func (l *Listener) watchTickets(ctx context.Context) {
	snapshots := l.client.Collection(l.tickets).Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snapshot, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[SYNC] Ticket subscription ended: %v", err)
			return
		}
		for _, change := range snapshot.Changes {
			var kind ChangeKind
			switch change.Kind {
			case firestore.DocumentAdded:
				kind = ChangeAdded
			case firestore.DocumentModified:
				kind = ChangeModified
			case firestore.DocumentRemoved:
				kind = ChangeRemoved
			default:
				continue
			}

			var ticket models.Ticket
			if kind != ChangeRemoved {
				if err := change.Doc.DataTo(&ticket); err != nil {
					log.Printf("[SYNC] Error decoding ticket %s: %v", change.Doc.Ref.ID, err)
					continue
				}
			}
			ticket.ID = change.Doc.Ref.ID

			if err := l.out.HandleTicketChange(ctx, kind, &ticket); err != nil {
				log.Printf("[SYNC] Error reconciling ticket %s: %v", ticket.ID, err)
			}
		}
	}
}
