package sync

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"tickethub/models"
)

// PendingSource lists staff replies whose delivery flag was never set.
type PendingSource interface {
	UndeliveredReplies(ctx context.Context) ([]models.PendingReply, error)
}

// Outbox re-delivers staff replies left undelivered by a crash between the
// thread render and the delivery flag write. HandleStaffReply skips replies
// already flagged, so a sweep racing the live subscription is harmless.
type Outbox struct {
	out   *Outbound
	store PendingSource
}

func NewOutbox(out *Outbound, store PendingSource) *Outbox {
	return &Outbox{out: out, store: store}
}

// Sweep re-delivers every undelivered staff reply once and reports how many
// went through.
func (o *Outbox) Sweep(ctx context.Context) int {
	pending, err := o.store.UndeliveredReplies(ctx)
	if err != nil {
		log.Printf("[OUTBOX] Error listing undelivered replies: %v", err)
		return 0
	}

	delivered := 0
	for _, reply := range pending {
		if err := o.out.HandleStaffReply(ctx, reply); err != nil {
			log.Printf("[OUTBOX] Error re-delivering reply %s on ticket %s: %v", reply.MessageID, reply.TicketID, err)
			continue
		}
		delivered++
	}
	if delivered > 0 {
		log.Printf("[OUTBOX] Re-delivered %d staff replies", delivered)
	}
	return delivered
}

// InitializeOutboxSweep runs a recovery sweep immediately, then schedules
// periodic sweeps on the given cron spec.
func InitializeOutboxSweep(ctx context.Context, out *Outbound, store PendingSource, spec string) *cron.Cron {
	log.Println("[OUTBOX] Initializing delivery sweep...")
	outbox := NewOutbox(out, store)

	// Recover replies stranded by a restart before the first tick.
	outbox.Sweep(ctx)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(spec, func() { outbox.Sweep(ctx) }); err != nil {
		log.Printf("[OUTBOX] Invalid sweep schedule %q: %v", spec, err)
		return scheduler
	}
	scheduler.Start()
	log.Printf("[OUTBOX] Delivery sweep scheduled: %s", spec)
	return scheduler
}
