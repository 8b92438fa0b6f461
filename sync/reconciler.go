package sync

import "tickethub/models"

// Reconciler tracks, per ticket, the last assignedTo value observed on the
// change feed so assignment edges can be detected across consecutive events
// (the feed delivers current state, not diffs). The map lives only in
// memory: it is rebuilt from the subscription's initial "added" events after
// every restart and is not a source of truth.
type Reconciler struct {
	assigned map[string]string
}

func NewReconciler() *Reconciler {
	return &Reconciler{assigned: make(map[string]string)}
}

// Seed records a ticket's assignment without reporting an edge. Used for
// "added" events, which carry current state rather than a change.
func (r *Reconciler) Seed(ticketID, assignedTo string) {
	r.assigned[ticketID] = assignedTo
}

// Observe swaps in the assignment from a "modified" event and reports
// whether it differs from the previous observation.
func (r *Reconciler) Observe(ticketID, assignedTo string) bool {
	previous := r.assigned[ticketID]
	r.assigned[ticketID] = assignedTo
	return previous != assignedTo
}

// Forget drops per-ticket state once the ticket document is gone.
func (r *Reconciler) Forget(ticketID string) {
	delete(r.assigned, ticketID)
}

// Notice colors, matching the embeds the bot renders.
const (
	colorGreen  = 0x57F287
	colorRed    = 0xED4245
	colorYellow = 0xFEE75C
	colorOrange = 0xE67E22
)

type statusKey struct {
	status string
	locked bool
}

// statusTransition is the chat-side reconciliation for one (status, lock)
// state: the notice to render, the audit event to append, and optionally a
// new lock state for the thread.
type statusTransition struct {
	title       string
	description string
	color       int
	event       string
	setLocked   *bool
	lockReason  string
	archive     bool
}

var (
	lockThread   = true
	unlockThread = false
)

// statusTransitions drives the ticket-change reconciliation. Absent keys are
// no-ops: a closed ticket whose thread is already locked needs nothing, and
// an open ticket on an unlocked thread is just current state.
var statusTransitions = map[statusKey]statusTransition{
	{models.StatusClosed, false}: {
		title:       "Ticket Closed",
		description: "This ticket has been closed by a staff member. The thread is now locked.",
		color:       colorRed,
		event:       "Ticket closed by staff.",
		setLocked:   &lockThread,
		lockReason:  "Ticket closed by staff from web panel.",
		archive:     true,
	},
	{models.StatusResolved, false}: {
		title:       "Ticket Resolved",
		description: "This ticket has been marked as resolved by a staff member. If your issue is not solved, you can continue to send messages here.",
		color:       colorGreen,
		event:       "Ticket marked as resolved.",
	},
	{models.StatusResolved, true}: {
		title:       "Ticket Resolved",
		description: "This ticket has been marked as resolved by a staff member. If your issue is not solved, you can continue to send messages here.",
		color:       colorGreen,
		event:       "Ticket marked as resolved.",
	},
	{models.StatusOpen, true}: {
		title:       "Ticket Re-opened",
		description: "This ticket has been re-opened by a staff member.",
		color:       colorOrange,
		event:       "Ticket re-opened by staff.",
		setLocked:   &unlockThread,
		lockReason:  "Ticket re-opened by staff.",
	},
}
