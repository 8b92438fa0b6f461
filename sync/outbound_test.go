package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickethub/models"
)

type sentNotice struct {
	threadID    string
	title       string
	description string
	color       int
}

type sentReply struct {
	threadID string
	message  *models.Message
	mention  string
}

type lockChange struct {
	threadID string
	locked   bool
	reason   string
}

type fakeGateway struct {
	locked    map[string]bool
	lockedErr error
	noticeErr error
	replyErr  error

	notices []sentNotice
	replies []sentReply
	locks   []lockChange
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{locked: map[string]bool{}}
}

func (g *fakeGateway) ThreadLocked(threadID string) (bool, error) {
	if g.lockedErr != nil {
		return false, g.lockedErr
	}
	return g.locked[threadID], nil
}

func (g *fakeGateway) SendNotice(threadID, title, description string, color int) error {
	if g.noticeErr != nil {
		return g.noticeErr
	}
	g.notices = append(g.notices, sentNotice{threadID, title, description, color})
	return nil
}

func (g *fakeGateway) SendStaffReply(threadID string, message *models.Message, mentionUserID string) error {
	if g.replyErr != nil {
		return g.replyErr
	}
	g.replies = append(g.replies, sentReply{threadID, message, mentionUserID})
	return nil
}

func (g *fakeGateway) SetThreadLocked(threadID string, locked bool, reason string) error {
	g.locked[threadID] = locked
	g.locks = append(g.locks, lockChange{threadID, locked, reason})
	return nil
}

type fakeStore struct {
	tickets    map[string]*models.Ticket
	transcript []models.Message

	delivered []string
	events    []string
}

func newFakeStore(tickets ...*models.Ticket) *fakeStore {
	s := &fakeStore{tickets: map[string]*models.Ticket{}}
	for _, t := range tickets {
		s.tickets[t.ID] = t
	}
	return s
}

func (s *fakeStore) TicketByID(_ context.Context, ticketID string) (*models.Ticket, error) {
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, errors.New("ticket not found")
	}
	return t, nil
}

func (s *fakeStore) MarkReplyDelivered(_ context.Context, _, messageID string) error {
	s.delivered = append(s.delivered, messageID)
	return nil
}

func (s *fakeStore) AppendEvent(_ context.Context, _, content string) error {
	s.events = append(s.events, content)
	return nil
}

func (s *fakeStore) Transcript(_ context.Context, _ string) ([]models.Message, error) {
	return s.transcript, nil
}

type fakeArchiver struct {
	archived []*models.Ticket
}

func (a *fakeArchiver) ArchiveTicket(ticket *models.Ticket, _ []models.Message) error {
	a.archived = append(a.archived, ticket)
	return nil
}

func supportTicket() *models.Ticket {
	return &models.Ticket{
		ID:       "T1",
		ThreadID: "TH1",
		OpenerID: "U1",
		Status:   models.StatusOpen,
	}
}

func newTestOutbound(gw *fakeGateway, store *fakeStore, archiver *fakeArchiver) *Outbound {
	var a Archiver
	if archiver != nil {
		a = archiver
	}
	return NewOutbound(NewReconciler(), gw, store, a, nil)
}

func TestHandleStaffReplyDeliversAndMarks(t *testing.T) {
	gw := newFakeGateway()
	store := newFakeStore(supportTicket())
	out := newTestOutbound(gw, store, nil)

	pending := models.PendingReply{
		TicketID:  "T1",
		MessageID: "M1",
		Message:   models.Message{ID: "M1", Content: "hello", IsStaff: true},
	}
	require.NoError(t, out.HandleStaffReply(context.Background(), pending))

	require.Len(t, gw.replies, 1)
	assert.Equal(t, "TH1", gw.replies[0].threadID)
	assert.Equal(t, "", gw.replies[0].mention)
	assert.Equal(t, []string{"M1"}, store.delivered)
}

func TestHandleStaffReplyMentionsOpenerWhenPinged(t *testing.T) {
	gw := newFakeGateway()
	store := newFakeStore(supportTicket())
	out := newTestOutbound(gw, store, nil)

	pending := models.PendingReply{
		TicketID:  "T1",
		MessageID: "M1",
		Message:   models.Message{ID: "M1", Content: "ping", IsStaff: true, PingUser: true},
	}
	require.NoError(t, out.HandleStaffReply(context.Background(), pending))

	require.Len(t, gw.replies, 1)
	assert.Equal(t, "U1", gw.replies[0].mention)
}

func TestHandleStaffReplySkipsAlreadyDelivered(t *testing.T) {
	gw := newFakeGateway()
	store := newFakeStore(supportTicket())
	out := newTestOutbound(gw, store, nil)

	pending := models.PendingReply{
		TicketID:  "T1",
		MessageID: "M1",
		Message:   models.Message{ID: "M1", SentToDiscord: true},
	}
	require.NoError(t, out.HandleStaffReply(context.Background(), pending))

	assert.Empty(t, gw.replies)
	assert.Empty(t, store.delivered)
}

func TestHandleStaffReplyMissingTicketLeavesFlagUnset(t *testing.T) {
	gw := newFakeGateway()
	store := newFakeStore()
	out := newTestOutbound(gw, store, nil)

	pending := models.PendingReply{TicketID: "gone", MessageID: "M1"}
	require.Error(t, out.HandleStaffReply(context.Background(), pending))

	assert.Empty(t, gw.replies)
	assert.Empty(t, store.delivered)
}

func TestHandleStaffReplyRenderFailureLeavesFlagUnset(t *testing.T) {
	gw := newFakeGateway()
	gw.replyErr = errors.New("api down")
	store := newFakeStore(supportTicket())
	out := newTestOutbound(gw, store, nil)

	pending := models.PendingReply{TicketID: "T1", MessageID: "M1"}
	require.Error(t, out.HandleStaffReply(context.Background(), pending))
	assert.Empty(t, store.delivered)
}

func TestAddedEventOnlySeedsAssignment(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	ticket.AssignedTo = "S1"
	ticket.AssignedToName = "Staffer"
	store := newFakeStore(ticket)
	out := newTestOutbound(gw, store, nil)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))
	assert.Empty(t, gw.notices)

	// Same assignment on a later modification is not an edge.
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, ticket))
	assert.Empty(t, gw.notices)
}

func TestAssignmentEdgeAnnounced(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	store := newFakeStore(ticket)
	out := newTestOutbound(gw, store, nil)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))

	assigned := *ticket
	assigned.AssignedTo = "S1"
	assigned.AssignedToName = "Staffer"
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, &assigned))

	require.Len(t, gw.notices, 1)
	assert.Equal(t, "Ticket Assigned", gw.notices[0].title)
	assert.Contains(t, gw.notices[0].description, "Staffer")
	assert.Equal(t, []string{"Ticket assigned to Staffer."}, store.events)
}

func TestUnassignmentAnnounced(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	ticket.AssignedTo = "S1"
	store := newFakeStore(ticket)
	out := newTestOutbound(gw, store, nil)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))

	unassigned := *ticket
	unassigned.AssignedTo = ""
	unassigned.AssignedToName = ""
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, &unassigned))

	require.Len(t, gw.notices, 1)
	assert.Contains(t, gw.notices[0].description, "unassigned")
	assert.Equal(t, []string{"Ticket unassigned."}, store.events)
}

func TestAssignmentEdgeWinsOverStatusChange(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	store := newFakeStore(ticket)
	out := newTestOutbound(gw, store, nil)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))

	// One write flips both assignment and status: only the assignment is
	// narrated, and the thread stays unlocked.
	edited := *ticket
	edited.AssignedTo = "S1"
	edited.AssignedToName = "Staffer"
	edited.Status = models.StatusClosed
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, &edited))

	require.Len(t, gw.notices, 1)
	assert.Equal(t, "Ticket Assigned", gw.notices[0].title)
	assert.Empty(t, gw.locks)
}

func TestPriorityOnlyChangeIsQuiet(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	store := newFakeStore(ticket)
	out := newTestOutbound(gw, store, nil)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))

	edited := *ticket
	edited.Priority = models.PriorityHigh
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, &edited))

	assert.Empty(t, gw.notices)
	assert.Empty(t, gw.locks)
}

func TestCloseFromPanelLocksAndArchives(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	store := newFakeStore(ticket)
	store.transcript = []models.Message{{ID: "M1", Content: "hi"}}
	archiver := &fakeArchiver{}
	out := newTestOutbound(gw, store, archiver)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))

	closed := *ticket
	closed.Status = models.StatusClosed
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, &closed))

	require.Len(t, gw.notices, 1)
	assert.Equal(t, "Ticket Closed", gw.notices[0].title)
	require.Len(t, gw.locks, 1)
	assert.True(t, gw.locks[0].locked)
	assert.Equal(t, []string{"Ticket closed by staff."}, store.events)
	require.Len(t, archiver.archived, 1)
	assert.Equal(t, "T1", archiver.archived[0].ID)
}

func TestCloseOnAlreadyLockedThreadIsQuiet(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	ticket.Status = models.StatusClosed
	gw.locked["TH1"] = true
	store := newFakeStore(ticket)
	archiver := &fakeArchiver{}
	out := newTestOutbound(gw, store, archiver)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, ticket))

	assert.Empty(t, gw.notices)
	assert.Empty(t, gw.locks)
	assert.Empty(t, archiver.archived)
}

func TestResolveLeavesThreadUnlocked(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	store := newFakeStore(ticket)
	out := newTestOutbound(gw, store, nil)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))

	resolved := *ticket
	resolved.Status = models.StatusResolved
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, &resolved))

	require.Len(t, gw.notices, 1)
	assert.Equal(t, "Ticket Resolved", gw.notices[0].title)
	assert.Empty(t, gw.locks)
}

func TestReopenUnlocksThread(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	ticket.Status = models.StatusClosed
	gw.locked["TH1"] = true
	store := newFakeStore(ticket)
	out := newTestOutbound(gw, store, nil)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))

	reopened := *ticket
	reopened.Status = models.StatusOpen
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, &reopened))

	require.Len(t, gw.notices, 1)
	assert.Equal(t, "Ticket Re-opened", gw.notices[0].title)
	require.Len(t, gw.locks, 1)
	assert.False(t, gw.locks[0].locked)
	assert.Equal(t, []string{"Ticket re-opened by staff."}, store.events)
}

func TestRemovedEventForgetsAssignment(t *testing.T) {
	gw := newFakeGateway()
	ticket := supportTicket()
	ticket.AssignedTo = "S1"
	ticket.AssignedToName = "Staffer"
	store := newFakeStore(ticket)
	out := newTestOutbound(gw, store, nil)

	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeRemoved, ticket))

	// Re-added with the same assignment: still no edge.
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeAdded, ticket))
	require.NoError(t, out.HandleTicketChange(context.Background(), ChangeModified, ticket))
	assert.Empty(t, gw.notices)
}
