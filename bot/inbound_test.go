package bot

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickethub/config"
	"tickethub/models"
)

func init() {
	config.AppConfig = &config.Config{}
}

type threadLock struct {
	threadID string
	locked   bool
	reason   string
}

type fakeChat struct {
	createErr error

	threads         []string
	members         [][2]string // threadID, userID
	deleted         []string
	locks           []threadLock
	notices         []string
	welcomes        [][3]string // threadID, ticketID, openerID
	disabledButtons []string
}

func (c *fakeChat) CreateTicketThread(channelID, username string) (*discordgo.Channel, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	id := "TH" + channelID
	c.threads = append(c.threads, id)
	return &discordgo.Channel{ID: id, Name: "ticket-" + username}, nil
}

func (c *fakeChat) AddThreadMember(threadID, userID string) error {
	c.members = append(c.members, [2]string{threadID, userID})
	return nil
}

func (c *fakeChat) DeleteThread(threadID string) error {
	c.deleted = append(c.deleted, threadID)
	return nil
}

func (c *fakeChat) SetThreadLocked(threadID string, locked bool, reason string) error {
	c.locks = append(c.locks, threadLock{threadID, locked, reason})
	return nil
}

func (c *fakeChat) SendNotice(threadID, title, description string, color int) error {
	c.notices = append(c.notices, title)
	return nil
}

func (c *fakeChat) SendWelcome(threadID, ticketID, openerID string) error {
	c.welcomes = append(c.welcomes, [3]string{threadID, ticketID, openerID})
	return nil
}

func (c *fakeChat) DisableCloseButton(channelID, messageID, ticketID string) error {
	c.disabledButtons = append(c.disabledButtons, messageID)
	return nil
}

func (c *fakeChat) SendTicketPrompt(channelID, guildName, guildIconURL string) (string, error) {
	return "M" + channelID, nil
}

type fakeTicketStore struct {
	createErr error

	tickets  map[string]*models.Ticket // by id
	byThread map[string]*models.Ticket
	appended []*models.Message
	touched  []string
	updates  [][]firestore.Update
}

func newFakeTicketStore(tickets ...*models.Ticket) *fakeTicketStore {
	s := &fakeTicketStore{
		tickets:  map[string]*models.Ticket{},
		byThread: map[string]*models.Ticket{},
	}
	for _, t := range tickets {
		s.tickets[t.ID] = t
		s.byThread[t.ThreadID] = t
	}
	return s
}

func (s *fakeTicketStore) CreateTicket(_ context.Context, ticket *models.Ticket) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	id := "T1"
	s.tickets[id] = ticket
	s.byThread[ticket.ThreadID] = ticket
	return id, nil
}

func (s *fakeTicketStore) TicketByID(_ context.Context, ticketID string) (*models.Ticket, error) {
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, errors.New("ticket not found")
	}
	return t, nil
}

func (s *fakeTicketStore) TicketByThreadID(_ context.Context, threadID string) (*models.Ticket, error) {
	return s.byThread[threadID], nil
}

func (s *fakeTicketStore) UpdateTicket(_ context.Context, _ string, updates []firestore.Update) error {
	s.updates = append(s.updates, updates)
	return nil
}

func (s *fakeTicketStore) AppendMessage(_ context.Context, _ string, message *models.Message) (string, error) {
	s.appended = append(s.appended, message)
	return "M1", nil
}

func (s *fakeTicketStore) TouchLastMessage(_ context.Context, ticketID string) error {
	s.touched = append(s.touched, ticketID)
	return nil
}

func (s *fakeTicketStore) Transcript(_ context.Context, _ string) ([]models.Message, error) {
	return nil, nil
}

func (s *fakeTicketStore) SaveServerConfig(_ context.Context, _ string, _ *models.ServerConfig) error {
	return nil
}

type fakeTranscriptArchive struct {
	archived []string
}

func (a *fakeTranscriptArchive) ArchiveTicket(ticket *models.Ticket, _ []models.Message) error {
	a.archived = append(a.archived, ticket.ID)
	return nil
}

func opener() *discordgo.User {
	return &discordgo.User{ID: "U1", Username: "opener"}
}

func TestOpenTicketCreatesThreadAndRecord(t *testing.T) {
	chat := &fakeChat{}
	store := newFakeTicketStore()
	b := &Bot{chat: chat, store: store}

	reply := b.openTicket(context.Background(), "G1", "C1", opener())
	assert.Contains(t, reply, "✅")

	ticket := store.tickets["T1"]
	require.NotNil(t, ticket)
	assert.Equal(t, models.StatusOpen, ticket.Status)
	assert.Equal(t, models.PriorityLow, ticket.Priority)
	assert.Equal(t, "", ticket.AssignedTo)
	assert.Equal(t, "THC1", ticket.ThreadID)
	assert.Equal(t, "G1", ticket.ServerID)
	assert.Equal(t, "U1", ticket.OpenerID)
	assert.Equal(t, "opener", ticket.OpenerUsername)

	assert.Equal(t, [][2]string{{"THC1", "U1"}}, chat.members)
	// The welcome render is the thread's first message.
	require.Len(t, chat.welcomes, 1)
	assert.Equal(t, [3]string{"THC1", "T1", "U1"}, chat.welcomes[0])
	assert.Empty(t, chat.deleted)
}

func TestOpenTicketStoreFailureDeletesThread(t *testing.T) {
	chat := &fakeChat{}
	store := newFakeTicketStore()
	store.createErr = errors.New("store offline")
	b := &Bot{chat: chat, store: store}

	reply := b.openTicket(context.Background(), "G1", "C1", opener())
	assert.Equal(t, openTicketFailed, reply)

	assert.Equal(t, []string{"THC1"}, chat.deleted)
	assert.Empty(t, chat.welcomes)
}

func TestOpenTicketThreadFailureWritesNothing(t *testing.T) {
	chat := &fakeChat{createErr: errors.New("api down")}
	store := newFakeTicketStore()
	b := &Bot{chat: chat, store: store}

	reply := b.openTicket(context.Background(), "G1", "C1", opener())
	assert.Equal(t, openTicketFailed, reply)
	assert.Empty(t, store.tickets)
}

func TestCloseTicketOpenerOnly(t *testing.T) {
	chat := &fakeChat{}
	store := newFakeTicketStore(&models.Ticket{ID: "T1", ThreadID: "TH1", OpenerID: "U1", Status: models.StatusOpen})
	b := &Bot{chat: chat, store: store}

	stranger := &discordgo.User{ID: "U2", Username: "stranger"}
	reply := b.closeTicket(context.Background(), "TH1", "M1", stranger)
	assert.Equal(t, "You do not have permission to close this ticket.", reply)

	assert.Empty(t, store.updates)
	assert.Empty(t, chat.locks)
	assert.Empty(t, chat.notices)
}

func TestCloseTicketLocksBeforeStatusWrite(t *testing.T) {
	chat := &fakeChat{}
	store := newFakeTicketStore(&models.Ticket{ID: "T1", ThreadID: "TH1", OpenerID: "U1", Status: models.StatusOpen})
	archive := &fakeTranscriptArchive{}
	b := &Bot{chat: chat, store: store, archive: archive}

	reply := b.closeTicket(context.Background(), "TH1", "M1", opener())
	assert.Equal(t, "", reply)

	require.Len(t, chat.locks, 1)
	assert.True(t, chat.locks[0].locked)

	require.Len(t, store.updates, 1)
	assert.Equal(t, "status", store.updates[0][0].Path)
	assert.Equal(t, models.StatusClosed, store.updates[0][0].Value)

	assert.Equal(t, []string{"Ticket Closed"}, chat.notices)
	assert.Equal(t, []string{"M1"}, chat.disabledButtons)
	assert.Equal(t, []string{"T1"}, archive.archived)
}

func TestCloseTicketStatusWriteFailureUnlocks(t *testing.T) {
	chat := &fakeChat{}
	store := newFakeTicketStore(&models.Ticket{ID: "T1", ThreadID: "TH1", OpenerID: "U1", Status: models.StatusOpen})
	b := &Bot{chat: chat, store: store}

	failing := &failingUpdateStore{fakeTicketStore: store}
	b.store = failing

	reply := b.closeTicket(context.Background(), "TH1", "M1", opener())
	assert.Equal(t, closeTicketFailed, reply)

	// Lock rolled back so the open ticket does not sit on a locked thread.
	require.Len(t, chat.locks, 2)
	assert.True(t, chat.locks[0].locked)
	assert.False(t, chat.locks[1].locked)
	assert.Empty(t, chat.notices)
}

type failingUpdateStore struct {
	*fakeTicketStore
}

func (s *failingUpdateStore) UpdateTicket(_ context.Context, _ string, _ []firestore.Update) error {
	return errors.New("store offline")
}

func TestCloseTicketUnknownThread(t *testing.T) {
	chat := &fakeChat{}
	store := newFakeTicketStore()
	b := &Bot{chat: chat, store: store}

	reply := b.closeTicket(context.Background(), "TH-unknown", "M1", opener())
	assert.Equal(t, "Could not find a corresponding ticket for this thread.", reply)
	assert.Empty(t, store.updates)
}

func TestMirrorMessageAppendsAndBumps(t *testing.T) {
	store := newFakeTicketStore(&models.Ticket{ID: "T1", ThreadID: "TH1", OpenerID: "U1"})
	b := &Bot{store: store}

	b.mirrorMessage(context.Background(), &discordgo.Message{
		ChannelID: "TH1",
		Author:    opener(),
		Content:   "hello",
		Attachments: []*discordgo.MessageAttachment{
			{URL: "https://cdn.example/file.png", Filename: "file.png", ContentType: "image/png"},
		},
	})

	require.Len(t, store.appended, 1)
	message := store.appended[0]
	assert.False(t, message.IsStaff)
	assert.Equal(t, "hello", message.Content)
	assert.Equal(t, "U1", message.AuthorID)
	require.Len(t, message.Attachments, 1)
	assert.Equal(t, "file.png", message.Attachments[0].Name)

	// lastMessageAt bump and isRead reset ride on the touch call.
	assert.Equal(t, []string{"T1"}, store.touched)
}

func TestMirrorMessageIgnoresUnmatchedThread(t *testing.T) {
	store := newFakeTicketStore()
	b := &Bot{store: store}

	b.mirrorMessage(context.Background(), &discordgo.Message{
		ChannelID: "TH-unrelated",
		Author:    opener(),
		Content:   "hello",
	})

	assert.Empty(t, store.appended)
	assert.Empty(t, store.touched)
}

func TestOnMessageCreateSkipsBotsAndNonThreads(t *testing.T) {
	store := newFakeTicketStore(&models.Ticket{ID: "T1", ThreadID: "TH1", OpenerID: "U1"})
	b := &Bot{store: store}

	session := &discordgo.Session{State: discordgo.NewState()}
	require.NoError(t, session.State.GuildAdd(&discordgo.Guild{ID: "G1"}))
	require.NoError(t, session.State.ChannelAdd(&discordgo.Channel{
		ID: "C1", GuildID: "G1", Type: discordgo.ChannelTypeGuildText,
	}))
	require.NoError(t, session.State.ChannelAdd(&discordgo.Channel{
		ID: "TH1", GuildID: "G1", Type: discordgo.ChannelTypeGuildPrivateThread,
	}))

	// Bot author: ignored even in a ticket thread.
	b.onMessageCreate(session, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "TH1",
		Author:    &discordgo.User{ID: "B1", Bot: true},
		Content:   "beep",
	}})
	assert.Empty(t, store.appended)

	// Plain text channel: not a thread, ignored.
	b.onMessageCreate(session, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "C1",
		Author:    opener(),
		Content:   "hello",
	}})
	assert.Empty(t, store.appended)

	// Ticket thread with a real user: mirrored.
	b.onMessageCreate(session, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "TH1",
		Author:    opener(),
		Content:   "hello",
	}})
	require.Len(t, store.appended, 1)
	assert.Equal(t, "hello", store.appended[0].Content)
}

func TestStickerURLByFormat(t *testing.T) {
	png := &discordgo.Sticker{ID: "S1", FormatType: discordgo.StickerFormatTypePNG}
	apng := &discordgo.Sticker{ID: "S2", FormatType: discordgo.StickerFormatTypeAPNG}
	lottie := &discordgo.Sticker{ID: "S3", FormatType: discordgo.StickerFormatTypeLottie}
	gif := &discordgo.Sticker{ID: "S4", FormatType: discordgo.StickerFormatTypeGIF}

	assert.Equal(t, "https://media.discordapp.net/stickers/S1.png", stickerURL(png))
	assert.Equal(t, "https://media.discordapp.net/stickers/S2.png", stickerURL(apng))
	assert.Equal(t, "https://media.discordapp.net/stickers/S3.json", stickerURL(lottie))
	assert.Equal(t, "https://media.discordapp.net/stickers/S4.gif", stickerURL(gif))
}
