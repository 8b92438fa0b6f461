package bot

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/bwmarrin/discordgo"

	"tickethub/models"
)

// Chat is the slice of the gateway the inbound handlers drive.
type Chat interface {
	CreateTicketThread(channelID, username string) (*discordgo.Channel, error)
	AddThreadMember(threadID, userID string) error
	DeleteThread(threadID string) error
	SetThreadLocked(threadID string, locked bool, reason string) error
	SendNotice(threadID, title, description string, color int) error
	SendWelcome(threadID, ticketID, openerID string) error
	DisableCloseButton(channelID, messageID, ticketID string) error
	SendTicketPrompt(channelID, guildName, guildIconURL string) (string, error)
}

// Store is the slice of the ticket store the inbound handlers read and write.
type Store interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) (string, error)
	TicketByID(ctx context.Context, ticketID string) (*models.Ticket, error)
	TicketByThreadID(ctx context.Context, threadID string) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, ticketID string, updates []firestore.Update) error
	AppendMessage(ctx context.Context, ticketID string, message *models.Message) (string, error)
	TouchLastMessage(ctx context.Context, ticketID string) error
	Transcript(ctx context.Context, ticketID string) ([]models.Message, error)
	SaveServerConfig(ctx context.Context, guildID string, cfg *models.ServerConfig) error
}

// Archive persists transcripts of user-closed tickets.
type Archive interface {
	ArchiveTicket(ticket *models.Ticket, transcript []models.Message) error
}

// Bot owns the Discord gateway session and the inbound event handlers.
type Bot struct {
	Session *discordgo.Session
	Gateway *Gateway

	chat    Chat
	store   Store
	archive Archive
}

// New builds a Bot with the intents the ticket flows need: guild metadata,
// guild messages with content (thread mirroring), and members (thread invites).
// archive may be nil, in which case user-closed tickets are not archived.
func New(token string, store Store, archive Archive) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers

	b := &Bot{
		Session: session,
		Gateway: NewGateway(session),
		store:   store,
		archive: archive,
	}
	b.chat = b.Gateway

	session.AddHandler(b.onInteractionCreate)
	session.AddHandler(b.onMessageCreate)

	return b, nil
}

// Open connects to the Discord gateway.
func (b *Bot) Open() error {
	if err := b.Session.Open(); err != nil {
		return err
	}
	log.Println("[BOT] Discord session opened")
	return nil
}

// Close tears down the gateway connection.
func (b *Bot) Close() {
	if err := b.Session.Close(); err != nil {
		log.Printf("[BOT] Error closing Discord session: %v", err)
	}
}
