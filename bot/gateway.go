package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"tickethub/models"
)

// Embed colors used across ticket notices.
const (
	colorGreen   = 0x57F287
	colorRed     = 0xED4245
	colorYellow  = 0xFEE75C
	colorOrange  = 0xE67E22
	colorBlurple = 0x5865F2
	colorBlue    = 0x0099FF
)

// Component custom ids. The close button carries the ticket id so the
// handler can validate the opener without a thread lookup round-trip.
const (
	openTicketButtonID = "open_ticket_button"
	closeTicketPrefix  = "close_ticket_"
)

// Gateway wraps the Discord thread and message primitives the ticket system
// uses. Everything chat-side goes through here; the sync layer only sees
// these methods, never the session.
type Gateway struct {
	session *discordgo.Session
}

func NewGateway(session *discordgo.Session) *Gateway {
	return &Gateway{session: session}
}

// CreateTicketThread opens a private thread for a new ticket in the
// configured channel.
func (g *Gateway) CreateTicketThread(channelID, username string) (*discordgo.Channel, error) {
	return g.session.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                "ticket-" + username,
		AutoArchiveDuration: 60,
		Type:                discordgo.ChannelTypeGuildPrivateThread,
		Invitable:           false,
	})
}

// AddThreadMember pulls the ticket opener into the private thread.
func (g *Gateway) AddThreadMember(threadID, userID string) error {
	return g.session.ThreadMemberAdd(threadID, userID)
}

// DeleteThread removes a thread. Best-effort cleanup when the ticket record
// write failed after the thread was already created.
func (g *Gateway) DeleteThread(threadID string) error {
	_, err := g.session.ChannelDelete(threadID)
	return err
}

// ThreadLocked reports the current lock state of a thread.
func (g *Gateway) ThreadLocked(threadID string) (bool, error) {
	channel, err := g.session.Channel(threadID)
	if err != nil {
		return false, err
	}
	if channel.ThreadMetadata == nil {
		return false, fmt.Errorf("channel %s is not a thread", threadID)
	}
	return channel.ThreadMetadata.Locked, nil
}

// SetThreadLocked locks or unlocks a thread with an audit-log reason.
func (g *Gateway) SetThreadLocked(threadID string, locked bool, reason string) error {
	_, err := g.session.ChannelEditComplex(threadID, &discordgo.ChannelEdit{
		Locked: &locked,
	}, discordgo.WithAuditLogReason(reason))
	return err
}

// SendNotice renders a colored narrative embed into a thread.
func (g *Gateway) SendNotice(threadID, title, description string, color int) error {
	_, err := g.session.ChannelMessageSendComplex(threadID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       title,
			Description: description,
			Color:       color,
			Timestamp:   time.Now().Format(time.RFC3339),
		}},
	})
	return err
}

// SendStaffReply renders a dashboard-authored message into the thread,
// optionally mentioning the ticket opener.
func (g *Gateway) SendStaffReply(threadID string, message *models.Message, mentionUserID string) error {
	timestamp := message.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	payload := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Author: &discordgo.MessageEmbedAuthor{
				Name:    message.AuthorUsername + " (Staff)",
				IconURL: message.AuthorAvatar,
			},
			Description: message.Content,
			Color:       colorBlurple,
			Timestamp:   timestamp.Format(time.RFC3339),
		}},
	}
	if message.PingUser && mentionUserID != "" {
		payload.Content = "<@" + mentionUserID + ">"
	}

	_, err := g.session.ChannelMessageSendComplex(threadID, payload)
	return err
}

// closeTicketButton builds the close control rendered under the welcome
// message. The disabled variant replaces it once the ticket is closed.
func closeTicketButton(ticketID string, disabled bool) discordgo.Button {
	return discordgo.Button{
		CustomID: closeTicketPrefix + ticketID,
		Label:    "Close Ticket",
		Style:    discordgo.DangerButton,
		Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
		Disabled: disabled,
	}
}

// SendWelcome posts the first message of a new ticket thread: greeting plus
// the close button.
func (g *Gateway) SendWelcome(threadID, ticketID, openerID string) error {
	shortID := ticketID
	if len(shortID) > 6 {
		shortID = shortID[:6]
	}

	_, err := g.session.ChannelMessageSendComplex(threadID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "Support Ticket #" + shortID,
			Description: fmt.Sprintf(
				"Hello <@%s>, thank you for reaching out to support.\n\nA staff member will be with you shortly. Please describe your issue in detail here.",
				openerID),
			Color: colorGreen,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				closeTicketButton(ticketID, false),
			}},
		},
	})
	return err
}

// DisableCloseButton swaps the welcome message's close button for a disabled
// one so the ticket cannot be closed twice.
func (g *Gateway) DisableCloseButton(channelID, messageID, ticketID string) error {
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			closeTicketButton(ticketID, true),
		}},
	}
	_, err := g.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Components: &components,
	})
	return err
}

// SendTicketPrompt posts the "open a ticket" embed and button into the
// channel chosen during /setup, returning the message id for the config doc.
func (g *Gateway) SendTicketPrompt(channelID, guildName, guildIconURL string) (string, error) {
	message, err := g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Support Ticket",
			Description: "Click the button below to open a support ticket.\nPlease provide as much detail as possible so our staff can assist you effectively.",
			Color:       colorBlue,
			Footer: &discordgo.MessageEmbedFooter{
				Text:    guildName + " Support",
				IconURL: guildIconURL,
			},
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: openTicketButtonID,
					Label:    "Open Ticket",
					Style:    discordgo.PrimaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "🎟️"},
				},
			}},
		},
	})
	if err != nil {
		return "", err
	}
	return message.ID, nil
}
