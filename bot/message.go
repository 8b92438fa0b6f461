package bot

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	"tickethub/models"
)

// onMessageCreate mirrors user messages from ticket threads into the store.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	channel, err := s.State.Channel(m.ChannelID)
	if err != nil {
		channel, err = s.Channel(m.ChannelID)
		if err != nil {
			log.Printf("[BOT] Error resolving channel %s: %v", m.ChannelID, err)
			return
		}
	}
	if !channel.IsThread() {
		return
	}

	b.mirrorMessage(context.Background(), m.Message)
}

// mirrorMessage appends a thread message to its ticket's conversation and
// bumps the freshness flags. Messages in threads without a ticket are
// ignored.
func (b *Bot) mirrorMessage(ctx context.Context, m *discordgo.Message) {
	ticket, err := b.store.TicketByThreadID(ctx, m.ChannelID)
	if err != nil {
		log.Printf("[BOT] Error looking up ticket for thread %s: %v", m.ChannelID, err)
		return
	}
	if ticket == nil {
		return
	}

	message := &models.Message{
		AuthorID:       m.Author.ID,
		AuthorUsername: m.Author.Username,
		AuthorAvatar:   m.Author.AvatarURL(""),
		Content:        m.Content,
		IsStaff:        false,
	}

	for _, attachment := range m.Attachments {
		message.Attachments = append(message.Attachments, models.Attachment{
			URL:         attachment.URL,
			Name:        attachment.Filename,
			ContentType: attachment.ContentType,
		})
	}
	for _, sticker := range m.StickerItems {
		message.Stickers = append(message.Stickers, stickerURL(&discordgo.Sticker{
			ID:         sticker.ID,
			Name:       sticker.Name,
			FormatType: sticker.FormatType,
		}))
	}

	if _, err := b.store.AppendMessage(ctx, ticket.ID, message); err != nil {
		log.Printf("[BOT] Error saving message from thread %s: %v", m.ChannelID, err)
		return
	}

	if err := b.store.TouchLastMessage(ctx, ticket.ID); err != nil {
		log.Printf("[BOT] Error bumping lastMessageAt on ticket %s: %v", ticket.ID, err)
	}
}

// stickerURL builds the CDN URL for a sticker, honoring its format: Lottie
// stickers are JSON documents and GIF stickers keep their extension; PNG
// and APNG are both served as .png.
func stickerURL(sticker *discordgo.Sticker) string {
	base := "https://media.discordapp.net/stickers/" + sticker.ID
	switch sticker.FormatType {
	case discordgo.StickerFormatTypeLottie:
		return base + ".json"
	case discordgo.StickerFormatTypeGIF:
		return base + ".gif"
	default:
		return base + ".png"
	}
}
