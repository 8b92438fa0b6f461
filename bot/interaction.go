package bot

import (
	"context"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/bwmarrin/discordgo"

	"tickethub/config"
	"tickethub/models"
	"tickethub/utils"
)

const (
	openTicketFailed  = "❌ An error occurred while creating your ticket."
	closeTicketFailed = "An error occurred while closing the ticket."
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == "setup" {
			b.handleSetup(s, i)
		}
	case discordgo.InteractionMessageComponent:
		// Acknowledge immediately; the flows below answer via followups.
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		}); err != nil {
			log.Printf("[BOT] Failed to acknowledge interaction: %v", err)
			return
		}

		customID := i.MessageComponentData().CustomID
		switch {
		case customID == openTicketButtonID:
			b.handleOpenTicket(s, i)
		case strings.HasPrefix(customID, closeTicketPrefix):
			b.handleCloseTicket(s, i)
		}
	}
}

// interactionUser returns the acting user for guild or DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func (b *Bot) followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if content == "" {
		return
	}
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Printf("[BOT] Failed to send followup: %v", err)
	}
}

func (b *Bot) handleOpenTicket(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}
	b.followUp(s, i, b.openTicket(context.Background(), i.GuildID, i.ChannelID, user))
}

// openTicket creates the private thread, pulls the user in, writes the
// ticket record, and renders the welcome message. If the record write fails
// the fresh thread is deleted best-effort so no orphan stays attached.
// Returns the ephemeral reply for the triggering user.
func (b *Bot) openTicket(ctx context.Context, guildID, channelID string, user *discordgo.User) string {
	thread, err := b.chat.CreateTicketThread(channelID, user.Username)
	if err != nil {
		log.Printf("[BOT] Error creating ticket thread for %s: %v", user.ID, err)
		return openTicketFailed
	}

	if err := b.chat.AddThreadMember(thread.ID, user.ID); err != nil {
		log.Printf("[BOT] Error adding %s to thread %s: %v", user.ID, thread.ID, err)
	}

	ticket := &models.Ticket{
		ServerID:       guildID,
		ThreadID:       thread.ID,
		OpenerID:       user.ID,
		OpenerUsername: user.Username,
		OpenerAvatar:   user.AvatarURL(""),
		Title:          "Ticket by " + user.Username,
		Status:         models.StatusOpen,
		Priority:       models.PriorityLow,
		Tags:           []string{},
	}

	ticketID, err := b.store.CreateTicket(ctx, ticket)
	if err != nil {
		log.Printf("[BOT] Error creating ticket record for thread %s: %v", thread.ID, err)
		if delErr := b.chat.DeleteThread(thread.ID); delErr != nil {
			log.Printf("[BOT] Could not clean up orphaned thread %s: %v", thread.ID, delErr)
		}
		return openTicketFailed
	}
	ticket.ID = ticketID

	if err := b.chat.SendWelcome(thread.ID, ticketID, user.ID); err != nil {
		log.Printf("[BOT] Error sending welcome message to thread %s: %v", thread.ID, err)
	}

	if config.AppConfig.StaffEmail != "" {
		utils.SendNewTicketEmail(ticket)
	}

	return "✅ Your ticket has been created in <#" + thread.ID + ">!"
}

func (b *Bot) handleCloseTicket(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}
	messageID := ""
	if i.Message != nil {
		messageID = i.Message.ID
	}
	b.followUp(s, i, b.closeTicket(context.Background(), i.ChannelID, messageID, user))
}

// closeTicket closes a ticket from its thread. Only the opener may do this;
// staff close tickets from the dashboard instead. The thread is locked
// before the status write lands, so the ticket listener always observes the
// close with the thread already locked and renders no second notice.
// Returns the ephemeral reply for the triggering user; an empty reply means
// success (the closure notice in the thread is the confirmation).
func (b *Bot) closeTicket(ctx context.Context, threadID, messageID string, user *discordgo.User) string {
	ticket, err := b.store.TicketByThreadID(ctx, threadID)
	if err != nil {
		log.Printf("[BOT] Error looking up ticket for thread %s: %v", threadID, err)
		return closeTicketFailed
	}
	if ticket == nil {
		return "Could not find a corresponding ticket for this thread."
	}

	if ticket.OpenerID != user.ID {
		return "You do not have permission to close this ticket."
	}

	if err := b.chat.SetThreadLocked(threadID, true, "Ticket closed by user."); err != nil {
		log.Printf("[BOT] Error locking thread %s: %v", threadID, err)
		return closeTicketFailed
	}

	err = b.store.UpdateTicket(ctx, ticket.ID, []firestore.Update{
		{Path: "status", Value: models.StatusClosed},
		{Path: "closedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		log.Printf("[BOT] Error closing ticket %s: %v", ticket.ID, err)
		if unlockErr := b.chat.SetThreadLocked(threadID, false, "Ticket close failed."); unlockErr != nil {
			log.Printf("[BOT] Error unlocking thread %s after failed close: %v", threadID, unlockErr)
		}
		return closeTicketFailed
	}

	err = b.chat.SendNotice(threadID, "Ticket Closed",
		"This ticket has been closed by <@"+user.ID+">. The thread is now locked.", colorRed)
	if err != nil {
		log.Printf("[BOT] Error sending closure notice to thread %s: %v", threadID, err)
	}

	if messageID != "" {
		if err := b.chat.DisableCloseButton(threadID, messageID, ticket.ID); err != nil {
			log.Printf("[BOT] Error disabling close button on ticket %s: %v", ticket.ID, err)
		}
	}

	b.archiveClosedTicket(ctx, ticket.ID)
	return ""
}

// archiveClosedTicket stores the transcript of a ticket the opener just
// closed. The thread is locked before the listener sees the change, so the
// close transition there is a no-op and archiving happens here instead. The
// ticket is re-fetched so the record carries the resolved closedAt.
func (b *Bot) archiveClosedTicket(ctx context.Context, ticketID string) {
	if b.archive == nil {
		return
	}

	closed, err := b.store.TicketByID(ctx, ticketID)
	if err != nil {
		log.Printf("[BOT] Error re-fetching closed ticket %s: %v", ticketID, err)
		return
	}
	transcript, err := b.store.Transcript(ctx, ticketID)
	if err != nil {
		log.Printf("[BOT] Error loading transcript for ticket %s: %v", ticketID, err)
		return
	}
	if err := b.archive.ArchiveTicket(closed, transcript); err != nil {
		log.Printf("[BOT] Error archiving ticket %s: %v", ticketID, err)
		return
	}

	if config.AppConfig.StaffEmail != "" {
		utils.SendTicketClosedEmail(closed)
	}
}

// handleSetup wires the ticketing system into a guild: posts the open-ticket
// prompt into the chosen channel and stores the server config.
func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Printf("[BOT] Failed to acknowledge setup command: %v", err)
		return
	}

	editReply := func(content string) {
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Content: &content,
		}); err != nil {
			log.Printf("[BOT] Failed to edit setup reply: %v", err)
		}
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		editReply("❌ A channel is required.")
		return
	}
	channel := options[0].ChannelValue(s)
	if channel == nil {
		editReply("❌ A channel is required.")
		return
	}

	guild, err := s.Guild(i.GuildID)
	if err != nil {
		log.Printf("[BOT] Error fetching guild %s during setup: %v", i.GuildID, err)
		editReply("❌ An error occurred while setting up the ticketing system. Please check my permissions and try again.")
		return
	}

	messageID, err := b.chat.SendTicketPrompt(channel.ID, guild.Name, guild.IconURL(""))
	if err != nil {
		log.Printf("[BOT] Error posting ticket prompt in %s: %v", channel.ID, err)
		editReply("❌ An error occurred while setting up the ticketing system. Please check my permissions and try again.")
		return
	}

	cfg := &models.ServerConfig{
		ServerName:      guild.Name,
		TicketChannelID: channel.ID,
		TicketMessageID: messageID,
		AccessRoles:     []models.AccessRole{},
		Tags:            []string{},
	}
	if err := b.store.SaveServerConfig(ctx, i.GuildID, cfg); err != nil {
		log.Printf("[BOT] Error saving server config for %s: %v", i.GuildID, err)
		editReply("❌ An error occurred while setting up the ticketing system. Please check my permissions and try again.")
		return
	}

	editReply("✅ Successfully set up the ticketing system in <#" + channel.ID + ">!")
}
