package ticketControllers

import (
	"cloud.google.com/go/firestore"
	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"

	"tickethub/database"
	"tickethub/middleware"
	"tickethub/models"
)

func ListTickets(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*struct {
		Page       *int    `query:"page"`
		Limit      *int    `query:"limit"`
		Status     *string `query:"status"`
		Priority   *string `query:"priority"`
		AssignedTo *string `query:"assignedTo"`
		ServerID   *string `query:"serverId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request!", nil)
	}

	filter := database.TicketFilter{Page: 1, Limit: 20}
	if reqData.Page != nil {
		filter.Page = *reqData.Page
	}
	if reqData.Limit != nil {
		filter.Limit = *reqData.Limit
	}
	if reqData.Status != nil {
		filter.Status = *reqData.Status
	}
	if reqData.Priority != nil {
		filter.Priority = *reqData.Priority
	}
	if reqData.AssignedTo != nil {
		filter.AssignedTo = *reqData.AssignedTo
	}
	if reqData.ServerID != nil {
		filter.ServerID = *reqData.ServerID
	}

	tickets, err := database.Database.ListTickets(c.Context(), filter)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch tickets!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tickets fetched successfully!", fiber.Map{
		"page":    filter.Page,
		"limit":   filter.Limit,
		"tickets": tickets,
	})
}

// TicketDetail returns a ticket with its full conversation and marks it read,
// mirroring what opening a ticket in the panel does.
func TicketDetail(c *fiber.Ctx) error {
	ticketID := c.Params("id")

	ticket, err := database.Database.TicketByID(c.Context(), ticketID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Ticket not found!", nil)
	}

	messages, err := database.Database.Transcript(c.Context(), ticketID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch messages!", nil)
	}

	if !ticket.IsRead {
		if err := database.Database.MarkRead(c.Context(), ticketID); err == nil {
			ticket.IsRead = true
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ticket fetched successfully!", fiber.Map{
		"ticket":   ticket,
		"messages": messages,
	})
}

// Reply appends a staff message. The message is persisted with
// sentToDiscord=false; the outbound sync renders it into the thread.
func Reply(c *fiber.Ctx) error {
	userID, _ := c.Locals("userId").(string)
	username, _ := c.Locals("username").(string)
	avatar, _ := c.Locals("avatar").(string)

	reqData, ok := c.Locals("validatedReply").(*struct {
		TicketID string `json:"ticketId"`
		Content  string `json:"content"`
		PingUser bool   `json:"pingUser"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ticket, err := database.Database.TicketByID(c.Context(), reqData.TicketID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Ticket not found!", nil)
	}
	if ticket.Status == models.StatusClosed {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot reply to a closed ticket!", nil)
	}

	message := &models.Message{
		AuthorID:       userID,
		AuthorUsername: username,
		AuthorAvatar:   avatar,
		Content:        reqData.Content,
		IsStaff:        true,
		PingUser:       reqData.PingUser,
		SentToDiscord:  false,
	}

	messageID, err := database.Database.AppendMessage(c.Context(), reqData.TicketID, message)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send reply!", nil)
	}
	message.ID = messageID

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reply sent successfully!", message)
}

func UpdateStatus(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStatus").(*struct {
		TicketID string `json:"ticketId"`
		Status   string `json:"status"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, err := database.Database.TicketByID(c.Context(), reqData.TicketID); err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Ticket not found!", nil)
	}

	updates := []firestore.Update{
		{Path: "status", Value: reqData.Status},
	}
	// Closing stamps closedAt; any other status clears it.
	if reqData.Status == models.StatusClosed {
		updates = append(updates, firestore.Update{Path: "closedAt", Value: firestore.ServerTimestamp})
	} else {
		updates = append(updates, firestore.Update{Path: "closedAt", Value: nil})
	}

	if err := database.Database.UpdateTicket(c.Context(), reqData.TicketID, updates); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Status updated successfully!", nil)
}

func AssignTicket(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAssign").(*struct {
		TicketID         string `json:"ticketId"`
		AssignedTo       string `json:"assignedTo"`
		AssignedToName   string `json:"assignedToName"`
		AssignedToAvatar string `json:"assignedToAvatar"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, err := database.Database.TicketByID(c.Context(), reqData.TicketID); err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Ticket not found!", nil)
	}

	updates := []firestore.Update{
		{Path: "assignedTo", Value: reqData.AssignedTo},
		{Path: "assignedToName", Value: reqData.AssignedToName},
		{Path: "assignedToAvatar", Value: reqData.AssignedToAvatar},
	}

	if err := database.Database.UpdateTicket(c.Context(), reqData.TicketID, updates); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to assign ticket!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ticket assignment updated!", nil)
}

func UpdatePriority(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPriority").(*struct {
		TicketID string `json:"ticketId"`
		Priority string `json:"priority"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	err := database.Database.UpdateTicket(c.Context(), reqData.TicketID, []firestore.Update{
		{Path: "priority", Value: reqData.Priority},
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update priority!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Priority updated successfully!", nil)
}

func AddTag(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTag").(*struct {
		TicketID string `json:"ticketId"`
		Tag      string `json:"tag"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	err := database.Database.UpdateTicket(c.Context(), reqData.TicketID, []firestore.Update{
		{Path: "tags", Value: firestore.ArrayUnion(reqData.Tag)},
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add tag!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tag added successfully!", nil)
}

func RemoveTag(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTag").(*struct {
		TicketID string `json:"ticketId"`
		Tag      string `json:"tag"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	err := database.Database.UpdateTicket(c.Context(), reqData.TicketID, []firestore.Update{
		{Path: "tags", Value: firestore.ArrayRemove(reqData.Tag)},
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove tag!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tag removed successfully!", nil)
}

// SupportStats aggregates ticket counts for the panel's overview cards.
func SupportStats(c *fiber.Ctx) error {
	serverID := c.Query("serverId")

	open, err := database.Database.CountTickets(c.Context(), serverID, models.StatusOpen)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}
	resolved, err := database.Database.CountTickets(c.Context(), serverID, models.StatusResolved)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}
	closed, err := database.Database.CountTickets(c.Context(), serverID, models.StatusClosed)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}

	today, err := database.Database.CountTicketsSince(c.Context(), serverID, now.BeginningOfDay())
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}
	thisWeek, err := database.Database.CountTicketsSince(c.Context(), serverID, now.BeginningOfWeek())
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", fiber.Map{
		"open":         open,
		"resolved":     resolved,
		"closed":       closed,
		"createdToday": today,
		"createdWeek":  thisWeek,
		"total":        open + resolved + closed,
	})
}

// ArchivedTranscripts returns the locally archived transcripts of a ticket.
func ArchivedTranscripts(c *fiber.Ctx) error {
	ticketID := c.Params("ticketId")
	if ticketID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Ticket ID is required!", nil)
	}

	records, err := database.Archive.ArchivesByTicketID(ticketID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch archives!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Archives fetched successfully!", records)
}
