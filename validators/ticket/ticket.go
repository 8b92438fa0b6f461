package ticketValidators

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"tickethub/middleware"
	"tickethub/models"
)

func Reply() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TicketID string `json:"ticketId"`
			Content  string `json:"content"`
			PingUser bool   `json:"pingUser"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.TicketID = strings.TrimSpace(reqData.TicketID)
		if reqData.TicketID == "" {
			errors["ticketId"] = "Ticket ID is required!"
		}

		reqData.Content = strings.TrimSpace(reqData.Content)
		if reqData.Content == "" {
			errors["content"] = "Content is required!"
		} else if len(reqData.Content) > 4000 {
			errors["content"] = "Content must not exceed 4000 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReply", reqData)
		return c.Next()
	}
}

func UpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TicketID string `json:"ticketId"`
			Status   string `json:"status"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.TicketID = strings.TrimSpace(reqData.TicketID)
		if reqData.TicketID == "" {
			errors["ticketId"] = "Ticket ID is required!"
		}

		reqData.Status = strings.ToLower(strings.TrimSpace(reqData.Status))
		if !models.ValidStatus(reqData.Status) {
			errors["status"] = "Invalid status! Allowed: open, resolved, closed"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedStatus", reqData)
		return c.Next()
	}
}

func Assign() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TicketID         string `json:"ticketId"`
			AssignedTo       string `json:"assignedTo"`
			AssignedToName   string `json:"assignedToName"`
			AssignedToAvatar string `json:"assignedToAvatar"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.TicketID = strings.TrimSpace(reqData.TicketID)
		if reqData.TicketID == "" {
			errors["ticketId"] = "Ticket ID is required!"
		}

		// An empty assignedTo unassigns the ticket; a set one needs a display name.
		reqData.AssignedTo = strings.TrimSpace(reqData.AssignedTo)
		if reqData.AssignedTo != "" && strings.TrimSpace(reqData.AssignedToName) == "" {
			errors["assignedToName"] = "Assignee name is required when assigning!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssign", reqData)
		return c.Next()
	}
}

func UpdatePriority() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TicketID string `json:"ticketId"`
			Priority string `json:"priority"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.TicketID = strings.TrimSpace(reqData.TicketID)
		if reqData.TicketID == "" {
			errors["ticketId"] = "Ticket ID is required!"
		}

		reqData.Priority = strings.ToLower(strings.TrimSpace(reqData.Priority))
		if !models.ValidPriority(reqData.Priority) {
			errors["priority"] = "Invalid priority! Allowed: low, medium, high"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPriority", reqData)
		return c.Next()
	}
}

func Tag() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TicketID string `json:"ticketId"`
			Tag      string `json:"tag"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.TicketID = strings.TrimSpace(reqData.TicketID)
		if reqData.TicketID == "" {
			errors["ticketId"] = "Ticket ID is required!"
		}

		reqData.Tag = strings.TrimSpace(reqData.Tag)
		if reqData.Tag == "" {
			errors["tag"] = "Tag is required!"
		} else if len(reqData.Tag) > 50 {
			errors["tag"] = "Tag must not exceed 50 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTag", reqData)
		return c.Next()
	}
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page       *int    `query:"page"`
			Limit      *int    `query:"limit"`
			Status     *string `query:"status"`
			Priority   *string `query:"priority"`
			AssignedTo *string `query:"assignedTo"`
			ServerID   *string `query:"serverId"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be at least 1!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}
		if reqData.Status != nil && *reqData.Status != "" && !models.ValidStatus(*reqData.Status) {
			errors["status"] = "Invalid status! Allowed: open, resolved, closed"
		}
		if reqData.Priority != nil && *reqData.Priority != "" && !models.ValidPriority(*reqData.Priority) {
			errors["priority"] = "Invalid priority! Allowed: low, medium, high"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}
