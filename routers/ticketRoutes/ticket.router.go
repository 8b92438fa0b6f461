package ticketRoutes

import (
	controller "tickethub/controllers/ticket"
	"tickethub/middleware"
	validator "tickethub/validators/ticket"

	"github.com/gofiber/fiber/v2"
)

func SetupTicketRoutes(app *fiber.App) {
	tickets := app.Group("/tickets")

	tickets.Get("/list", validator.List(), middleware.JWTMiddleware, middleware.StaffGuard, controller.ListTickets)
	tickets.Get("/detail/:id", middleware.JWTMiddleware, controller.TicketDetail)
	tickets.Get("/stats", middleware.JWTMiddleware, middleware.StaffGuard, controller.SupportStats)
	tickets.Get("/archive/:ticketId", middleware.JWTMiddleware, controller.ArchivedTranscripts)
	tickets.Post("/reply", validator.Reply(), middleware.JWTMiddleware, controller.Reply)
	tickets.Post("/status", validator.UpdateStatus(), middleware.JWTMiddleware, controller.UpdateStatus)
	tickets.Post("/assign", validator.Assign(), middleware.JWTMiddleware, controller.AssignTicket)
	tickets.Post("/priority", validator.UpdatePriority(), middleware.JWTMiddleware, controller.UpdatePriority)
	tickets.Post("/tags/add", validator.Tag(), middleware.JWTMiddleware, controller.AddTag)
	tickets.Post("/tags/remove", validator.Tag(), middleware.JWTMiddleware, controller.RemoveTag)
}
