package guildRoutes

import (
	controller "tickethub/controllers/guild"
	"tickethub/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupGuildRoutes(app *fiber.App) {
	guild := app.Group("/guild")

	guild.Get("/staff", middleware.JWTMiddleware, middleware.StaffGuard, controller.Staff)
	guild.Get("/roles", middleware.JWTMiddleware, middleware.StaffGuard, controller.Roles)
	guild.Get("/server-data", middleware.JWTMiddleware, middleware.StaffGuard, controller.ServerData)
}
