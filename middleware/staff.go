package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// StaffGuard checks that the requested guild is one the session token was
// issued for. The guild comes from the guildId query param or request body;
// requests that name no guild pass through (the handler scopes them itself).
func StaffGuard(c *fiber.Ctx) error {
	guildID := c.Query("guildId")
	if guildID == "" {
		guildID = c.Query("serverId")
	}
	if guildID == "" {
		return c.Next()
	}

	guilds, ok := c.Locals("guilds").([]string)
	if !ok {
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this server!", nil)
	}
	for _, g := range guilds {
		if g == guildID {
			return c.Next()
		}
	}
	return JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this server!", nil)
}
