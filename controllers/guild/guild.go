package guildControllers

import (
	"fmt"
	"sort"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"

	"tickethub/config"
	"tickethub/database"
	"tickethub/middleware"
)

const discordAPIBase = "https://discord.com/api/v10"

type discordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Bot      bool   `json:"bot"`
}

type discordMember struct {
	User  discordUser `json:"user"`
	Roles []string    `json:"roles"`
}

type discordGuild struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

type discordRole struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Position int    `json:"position"`
}

type discordChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func botClient() *resty.Client {
	return resty.New().
		SetBaseURL(discordAPIBase).
		SetHeader("Authorization", "Bot "+config.AppConfig.BotToken)
}

func fetchGuild(client *resty.Client, guildID string) (*discordGuild, error) {
	var guild discordGuild
	resp, err := client.R().SetResult(&guild).Get("/guilds/" + guildID)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch guild: status %d", resp.StatusCode())
	}
	return &guild, nil
}

func fetchMembers(client *resty.Client, guildID string) ([]discordMember, error) {
	var members []discordMember
	resp, err := client.R().SetResult(&members).Get("/guilds/" + guildID + "/members?limit=1000")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch members: status %d", resp.StatusCode())
	}
	return members, nil
}

// staffOf filters guild members down to staff: the owner, or anyone holding
// one of the configured access roles. Bots never count.
func staffOf(members []discordMember, ownerID string, staffRoleIDs map[string]bool) []discordUser {
	staff := make([]discordUser, 0)
	for _, member := range members {
		if member.User.Bot {
			continue
		}
		if member.User.ID == ownerID {
			staff = append(staff, member.User)
			continue
		}
		for _, roleID := range member.Roles {
			if staffRoleIDs[roleID] {
				staff = append(staff, member.User)
				break
			}
		}
	}
	return staff
}

// Staff lists the staff members of a guild for the assignment dropdown.
func Staff(c *fiber.Ctx) error {
	guildID := c.Query("guildId")
	if guildID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Guild ID is required!", nil)
	}

	serverCfg, err := database.Database.ServerConfig(c.Context(), guildID)
	if err != nil || len(serverCfg.AccessRoles) == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Access roles not configured for this server!", nil)
	}
	staffRoleIDs := make(map[string]bool, len(serverCfg.AccessRoles))
	for _, role := range serverCfg.AccessRoles {
		staffRoleIDs[role.RoleID] = true
	}

	client := botClient()
	guild, err := fetchGuild(client, guildID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch guild details!", nil)
	}
	members, err := fetchMembers(client, guildID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch members!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Staff fetched successfully!",
		staffOf(members, guild.OwnerID, staffRoleIDs))
}

// Roles lists a guild's roles, highest first, for the access-role picker.
func Roles(c *fiber.Ctx) error {
	guildID := c.Query("guildId")
	if guildID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Guild ID is required!", nil)
	}

	var roles []discordRole
	resp, err := botClient().R().SetResult(&roles).Get("/guilds/" + guildID + "/roles")
	if err != nil || resp.IsError() {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch roles!", nil)
	}

	filtered := make([]discordRole, 0, len(roles))
	for _, role := range roles {
		if role.Name == "@everyone" {
			continue
		}
		filtered = append(filtered, role)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Position > filtered[j].Position })

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Roles fetched successfully!", filtered)
}

// ServerData bundles everything the panel needs for one guild: staff members,
// a member id-to-username map for mentions, and a channel id-to-name map.
func ServerData(c *fiber.Ctx) error {
	guildID := c.Query("guildId")
	if guildID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Guild ID is required!", nil)
	}

	serverCfg, err := database.Database.ServerConfig(c.Context(), guildID)
	if err != nil || len(serverCfg.AccessRoles) == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Access roles not configured for this server!", nil)
	}
	staffRoleIDs := make(map[string]bool, len(serverCfg.AccessRoles))
	for _, role := range serverCfg.AccessRoles {
		staffRoleIDs[role.RoleID] = true
	}

	client := botClient()
	guild, err := fetchGuild(client, guildID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch guild details!", nil)
	}
	members, err := fetchMembers(client, guildID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch members!", nil)
	}

	var channels []discordChannel
	resp, err := client.R().SetResult(&channels).Get("/guilds/" + guildID + "/channels")
	if err != nil || resp.IsError() {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch channels!", nil)
	}

	allMembers := make(map[string]string, len(members))
	for _, member := range members {
		allMembers[member.User.ID] = member.User.Username
	}
	channelNames := make(map[string]string, len(channels))
	for _, channel := range channels {
		channelNames[channel.ID] = channel.Name
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Server data fetched successfully!", fiber.Map{
		"staffMembers": staffOf(members, guild.OwnerID, staffRoleIDs),
		"allMembers":   allMembers,
		"channels":     channelNames,
	})
}
