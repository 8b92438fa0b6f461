package models

// AccessRole grants dashboard access to a Discord role.
type AccessRole struct {
	RoleID   string `firestore:"roleId" json:"roleId"`
	RoleName string `firestore:"roleName" json:"roleName"`
}

// ServerConfig is the per-guild setup written by the /setup command.
type ServerConfig struct {
	ServerName      string       `firestore:"serverName" json:"serverName"`
	TicketChannelID string       `firestore:"ticketChannelId" json:"ticketChannelId"`
	TicketMessageID string       `firestore:"ticketMessageId" json:"ticketMessageId"`
	AccessRoles     []AccessRole `firestore:"accessRoles" json:"accessRoles"`
	Tags            []string     `firestore:"tags" json:"tags"`
}
