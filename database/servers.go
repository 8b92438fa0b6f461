package database

import (
	"context"
	"errors"

	"tickethub/models"
)

// SaveServerConfig stores the per-guild setup, keyed by the guild id.
func (c *Client) SaveServerConfig(ctx context.Context, guildID string, cfg *models.ServerConfig) error {
	_, err := c.Servers().Doc(guildID).Set(ctx, cfg)
	return err
}

// ServerConfig loads the setup for one guild.
func (c *Client) ServerConfig(ctx context.Context, guildID string) (*models.ServerConfig, error) {
	if guildID == "" {
		return nil, errors.New("guild ID is required")
	}

	doc, err := c.Servers().Doc(guildID).Get(ctx)
	if err != nil {
		return nil, err
	}

	var cfg models.ServerConfig
	if err := doc.DataTo(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
