package repository

import (
	"context"
	"errors"

	"giveaway-bot/internal/features/channel/models"
)

var ErrChannelNotFound = errors.New("channel not found")

// ChannelRepository stores the channels the bot administers.
type ChannelRepository interface {
	// Upsert registers the channel or refreshes its title and username.
	Upsert(ctx context.Context, channel *models.AdminChannel) error
	Remove(ctx context.Context, channelID int64) error
	Get(ctx context.Context, channelID int64) (*models.AdminChannel, error)
	List(ctx context.Context) ([]*models.AdminChannel, error)
}
