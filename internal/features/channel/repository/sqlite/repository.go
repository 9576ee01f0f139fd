package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"giveaway-bot/internal/features/channel/models"
	"giveaway-bot/internal/features/channel/repository"
	"giveaway-bot/internal/platform/sqlite"
)

type channelRepository struct {
	db *sql.DB
}

// NewChannelRepository returns the sqlite-backed admin-channel registry.
func NewChannelRepository(db *sqlite.DB) repository.ChannelRepository {
	return &channelRepository{db: db.Conn()}
}

func (r *channelRepository) Upsert(ctx context.Context, channel *models.AdminChannel) error {
	if channel.AddedAt.IsZero() {
		channel.AddedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_channels (channel_id, title, username, added_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (channel_id) DO UPDATE SET title = excluded.title, username = excluded.username
	`, channel.ChannelID, channel.Title, channel.Username, channel.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}
	return nil
}

func (r *channelRepository) Remove(ctx context.Context, channelID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM admin_channels WHERE channel_id = ?`, channelID); err != nil {
		return fmt.Errorf("failed to remove channel: %w", err)
	}
	return nil
}

func (r *channelRepository) Get(ctx context.Context, channelID int64) (*models.AdminChannel, error) {
	channel := &models.AdminChannel{}
	err := r.db.QueryRowContext(ctx,
		`SELECT channel_id, title, username, added_at FROM admin_channels WHERE channel_id = ?`,
		channelID).Scan(&channel.ChannelID, &channel.Title, &channel.Username, &channel.AddedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return channel, nil
}

func (r *channelRepository) List(ctx context.Context) ([]*models.AdminChannel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT channel_id, title, username, added_at FROM admin_channels ORDER BY added_at, channel_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []*models.AdminChannel
	for rows.Next() {
		channel := &models.AdminChannel{}
		if err := rows.Scan(&channel.ChannelID, &channel.Title, &channel.Username, &channel.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}
