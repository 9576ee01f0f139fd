package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"giveaway-bot/internal/features/channel/models"
	"giveaway-bot/internal/features/channel/repository"
)

const keyAdminChannels = "channels:admin"

type channelRepository struct {
	client *redis.Client
}

// NewChannelRepository returns the redis-backed admin-channel registry,
// a single hash keyed by channel id.
func NewChannelRepository(client *redis.Client) repository.ChannelRepository {
	return &channelRepository{client: client}
}

func field(channelID int64) string {
	return strconv.FormatInt(channelID, 10)
}

func (r *channelRepository) Upsert(ctx context.Context, channel *models.AdminChannel) error {
	if channel.AddedAt.IsZero() {
		channel.AddedAt = time.Now().UTC()
	}

	// keep the original AddedAt across re-promotions
	if prev, err := r.Get(ctx, channel.ChannelID); err == nil {
		channel.AddedAt = prev.AddedAt
	} else if err != repository.ErrChannelNotFound {
		return err
	}

	data, err := json.Marshal(channel)
	if err != nil {
		return fmt.Errorf("failed to marshal channel: %w", err)
	}
	if err := r.client.HSet(ctx, keyAdminChannels, field(channel.ChannelID), data).Err(); err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}
	return nil
}

func (r *channelRepository) Remove(ctx context.Context, channelID int64) error {
	if err := r.client.HDel(ctx, keyAdminChannels, field(channelID)).Err(); err != nil {
		return fmt.Errorf("failed to remove channel: %w", err)
	}
	return nil
}

func (r *channelRepository) Get(ctx context.Context, channelID int64) (*models.AdminChannel, error) {
	data, err := r.client.HGet(ctx, keyAdminChannels, field(channelID)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	var channel models.AdminChannel
	if err := json.Unmarshal(data, &channel); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channel: %w", err)
	}
	return &channel, nil
}

func (r *channelRepository) List(ctx context.Context) ([]*models.AdminChannel, error) {
	entries, err := r.client.HGetAll(ctx, keyAdminChannels).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	channels := make([]*models.AdminChannel, 0, len(entries))
	for _, data := range entries {
		var channel models.AdminChannel
		if err := json.Unmarshal([]byte(data), &channel); err != nil {
			return nil, fmt.Errorf("failed to unmarshal channel: %w", err)
		}
		channels = append(channels, &channel)
	}
	sort.Slice(channels, func(i, j int) bool {
		if channels[i].AddedAt.Equal(channels[j].AddedAt) {
			return channels[i].ChannelID < channels[j].ChannelID
		}
		return channels[i].AddedAt.Before(channels[j].AddedAt)
	})
	return channels, nil
}
