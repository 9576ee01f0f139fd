package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	gwmodels "giveaway-bot/internal/features/giveaway/models"

	"giveaway-bot/internal/features/channel/models"
	"giveaway-bot/internal/features/channel/repository"
)

// MemberUpdate is what a my_chat_member update boils down to: the
// chat the bot's membership changed in, and the status transition.
type MemberUpdate struct {
	ChatID    int64
	ChatType  string
	Title     string
	Username  string
	OldStatus gwmodels.MemberStatus
	NewStatus gwmodels.MemberStatus
}

// ChannelService maintains the registry of channels the bot can post
// to, driven by the bot's own membership updates.
type ChannelService struct {
	repo   repository.ChannelRepository
	logger zerolog.Logger
}

func NewChannelService(repo repository.ChannelRepository) *ChannelService {
	return &ChannelService{
		repo:   repo,
		logger: log.With().Str("component", "channels").Logger(),
	}
}

func isAdminStatus(status gwmodels.MemberStatus) bool {
	return status == gwmodels.MemberStatusAdministrator || status == gwmodels.MemberStatusCreator
}

// ApplyMemberUpdate reconciles the registry with a status transition.
// Gaining admin registers the channel, losing admin removes it, and a
// lateral admin update refreshes the stored title and username.
func (s *ChannelService) ApplyMemberUpdate(ctx context.Context, update MemberUpdate) error {
	switch update.ChatType {
	case "channel", "supergroup", "group":
	default:
		return nil
	}

	isAdmin := isAdminStatus(update.NewStatus)
	wasAdmin := isAdminStatus(update.OldStatus)

	switch {
	case isAdmin:
		err := s.repo.Upsert(ctx, &models.AdminChannel{
			ChannelID: update.ChatID,
			Title:     update.Title,
			Username:  update.Username,
		})
		if err != nil {
			return err
		}
		if !wasAdmin {
			s.logger.Info().Int64("channel_id", update.ChatID).Str("title", update.Title).
				Msg("bot promoted to channel admin")
		}
	case wasAdmin:
		if err := s.repo.Remove(ctx, update.ChatID); err != nil {
			return err
		}
		s.logger.Info().Int64("channel_id", update.ChatID).Str("title", update.Title).
			Msg("bot lost channel admin rights")
	}
	return nil
}

// List returns the registered channels in registration order.
func (s *ChannelService) List(ctx context.Context) ([]*models.AdminChannel, error) {
	return s.repo.List(ctx)
}

// Get looks up a single registered channel.
func (s *ChannelService) Get(ctx context.Context, channelID int64) (*models.AdminChannel, error) {
	return s.repo.Get(ctx, channelID)
}
