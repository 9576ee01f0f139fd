package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/repository"
)

// GiveawayService drives the giveaway lifecycle: create, publish,
// edit, finish, delete. Store writes commit first; display pushes are
// best-effort and never roll a commit back.
type GiveawayService struct {
	repo    repository.GiveawayRepository
	display Display
	logger  zerolog.Logger
}

func NewGiveawayService(repo repository.GiveawayRepository, display Display) *GiveawayService {
	return &GiveawayService{
		repo:    repo,
		display: display,
		logger:  log.With().Str("component", "giveaway").Logger(),
	}
}

// Create validates the draft and persists a new active giveaway.
func (s *GiveawayService) Create(ctx context.Context, draft *models.GiveawayDraft) (*models.Giveaway, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	giveaway := &models.Giveaway{
		RequiredChannels: draft.RequiredChannels,
		Description:      draft.Description,
		Media:            draft.Media,
		ButtonText:       draft.ButtonText,
		PublishChannelID: draft.PublishChannelID,
		EndTime:          draft.EndTime,
		Status:           models.GiveawayStatusActive,
	}
	if err := s.repo.Create(ctx, giveaway); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("giveaway_id", giveaway.ID).Msg("giveaway created")
	return giveaway, nil
}

// Publish posts the giveaway into its publish channel and records the
// resulting message id. Publishing twice is an error.
func (s *GiveawayService) Publish(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if giveaway.IsPublished() {
		return nil, models.ErrAlreadyPublished
	}

	messageID, err := s.display.PublishPost(ctx, giveaway)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPublishMessageID(ctx, giveawayID, messageID); err != nil {
		return nil, err
	}
	giveaway.PublishMessageID = messageID

	s.logger.Info().Int64("giveaway_id", giveawayID).Int64("message_id", messageID).
		Msg("giveaway published")
	return giveaway, nil
}

// GetByID loads a single giveaway.
func (s *GiveawayService) GetByID(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	return s.repo.GetByID(ctx, giveawayID)
}

// GetActive lists all active giveaways.
func (s *GiveawayService) GetActive(ctx context.Context) ([]*models.Giveaway, error) {
	return s.repo.GetActive(ctx)
}

// GetParticipants lists everyone enrolled in the giveaway.
func (s *GiveawayService) GetParticipants(ctx context.Context, giveawayID int64) ([]*models.User, error) {
	return s.repo.GetParticipants(ctx, giveawayID)
}

// CountParticipants returns the enrollment count.
func (s *GiveawayService) CountParticipants(ctx context.Context, giveawayID int64) (int64, error) {
	return s.repo.CountParticipants(ctx, giveawayID)
}

// UpsertUser refreshes the stored profile for a user the bot saw.
func (s *GiveawayService) UpsertUser(ctx context.Context, user *models.User) error {
	return s.repo.UpsertUser(ctx, user)
}

// GetWinners lists the winners marked so far.
func (s *GiveawayService) GetWinners(ctx context.Context, giveawayID int64) ([]*models.User, error) {
	return s.repo.GetWinners(ctx, giveawayID)
}

// EditDescription rewrites the giveaway text and refreshes the post.
// Editing works in any status; a finished giveaway keeps its sealed
// keyboard.
func (s *GiveawayService) EditDescription(ctx context.Context, giveawayID int64, description string) error {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateDescription(ctx, giveawayID, description); err != nil {
		return err
	}
	giveaway.Description = description

	if giveaway.IsPublished() {
		count, err := s.repo.CountParticipants(ctx, giveawayID)
		if err != nil {
			return err
		}
		if err := s.display.RefreshDescription(ctx, giveaway, count); err != nil {
			s.logger.Warn().Err(err).Int64("giveaway_id", giveawayID).
				Msg("failed to refresh published post")
		}
	}
	return nil
}

// Finish transitions the giveaway to finished, announces the winners
// and seals the post. At least one winner must be selected first. The
// status flip is the commit point: announcement failures are logged
// and the giveaway stays finished.
func (s *GiveawayService) Finish(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	winners, err := s.repo.GetWinners(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if len(winners) == 0 {
		return nil, models.ErrNoWinnersSelected
	}

	if err := s.repo.Finish(ctx, giveawayID); err != nil {
		if errors.Is(err, repository.ErrGiveawayFinished) {
			return nil, models.ErrGiveawayFinished
		}
		return nil, err
	}
	giveaway.Status = models.GiveawayStatusFinished

	if giveaway.IsPublished() {
		if err := s.display.PublishResults(ctx, giveaway, winners); err != nil {
			s.logger.Error().Err(err).Int64("giveaway_id", giveawayID).
				Msg("failed to publish results")
		}
		if err := s.display.SealPost(ctx, giveaway); err != nil {
			s.logger.Error().Err(err).Int64("giveaway_id", giveawayID).
				Msg("failed to seal post")
		}
	}

	s.logger.Info().Int64("giveaway_id", giveawayID).Int("winners", len(winners)).
		Msg("giveaway finished")
	return giveaway, nil
}

// Delete removes the giveaway, its participant records and, when
// possible, the published post. User profiles survive.
func (s *GiveawayService) Delete(ctx context.Context, giveawayID int64) error {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, giveawayID); err != nil {
		return err
	}

	if giveaway.IsPublished() {
		if err := s.display.RemovePost(ctx, giveaway); err != nil {
			s.logger.Warn().Err(err).Int64("giveaway_id", giveawayID).
				Msg("failed to remove published post")
		}
	}

	s.logger.Info().Int64("giveaway_id", giveawayID).Msg("giveaway deleted")
	return nil
}
