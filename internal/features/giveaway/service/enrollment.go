package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/repository"
)

// JoinStatus classifies the outcome of a participation attempt. A
// repeated tap is a normal outcome, not an error.
type JoinStatus int

const (
	JoinEnrolled JoinStatus = iota
	JoinAlreadyEnrolled
	JoinNotEligible
	JoinGiveawayInactive
	JoinGiveawayNotFound
)

// JoinResult carries the status and, when the user is not eligible,
// the complete list of channels they still have to join.
type JoinResult struct {
	Status  JoinStatus
	Missing []models.ChannelRef
}

// EnrollmentService handles participation attempts.
type EnrollmentService struct {
	repo   repository.GiveawayRepository
	gate   *Gate
	logger zerolog.Logger
}

func NewEnrollmentService(repo repository.GiveawayRepository, gate *Gate) *EnrollmentService {
	return &EnrollmentService{
		repo:   repo,
		gate:   gate,
		logger: log.With().Str("component", "enrollment").Logger(),
	}
}

// Join enrolls the user into the giveaway if it is active and the user
// passes the subscription gate. The user profile is upserted on every
// attempt, whatever the outcome, so the store always has the freshest
// handle for winner announcements.
func (s *EnrollmentService) Join(ctx context.Context, giveawayID int64, user *models.User) (JoinResult, error) {
	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return JoinResult{}, err
	}

	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if errors.Is(err, repository.ErrGiveawayNotFound) {
		return JoinResult{Status: JoinGiveawayNotFound}, nil
	}
	if err != nil {
		return JoinResult{}, err
	}
	if !giveaway.IsActive() {
		return JoinResult{Status: JoinGiveawayInactive}, nil
	}

	check := s.gate.Check(ctx, giveaway, user.ID)
	if !check.Eligible {
		return JoinResult{Status: JoinNotEligible, Missing: check.Missing}, nil
	}

	inserted, err := s.repo.AddParticipant(ctx, giveawayID, user.ID)
	if err != nil {
		return JoinResult{}, err
	}
	if !inserted {
		return JoinResult{Status: JoinAlreadyEnrolled}, nil
	}

	s.logger.Info().Int64("giveaway_id", giveawayID).Int64("user_id", user.ID).Msg("participant enrolled")
	return JoinResult{Status: JoinEnrolled}, nil
}
