package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/repository"
)

// SelectorService picks winners. Random draws for the same giveaway
// are serialized through a per-giveaway mutex so two admins cannot
// draw the same candidate set concurrently.
type SelectorService struct {
	repo   repository.GiveawayRepository
	gate   *Gate
	locks  sync.Map // giveaway id -> *sync.Mutex
	logger zerolog.Logger
}

func NewSelectorService(repo repository.GiveawayRepository, gate *Gate) *SelectorService {
	return &SelectorService{
		repo:   repo,
		gate:   gate,
		logger: log.With().Str("component", "selector").Logger(),
	}
}

func (s *SelectorService) lock(giveawayID int64) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(giveawayID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// SelectRandom draws one winner uniformly from the participants who
// are not winners yet. Every candidate is re-checked against the
// subscription gate at draw time; unsubscribed candidates are skipped,
// not disqualified. Returns ErrNoEligibleCandidate when the scan
// exhausts the pool.
func (s *SelectorService) SelectRandom(ctx context.Context, giveawayID int64) (*models.User, error) {
	mu := s.lock(giveawayID)
	mu.Lock()
	defer mu.Unlock()

	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	participants, err := s.repo.GetParticipants(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	winners, err := s.repo.GetWinners(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	already := make(map[int64]bool, len(winners))
	for _, w := range winners {
		already[w.ID] = true
	}

	candidates := make([]*models.User, 0, len(participants))
	for _, p := range participants {
		if !already[p.ID] {
			candidates = append(candidates, p)
		}
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, candidate := range candidates {
		if check := s.gate.Check(ctx, giveaway, candidate.ID); !check.Eligible {
			s.logger.Debug().Int64("giveaway_id", giveawayID).Int64("user_id", candidate.ID).
				Msg("candidate skipped, subscription lapsed")
			continue
		}

		marked, err := s.repo.MarkWinner(ctx, giveawayID, candidate.ID)
		if err != nil {
			return nil, err
		}
		if !marked {
			// lost a race with another draw
			continue
		}

		s.logger.Info().Int64("giveaway_id", giveawayID).Int64("user_id", candidate.ID).
			Msg("random winner selected")
		return candidate, nil
	}

	return nil, ErrNoEligibleCandidate
}

// SelectSpecific marks the given participant as a winner without a
// subscription re-check. The admin pointed at a concrete participant;
// that is an explicit override.
func (s *SelectorService) SelectSpecific(ctx context.Context, giveawayID, userID int64) (*models.User, error) {
	marked, err := s.repo.MarkWinner(ctx, giveawayID, userID)
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, ErrAlreadyWinner
	}

	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = &models.User{ID: userID}
	} else if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("giveaway_id", giveawayID).Int64("user_id", userID).
		Msg("specific winner selected")
	return user, nil
}

// SelectSpecificByUsername resolves a @username to a participant and
// marks them as a winner. Unlike SelectSpecific, the candidate is
// checked against the subscription gate first; a typed-in handle gets
// no override.
func (s *SelectorService) SelectSpecificByUsername(ctx context.Context, giveawayID int64, username string) (*models.User, error) {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	joined, err := s.repo.IsParticipant(ctx, giveawayID, user.ID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, repository.ErrParticipantNotFound
	}

	if check := s.gate.Check(ctx, giveaway, user.ID); !check.Eligible {
		return nil, ErrCandidateNotEligible
	}

	marked, err := s.repo.MarkWinner(ctx, giveawayID, user.ID)
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, ErrAlreadyWinner
	}

	s.logger.Info().Int64("giveaway_id", giveawayID).Int64("user_id", user.ID).
		Str("username", username).Msg("winner selected by username")
	return user, nil
}
