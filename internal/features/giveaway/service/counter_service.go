package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/features/giveaway/repository"
)

// CounterService periodically reconciles the participation button of
// every published active giveaway with the stored participant count.
//
// The last pushed value is kept in process memory only. After a
// restart the map is empty, so the first sweep re-pushes every
// counter; an extra edit is harmless, a stale label is not.
type CounterService struct {
	ctx     context.Context
	cancel  context.CancelFunc
	repo    repository.GiveawayRepository
	display Display

	interval   time.Duration
	mu         sync.Mutex
	lastPushed map[int64]int64
	wg         sync.WaitGroup
	logger     zerolog.Logger
}

func NewCounterService(repo repository.GiveawayRepository, display Display, interval time.Duration) *CounterService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CounterService{
		ctx:        ctx,
		cancel:     cancel,
		repo:       repo,
		display:    display,
		interval:   interval,
		lastPushed: make(map[int64]int64),
		logger:     log.With().Str("component", "counter").Logger(),
	}
}

func (s *CounterService) Start() {
	s.logger.Info().Dur("interval", s.interval).Msg("starting counter service")
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.refreshOnce(s.ctx); err != nil {
					s.logger.Error().Err(err).Msg("counter sweep failed")
				}
			}
		}
	}()
}

func (s *CounterService) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info().Msg("counter service stopped")
}

func (s *CounterService) refreshOnce(ctx context.Context) error {
	giveaways, err := s.repo.GetActive(ctx)
	if err != nil {
		return err
	}

	for _, giveaway := range giveaways {
		if !giveaway.IsPublished() {
			continue
		}

		count, err := s.repo.CountParticipants(ctx, giveaway.ID)
		if err != nil {
			s.logger.Error().Err(err).Int64("giveaway_id", giveaway.ID).
				Msg("failed to count participants")
			continue
		}

		s.mu.Lock()
		last, seen := s.lastPushed[giveaway.ID]
		s.mu.Unlock()
		if seen && last == count {
			continue
		}

		if err := s.display.UpdateParticipantCount(ctx, giveaway, count); err != nil {
			// next sweep retries; lastPushed stays unrecorded
			s.logger.Warn().Err(err).Int64("giveaway_id", giveaway.ID).
				Msg("failed to push participant count")
			continue
		}

		s.mu.Lock()
		s.lastPushed[giveaway.ID] = count
		s.mu.Unlock()
	}
	return nil
}
