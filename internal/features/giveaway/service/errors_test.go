package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot/internal/features/giveaway/models"
)

// wrappingRepo decorates fakeRepo errors with call context, the way
// the real backends annotate their driver errors.
type wrappingRepo struct {
	*fakeRepo
}

func (w *wrappingRepo) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	g, err := w.fakeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get giveaway: %w", err)
	}
	return g, nil
}

func (w *wrappingRepo) Finish(ctx context.Context, id int64) error {
	if err := w.fakeRepo.Finish(ctx, id); err != nil {
		return fmt.Errorf("finish giveaway: %w", err)
	}
	return nil
}

func (w *wrappingRepo) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	u, err := w.fakeRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func TestJoinRecognizesWrappedNotFound(t *testing.T) {
	repo := &wrappingRepo{newFakeRepo()}
	svc := NewEnrollmentService(repo, NewGate(NewVerifier(newFakeOracle())))

	res, err := svc.Join(context.Background(), 404, &models.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, JoinGiveawayNotFound, res.Status)
}

func TestFinishRecognizesWrappedFinished(t *testing.T) {
	inner := newFakeRepo()
	repo := &wrappingRepo{inner}
	svc := NewGiveawayService(repo, &fakeDisplay{})

	g := activeGiveaway(inner)
	enroll(inner, g.ID, &models.User{ID: 1})
	_, err := inner.MarkWinner(context.Background(), g.ID, 1)
	require.NoError(t, err)

	_, err = svc.Finish(context.Background(), g.ID)
	require.NoError(t, err)

	_, err = svc.Finish(context.Background(), g.ID)
	assert.ErrorIs(t, err, models.ErrGiveawayFinished)
}

func TestSelectSpecificRecognizesWrappedMissingProfile(t *testing.T) {
	inner := newFakeRepo()
	repo := &wrappingRepo{inner}
	svc := NewSelectorService(repo, NewGate(NewVerifier(newFakeOracle())))

	g := activeGiveaway(inner)
	// participant without a stored profile
	_, err := inner.AddParticipant(context.Background(), g.ID, 42)
	require.NoError(t, err)

	winner, err := svc.SelectSpecific(context.Background(), g.ID, 42)
	require.NoError(t, err)
	assert.EqualValues(t, 42, winner.ID)
}
