package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/repository"
)

func newLifecycle(repo *fakeRepo, display *fakeDisplay) *GiveawayService {
	return NewGiveawayService(repo, display)
}

func TestCreateValidatesDraft(t *testing.T) {
	repo := newFakeRepo()
	svc := newLifecycle(repo, &fakeDisplay{})

	_, err := svc.Create(context.Background(), &models.GiveawayDraft{
		ButtonText:       "Join",
		PublishChannelID: -100555,
	})
	assert.ErrorIs(t, err, models.ErrEmptyDescription)

	_, err = svc.Create(context.Background(), &models.GiveawayDraft{
		Description:      "prize",
		PublishChannelID: -100555,
	})
	assert.ErrorIs(t, err, models.ErrEmptyButtonText)

	g, err := svc.Create(context.Background(), &models.GiveawayDraft{
		Description:      "prize",
		ButtonText:       "Join",
		PublishChannelID: -100555,
	})
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.Equal(t, models.GiveawayStatusActive, g.Status)
}

func TestPublishIsOneShot(t *testing.T) {
	repo := newFakeRepo()
	display := &fakeDisplay{publishID: 777}
	svc := newLifecycle(repo, display)

	g := activeGiveaway(repo)

	published, err := svc.Publish(context.Background(), g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 777, published.PublishMessageID)

	stored, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 777, stored.PublishMessageID)

	_, err = svc.Publish(context.Background(), g.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyPublished)
}

func TestFinishRequiresWinners(t *testing.T) {
	repo := newFakeRepo()
	display := &fakeDisplay{}
	svc := newLifecycle(repo, display)

	g := activeGiveaway(repo)
	enroll(repo, g.ID, &models.User{ID: 1})

	_, err := svc.Finish(context.Background(), g.ID)
	assert.ErrorIs(t, err, models.ErrNoWinnersSelected)

	stored, _ := repo.GetByID(context.Background(), g.ID)
	assert.Equal(t, models.GiveawayStatusActive, stored.Status)
}

func TestFinishAnnouncesAndSeals(t *testing.T) {
	repo := newFakeRepo()
	display := &fakeDisplay{}
	svc := newLifecycle(repo, display)

	g := activeGiveaway(repo)
	require.NoError(t, repo.SetPublishMessageID(context.Background(), g.ID, 777))
	enroll(repo, g.ID, &models.User{ID: 1, Username: "alice"})
	_, err := repo.MarkWinner(context.Background(), g.ID, 1)
	require.NoError(t, err)

	finished, err := svc.Finish(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusFinished, finished.Status)
	assert.Equal(t, []int64{g.ID}, display.resultsFor)
	assert.Equal(t, []int64{g.ID}, display.sealedFor)

	_, err = svc.Finish(context.Background(), g.ID)
	assert.ErrorIs(t, err, models.ErrGiveawayFinished)
}

func TestFinishUnpublishedSkipsDisplay(t *testing.T) {
	repo := newFakeRepo()
	display := &fakeDisplay{}
	svc := newLifecycle(repo, display)

	g := activeGiveaway(repo)
	enroll(repo, g.ID, &models.User{ID: 1})
	_, err := repo.MarkWinner(context.Background(), g.ID, 1)
	require.NoError(t, err)

	_, err = svc.Finish(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Empty(t, display.resultsFor)
	assert.Empty(t, display.sealedFor)
}

func TestDeleteRemovesPost(t *testing.T) {
	repo := newFakeRepo()
	display := &fakeDisplay{}
	svc := newLifecycle(repo, display)

	g := activeGiveaway(repo)
	require.NoError(t, repo.SetPublishMessageID(context.Background(), g.ID, 777))
	enroll(repo, g.ID, &models.User{ID: 1})

	require.NoError(t, svc.Delete(context.Background(), g.ID))
	assert.Equal(t, []int64{g.ID}, display.removedFor)

	_, err := repo.GetByID(context.Background(), g.ID)
	assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), 404), repository.ErrGiveawayNotFound)
}

func TestEditDescriptionRefreshesPublishedPost(t *testing.T) {
	repo := newFakeRepo()
	display := &fakeDisplay{}
	svc := newLifecycle(repo, display)

	g := activeGiveaway(repo)

	require.NoError(t, svc.EditDescription(context.Background(), g.ID, "new text"))
	assert.Empty(t, display.refreshedFor)

	require.NoError(t, repo.SetPublishMessageID(context.Background(), g.ID, 777))
	require.NoError(t, svc.EditDescription(context.Background(), g.ID, "newer text"))
	assert.Equal(t, []int64{g.ID}, display.refreshedFor)

	stored, _ := repo.GetByID(context.Background(), g.ID)
	assert.Equal(t, "newer text", stored.Description)

	// editing stays possible after the giveaway finishes
	require.NoError(t, repo.Finish(context.Background(), g.ID))
	require.NoError(t, svc.EditDescription(context.Background(), g.ID, "final text"))
	stored, _ = repo.GetByID(context.Background(), g.ID)
	assert.Equal(t, "final text", stored.Description)
}
