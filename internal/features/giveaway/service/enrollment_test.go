package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot/internal/features/giveaway/models"
)

func newEnrollment(repo *fakeRepo, oracle *fakeOracle) *EnrollmentService {
	return NewEnrollmentService(repo, NewGate(NewVerifier(oracle)))
}

func TestJoinEnrollsEligibleUser(t *testing.T) {
	repo := newFakeRepo()
	oracle := newFakeOracle()
	channel := models.ChannelRef{Username: "news"}
	oracle.set(channel, 1, models.MemberStatusMember)

	g := activeGiveaway(repo, channel)
	svc := newEnrollment(repo, oracle)

	result, err := svc.Join(context.Background(), g.ID, &models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, JoinEnrolled, result.Status)

	joined, _ := repo.IsParticipant(context.Background(), g.ID, 1)
	assert.True(t, joined)
}

func TestJoinSecondTapIsAlreadyEnrolled(t *testing.T) {
	repo := newFakeRepo()
	oracle := newFakeOracle()
	channel := models.ChannelRef{Username: "news"}
	oracle.set(channel, 1, models.MemberStatusMember)

	g := activeGiveaway(repo, channel)
	svc := newEnrollment(repo, oracle)
	user := &models.User{ID: 1, Username: "alice"}

	_, err := svc.Join(context.Background(), g.ID, user)
	require.NoError(t, err)

	result, err := svc.Join(context.Background(), g.ID, user)
	require.NoError(t, err)
	assert.Equal(t, JoinAlreadyEnrolled, result.Status)

	count, _ := repo.CountParticipants(context.Background(), g.ID)
	assert.EqualValues(t, 1, count)
}

func TestJoinNotEligibleReportsMissingChannels(t *testing.T) {
	repo := newFakeRepo()
	oracle := newFakeOracle()
	subscribed := models.ChannelRef{Username: "news"}
	missing := models.ChannelRef{Username: "extra"}
	oracle.set(subscribed, 1, models.MemberStatusMember)

	g := activeGiveaway(repo, subscribed, missing)
	svc := newEnrollment(repo, oracle)

	result, err := svc.Join(context.Background(), g.ID, &models.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, JoinNotEligible, result.Status)
	assert.Equal(t, []models.ChannelRef{missing}, result.Missing)

	joined, _ := repo.IsParticipant(context.Background(), g.ID, 1)
	assert.False(t, joined)
}

func TestJoinInactiveAndMissingGiveaway(t *testing.T) {
	repo := newFakeRepo()
	oracle := newFakeOracle()
	g := activeGiveaway(repo)
	require.NoError(t, repo.Finish(context.Background(), g.ID))

	svc := newEnrollment(repo, oracle)

	result, err := svc.Join(context.Background(), g.ID, &models.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, JoinGiveawayInactive, result.Status)

	result, err = svc.Join(context.Background(), 404, &models.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, JoinGiveawayNotFound, result.Status)
}

func TestJoinUpsertsProfileEvenWhenRejected(t *testing.T) {
	repo := newFakeRepo()
	oracle := newFakeOracle()
	channel := models.ChannelRef{Username: "news"}

	g := activeGiveaway(repo, channel)
	svc := newEnrollment(repo, oracle)

	_, err := svc.Join(context.Background(), g.ID, &models.User{ID: 1, Username: "alice", FullName: "Alice"})
	require.NoError(t, err)

	user, err := repo.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestJoinConcurrentTapsEnrollOnce(t *testing.T) {
	repo := newFakeRepo()
	oracle := newFakeOracle()
	channel := models.ChannelRef{Username: "news"}
	oracle.set(channel, 1, models.MemberStatusMember)

	g := activeGiveaway(repo, channel)
	svc := newEnrollment(repo, oracle)

	const taps = 16
	results := make([]JoinResult, taps)
	var wg sync.WaitGroup
	for i := 0; i < taps; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.Join(context.Background(), g.ID, &models.User{ID: 1, Username: "alice"})
			require.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	enrolled := 0
	for _, r := range results {
		if r.Status == JoinEnrolled {
			enrolled++
		}
	}
	assert.Equal(t, 1, enrolled)

	count, _ := repo.CountParticipants(context.Background(), g.ID)
	assert.EqualValues(t, 1, count)
}
