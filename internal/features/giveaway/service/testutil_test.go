package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/repository"
)

// fakeRepo is an in-memory GiveawayRepository with the same atomicity
// guarantees as the real backends.
type fakeRepo struct {
	mu           sync.Mutex
	nextID       int64
	giveaways    map[int64]*models.Giveaway
	participants map[int64]map[int64]bool // giveaway -> user -> isWinner
	joinOrder    map[int64][]int64
	users        map[int64]*models.User

	failAddParticipant error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		giveaways:    make(map[int64]*models.Giveaway),
		participants: make(map[int64]map[int64]bool),
		joinOrder:    make(map[int64][]int64),
		users:        make(map[int64]*models.User),
	}
}

func (f *fakeRepo) Create(ctx context.Context, g *models.Giveaway) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	g.ID = f.nextID
	if g.Status == "" {
		g.Status = models.GiveawayStatusActive
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	copied := *g
	f.giveaways[g.ID] = &copied
	f.participants[g.ID] = make(map[int64]bool)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.giveaways[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	copied := *g
	return &copied, nil
}

func (f *fakeRepo) GetActive(ctx context.Context) ([]*models.Giveaway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Giveaway
	for id := int64(1); id <= f.nextID; id++ {
		if g, ok := f.giveaways[id]; ok && g.Status == models.GiveawayStatusActive {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetPublishMessageID(ctx context.Context, id, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.giveaways[id]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	g.PublishMessageID = messageID
	return nil
}

func (f *fakeRepo) UpdateDescription(ctx context.Context, id int64, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.giveaways[id]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	g.Description = description
	return nil
}

func (f *fakeRepo) Finish(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.giveaways[id]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	if g.Status != models.GiveawayStatusActive {
		return repository.ErrGiveawayFinished
	}
	g.Status = models.GiveawayStatusFinished
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.giveaways[id]; !ok {
		return repository.ErrGiveawayNotFound
	}
	delete(f.giveaways, id)
	delete(f.participants, id)
	delete(f.joinOrder, id)
	return nil
}

func (f *fakeRepo) AddParticipant(ctx context.Context, giveawayID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAddParticipant != nil {
		return false, f.failAddParticipant
	}
	members, ok := f.participants[giveawayID]
	if !ok {
		members = make(map[int64]bool)
		f.participants[giveawayID] = members
	}
	if _, joined := members[userID]; joined {
		return false, nil
	}
	members[userID] = false
	f.joinOrder[giveawayID] = append(f.joinOrder[giveawayID], userID)
	return true, nil
}

func (f *fakeRepo) CountParticipants(ctx context.Context, giveawayID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.participants[giveawayID])), nil
}

func (f *fakeRepo) GetParticipants(ctx context.Context, giveawayID int64) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, id := range f.joinOrder[giveawayID] {
		out = append(out, f.userLocked(id))
	}
	return out, nil
}

func (f *fakeRepo) IsParticipant(ctx context.Context, giveawayID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, joined := f.participants[giveawayID][userID]
	return joined, nil
}

func (f *fakeRepo) MarkWinner(ctx context.Context, giveawayID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := f.participants[giveawayID]
	isWinner, joined := members[userID]
	if !joined {
		return false, repository.ErrParticipantNotFound
	}
	if isWinner {
		return false, nil
	}
	members[userID] = true
	return true, nil
}

func (f *fakeRepo) GetWinners(ctx context.Context, giveawayID int64) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, id := range f.joinOrder[giveawayID] {
		if f.participants[giveawayID][id] {
			out = append(out, f.userLocked(id))
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	if prev, ok := f.users[user.ID]; ok {
		copied.JoinedAt = prev.JoinedAt
	} else if copied.JoinedAt.IsZero() {
		copied.JoinedAt = time.Now()
	}
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeRepo) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeRepo) userLocked(id int64) *models.User {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied
	}
	return &models.User{ID: id}
}

// fakeOracle serves membership statuses from a static table. Unlisted
// pairs are "left"; channels in errOn fail the call.
type fakeOracle struct {
	mu       sync.Mutex
	statuses map[string]map[int64]models.MemberStatus
	errOn    map[string]error
	calls    int
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		statuses: make(map[string]map[int64]models.MemberStatus),
		errOn:    make(map[string]error),
	}
}

func (f *fakeOracle) set(channel models.ChannelRef, userID int64, status models.MemberStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := channel.String()
	if f.statuses[key] == nil {
		f.statuses[key] = make(map[int64]models.MemberStatus)
	}
	f.statuses[key][userID] = status
}

func (f *fakeOracle) GetMembershipStatus(ctx context.Context, channel models.ChannelRef, userID int64) (models.MemberStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := channel.String()
	if err := f.errOn[key]; err != nil {
		return models.MemberStatusUnknown, err
	}
	if status, ok := f.statuses[key][userID]; ok {
		return status, nil
	}
	return models.MemberStatusLeft, nil
}

// fakeDisplay records every push so tests can assert on the sequence.
type fakeDisplay struct {
	mu sync.Mutex

	publishID      int64
	publishErr     error
	countPushes    []int64
	countErr       error
	resultsFor     []int64
	sealedFor      []int64
	removedFor     []int64
	refreshedFor   []int64
	publishedPosts []int64
}

func (f *fakeDisplay) PublishPost(ctx context.Context, g *models.Giveaway) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return 0, f.publishErr
	}
	f.publishedPosts = append(f.publishedPosts, g.ID)
	return f.publishID, nil
}

func (f *fakeDisplay) UpdateParticipantCount(ctx context.Context, g *models.Giveaway, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return f.countErr
	}
	f.countPushes = append(f.countPushes, count)
	return nil
}

func (f *fakeDisplay) RefreshDescription(ctx context.Context, g *models.Giveaway, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshedFor = append(f.refreshedFor, g.ID)
	return nil
}

func (f *fakeDisplay) PublishResults(ctx context.Context, g *models.Giveaway, winners []*models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultsFor = append(f.resultsFor, g.ID)
	return nil
}

func (f *fakeDisplay) SealPost(ctx context.Context, g *models.Giveaway) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sealedFor = append(f.sealedFor, g.ID)
	return nil
}

func (f *fakeDisplay) RemovePost(ctx context.Context, g *models.Giveaway) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedFor = append(f.removedFor, g.ID)
	return nil
}

func activeGiveaway(repo *fakeRepo, channels ...models.ChannelRef) *models.Giveaway {
	g := &models.Giveaway{
		RequiredChannels: channels,
		Description:      "test giveaway",
		ButtonText:       "Join",
		PublishChannelID: -100555,
	}
	_ = repo.Create(context.Background(), g)
	return g
}

func enroll(repo *fakeRepo, giveawayID int64, users ...*models.User) {
	ctx := context.Background()
	for _, u := range users {
		_ = repo.UpsertUser(ctx, u)
		_, _ = repo.AddParticipant(ctx, giveawayID, u.ID)
	}
}
