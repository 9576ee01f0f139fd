package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/repository"
)

const (
	keyPrefixGiveaway = "giveaway:"
	keyPrefixUser     = "user:"
	keyActive         = "giveaways:active"
	keyIDSeq          = "giveaways:id_seq"
	keyUsersByName    = "users:by_username"
)

type redisRepository struct {
	client *redis.Client
}

// NewGiveawayRepository returns the redis-backed store.
func NewGiveawayRepository(client *redis.Client) repository.GiveawayRepository {
	return &redisRepository{client: client}
}

func makeGiveawayKey(id int64) string {
	return keyPrefixGiveaway + strconv.FormatInt(id, 10)
}

func makeParticipantsKey(id int64) string {
	return makeGiveawayKey(id) + ":participants"
}

func makeWinnersKey(id int64) string {
	return makeGiveawayKey(id) + ":winners"
}

func makeUserKey(id int64) string {
	return keyPrefixUser + strconv.FormatInt(id, 10)
}

func (r *redisRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	if giveaway.Status == "" {
		giveaway.Status = models.GiveawayStatusActive
	}
	if giveaway.CreatedAt.IsZero() {
		giveaway.CreatedAt = time.Now().UTC()
	}

	id, err := r.client.Incr(ctx, keyIDSeq).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate giveaway id: %w", err)
	}
	giveaway.ID = id

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, makeGiveawayKey(id), giveawayFields(giveaway))
	pipe.SAdd(ctx, keyActive, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store giveaway: %w", err)
	}
	return nil
}

func giveawayFields(g *models.Giveaway) map[string]interface{} {
	var mediaID, mediaType string
	if g.Media != nil {
		mediaID = g.Media.FileID
		mediaType = string(g.Media.Type)
	}
	var endTime string
	if g.EndTime != nil {
		endTime = g.EndTime.UTC().Format(time.RFC3339)
	}
	return map[string]interface{}{
		"channel_ids":        models.JoinChannelList(g.RequiredChannels),
		"description":        g.Description,
		"media_id":           mediaID,
		"media_type":         mediaType,
		"button_text":        g.ButtonText,
		"publish_channel_id": g.PublishChannelID,
		"publish_message_id": g.PublishMessageID,
		"end_time":           endTime,
		"status":             string(g.Status),
		"created_at":         g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func giveawayFromFields(id int64, fields map[string]string) (*models.Giveaway, error) {
	g := &models.Giveaway{
		ID:               id,
		RequiredChannels: models.ParseChannelList(fields["channel_ids"]),
		Description:      fields["description"],
		ButtonText:       fields["button_text"],
		Status:           models.GiveawayStatus(fields["status"]),
	}
	g.PublishChannelID, _ = strconv.ParseInt(fields["publish_channel_id"], 10, 64)
	g.PublishMessageID, _ = strconv.ParseInt(fields["publish_message_id"], 10, 64)

	if fields["media_id"] != "" {
		g.Media = &models.MediaRef{
			FileID: fields["media_id"],
			Type:   models.MediaType(fields["media_type"]),
		}
	}
	if fields["end_time"] != "" {
		t, err := time.Parse(time.RFC3339, fields["end_time"])
		if err != nil {
			return nil, fmt.Errorf("failed to parse end_time: %w", err)
		}
		g.EndTime = &t
	}
	if fields["created_at"] != "" {
		t, err := time.Parse(time.RFC3339, fields["created_at"])
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		g.CreatedAt = t
	}
	return g, nil
}

func (r *redisRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	fields, err := r.client.HGetAll(ctx, makeGiveawayKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	if len(fields) == 0 {
		return nil, repository.ErrGiveawayNotFound
	}
	return giveawayFromFields(id, fields)
}

func (r *redisRepository) GetActive(ctx context.Context) ([]*models.Giveaway, error) {
	ids, err := r.client.SMembers(ctx, keyActive).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active giveaways: %w", err)
	}

	giveaways := make([]*models.Giveaway, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		g, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			// stale index entry
			r.client.SRem(ctx, keyActive, raw)
			continue
		}
		if err != nil {
			return nil, err
		}
		giveaways = append(giveaways, g)
	}
	sort.Slice(giveaways, func(i, j int) bool { return giveaways[i].ID < giveaways[j].ID })
	return giveaways, nil
}

func (r *redisRepository) SetPublishMessageID(ctx context.Context, id, messageID int64) error {
	return r.setField(ctx, id, "publish_message_id", messageID)
}

func (r *redisRepository) UpdateDescription(ctx context.Context, id int64, description string) error {
	return r.setField(ctx, id, "description", description)
}

func (r *redisRepository) setField(ctx context.Context, id int64, field string, value interface{}) error {
	exists, err := r.client.Exists(ctx, makeGiveawayKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check giveaway: %w", err)
	}
	if exists == 0 {
		return repository.ErrGiveawayNotFound
	}
	if err := r.client.HSet(ctx, makeGiveawayKey(id), field, value).Err(); err != nil {
		return fmt.Errorf("failed to update giveaway: %w", err)
	}
	return nil
}

// finishScript flips status active -> finished and drops the giveaway
// from the active index in one atomic step.
// Returns 1 on transition, 0 if already finished, -1 if missing.
var finishScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 0 then
		return -1
	end
	if redis.call("HGET", KEYS[1], "status") ~= "active" then
		return 0
	end
	redis.call("HSET", KEYS[1], "status", "finished")
	redis.call("SREM", KEYS[2], ARGV[1])
	return 1
`)

func (r *redisRepository) Finish(ctx context.Context, id int64) error {
	res, err := finishScript.Run(ctx, r.client,
		[]string{makeGiveawayKey(id), keyActive}, id).Int()
	if err != nil {
		return fmt.Errorf("failed to finish giveaway: %w", err)
	}
	switch res {
	case 1:
		return nil
	case 0:
		return repository.ErrGiveawayFinished
	default:
		return repository.ErrGiveawayNotFound
	}
}

func (r *redisRepository) Delete(ctx context.Context, id int64) error {
	exists, err := r.client.Exists(ctx, makeGiveawayKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check giveaway: %w", err)
	}
	if exists == 0 {
		return repository.ErrGiveawayNotFound
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, makeGiveawayKey(id))
	pipe.Del(ctx, makeParticipantsKey(id))
	pipe.Del(ctx, makeWinnersKey(id))
	pipe.SRem(ctx, keyActive, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete giveaway: %w", err)
	}
	return nil
}

func (r *redisRepository) AddParticipant(ctx context.Context, giveawayID, userID int64) (bool, error) {
	added, err := r.client.SAdd(ctx, makeParticipantsKey(giveawayID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add participant: %w", err)
	}
	return added > 0, nil
}

func (r *redisRepository) CountParticipants(ctx context.Context, giveawayID int64) (int64, error) {
	count, err := r.client.SCard(ctx, makeParticipantsKey(giveawayID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *redisRepository) GetParticipants(ctx context.Context, giveawayID int64) ([]*models.User, error) {
	return r.membersAsUsers(ctx, makeParticipantsKey(giveawayID))
}

func (r *redisRepository) IsParticipant(ctx context.Context, giveawayID, userID int64) (bool, error) {
	joined, err := r.client.SIsMember(ctx, makeParticipantsKey(giveawayID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return joined, nil
}

// markWinnerScript admits only existing participants into the winners
// set. Returns -1 when the user never joined, otherwise the SADD result.
var markWinnerScript = redis.NewScript(`
	if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 0 then
		return -1
	end
	return redis.call("SADD", KEYS[2], ARGV[1])
`)

func (r *redisRepository) MarkWinner(ctx context.Context, giveawayID, userID int64) (bool, error) {
	res, err := markWinnerScript.Run(ctx, r.client,
		[]string{makeParticipantsKey(giveawayID), makeWinnersKey(giveawayID)}, userID).Int()
	if err != nil {
		return false, fmt.Errorf("failed to mark winner: %w", err)
	}
	if res < 0 {
		return false, repository.ErrParticipantNotFound
	}
	return res > 0, nil
}

func (r *redisRepository) GetWinners(ctx context.Context, giveawayID int64) ([]*models.User, error) {
	return r.membersAsUsers(ctx, makeWinnersKey(giveawayID))
}

func (r *redisRepository) membersAsUsers(ctx context.Context, key string) ([]*models.User, error) {
	ids, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	userIDs := make([]int64, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	users := make([]*models.User, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := r.GetUser(ctx, id)
		if errors.Is(err, repository.ErrUserNotFound) {
			// membership without a profile; keep the id visible
			users = append(users, &models.User{ID: id})
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *redisRepository) UpsertUser(ctx context.Context, user *models.User) error {
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now().UTC()
	}

	// keep the first JoinedAt and drop a stale username index entry
	if prev, err := r.GetUser(ctx, user.ID); err == nil {
		user.JoinedAt = prev.JoinedAt
		if prev.Username != "" && !strings.EqualFold(prev.Username, user.Username) {
			if err := r.client.HDel(ctx, keyUsersByName, strings.ToLower(prev.Username)).Err(); err != nil {
				return fmt.Errorf("failed to drop username index: %w", err)
			}
		}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, makeUserKey(user.ID), data, 0)
	if user.Username != "" {
		// usernames are indexed lower-cased so lookups are
		// case-insensitive
		pipe.HSet(ctx, keyUsersByName, strings.ToLower(user.Username), user.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

func (r *redisRepository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	data, err := r.client.Get(ctx, makeUserKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func (r *redisRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	raw, err := r.client.HGet(ctx, keyUsersByName, strings.ToLower(username)).Result()
	if err == redis.Nil {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve username: %w", err)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	return r.GetUser(ctx, id)
}
