package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/repository"
	"giveaway-bot/internal/platform/sqlite"
)

type giveawayRepository struct {
	db *sql.DB
}

// NewGiveawayRepository returns the sqlite-backed store.
func NewGiveawayRepository(db *sqlite.DB) repository.GiveawayRepository {
	return &giveawayRepository{db: db.Conn()}
}

func (r *giveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	if giveaway.Status == "" {
		giveaway.Status = models.GiveawayStatusActive
	}
	if giveaway.CreatedAt.IsZero() {
		giveaway.CreatedAt = time.Now().UTC()
	}

	var mediaID, mediaType string
	if giveaway.Media != nil {
		mediaID = giveaway.Media.FileID
		mediaType = string(giveaway.Media.Type)
	}

	var endTime interface{}
	if giveaway.EndTime != nil {
		endTime = giveaway.EndTime.UTC()
	}

	query := `
		INSERT INTO giveaways (channel_ids, description, media_id, media_type, button_text,
			publish_channel_id, publish_message_id, end_time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		models.JoinChannelList(giveaway.RequiredChannels),
		giveaway.Description,
		mediaID,
		mediaType,
		giveaway.ButtonText,
		giveaway.PublishChannelID,
		giveaway.PublishMessageID,
		endTime,
		giveaway.Status,
		giveaway.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create giveaway: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get giveaway id: %w", err)
	}
	giveaway.ID = id
	return nil
}

const giveawayColumns = `id, channel_ids, description, media_id, media_type, button_text,
	publish_channel_id, publish_message_id, end_time, status, created_at`

func scanGiveaway(row interface{ Scan(...interface{}) error }) (*models.Giveaway, error) {
	var (
		g         models.Giveaway
		channels  string
		mediaID   string
		mediaType string
		endTime   sql.NullTime
	)
	err := row.Scan(
		&g.ID,
		&channels,
		&g.Description,
		&mediaID,
		&mediaType,
		&g.ButtonText,
		&g.PublishChannelID,
		&g.PublishMessageID,
		&endTime,
		&g.Status,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.RequiredChannels = models.ParseChannelList(channels)
	if mediaID != "" {
		g.Media = &models.MediaRef{FileID: mediaID, Type: models.MediaType(mediaType)}
	}
	if endTime.Valid {
		t := endTime.Time
		g.EndTime = &t
	}
	return &g, nil
}

func (r *giveawayRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+giveawayColumns+` FROM giveaways WHERE id = ?`, id)
	g, err := scanGiveaway(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrGiveawayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	return g, nil
}

func (r *giveawayRepository) GetActive(ctx context.Context) ([]*models.Giveaway, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+giveawayColumns+` FROM giveaways WHERE status = ? ORDER BY id`,
		models.GiveawayStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active giveaways: %w", err)
	}
	defer rows.Close()

	var giveaways []*models.Giveaway
	for rows.Next() {
		g, err := scanGiveaway(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan giveaway: %w", err)
		}
		giveaways = append(giveaways, g)
	}
	return giveaways, rows.Err()
}

func (r *giveawayRepository) SetPublishMessageID(ctx context.Context, id, messageID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE giveaways SET publish_message_id = ? WHERE id = ?`, messageID, id)
	if err != nil {
		return fmt.Errorf("failed to set publish message id: %w", err)
	}
	return requireRow(result, repository.ErrGiveawayNotFound)
}

func (r *giveawayRepository) UpdateDescription(ctx context.Context, id int64, description string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE giveaways SET description = ? WHERE id = ?`, description, id)
	if err != nil {
		return fmt.Errorf("failed to update description: %w", err)
	}
	return requireRow(result, repository.ErrGiveawayNotFound)
}

func (r *giveawayRepository) Finish(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE giveaways SET status = ? WHERE id = ? AND status = ?`,
		models.GiveawayStatusFinished, id, models.GiveawayStatusActive)
	if err != nil {
		return fmt.Errorf("failed to finish giveaway: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM giveaways WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return repository.ErrGiveawayNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check giveaway: %w", err)
	}
	return repository.ErrGiveawayFinished
}

func (r *giveawayRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE giveaway_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM giveaways WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete giveaway: %w", err)
	}
	if err := requireRow(result, repository.ErrGiveawayNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *giveawayRepository) AddParticipant(ctx context.Context, giveawayID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO participants (user_id, giveaway_id, joined_at) VALUES (?, ?, ?)`,
		userID, giveawayID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to add participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *giveawayRepository) CountParticipants(ctx context.Context, giveawayID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE giveaway_id = ?`, giveawayID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *giveawayRepository) GetParticipants(ctx context.Context, giveawayID int64) ([]*models.User, error) {
	return r.queryUsers(ctx, `
		SELECT u.id, u.username, u.full_name, u.joined_at
		FROM users u JOIN participants p ON p.user_id = u.id
		WHERE p.giveaway_id = ?
		ORDER BY p.joined_at, u.id
	`, giveawayID)
}

func (r *giveawayRepository) IsParticipant(ctx context.Context, giveawayID, userID int64) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM participants WHERE giveaway_id = ? AND user_id = ?`,
		giveawayID, userID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return true, nil
}

func (r *giveawayRepository) MarkWinner(ctx context.Context, giveawayID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE participants SET is_winner = 1 WHERE giveaway_id = ? AND user_id = ? AND is_winner = 0`,
		giveawayID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark winner: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	joined, err := r.IsParticipant(ctx, giveawayID, userID)
	if err != nil {
		return false, err
	}
	if !joined {
		return false, repository.ErrParticipantNotFound
	}
	return false, nil
}

func (r *giveawayRepository) GetWinners(ctx context.Context, giveawayID int64) ([]*models.User, error) {
	return r.queryUsers(ctx, `
		SELECT u.id, u.username, u.full_name, u.joined_at
		FROM users u JOIN participants p ON p.user_id = u.id
		WHERE p.giveaway_id = ? AND p.is_winner = 1
		ORDER BY p.joined_at, u.id
	`, giveawayID)
}

func (r *giveawayRepository) UpsertUser(ctx context.Context, user *models.User) error {
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, full_name, joined_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, full_name = excluded.full_name
	`, user.ID, user.Username, user.FullName, user.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *giveawayRepository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return r.queryUser(ctx, `SELECT id, username, full_name, joined_at FROM users WHERE id = ?`, userID)
}

func (r *giveawayRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	// admins type usernames from memory, Telegram usernames are
	// case-insensitive
	return r.queryUser(ctx,
		`SELECT id, username, full_name, joined_at FROM users WHERE username = ? COLLATE NOCASE ORDER BY joined_at DESC LIMIT 1`,
		username)
}

func (r *giveawayRepository) queryUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.FullName, &user.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *giveawayRepository) queryUsers(ctx context.Context, query string, giveawayID int64) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.FullName, &user.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func requireRow(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}
