package repository

import (
	"context"
	"errors"

	"giveaway-bot/internal/features/giveaway/models"
)

var (
	ErrGiveawayNotFound    = errors.New("giveaway not found")
	ErrGiveawayFinished    = errors.New("giveaway is already finished")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUserNotFound        = errors.New("user not found")
)

// GiveawayRepository is the persistence contract for giveaways, their
// participants and the users the bot has seen. Two implementations
// exist, sqlite and redis, selected by configuration.
type GiveawayRepository interface {
	// Create persists the giveaway and assigns its ID.
	Create(ctx context.Context, giveaway *models.Giveaway) error
	GetByID(ctx context.Context, id int64) (*models.Giveaway, error)
	GetActive(ctx context.Context) ([]*models.Giveaway, error)

	// SetPublishMessageID records where the giveaway post landed.
	// The value is set once, right after publication.
	SetPublishMessageID(ctx context.Context, id, messageID int64) error
	UpdateDescription(ctx context.Context, id int64, description string) error

	// Finish transitions active -> finished. It returns
	// ErrGiveawayNotFound if no such giveaway exists and
	// ErrGiveawayFinished if the transition already happened, so two
	// concurrent finishes cannot both succeed.
	Finish(ctx context.Context, id int64) error

	// Delete removes the giveaway and all its participant rows.
	Delete(ctx context.Context, id int64) error

	// AddParticipant enrolls the user. The returned bool is false when
	// the user was already enrolled; a duplicate is never an error.
	AddParticipant(ctx context.Context, giveawayID, userID int64) (bool, error)
	CountParticipants(ctx context.Context, giveawayID int64) (int64, error)
	GetParticipants(ctx context.Context, giveawayID int64) ([]*models.User, error)
	IsParticipant(ctx context.Context, giveawayID, userID int64) (bool, error)

	// MarkWinner flags a participant as a winner. The returned bool is
	// false when the participant was already a winner. A user who never
	// joined yields ErrParticipantNotFound.
	MarkWinner(ctx context.Context, giveawayID, userID int64) (bool, error)
	GetWinners(ctx context.Context, giveawayID int64) ([]*models.User, error)

	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}
