package service

import (
	"context"

	"giveaway-bot/internal/features/giveaway/models"
)

// MembershipOracle answers whether a user is present in a channel.
// The production implementation is the Telegram Bot API client.
type MembershipOracle interface {
	GetMembershipStatus(ctx context.Context, channel models.ChannelRef, userID int64) (models.MemberStatus, error)
}

// Display pushes giveaway state into the published Telegram post. All
// methods are best-effort from the caller's point of view: persistence
// never rolls back because a push failed.
type Display interface {
	// PublishPost creates the giveaway post and returns its message id.
	PublishPost(ctx context.Context, giveaway *models.Giveaway) (int64, error)

	// UpdateParticipantCount refreshes the participation button label.
	UpdateParticipantCount(ctx context.Context, giveaway *models.Giveaway, count int64) error

	// RefreshDescription rewrites the post body after an edit. The
	// participant count keeps the button label accurate.
	RefreshDescription(ctx context.Context, giveaway *models.Giveaway, count int64) error

	// PublishResults announces the winners in the publish channel.
	PublishResults(ctx context.Context, giveaway *models.Giveaway, winners []*models.User) error

	// SealPost swaps the participation button for the results link.
	SealPost(ctx context.Context, giveaway *models.Giveaway) error

	// RemovePost deletes the giveaway post.
	RemovePost(ctx context.Context, giveaway *models.Giveaway) error
}
