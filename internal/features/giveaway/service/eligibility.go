package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/features/giveaway/models"
)

// Verifier turns raw membership statuses into a subscribed/not answer.
type Verifier struct {
	oracle MembershipOracle
	logger zerolog.Logger
}

func NewVerifier(oracle MembershipOracle) *Verifier {
	return &Verifier{
		oracle: oracle,
		logger: log.With().Str("component", "verifier").Logger(),
	}
}

// IsSubscribed reports whether the user is present in the channel.
// An oracle failure degrades to false: a user whose status cannot be
// confirmed is treated as not subscribed, never the other way around.
func (v *Verifier) IsSubscribed(ctx context.Context, channel models.ChannelRef, userID int64) bool {
	status, err := v.oracle.GetMembershipStatus(ctx, channel, userID)
	if err != nil {
		v.logger.Warn().Err(err).
			Str("channel", channel.String()).
			Int64("user_id", userID).
			Msg("membership check failed, treating as not subscribed")
		return false
	}
	return status.IsPresent()
}

// EligibilityResult is the outcome of checking a user against every
// required channel of a giveaway.
type EligibilityResult struct {
	Eligible bool
	Missing  []models.ChannelRef
}

// Gate evaluates the full required-channel list of a giveaway.
type Gate struct {
	verifier *Verifier
}

func NewGate(verifier *Verifier) *Gate {
	return &Gate{verifier: verifier}
}

// Check verifies the user against every required channel. All channels
// are always checked so Missing is complete, not just the first gap.
// A giveaway with no required channels admits everyone.
func (g *Gate) Check(ctx context.Context, giveaway *models.Giveaway, userID int64) EligibilityResult {
	result := EligibilityResult{Eligible: true}
	for _, channel := range giveaway.RequiredChannels {
		if channel.IsZero() {
			continue
		}
		if !g.verifier.IsSubscribed(ctx, channel, userID) {
			result.Eligible = false
			result.Missing = append(result.Missing, channel)
		}
	}
	return result
}
