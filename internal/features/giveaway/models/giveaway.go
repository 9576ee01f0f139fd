package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyDescription  = errors.New("giveaway description cannot be empty")
	ErrEmptyButtonText   = errors.New("participation button text cannot be empty")
	ErrNoPublishChannel  = errors.New("giveaway has no publish channel")
	ErrAlreadyPublished  = errors.New("giveaway is already published")
	ErrGiveawayFinished  = errors.New("giveaway is already finished")
	ErrNoWinnersSelected = errors.New("giveaway has no winners selected")
)

// GiveawayStatus represents the lifecycle status of a giveaway.
// Transitions are one-directional: active -> finished.
type GiveawayStatus string

const (
	GiveawayStatusActive   GiveawayStatus = "active"
	GiveawayStatusFinished GiveawayStatus = "finished"
)

// MediaType is the kind of media attached to a giveaway post.
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// MediaRef points at a media file already uploaded to Telegram.
type MediaRef struct {
	FileID string    `json:"file_id"`
	Type   MediaType `json:"type"`
}

// Giveaway represents a single promotional campaign.
//
// PublishMessageID is zero until the post has actually been published.
// EndTime is informational only; no component transitions a giveaway
// automatically when it passes.
type Giveaway struct {
	ID               int64          `json:"id"`
	RequiredChannels []ChannelRef   `json:"required_channels"`
	Description      string         `json:"description"`
	Media            *MediaRef      `json:"media,omitempty"`
	ButtonText       string         `json:"button_text"`
	PublishChannelID int64          `json:"publish_channel_id"`
	PublishMessageID int64          `json:"publish_message_id,omitempty"`
	EndTime          *time.Time     `json:"end_time,omitempty"`
	Status           GiveawayStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
}

// IsActive reports whether the giveaway still accepts participants.
func (g *Giveaway) IsActive() bool {
	return g.Status == GiveawayStatusActive
}

// IsPublished reports whether the giveaway post exists in the publish
// channel.
func (g *Giveaway) IsPublished() bool {
	return g.PublishChannelID != 0 && g.PublishMessageID != 0
}

// GiveawayDraft is the fully-assembled input produced by the
// conversational creation flow.
type GiveawayDraft struct {
	Description      string       `json:"description"`
	RequiredChannels []ChannelRef `json:"required_channels"`
	Media            *MediaRef    `json:"media,omitempty"`
	ButtonText       string       `json:"button_text"`
	PublishChannelID int64        `json:"publish_channel_id"`
	EndTime          *time.Time   `json:"end_time,omitempty"`
}

// Validate checks the draft fields an admin must always supply.
func (d *GiveawayDraft) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(d.ButtonText) == "" {
		return ErrEmptyButtonText
	}
	if d.PublishChannelID == 0 {
		return ErrNoPublishChannel
	}
	return nil
}
