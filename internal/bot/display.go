package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/platform/telegram"
)

// api is the slice of the Telegram client the delivery layer uses.
type api interface {
	GetChat(ctx context.Context, chatID string) (*telegram.Chat, error)
	SendMessage(ctx context.Context, params telegram.SendMessageParams) (*telegram.Message, error)
	SendPhoto(ctx context.Context, params telegram.SendMediaParams) (*telegram.Message, error)
	SendVideo(ctx context.Context, params telegram.SendMediaParams) (*telegram.Message, error)
	EditMessageReplyMarkup(ctx context.Context, chatID, messageID int64, markup *telegram.InlineKeyboardMarkup) error
	EditMessageText(ctx context.Context, params telegram.EditTextParams) error
	EditMessageCaption(ctx context.Context, chatID, messageID int64, caption, parseMode string, markup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
}

// Display renders giveaway state into the published channel post. It
// implements service.Display.
type Display struct {
	api         api
	botUsername string
	logger      zerolog.Logger
}

func NewDisplay(api api, botUsername string) *Display {
	return &Display{
		api:         api,
		botUsername: botUsername,
		logger:      log.With().Str("component", "display").Logger(),
	}
}

// channelLine renders one required channel as a linked list entry,
// degrading to the raw ref when the chat cannot be resolved.
func (d *Display) channelLine(ctx context.Context, ref models.ChannelRef) string {
	chat, err := d.api.GetChat(ctx, ref.String())
	if err != nil {
		return "👉 Channel " + ref.String()
	}
	if chat.Username != "" {
		return fmt.Sprintf("👉 <a href=\"https://t.me/%s\">%s</a>", chat.Username, chat.Title)
	}
	return "👉 " + chat.Title
}

// postText is the full body of a giveaway post: the description plus
// the subscribe-to block.
func (d *Display) postText(ctx context.Context, giveaway *models.Giveaway) string {
	if len(giveaway.RequiredChannels) == 0 {
		return giveaway.Description
	}
	lines := make([]string, 0, len(giveaway.RequiredChannels))
	for _, ref := range giveaway.RequiredChannels {
		lines = append(lines, d.channelLine(ctx, ref))
	}
	return giveaway.Description + "\n\n📢 <b>Subscribe to:</b>\n" + strings.Join(lines, "\n")
}

// postShareURL builds the share link for an already published post.
func (d *Display) postShareURL(ctx context.Context, giveaway *models.Giveaway) string {
	chat, err := d.api.GetChat(ctx, strconv.FormatInt(giveaway.PublishChannelID, 10))
	if err != nil {
		return ""
	}
	return shareURL(postURL(chat, giveaway.PublishMessageID))
}

// PublishPost sends the giveaway into its publish channel and attaches
// the share button once the message id is known. Forwarded posts lose
// inline keyboards, so the share button carries a plain URL.
func (d *Display) PublishPost(ctx context.Context, giveaway *models.Giveaway) (int64, error) {
	text := d.postText(ctx, giveaway)
	markup := participationKeyboard(giveaway.ID, giveaway.ButtonText, 0, "")

	var (
		msg *telegram.Message
		err error
	)
	switch {
	case giveaway.Media != nil && giveaway.Media.Type == models.MediaTypePhoto:
		msg, err = d.api.SendPhoto(ctx, telegram.SendMediaParams{
			ChatID: giveaway.PublishChannelID, FileID: giveaway.Media.FileID,
			Caption: text, ParseMode: "HTML", ReplyMarkup: markup,
		})
	case giveaway.Media != nil && giveaway.Media.Type == models.MediaTypeVideo:
		msg, err = d.api.SendVideo(ctx, telegram.SendMediaParams{
			ChatID: giveaway.PublishChannelID, FileID: giveaway.Media.FileID,
			Caption: text, ParseMode: "HTML", ReplyMarkup: markup,
		})
	default:
		msg, err = d.api.SendMessage(ctx, telegram.SendMessageParams{
			ChatID: giveaway.PublishChannelID, Text: text,
			ParseMode: "HTML", DisableWebPagePreview: true, ReplyMarkup: markup,
		})
	}
	if err != nil {
		return 0, err
	}

	published := *giveaway
	published.PublishMessageID = msg.MessageID
	if share := d.postShareURL(ctx, &published); share != "" {
		markup = participationKeyboard(giveaway.ID, giveaway.ButtonText, 0, share)
		if err := d.api.EditMessageReplyMarkup(ctx, giveaway.PublishChannelID, msg.MessageID, markup); err != nil {
			d.logger.Warn().Err(err).Int64("giveaway_id", giveaway.ID).
				Msg("failed to attach share button")
		}
	}
	return msg.MessageID, nil
}

// UpdateParticipantCount rewrites the counter button label.
func (d *Display) UpdateParticipantCount(ctx context.Context, giveaway *models.Giveaway, count int64) error {
	share := d.postShareURL(ctx, giveaway)
	markup := participationKeyboard(giveaway.ID, giveaway.ButtonText, count, share)
	return d.api.EditMessageReplyMarkup(ctx, giveaway.PublishChannelID, giveaway.PublishMessageID, markup)
}

// RefreshDescription rewrites the post body after an edit. An active
// post keeps the participation keyboard, a finished one keeps the
// results link.
func (d *Display) RefreshDescription(ctx context.Context, giveaway *models.Giveaway, count int64) error {
	text := d.postText(ctx, giveaway)

	var markup *telegram.InlineKeyboardMarkup
	if giveaway.IsActive() {
		share := d.postShareURL(ctx, giveaway)
		markup = participationKeyboard(giveaway.ID, giveaway.ButtonText, count, share)
	} else {
		markup = resultsKeyboard(d.botUsername, giveaway.ID)
	}

	if giveaway.Media != nil {
		return d.api.EditMessageCaption(ctx, giveaway.PublishChannelID, giveaway.PublishMessageID,
			text, "HTML", markup)
	}
	return d.api.EditMessageText(ctx, telegram.EditTextParams{
		ChatID:      giveaway.PublishChannelID,
		MessageID:   giveaway.PublishMessageID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
}

// PublishResults announces the winners in the publish channel.
func (d *Display) PublishResults(ctx context.Context, giveaway *models.Giveaway, winners []*models.User) error {
	lines := make([]string, 0, len(winners))
	for _, w := range winners {
		lines = append(lines, "🥇 "+w.DisplayName())
	}

	headline := giveaway.Description
	if i := strings.IndexByte(headline, '\n'); i >= 0 {
		headline = headline[:i]
	}

	text := fmt.Sprintf(
		"🎉 <b>GIVEAWAY FINISHED!</b>\n\n🎁 %s\n\n🏆 <b>Winners:</b>\n%s\n\nCongratulations! 🥳",
		headline, strings.Join(lines, "\n"))

	_, err := d.api.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:    giveaway.PublishChannelID,
		Text:      text,
		ParseMode: "HTML",
	})
	return err
}

// SealPost swaps the participation keyboard for the results deep link.
func (d *Display) SealPost(ctx context.Context, giveaway *models.Giveaway) error {
	return d.api.EditMessageReplyMarkup(ctx, giveaway.PublishChannelID, giveaway.PublishMessageID,
		resultsKeyboard(d.botUsername, giveaway.ID))
}

// RemovePost deletes the giveaway post from the channel.
func (d *Display) RemovePost(ctx context.Context, giveaway *models.Giveaway) error {
	return d.api.DeleteMessage(ctx, giveaway.PublishChannelID, giveaway.PublishMessageID)
}
