package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	chrepository "giveaway-bot/internal/features/channel/repository"
	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/repository"
	"giveaway-bot/internal/features/giveaway/service"
	"giveaway-bot/internal/platform/telegram"
)

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil || msg.Chat.Type != "private" {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/start"):
		return b.handleStart(ctx, msg)
	case text == "/cancel":
		return b.handleCancel(ctx, msg)
	}

	if b.isAdmin(msg.From.ID) {
		return b.handleAdminInput(ctx, msg)
	}
	return nil
}

func (b *Bot) handleStart(ctx context.Context, msg *telegram.Message) error {
	user := userFromTg(*msg.From)
	if err := b.giveaways.UpsertUser(ctx, user); err != nil {
		return err
	}

	payload := strings.TrimSpace(strings.TrimPrefix(msg.Text, "/start"))
	if strings.HasPrefix(payload, "result_") {
		if id, ok := parseID(payload, "result_"); ok {
			return b.sendResults(ctx, msg.Chat.ID, id)
		}
	}

	if b.isAdmin(msg.From.ID) {
		return b.sendText(ctx, msg.Chat.ID, "🪐 Hello, admin! Ready to run giveaways?", adminMenuKeyboard())
	}
	return b.sendText(ctx, msg.Chat.ID,
		"👋 <b>Hi there!</b> 🌌\n\nI run giveaways. Watch the channels and tap the participation buttons!\nGood luck! 🍀", nil)
}

// sendResults renders the public results summary behind the deep link.
func (b *Bot) sendResults(ctx context.Context, chatID, giveawayID int64) error {
	giveaway, err := b.giveaways.GetByID(ctx, giveawayID)
	if errors.Is(err, repository.ErrGiveawayNotFound) {
		return b.sendText(ctx, chatID, "Giveaway not found.", nil)
	}
	if err != nil {
		return err
	}

	count, err := b.giveaways.CountParticipants(ctx, giveawayID)
	if err != nil {
		return err
	}
	winners, err := b.giveaways.GetWinners(ctx, giveawayID)
	if err != nil {
		return err
	}

	winnersText := "Winners are not selected yet."
	if len(winners) > 0 {
		lines := make([]string, 0, len(winners))
		for _, w := range winners {
			lines = append(lines, "🥇 "+w.DisplayName())
		}
		winnersText = "Winners:\n" + strings.Join(lines, "\n")
	}

	text := fmt.Sprintf(
		"📊 <b>GIVEAWAY #%d RESULTS</b>\n\n👥 Total participants: %d\n🏆 <b>%s</b>\n\n🔒 <i>All winners were drawn at random.</i>",
		giveaway.ID, count, winnersText)
	return b.sendText(ctx, chatID, text, nil)
}

func (b *Bot) handleCancel(ctx context.Context, msg *telegram.Message) error {
	b.sessions.reset(msg.From.ID)
	if b.isAdmin(msg.From.ID) {
		return b.sendText(ctx, msg.Chat.ID, "❌ Cancelled.", adminMenuKeyboard())
	}
	return nil
}

// handleAdminInput advances whatever multi-message flow the admin is
// in. Idle text is ignored.
func (b *Bot) handleAdminInput(ctx context.Context, msg *telegram.Message) error {
	session := b.sessions.get(msg.From.ID)
	switch session.Step {
	case stepAwaitMedia:
		return b.stepMedia(ctx, msg, session)
	case stepAwaitDescription:
		return b.stepDescription(ctx, msg, session)
	case stepAwaitChannels:
		return b.stepChannels(ctx, msg, session)
	case stepAwaitButtonText:
		return b.stepButtonText(ctx, msg, session)
	case stepAwaitPublishChannel:
		return b.stepPublishChannel(ctx, msg, session)
	case stepAwaitNewDescription:
		return b.stepNewDescription(ctx, msg, session)
	case stepAwaitWinnerUsername:
		return b.stepWinnerUsername(ctx, msg, session)
	}
	return nil
}

func (b *Bot) stepMedia(ctx context.Context, msg *telegram.Message, session *adminSession) error {
	switch {
	case len(msg.Photo) > 0:
		// the last size is the largest
		session.Draft.Media = &models.MediaRef{
			FileID: msg.Photo[len(msg.Photo)-1].FileID,
			Type:   models.MediaTypePhoto,
		}
	case msg.Video != nil:
		session.Draft.Media = &models.MediaRef{
			FileID: msg.Video.FileID,
			Type:   models.MediaTypeVideo,
		}
	case strings.EqualFold(strings.TrimSpace(msg.Text), "skip"):
		session.Draft.Media = nil
	default:
		return b.sendText(ctx, msg.Chat.ID, "❌ Send a photo, a video, or the word 'skip'.", nil)
	}

	session.Step = stepAwaitDescription
	return b.sendText(ctx, msg.Chat.ID, "📝 Now write the post text (HTML supported):", nil)
}

func (b *Bot) stepDescription(ctx context.Context, msg *telegram.Message, session *adminSession) error {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if strings.TrimSpace(text) == "" {
		return b.sendText(ctx, msg.Chat.ID, "❌ The post text cannot be empty.", nil)
	}

	session.Draft.Description = text
	session.Step = stepAwaitChannels
	return b.sendText(ctx, msg.Chat.ID,
		"🔗 Send the required channels (IDs or @usernames), separated by spaces or commas:\nExample: @channel1 @channel2", nil)
}

func (b *Bot) stepChannels(ctx context.Context, msg *telegram.Message, session *adminSession) error {
	tokens := strings.FieldsFunc(msg.Text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n'
	})

	var (
		valid  []models.ChannelRef
		failed []string
	)
	for _, token := range tokens {
		ref := models.ParseChannelRef(token)
		if ref.IsZero() {
			continue
		}

		chat, err := b.api.GetChat(ctx, ref.String())
		if err != nil {
			failed = append(failed, token+" (not found)")
			continue
		}
		if _, err := b.channels.Get(ctx, chat.ID); errors.Is(err, chrepository.ErrChannelNotFound) {
			failed = append(failed, token+" (bot is not admin)")
			continue
		} else if err != nil {
			return err
		}
		valid = append(valid, models.ChannelRef{ID: chat.ID})
	}

	if len(failed) > 0 {
		text := "❌ <b>Some channels have problems:</b>\n" + strings.Join(failed, "\n") +
			"\n\n1. Make sure the bot is an admin there.\n2. Check the links.\n3. Send the list again."
		return b.sendText(ctx, msg.Chat.ID, text, nil)
	}

	session.Draft.RequiredChannels = valid
	session.Step = stepAwaitButtonText
	return b.sendText(ctx, msg.Chat.ID, "🔘 Enter the participation button text (e.g. 'I'm in! 🚀'):", nil)
}

func (b *Bot) stepButtonText(ctx context.Context, msg *telegram.Message, session *adminSession) error {
	if strings.TrimSpace(msg.Text) == "" {
		return b.sendText(ctx, msg.Chat.ID, "❌ The button text cannot be empty.", nil)
	}
	session.Draft.ButtonText = strings.TrimSpace(msg.Text)
	session.Step = stepAwaitPublishChannel

	channels, err := b.channels.List(ctx)
	if err != nil {
		return err
	}
	var markup *telegram.InlineKeyboardMarkup
	if len(channels) > 0 {
		markup = publishChannelsKeyboard(channels)
	}
	return b.sendText(ctx, msg.Chat.ID, "📢 Pick the channel to publish in (or send its id):", markup)
}

func (b *Bot) stepPublishChannel(ctx context.Context, msg *telegram.Message, session *adminSession) error {
	ref := models.ParseChannelRef(msg.Text)
	if ref.IsZero() {
		return b.sendText(ctx, msg.Chat.ID, "❌ Send a channel id or @username.", nil)
	}
	chat, err := b.api.GetChat(ctx, ref.String())
	if err != nil {
		return b.sendText(ctx, msg.Chat.ID,
			"❌ Cannot find that channel or no access. Check the bot's admin rights.", nil)
	}
	return b.setPublishChannel(ctx, msg.Chat.ID, session, chat.ID)
}

// setPublishChannel completes the draft and shows the preview.
func (b *Bot) setPublishChannel(ctx context.Context, chatID int64, session *adminSession, channelID int64) error {
	session.Draft.PublishChannelID = channelID
	session.Step = stepAwaitConfirm

	var channelNames []string
	for _, ref := range session.Draft.RequiredChannels {
		if chat, err := b.api.GetChat(ctx, ref.String()); err == nil {
			channelNames = append(channelNames, chat.Title)
		} else {
			channelNames = append(channelNames, ref.String())
		}
	}

	preview := fmt.Sprintf("<b>Giveaway preview:</b>\n\n%s\n\n📝 Required subscriptions:\n%s\n📢 Publish in: %d",
		session.Draft.Description, strings.Join(channelNames, "\n"), channelID)
	return b.sendText(ctx, chatID, preview, confirmKeyboard())
}

func (b *Bot) stepNewDescription(ctx context.Context, msg *telegram.Message, session *adminSession) error {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if strings.TrimSpace(text) == "" {
		return b.sendText(ctx, msg.Chat.ID, "❌ The new description cannot be empty.", nil)
	}

	giveawayID := session.EditGiveawayID
	b.sessions.reset(msg.From.ID)
	if err := b.giveaways.EditDescription(ctx, giveawayID, text); err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return b.sendText(ctx, msg.Chat.ID, "❌ That giveaway no longer exists.", adminMenuKeyboard())
		}
		return err
	}
	return b.sendText(ctx, msg.Chat.ID, "✅ Description updated!", adminMenuKeyboard())
}

func (b *Bot) stepWinnerUsername(ctx context.Context, msg *telegram.Message, session *adminSession) error {
	username := strings.TrimPrefix(strings.TrimSpace(msg.Text), "@")
	giveawayID := session.PickGiveawayID

	winner, err := b.selector.SelectSpecificByUsername(ctx, giveawayID, username)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrUserNotFound):
		return b.sendText(ctx, msg.Chat.ID,
			"❌ That user is unknown to this bot. Try another @username.", nil)
	case errors.Is(err, repository.ErrParticipantNotFound):
		return b.sendText(ctx, msg.Chat.ID,
			"❌ @"+username+" did not join this giveaway.", nil)
	case errors.Is(err, service.ErrCandidateNotEligible):
		return b.sendText(ctx, msg.Chat.ID,
			"❌ @"+username+" is not subscribed to the required channels. Pick someone else or ask them to subscribe.", nil)
	case errors.Is(err, service.ErrAlreadyWinner):
		return b.sendText(ctx, msg.Chat.ID, "😎 @"+username+" is already a winner.", nil)
	default:
		return err
	}

	b.sessions.reset(msg.From.ID)
	return b.sendText(ctx, msg.Chat.ID,
		"✅ Winner "+winner.DisplayName()+" added! (#"+strconv.FormatInt(giveawayID, 10)+")",
		adminMenuKeyboard())
}
