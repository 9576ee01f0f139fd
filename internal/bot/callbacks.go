package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/repository"
	"giveaway-bot/internal/features/giveaway/service"
	"giveaway-bot/internal/platform/telegram"
)

func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	if strings.HasPrefix(cb.Data, cbParticipate) {
		return b.cbParticipateTap(ctx, cb)
	}

	if !b.isAdmin(cb.From.ID) {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	switch {
	case cb.Data == cbMenuCreate:
		return b.cbStartCreation(ctx, cb)
	case cb.Data == cbMenuList, cb.Data == cbBackList:
		return b.cbGiveawayList(ctx, cb, cbViewGiveaway, "📋 Pick a giveaway to inspect:")
	case cb.Data == cbMenuParts, cb.Data == cbBackParts:
		return b.cbGiveawayList(ctx, cb, cbParticipants, "👥 Pick a giveaway to see participants and choose winners:")
	case cb.Data == cbMenuManage, cb.Data == cbBackManage:
		return b.cbGiveawayList(ctx, cb, cbManage, "⚙️ Pick a giveaway to edit or delete:")
	case cb.Data == cbPublishConfirm:
		return b.cbPublishConfirm(ctx, cb)
	case cb.Data == cbPublishCancel:
		return b.cbPublishCancel(ctx, cb)
	case strings.HasPrefix(cb.Data, cbViewGiveaway):
		return b.cbViewInfo(ctx, cb)
	case strings.HasPrefix(cb.Data, cbParticipants):
		return b.cbParticipantsMenu(ctx, cb)
	case strings.HasPrefix(cb.Data, cbPickWinner):
		return b.cbPickSpecific(ctx, cb)
	case strings.HasPrefix(cb.Data, cbPickRandom):
		return b.cbPickRandom(ctx, cb)
	case strings.HasPrefix(cb.Data, cbPickByUsername):
		return b.cbPickByUsername(ctx, cb)
	case strings.HasPrefix(cb.Data, cbFinish):
		return b.cbFinishGiveaway(ctx, cb)
	case strings.HasPrefix(cb.Data, cbManage):
		return b.cbManageGiveaway(ctx, cb)
	case strings.HasPrefix(cb.Data, cbEditDesc):
		return b.cbEditDescription(ctx, cb)
	case strings.HasPrefix(cb.Data, cbDelete):
		return b.cbDeleteGiveaway(ctx, cb)
	case strings.HasPrefix(cb.Data, cbPublishChannel):
		return b.cbChoosePublishChannel(ctx, cb)
	}
	return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
}

// cbParticipateTap is the public entry point: a user tapped the
// participation button under a giveaway post.
func (b *Bot) cbParticipateTap(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, ok := parseID(cb.Data, cbParticipate)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	if err := b.pace(ctx); err != nil {
		return err
	}

	result, err := b.enrollment.Join(ctx, giveawayID, userFromTg(cb.From))
	if err != nil {
		b.logger.Error().Err(err).Int64("giveaway_id", giveawayID).
			Int64("user_id", cb.From.ID).Msg("join failed")
		return b.api.AnswerCallbackQuery(ctx, cb.ID,
			"❌ Something went wrong. Please try again later.", true)
	}

	switch result.Status {
	case service.JoinEnrolled:
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "✅ You are in! Wait for the results. 🍀", true)
	case service.JoinAlreadyEnrolled:
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "😎 You are already in!", true)
	case service.JoinNotEligible:
		return b.api.AnswerCallbackQuery(ctx, cb.ID, b.missingChannelsText(ctx, result.Missing), true)
	default:
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "⏳ The giveaway is over or does not exist.", true)
	}
}

func (b *Bot) cbStartCreation(ctx context.Context, cb *telegram.CallbackQuery) error {
	session := b.sessions.get(cb.From.ID)
	*session = adminSession{Step: stepAwaitMedia}

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return b.sendText(ctx, cb.From.ID,
		"📸 Send a photo or video for the post (or write 'skip' for text only):", nil)
}

// cbGiveawayList renders the active giveaways as a button list. Each
// menu entry shares this view, differing only in the action prefix.
func (b *Bot) cbGiveawayList(ctx context.Context, cb *telegram.CallbackQuery, prefix, title string) error {
	giveaways, err := b.giveaways.GetActive(ctx)
	if err != nil {
		return err
	}
	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	if len(giveaways) == 0 {
		return b.sendText(ctx, cb.From.ID, "📭 No active giveaways.", adminMenuKeyboard())
	}

	counts := make(map[int64]int64, len(giveaways))
	for _, g := range giveaways {
		count, err := b.giveaways.CountParticipants(ctx, g.ID)
		if err != nil {
			return err
		}
		counts[g.ID] = count
	}
	return b.sendText(ctx, cb.From.ID, title, giveawayListKeyboard(giveaways, counts, prefix))
}

func (b *Bot) cbViewInfo(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, ok := parseID(cb.Data, cbViewGiveaway)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	giveaway, err := b.giveaways.GetByID(ctx, giveawayID)
	if errors.Is(err, repository.ErrGiveawayNotFound) {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "Giveaway not found", true)
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

	text := fmt.Sprintf(
		"🎁 <b>Giveaway #%d</b>\n📄 Description: %s\n📢 Publish channel: %d\n👥 Participants: %d\n🏆 Winners selected: %d\n🏁 Status: %s",
		giveaway.ID, giveaway.Description, giveaway.PublishChannelID, count, len(winners), giveaway.Status)

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	back := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "🔙 Back", CallbackData: cbBackList},
	}}}
	return b.editOrSend(ctx, cb, text, back)
}

func (b *Bot) cbParticipantsMenu(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, ok := parseID(cb.Data, cbParticipants)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}
	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return b.showParticipantsMenu(ctx, cb, giveawayID)
}

func (b *Bot) showParticipantsMenu(ctx context.Context, cb *telegram.CallbackQuery, giveawayID int64) error {
	participants, err := b.giveaways.GetParticipants(ctx, giveawayID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(
		"👥 <b>Giveaway #%d participants (%d):</b>\n\n👇 Tap a participant to make them a winner, or draw a random one.",
		giveawayID, len(participants))
	return b.editOrSend(ctx, cb, text, participantsKeyboard(giveawayID, participants))
}

func (b *Bot) cbPickSpecific(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, userID, ok := parsePickWinner(cb.Data)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	winner, err := b.selector.SelectSpecific(ctx, giveawayID, userID)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrAlreadyWinner):
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "😎 Already a winner!", true)
	case errors.Is(err, repository.ErrParticipantNotFound):
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "❌ Not a participant.", true)
	default:
		return err
	}

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "🏆 "+winner.DisplayName()+" is a winner!", true); err != nil {
		return err
	}
	return b.showParticipantsMenu(ctx, cb, giveawayID)
}

func (b *Bot) cbPickRandom(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, ok := parseID(cb.Data, cbPickRandom)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	winner, err := b.selector.SelectRandom(ctx, giveawayID)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNoEligibleCandidate):
		return b.api.AnswerCallbackQuery(ctx, cb.ID,
			"🤷 Nobody left to draw (or everyone unsubscribed).", true)
	case errors.Is(err, repository.ErrGiveawayNotFound):
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "Giveaway not found", true)
	default:
		return err
	}

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "🎲 Random winner: "+winner.DisplayName(), true); err != nil {
		return err
	}
	return b.showParticipantsMenu(ctx, cb, giveawayID)
}

func (b *Bot) cbPickByUsername(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, ok := parseID(cb.Data, cbPickByUsername)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	session := b.sessions.get(cb.From.ID)
	*session = adminSession{Step: stepAwaitWinnerUsername, PickGiveawayID: giveawayID}

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return b.sendText(ctx, cb.From.ID,
		"🔎 Send the @username of the participant to make a winner.\nOr /cancel to abort.", nil)
}

func (b *Bot) cbFinishGiveaway(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, ok := parseID(cb.Data, cbFinish)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	giveaway, err := b.giveaways.Finish(ctx, giveawayID)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNoWinnersSelected):
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "❌ Select the winners first!", true)
	case errors.Is(err, models.ErrGiveawayFinished):
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "⏳ Already finished.", true)
	case errors.Is(err, repository.ErrGiveawayNotFound):
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "Giveaway not found", true)
	default:
		return err
	}

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "✅ Results published!", true); err != nil {
		return err
	}
	return b.editOrSend(ctx, cb,
		fmt.Sprintf("✅ Giveaway #%d finished and announced.", giveaway.ID), nil)
}

func (b *Bot) cbManageGiveaway(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, ok := parseID(cb.Data, cbManage)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}
	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return b.editOrSend(ctx, cb,
		fmt.Sprintf("⚙️ Managing giveaway #%d", giveawayID), manageKeyboard(giveawayID))
}

func (b *Bot) cbEditDescription(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, ok := parseID(cb.Data, cbEditDesc)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	session := b.sessions.get(cb.From.ID)
	*session = adminSession{Step: stepAwaitNewDescription, EditGiveawayID: giveawayID}

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return b.sendText(ctx, cb.From.ID,
		"✏️ Send the new description (HTML supported).\nOr /cancel to abort.", nil)
}

func (b *Bot) cbDeleteGiveaway(ctx context.Context, cb *telegram.CallbackQuery) error {
	giveawayID, ok := parseID(cb.Data, cbDelete)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	if err := b.giveaways.Delete(ctx, giveawayID); err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return b.api.AnswerCallbackQuery(ctx, cb.ID, "Giveaway not found", true)
		}
		return err
	}
	return b.api.AnswerCallbackQuery(ctx, cb.ID, "✅ Giveaway deleted.", true)
}

// cbChoosePublishChannel handles the publish-target buttons shown
// during creation.
func (b *Bot) cbChoosePublishChannel(ctx context.Context, cb *telegram.CallbackQuery) error {
	channelID, ok := parseID(cb.Data, cbPublishChannel)
	if !ok {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}

	session := b.sessions.get(cb.From.ID)
	if session.Step != stepAwaitPublishChannel {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}
	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return b.setPublishChannel(ctx, cb.From.ID, session, channelID)
}

func (b *Bot) cbPublishConfirm(ctx context.Context, cb *telegram.CallbackQuery) error {
	session := b.sessions.get(cb.From.ID)
	if session.Step != stepAwaitConfirm {
		return b.api.AnswerCallbackQuery(ctx, cb.ID, "", false)
	}
	draft := session.Draft
	b.sessions.reset(cb.From.ID)

	giveaway, err := b.giveaways.Create(ctx, &draft)
	if err != nil {
		return err
	}
	if _, err := b.giveaways.Publish(ctx, giveaway.ID); err != nil {
		if answerErr := b.api.AnswerCallbackQuery(ctx, cb.ID, "⚠️ Publication failed: "+err.Error(), true); answerErr != nil {
			return answerErr
		}
		return nil
	}

	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return b.sendText(ctx, cb.From.ID,
		fmt.Sprintf("✅ Giveaway #%d published!\n(A share button was added for easy reposting)", giveaway.ID),
		adminMenuKeyboard())
}

func (b *Bot) cbPublishCancel(ctx context.Context, cb *telegram.CallbackQuery) error {
	b.sessions.reset(cb.From.ID)
	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return b.sendText(ctx, cb.From.ID, "❌ Creation cancelled.", adminMenuKeyboard())
}

// editOrSend edits the menu message in place, falling back to a fresh
// message when the original cannot be edited.
func (b *Bot) editOrSend(ctx context.Context, cb *telegram.CallbackQuery, text string, markup *telegram.InlineKeyboardMarkup) error {
	if cb.Message != nil {
		err := b.api.EditMessageText(ctx, telegram.EditTextParams{
			ChatID:      cb.Message.Chat.ID,
			MessageID:   cb.Message.MessageID,
			Text:        text,
			ParseMode:   "HTML",
			ReplyMarkup: markup,
		})
		if err == nil {
			return nil
		}
	}
	return b.sendText(ctx, cb.From.ID, text, markup)
}
