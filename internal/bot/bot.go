package bot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/common/config"
	chservice "giveaway-bot/internal/features/channel/service"
	gwmodels "giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/features/giveaway/service"
	"giveaway-bot/internal/platform/telegram"
)

// Bot routes incoming Telegram updates to the feature services.
type Bot struct {
	cfg         *config.Config
	api         api
	giveaways   *service.GiveawayService
	enrollment  *service.EnrollmentService
	selector    *service.SelectorService
	channels    *chservice.ChannelService
	sessions    *sessionStore
	botUsername string

	// checkDelay paces the eligibility check after a participate tap.
	checkDelay time.Duration

	logger zerolog.Logger
}

func New(
	cfg *config.Config,
	api api,
	giveaways *service.GiveawayService,
	enrollment *service.EnrollmentService,
	selector *service.SelectorService,
	channels *chservice.ChannelService,
	botUsername string,
) *Bot {
	return &Bot{
		cfg:         cfg,
		api:         api,
		giveaways:   giveaways,
		enrollment:  enrollment,
		selector:    selector,
		channels:    channels,
		sessions:    newSessionStore(),
		botUsername: botUsername,
		checkDelay:  cfg.EligibilityDelay,
		logger:      log.With().Str("component", "bot").Logger(),
	}
}

// HandleUpdate dispatches one webhook update. Handler errors are
// logged, never returned: Telegram retries failed deliveries and a
// retry storm helps nobody.
func (b *Bot) HandleUpdate(ctx context.Context, update *telegram.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.logger.Error().Err(err).Str("data", update.CallbackQuery.Data).
				Msg("callback handler failed")
		}
	case update.Message != nil:
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).
				Msg("message handler failed")
		}
	case update.MyChatMember != nil:
		if err := b.handleMyChatMember(ctx, update.MyChatMember); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", update.MyChatMember.Chat.ID).
				Msg("chat member handler failed")
		}
	}
}

func (b *Bot) handleMyChatMember(ctx context.Context, event *telegram.ChatMemberEvent) error {
	return b.channels.ApplyMemberUpdate(ctx, chservice.MemberUpdate{
		ChatID:    event.Chat.ID,
		ChatType:  event.Chat.Type,
		Title:     event.Chat.Title,
		Username:  event.Chat.Username,
		OldStatus: gwmodels.MemberStatus(event.OldChatMember.Status),
		NewStatus: gwmodels.MemberStatus(event.NewChatMember.Status),
	})
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.IsAdmin(userID)
}

func userFromTg(u telegram.TgUser) *gwmodels.User {
	return &gwmodels.User{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName(),
	}
}

// pace waits the configured check delay so the subscription check does
// not feel instantaneous. Cancelled contexts cut it short.
func (b *Bot) pace(ctx context.Context) error {
	if b.checkDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(b.checkDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) error {
	_, err := b.api.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
		ReplyMarkup:           markup,
	})
	return err
}

// missingChannelsText renders the "subscribe first" alert body.
func (b *Bot) missingChannelsText(ctx context.Context, missing []gwmodels.ChannelRef) string {
	var sb strings.Builder
	sb.WriteString("🚫 You are not subscribed to:\n\n")
	for _, ref := range missing {
		chat, err := b.api.GetChat(ctx, ref.String())
		if err != nil {
			sb.WriteString("👉 Channel\n")
			continue
		}
		sb.WriteString("👉 " + chat.Title + "\n")
	}
	sb.WriteString("\nSubscribe and tap the button again!")
	return sb.String()
}
