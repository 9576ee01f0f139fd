package bot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	chmodels "giveaway-bot/internal/features/channel/models"
	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/platform/telegram"
)

// Callback data prefixes. The id suffix is always the last underscore
// separated field, two fields for the winner pick.
const (
	cbParticipate    = "participate_"
	cbViewGiveaway   = "view_gw_"
	cbParticipants   = "part_gw_"
	cbPickWinner     = "pick_winner_"
	cbPickRandom     = "pick_random_"
	cbFinish         = "finish_gw_"
	cbManage         = "manage_gw_"
	cbEditDesc       = "edit_desc_"
	cbDelete         = "delete_gw_"
	cbPickByUsername = "pick_manual_"
	cbPublishChannel = "pub_ch_"
	cbPublishConfirm = "publish_confirm"
	cbPublishCancel  = "publish_cancel"
	cbMenuCreate     = "menu_create"
	cbMenuList       = "menu_list"
	cbMenuParts      = "menu_participants"
	cbMenuManage     = "menu_manage"
	cbBackList       = "back_list"
	cbBackParts      = "back_participants"
	cbBackManage     = "back_manage"
)

func parseID(data, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(data, prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parsePickWinner splits "pick_winner_<giveaway>_<user>".
func parsePickWinner(data string) (giveawayID, userID int64, ok bool) {
	raw := strings.TrimPrefix(data, cbPickWinner)
	parts := strings.SplitN(raw, "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	giveawayID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	userID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return giveawayID, userID, true
}

// counterLabel is the participation button text with the live count.
func counterLabel(buttonText string, count int64) string {
	return fmt.Sprintf("%s (%d)", buttonText, count)
}

// postURL links to a channel message, via the public username or the
// private t.me/c form.
func postURL(channel *telegram.Chat, messageID int64) string {
	if channel.Username != "" {
		return fmt.Sprintf("https://t.me/%s/%d", channel.Username, messageID)
	}
	id := strconv.FormatInt(channel.ID, 10)
	// channel ids carry a -100 prefix on the wire
	id = strings.TrimPrefix(id, "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}

// shareURL wraps the post link in Telegram's share dialog. Forwards
// strip inline keyboards, the share button keeps the post spreadable.
func shareURL(post string) string {
	return "https://t.me/share/url?url=" + url.QueryEscape(post) +
		"&text=" + url.QueryEscape("Join the giveaway! 🎁")
}

// resultsURL deep-links into a private chat with the bot, carrying the
// giveaway id as the start payload.
func resultsURL(botUsername string, giveawayID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=result_%d", botUsername, giveawayID)
}

// participationKeyboard is what a live giveaway post carries: the
// counter button plus, once the post URL is known, a share button.
func participationKeyboard(giveawayID int64, buttonText string, count int64, share string) *telegram.InlineKeyboardMarkup {
	rows := [][]telegram.InlineKeyboardButton{{
		{Text: counterLabel(buttonText, count), CallbackData: fmt.Sprintf("%s%d", cbParticipate, giveawayID)},
	}}
	if share != "" {
		rows = append(rows, []telegram.InlineKeyboardButton{{Text: "🔗 Share", URL: share}})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// resultsKeyboard replaces the participation keyboard once the
// giveaway is finished.
func resultsKeyboard(botUsername string, giveawayID int64) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "🏆 Check results", URL: resultsURL(botUsername, giveawayID)},
	}}}
}

// adminMenuKeyboard is the top-level admin menu.
func adminMenuKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{{Text: "🎁 New giveaway", CallbackData: cbMenuCreate}},
		{{Text: "📋 Giveaways", CallbackData: cbMenuList}, {Text: "👥 Participants", CallbackData: cbMenuParts}},
		{{Text: "⚙️ Manage", CallbackData: cbMenuManage}},
	}}
}

// giveawayListKeyboard renders one button per active giveaway with a
// short description snippet and the participant count.
func giveawayListKeyboard(giveaways []*models.Giveaway, counts map[int64]int64, prefix string) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(giveaways))
	for _, g := range giveaways {
		desc := g.Description
		// truncate on runes, a byte slice can cut a multibyte char in half
		if r := []rune(desc); len(r) > 15 {
			desc = string(r[:15]) + "..."
		}
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         fmt.Sprintf("#%d %s (%d)", g.ID, desc, counts[g.ID]),
			CallbackData: fmt.Sprintf("%s%d", prefix, g.ID),
		}})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

const participantPageSize = 50

// participantsKeyboard lists the most recent participants as winner
// pick buttons, framed by the draw actions.
func participantsKeyboard(giveawayID int64, participants []*models.User) *telegram.InlineKeyboardMarkup {
	rows := [][]telegram.InlineKeyboardButton{
		{{Text: "🎲 Random winner", CallbackData: fmt.Sprintf("%s%d", cbPickRandom, giveawayID)}},
	}

	visible := participants
	if len(visible) > participantPageSize {
		visible = visible[len(visible)-participantPageSize:]
	}
	for _, p := range visible {
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         "👤 " + p.DisplayName(),
			CallbackData: fmt.Sprintf("%s%d_%d", cbPickWinner, giveawayID, p.ID),
		}})
	}

	rows = append(rows,
		[]telegram.InlineKeyboardButton{{Text: "🔎 Winner by @username", CallbackData: fmt.Sprintf("%s%d", cbPickByUsername, giveawayID)}},
		[]telegram.InlineKeyboardButton{{Text: "📢 Publish results", CallbackData: fmt.Sprintf("%s%d", cbFinish, giveawayID)}},
		[]telegram.InlineKeyboardButton{{Text: "🔙 Back", CallbackData: cbBackParts}},
	)
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// manageKeyboard offers the edit and delete actions for one giveaway.
func manageKeyboard(giveawayID int64) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{{Text: "✏️ Edit text", CallbackData: fmt.Sprintf("%s%d", cbEditDesc, giveawayID)}},
		{{Text: "🗑 Delete giveaway", CallbackData: fmt.Sprintf("%s%d", cbDelete, giveawayID)}},
		{{Text: "🔙 Back", CallbackData: cbBackManage}},
	}}
}

// confirmKeyboard closes the creation preview.
func confirmKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "✅ Publish", CallbackData: cbPublishConfirm},
		{Text: "❌ Cancel", CallbackData: cbPublishCancel},
	}}}
}

// publishChannelsKeyboard offers the registered admin channels as
// publish targets during creation.
func publishChannelsKeyboard(channels []*chmodels.AdminChannel) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(channels))
	for _, ch := range channels {
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         ch.Title,
			CallbackData: fmt.Sprintf("%s%d", cbPublishChannel, ch.ChannelID),
		}})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
