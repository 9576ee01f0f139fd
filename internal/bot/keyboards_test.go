package bot

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot/internal/features/giveaway/models"
	"giveaway-bot/internal/platform/telegram"
)

func TestParseID(t *testing.T) {
	id, ok := parseID("participate_42", cbParticipate)
	require.True(t, ok)
	assert.EqualValues(t, 42, id)

	_, ok = parseID("participate_abc", cbParticipate)
	assert.False(t, ok)

	_, ok = parseID("participate_", cbParticipate)
	assert.False(t, ok)
}

func TestParsePickWinner(t *testing.T) {
	giveawayID, userID, ok := parsePickWinner("pick_winner_7_123456")
	require.True(t, ok)
	assert.EqualValues(t, 7, giveawayID)
	assert.EqualValues(t, 123456, userID)

	_, _, ok = parsePickWinner("pick_winner_7")
	assert.False(t, ok)

	_, _, ok = parsePickWinner("pick_winner_x_y")
	assert.False(t, ok)
}

func TestCounterLabel(t *testing.T) {
	assert.Equal(t, "I'm in! 🚀 (0)", counterLabel("I'm in! 🚀", 0))
	assert.Equal(t, "Join (1500)", counterLabel("Join", 1500))
}

func TestPostURL(t *testing.T) {
	public := &telegram.Chat{ID: -1001234567, Username: "mychannel"}
	assert.Equal(t, "https://t.me/mychannel/55", postURL(public, 55))

	private := &telegram.Chat{ID: -1001234567}
	assert.Equal(t, "https://t.me/c/1234567/55", postURL(private, 55))
}

func TestResultsURL(t *testing.T) {
	assert.Equal(t, "https://t.me/prize_bot?start=result_9", resultsURL("prize_bot", 9))
}

func TestParticipationKeyboard(t *testing.T) {
	markup := participationKeyboard(7, "Join", 3, "")
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "Join (3)", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "participate_7", markup.InlineKeyboard[0][0].CallbackData)

	withShare := participationKeyboard(7, "Join", 3, "https://t.me/share/url?url=x")
	require.Len(t, withShare.InlineKeyboard, 2)
	assert.NotEmpty(t, withShare.InlineKeyboard[1][0].URL)
	assert.Empty(t, withShare.InlineKeyboard[1][0].CallbackData)
}

func TestGiveawayListKeyboardTruncatesDescriptions(t *testing.T) {
	giveaways := []*models.Giveaway{
		{ID: 1, Description: "short"},
		{ID: 2, Description: "a very long description indeed"},
	}
	counts := map[int64]int64{1: 5, 2: 0}

	markup := giveawayListKeyboard(giveaways, counts, cbViewGiveaway)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "#1 short (5)", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "#2 a very long des... (0)", markup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "view_gw_2", markup.InlineKeyboard[1][0].CallbackData)
}

func TestGiveawayListKeyboardTruncatesOnRunes(t *testing.T) {
	giveaways := []*models.Giveaway{
		{ID: 1, Description: "Розыгрыш новогодних призов"},
	}
	counts := map[int64]int64{1: 3}

	markup := giveawayListKeyboard(giveaways, counts, cbViewGiveaway)
	require.Len(t, markup.InlineKeyboard, 1)
	label := markup.InlineKeyboard[0][0].Text
	assert.True(t, utf8.ValidString(label))
	assert.Equal(t, "#1 Розыгрыш нового... (3)", label)
}

func TestParticipantsKeyboardCapsList(t *testing.T) {
	participants := make([]*models.User, 0, 60)
	for i := 1; i <= 60; i++ {
		participants = append(participants, &models.User{ID: int64(i)})
	}

	markup := participantsKeyboard(3, participants)
	// random + 50 participants + manual pick + finish + back
	require.Len(t, markup.InlineKeyboard, 54)
	assert.Equal(t, "pick_random_3", markup.InlineKeyboard[0][0].CallbackData)
	// only the most recent page survives
	assert.Equal(t, "pick_winner_3_11", markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "pick_winner_3_60", markup.InlineKeyboard[50][0].CallbackData)
}
