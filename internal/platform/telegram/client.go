package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/features/giveaway/models"
)

const apiBase = "https://api.telegram.org/bot"

// APIError is a non-ok response from the Bot API.
type APIError struct {
	Code        int    `json:"error_code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// IsRateLimited reports whether the API asked the bot to slow down.
func (e *APIError) IsRateLimited() bool {
	return e.Code == http.StatusTooManyRequests
}

// Client talks to the Telegram Bot API over HTTPS.
type Client struct {
	httpClient *http.Client
	token      string
	logger     zerolog.Logger
}

func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
		logger:     log.With().Str("component", "telegram").Logger(),
	}
}

func (c *Client) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode %s params: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		apiBase+c.token+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var envelope struct {
		Ok          bool            `json:"ok"`
		ErrorCode   int             `json:"error_code"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", method, err)
	}

	if !envelope.Ok {
		apiErr := &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
		c.logger.Warn().Str("method", method).Int("code", apiErr.Code).
			Str("description", apiErr.Description).Msg("API call failed")
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to parse %s result: %w", method, err)
		}
	}
	return nil
}

// GetMe identifies the bot account behind the token.
func (c *Client) GetMe(ctx context.Context) (*TgUser, error) {
	var me TgUser
	if err := c.call(ctx, "getMe", struct{}{}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetChat resolves a chat by id or @username.
func (c *Client) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	var chat Chat
	err := c.call(ctx, "getChat", map[string]interface{}{"chat_id": chatID}, &chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetMembershipStatus reports the user's membership status in the
// channel. Any API failure comes back as an error, never as a status;
// the caller decides how to degrade.
func (c *Client) GetMembershipStatus(ctx context.Context, channel models.ChannelRef, userID int64) (models.MemberStatus, error) {
	var member ChatMember
	err := c.call(ctx, "getChatMember", map[string]interface{}{
		"chat_id": channel.String(),
		"user_id": userID,
	}, &member)
	if err != nil {
		return models.MemberStatusUnknown, err
	}
	return models.MemberStatus(member.Status), nil
}

type SendMessageParams struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

type SendMediaParams struct {
	ChatID      int64
	FileID      string
	Caption     string
	ParseMode   string
	ReplyMarkup *InlineKeyboardMarkup
}

// SendPhoto posts a photo by its Telegram file id.
func (c *Client) SendPhoto(ctx context.Context, params SendMediaParams) (*Message, error) {
	return c.sendMedia(ctx, "sendPhoto", "photo", params)
}

// SendVideo posts a video by its Telegram file id.
func (c *Client) SendVideo(ctx context.Context, params SendMediaParams) (*Message, error) {
	return c.sendMedia(ctx, "sendVideo", "video", params)
}

func (c *Client) sendMedia(ctx context.Context, method, field string, params SendMediaParams) (*Message, error) {
	payload := map[string]interface{}{
		"chat_id": params.ChatID,
		field:     params.FileID,
	}
	if params.Caption != "" {
		payload["caption"] = params.Caption
	}
	if params.ParseMode != "" {
		payload["parse_mode"] = params.ParseMode
	}
	if params.ReplyMarkup != nil {
		payload["reply_markup"] = params.ReplyMarkup
	}

	var msg Message
	if err := c.call(ctx, method, payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageReplyMarkup swaps the inline keyboard under a message.
// A nil markup removes the keyboard.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID, messageID int64, markup *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	return c.call(ctx, "editMessageReplyMarkup", payload, nil)
}

type EditTextParams struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

func (c *Client) EditMessageText(ctx context.Context, params EditTextParams) error {
	return c.call(ctx, "editMessageText", params, nil)
}

// EditMessageCaption rewrites the caption of a media post.
func (c *Client) EditMessageCaption(ctx context.Context, chatID, messageID int64, caption, parseMode string, markup *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"caption":    caption,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	return c.call(ctx, "editMessageCaption", payload, nil)
}

// AnswerCallbackQuery closes the loading spinner on a tapped button,
// optionally with a toast or alert.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error {
	payload := map[string]interface{}{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
		payload["show_alert"] = showAlert
	}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

// SetWebhook points Telegram at the bot's webhook endpoint. The secret
// token comes back on every delivery in the
// X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) error {
	payload := map[string]interface{}{
		"url":             url,
		"allowed_updates": []string{"message", "callback_query", "my_chat_member"},
	}
	if secretToken != "" {
		payload["secret_token"] = secretToken
	}
	return c.call(ctx, "setWebhook", payload, nil)
}
