package telegram

// Bot API payload types, limited to the fields the bot reads.

type Update struct {
	UpdateID      int64            `json:"update_id"`
	Message       *Message         `json:"message,omitempty"`
	CallbackQuery *CallbackQuery   `json:"callback_query,omitempty"`
	MyChatMember  *ChatMemberEvent `json:"my_chat_member,omitempty"`
}

type Message struct {
	MessageID int64       `json:"message_id"`
	From      *TgUser     `json:"from,omitempty"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
	Video     *Video      `json:"video,omitempty"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Video struct {
	FileID string `json:"file_id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    TgUser   `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// ChatMemberEvent is the my_chat_member update payload: the bot's own
// membership changed in some chat.
type ChatMemberEvent struct {
	Chat          Chat             `json:"chat"`
	From          TgUser           `json:"from"`
	OldChatMember ChatMemberRecord `json:"old_chat_member"`
	NewChatMember ChatMemberRecord `json:"new_chat_member"`
}

type ChatMemberRecord struct {
	Status string `json:"status"`
	User   TgUser `json:"user"`
}

type TgUser struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// FullName joins first and last name the way Telegram clients render it.
func (u TgUser) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

type ChatMember struct {
	Status string `json:"status"`
	User   TgUser `json:"user"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type InlineKeyboardButton struct {
	Text              string `json:"text"`
	URL               string `json:"url,omitempty"`
	CallbackData      string `json:"callback_data,omitempty"`
	SwitchInlineQuery string `json:"switch_inline_query,omitempty"`
}
