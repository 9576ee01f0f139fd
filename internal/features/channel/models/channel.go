package models

import "time"

// AdminChannel is a channel where the bot holds administrator rights.
// The registry is what creation flows offer as publish targets and
// required-channel choices.
type AdminChannel struct {
	ChannelID int64     `json:"channel_id"`
	Title     string    `json:"title"`
	Username  string    `json:"username,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// Link returns the public t.me link, or empty for private channels.
func (c *AdminChannel) Link() string {
	if c.Username == "" {
		return ""
	}
	return "https://t.me/" + c.Username
}
