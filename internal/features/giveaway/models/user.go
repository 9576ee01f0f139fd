package models

import (
	"strconv"
	"time"
)

// User is a Telegram user observed by the bot. Profiles are upserted
// on every interaction so the handle and name stay fresh; users are
// never deleted.
type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username,omitempty"`
	FullName string    `json:"full_name,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// DisplayName returns the best human-readable label for the user:
// full name, then @username, then the numeric id.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

// Participant is the join entity between a user and a giveaway. The
// (UserID, GiveawayID) pair is unique; the store enforces that, not
// the application. IsWinner only ever transitions false -> true.
type Participant struct {
	UserID     int64     `json:"user_id"`
	GiveawayID int64     `json:"giveaway_id"`
	IsWinner   bool      `json:"is_winner"`
	JoinedAt   time.Time `json:"joined_at"`
}
