package models

import (
	"strconv"
	"strings"
)

// MemberStatus is the raw membership status reported by the Telegram
// Bot API for a user in a chat.
type MemberStatus string

const (
	MemberStatusCreator       MemberStatus = "creator"
	MemberStatusAdministrator MemberStatus = "administrator"
	MemberStatusMember        MemberStatus = "member"
	MemberStatusRestricted    MemberStatus = "restricted"
	MemberStatusLeft          MemberStatus = "left"
	MemberStatusKicked        MemberStatus = "kicked"
	MemberStatusUnknown       MemberStatus = "unknown"
)

// IsPresent reports whether the status counts as "subscribed" for
// eligibility purposes. A restricted member is still in the channel.
func (s MemberStatus) IsPresent() bool {
	switch s {
	case MemberStatusCreator, MemberStatusAdministrator, MemberStatusMember, MemberStatusRestricted:
		return true
	}
	return false
}

// ChannelRef identifies a Telegram channel either by numeric chat id
// or by public @username. Exactly one of the two fields is set.
//
// The stored form of a required-channel list is a comma-joined string.
// That form is a persistence detail; everything above the store works
// with []ChannelRef.
type ChannelRef struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

// ParseChannelRef normalizes a single channel token. Numeric-looking
// strings become numeric ids, t.me links collapse to their username,
// and bare usernames gain the @ prefix. The normalization is
// deterministic: the same input always yields the same ref.
func ParseChannelRef(raw string) ChannelRef {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "t.me/"); i >= 0 {
		s = s[i+len("t.me/"):]
		if j := strings.IndexByte(s, '/'); j >= 0 {
			s = s[:j]
		}
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil && s != "" {
		return ChannelRef{ID: id}
	}
	s = strings.TrimPrefix(s, "@")
	return ChannelRef{Username: s}
}

// IsZero reports whether the ref identifies nothing.
func (r ChannelRef) IsZero() bool {
	return r.ID == 0 && r.Username == ""
}

// String renders the ref the way the Bot API accepts it in a chat_id
// parameter: the decimal id, or "@username".
func (r ChannelRef) String() string {
	if r.ID != 0 {
		return strconv.FormatInt(r.ID, 10)
	}
	return "@" + r.Username
}

// ParseChannelList splits a stored comma-joined channel column into
// ordered refs, skipping empty tokens.
func ParseChannelList(stored string) []ChannelRef {
	parts := strings.Split(stored, ",")
	refs := make([]ChannelRef, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		refs = append(refs, ParseChannelRef(p))
	}
	return refs
}

// JoinChannelList serializes refs back into the stored comma-joined
// form. ParseChannelList(JoinChannelList(refs)) round-trips.
func JoinChannelList(refs []ChannelRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
