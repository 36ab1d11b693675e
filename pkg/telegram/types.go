package telegram

import (
	"strconv"
	"strings"
	"time"
)

// WebAppUser is the user record Telegram passes to a Mini App.
type WebAppUser struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// DisplayName is "First Last", falling back to @username.
func (u *WebAppUser) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" && u.Username != "" {
		return "@" + u.Username
	}
	return name
}

// InitData is the launch payload of a Mini App (Telegram.WebApp.initData).
type InitData struct {
	QueryID      string      `json:"query_id,omitempty"`
	User         *WebAppUser `json:"user,omitempty"`
	ChatType     string      `json:"chat_type,omitempty"`
	ChatInstance string      `json:"chat_instance,omitempty"`
	StartParam   string      `json:"start_param,omitempty"`
	AuthDate     time.Time   `json:"auth_date"`
	Hash         string      `json:"hash"`
	Raw          string      `json:"-"`
}

// UserID returns the stringified user id, or "" when init data carries no user.
func (d *InitData) UserID() string {
	if d == nil || d.User == nil || d.User.ID == 0 {
		return ""
	}
	return strconv.FormatInt(d.User.ID, 10)
}
