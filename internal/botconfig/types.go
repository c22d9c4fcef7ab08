package botconfig

import "time"

const (
	// KindSystem marks the injected system-default identity or channel.
	KindSystem = "system"
	// KindPersonal marks a user-owned identity or channel from the store.
	KindPersonal = "personal"
)

// Credential identifies which bot identity and token are used for a single
// Telegram API call. Resolved fresh at call time, never cached across calls.
type Credential struct {
	Kind     string `json:"kind"`
	ConfigID string `json:"config_id,omitempty"`
	Token    string `json:"-"`
	Username string `json:"username,omitempty"`
}

// Destination is the chat the blob is physically posted to.
type Destination struct {
	Kind      string `json:"kind"`
	ChatID    string `json:"chat_id"`
	ChatName  string `json:"chat_name,omitempty"`
	ChatType  string `json:"chat_type,omitempty"`
	IsDefault bool   `json:"is_default"`
}

// UserBotConfig is a stored personal bot configuration.
type UserBotConfig struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	BotToken       string    `json:"-"`
	BotUsername    string    `json:"bot_username,omitempty"`
	UsePersonalBot bool      `json:"use_personal_bot"`
	CreatedAt      time.Time `json:"created_at"`
}

// UpsertConfigInput creates or replaces the personal bot configuration of a
// web user.
type UpsertConfigInput struct {
	UserID         string
	BotToken       string
	BotUsername    string
	UsePersonalBot bool
}

// SetChannelInput assigns the default storage channel of a personal config.
type SetChannelInput struct {
	UserID      string
	ChannelID   string
	ChannelName string
	ChannelType string
}
