// Package model defines the core bot data types.
package model

import "time"

// Message is an incoming utterance.
type Message struct {
	SpeakerID   string    `json:"speaker_id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// Reply is the envelope produced for every turn. An empty Text means the bot
// chose not to speak.
type Reply struct {
	BotID       string `json:"bot_id"`
	Text        string `json:"text"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// Silent reports whether the reply carries no message to display.
func (r Reply) Silent() bool {
	return r.Text == ""
}

// HubParams holds the participation knobs used in multi-party chat.
type HubParams struct {
	Availability float64 `json:"availability" yaml:"availability"`
	Generosity   float64 `json:"generosity" yaml:"generosity"`
	Retention    float64 `json:"retention" yaml:"retention"`
}

// BotSettings is the identity and top-level configuration of a bot.
type BotSettings struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatorUID  string    `json:"creator_uid,omitempty"`
	CreatorName string    `json:"creator_name,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Parts       []string  `json:"parts"`
	Memory      string    `json:"memory"`
	Hub         HubParams `json:"hub"`
}

// PartSettings configures a single part.
type PartSettings struct {
	Name         string  `json:"name"`
	Availability float64 `json:"availability"`
	Generosity   float64 `json:"generosity"`
	Retention    float64 `json:"retention"`
	DictSource   string  `json:"dict_source"`
}

// Snapshot is the durable state of a bot: the full memory blob and the
// current part order.
type Snapshot struct {
	BotID        string    `json:"bot_id"`
	Memory       string    `json:"memory"`
	CurrentOrder []string  `json:"current_order"`
	Revision     string    `json:"revision,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InUnitRange reports whether v is a probability.
func InUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
