package conversation

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Conversation struct {
	ID        string `gorm:"primaryKey" json:"id"`
	ChatbotID string `gorm:"not null;index:idx_chatbot_started" json:"chatbot_id"`
	SessionID string `gorm:"index" json:"session_id"`

	UserInfo shared.JSONMap `gorm:"type:json" json:"user_info,omitempty"`

	StartedAt time.Time  `gorm:"not null;index:idx_chatbot_started" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

type Message struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"not null;index" json:"conversation_id"`
	Role           Role      `gorm:"not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Timestamp      time.Time `gorm:"not null" json:"timestamp"`
}

// SentimentSample is one sentiment reading taken during a conversation.
// Score is in [-1, 1], confidence in [0, 1].
type SentimentSample struct {
	Timestamp  time.Time `json:"timestamp"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
}

type SentimentSamples []SentimentSample

func (s SentimentSamples) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *SentimentSamples) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SentimentSamples", value)
	}

	return json.Unmarshal(bytes, s)
}

// Metrics is the per-conversation analytics record, created lazily after a
// conversation ends. One row per conversation; later writes merge through
// the store's upsert.
type Metrics struct {
	ID             string `gorm:"primaryKey" json:"id"`
	ConversationID string `gorm:"not null;uniqueIndex" json:"conversation_id"`
	ChatbotID      string `gorm:"not null;index" json:"chatbot_id"`

	MessageCount      int64   `gorm:"default:0" json:"message_count"`
	DurationSeconds   int64   `gorm:"default:0" json:"duration_seconds"`
	AvgResponseTimeMs float64 `gorm:"default:0" json:"avg_response_time_ms"`

	UserSatisfaction *int   `gorm:"check:user_satisfaction >= 1 AND user_satisfaction <= 5" json:"user_satisfaction,omitempty"`
	UserIntent       string `json:"user_intent,omitempty"`
	GoalAchieved     bool   `gorm:"default:false" json:"goal_achieved"`

	SentimentSamples SentimentSamples   `gorm:"type:json" json:"sentiment_samples,omitempty"`
	Topics           shared.StringSlice `gorm:"type:json" json:"topics,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MetricsUpdate carries the fields supplied by one upsert call. Nil fields
// leave the stored value untouched.
type MetricsUpdate struct {
	MessageCount      *int64
	DurationSeconds   *int64
	AvgResponseTimeMs *float64
	UserSatisfaction  *int
	UserIntent        *string
	GoalAchieved      *bool
	SentimentSamples  SentimentSamples
	Topics            shared.StringSlice
}

// Detail is a conversation joined with its ordered messages and metrics
// record. Metrics is nil when no record exists yet.
type Detail struct {
	Conversation *Conversation
	Messages     []*Message
	Metrics      *Metrics
}
