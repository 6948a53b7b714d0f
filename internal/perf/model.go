package perf

import (
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
)

// Sample is one measurement per generated reply, written by the messaging
// pipeline. Samples are immutable once recorded and purged after the
// retention window.
type Sample struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ChatbotID string    `gorm:"not null;index:idx_chatbot_ts" json:"chatbot_id"`
	Timestamp time.Time `gorm:"not null;index:idx_chatbot_ts" json:"timestamp"`

	ResponseTimeMs int            `gorm:"not null" json:"response_time_ms"`
	TokenCount     int            `gorm:"default:0" json:"token_count"`
	StatusCode     int            `gorm:"default:200" json:"status_code"`
	Endpoint       string         `json:"endpoint,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	Metadata       shared.JSONMap `gorm:"type:json" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

const DefaultRetentionDays = 90
