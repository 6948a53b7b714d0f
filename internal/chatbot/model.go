package chatbot

import (
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
)

type Chatbot struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`

	Name           string         `gorm:"not null" json:"name"`
	Description    string         `json:"description,omitempty"`
	Model          string         `gorm:"default:'gpt-4o-mini'" json:"model"`
	SystemPrompt   string         `json:"system_prompt,omitempty"`
	WelcomeMessage string         `json:"welcome_message,omitempty"`
	Settings       shared.JSONMap `gorm:"type:json" json:"settings,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
