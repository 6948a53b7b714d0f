package dto

import "github.com/botforge-ai/botforge/internal/shared"

type CreateChatbotRequest struct {
	Name           string         `json:"name" example:"Support Bot"`
	Description    string         `json:"description,omitempty"`
	Model          string         `json:"model,omitempty" example:"gpt-4o-mini"`
	SystemPrompt   string         `json:"system_prompt,omitempty"`
	WelcomeMessage string         `json:"welcome_message,omitempty"`
	Settings       shared.JSONMap `json:"settings,omitempty"`
}

type UpdateChatbotRequest struct {
	Name           *string        `json:"name,omitempty"`
	Description    *string        `json:"description,omitempty"`
	Model          *string        `json:"model,omitempty"`
	SystemPrompt   *string        `json:"system_prompt,omitempty"`
	WelcomeMessage *string        `json:"welcome_message,omitempty"`
	Settings       shared.JSONMap `json:"settings,omitempty"`
	IsActive       *bool          `json:"is_active,omitempty"`
}

type ChatbotResponse struct {
	ID             string `json:"id" example:"bot_abc123"`
	UserID         string `json:"user_id" example:"user_abc123"`
	Name           string `json:"name" example:"Support Bot"`
	Description    string `json:"description,omitempty"`
	Model          string `json:"model" example:"gpt-4o-mini"`
	SystemPrompt   string `json:"system_prompt,omitempty"`
	WelcomeMessage string `json:"welcome_message,omitempty"`
	IsActive       bool   `json:"is_active" example:"true"`
	CreatedAt      string `json:"created_at" example:"2026-01-15T10:00:00Z"`
	UpdatedAt      string `json:"updated_at" example:"2026-01-15T10:00:00Z"`
}

type ChatbotListResponse struct {
	Chatbots []ChatbotResponse `json:"chatbots"`
}
