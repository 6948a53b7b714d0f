package dto

type MessageResponse struct {
	ID        string `json:"id" example:"msg_abc123"`
	Role      string `json:"role" example:"assistant"`
	Content   string `json:"content" example:"How can I help you today?"`
	Timestamp string `json:"timestamp" example:"2026-01-15T10:00:05Z"`
}

type SentimentSampleResponse struct {
	Timestamp  string  `json:"timestamp" example:"2026-01-15T10:00:05Z"`
	Score      float64 `json:"score" example:"0.4"`
	Confidence float64 `json:"confidence" example:"0.85"`
}

type ConversationMetricsResponse struct {
	ConversationID    string                    `json:"conversation_id" example:"conv_abc123"`
	MessageCount      int64                     `json:"message_count" example:"8"`
	DurationSeconds   int64                     `json:"duration_seconds" example:"240"`
	AvgResponseTimeMs float64                   `json:"avg_response_time_ms" example:"900"`
	UserSatisfaction  *int                      `json:"user_satisfaction,omitempty" example:"4"`
	UserIntent        string                    `json:"user_intent,omitempty" example:"refund request"`
	GoalAchieved      bool                      `json:"goal_achieved" example:"true"`
	SentimentSamples  []SentimentSampleResponse `json:"sentiment_samples,omitempty"`
	Topics            []string                  `json:"topics,omitempty"`
}

type ConversationResponse struct {
	ID        string                       `json:"id" example:"conv_abc123"`
	ChatbotID string                       `json:"chatbot_id" example:"bot_abc123"`
	SessionID string                       `json:"session_id" example:"sess_abc123"`
	StartedAt string                       `json:"started_at" example:"2026-01-15T10:00:00Z"`
	EndedAt   string                       `json:"ended_at,omitempty" example:"2026-01-15T10:04:00Z"`
	Messages  []MessageResponse            `json:"messages"`
	Metrics   *ConversationMetricsResponse `json:"metrics,omitempty"`
}

type PaginationResponse struct {
	Page  int   `json:"page" example:"1"`
	Limit int   `json:"limit" example:"20"`
	Total int64 `json:"total" example:"420"`
	Pages int   `json:"pages" example:"21"`
}

type ConversationFiltersResponse struct {
	Search          string `json:"search,omitempty" example:"refund"`
	StartDate       string `json:"start_date,omitempty" example:"2026-01-01"`
	EndDate         string `json:"end_date,omitempty" example:"2026-01-31"`
	MinSatisfaction *int   `json:"min_satisfaction,omitempty" example:"4"`
	MaxSatisfaction *int   `json:"max_satisfaction,omitempty" example:"5"`
}

type ConversationHistoryResponse struct {
	Conversations []ConversationResponse      `json:"conversations"`
	Pagination    PaginationResponse          `json:"pagination"`
	Filters       ConversationFiltersResponse `json:"filters"`
}
