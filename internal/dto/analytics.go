package dto

type DashboardResponse struct {
	ChatbotID             string  `json:"chatbot_id" example:"bot_abc123"`
	Period                string  `json:"period" example:"30d"`
	TotalConversations    int64   `json:"total_conversations" example:"420"`
	TotalMessages         int64   `json:"total_messages" example:"3150"`
	AverageResponseTimeMs float64 `json:"average_response_time_ms" example:"845.5"`
	UserSatisfactionScore float64 `json:"user_satisfaction_score" example:"4.2"`
	TotalRatings          int64   `json:"total_ratings" example:"180"`
}

type PerformanceStatsResponse struct {
	AverageResponseTimeMs float64 `json:"average_response_time_ms" example:"845.5"`
	MedianResponseTimeMs  float64 `json:"median_response_time_ms" example:"700"`
	P95ResponseTimeMs     float64 `json:"p95_response_time_ms" example:"2100"`
	P99ResponseTimeMs     float64 `json:"p99_response_time_ms" example:"3500"`
	TotalRequests         int64   `json:"total_requests" example:"10500"`
	ErrorRate             float64 `json:"error_rate" example:"1.2"`
	TotalTokenUsage       int64   `json:"total_token_usage" example:"1250000"`
	AverageTokenUsage     float64 `json:"average_token_usage" example:"119.05"`
}

type TrendPointResponse struct {
	Bucket                string  `json:"bucket" example:"2026-01-15"`
	AverageResponseTimeMs float64 `json:"average_response_time_ms" example:"812.3"`
	RequestCount          int64   `json:"request_count" example:"340"`
	ErrorRate             float64 `json:"error_rate" example:"0.9"`
	TokenUsage            int64   `json:"token_usage" example:"40500"`
}

type PerformanceInsightsResponse struct {
	ChatbotID         string                   `json:"chatbot_id" example:"bot_abc123"`
	Period            string                   `json:"period" example:"30d"`
	PerformanceStats  PerformanceStatsResponse `json:"performance_stats"`
	PerformanceTrends []TrendPointResponse     `json:"performance_trends"`
}

type SnapshotResponse struct {
	ChatbotID             string         `json:"chatbot_id" example:"bot_abc123"`
	Date                  string         `json:"date" example:"2026-01-15"`
	TotalConversations    int64          `json:"total_conversations" example:"42"`
	TotalMessages         int64          `json:"total_messages" example:"315"`
	UniqueUsers           int64          `json:"unique_users" example:"28"`
	AvgConversationLength float64        `json:"avg_conversation_length" example:"7.5"`
	AvgResponseTimeMs     float64        `json:"avg_response_time_ms" example:"845.5"`
	UserSatisfactionScore float64        `json:"user_satisfaction_score" example:"4.2"`
	TotalRatings          int64          `json:"total_ratings" example:"18"`
	PopularQueries        []string       `json:"popular_queries,omitempty"`
	ResponseCategories    map[string]any `json:"response_categories,omitempty"`
}

type AggregateResponse struct {
	TotalConversations    int64   `json:"total_conversations" example:"420"`
	TotalMessages         int64   `json:"total_messages" example:"3150"`
	TotalRatings          int64   `json:"total_ratings" example:"180"`
	UniqueUsers           int64   `json:"unique_users" example:"260"`
	AvgConversationLength float64 `json:"avg_conversation_length" example:"7.5"`
	AvgResponseTimeMs     float64 `json:"avg_response_time_ms" example:"845.5"`
	UserSatisfactionScore float64 `json:"user_satisfaction_score" example:"4.2"`
}

type SnapshotHistoryResponse struct {
	ChatbotID string             `json:"chatbot_id" example:"bot_abc123"`
	Period    string             `json:"period" example:"30d"`
	Aggregate AggregateResponse  `json:"aggregate"`
	Snapshots []SnapshotResponse `json:"snapshots"`
}

type GenerateAnalyticsRequest struct {
	StartDate string `json:"start_date" example:"2026-01-01"`
	EndDate   string `json:"end_date" example:"2026-01-31"`
}

type GenerateAnalyticsResponse struct {
	ChatbotID string             `json:"chatbot_id" example:"bot_abc123"`
	Snapshots []SnapshotResponse `json:"snapshots"`
}
