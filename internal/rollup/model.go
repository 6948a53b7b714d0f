package rollup

import (
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
)

// Snapshot is one aggregated record per (chatbot, calendar day). At most one
// row exists per key; writes go through the store's atomic upsert.
type Snapshot struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ChatbotID string    `gorm:"not null;index:idx_chatbot_date,unique" json:"chatbot_id"`
	Date      time.Time `gorm:"not null;index:idx_chatbot_date,unique" json:"date"`

	TotalConversations int64 `gorm:"default:0" json:"total_conversations"`
	TotalMessages      int64 `gorm:"default:0" json:"total_messages"`
	TotalRatings       int64 `gorm:"default:0" json:"total_ratings"`

	UniqueUsers           int64   `gorm:"default:0" json:"unique_users"`
	AvgConversationLength float64 `gorm:"default:0" json:"avg_conversation_length"`
	AvgResponseTimeMs     float64 `gorm:"default:0" json:"avg_response_time_ms"`
	UserSatisfactionScore float64 `gorm:"default:0" json:"user_satisfaction_score"`

	PopularQueries     shared.StringSlice `gorm:"type:json" json:"popular_queries,omitempty"`
	ResponseCategories shared.JSONMap     `gorm:"type:json" json:"response_categories,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Delta carries one increment to a day's snapshot. Count fields accumulate
// across upserts; the remaining fields replace the stored value whenever the
// delta supplies a non-zero (or non-nil) one. Multiple same-day writes
// therefore keep only the latest average/score, which understates days with
// several rollup passes; kept until product signs off on a weighted average.
type Delta struct {
	TotalConversations int64
	TotalMessages      int64
	TotalRatings       int64

	UniqueUsers           int64
	AvgConversationLength float64
	AvgResponseTimeMs     float64
	UserSatisfactionScore float64

	PopularQueries     shared.StringSlice
	ResponseCategories shared.JSONMap
}

// TruncateDay normalizes a timestamp to its UTC calendar day. Every key
// comparison and lookup goes through this.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Merge applies a delta to a snapshot value and returns the result without
// mutating the input. The store's SQL upsert implements the same rule; this
// form keeps it testable in isolation.
func Merge(prev Snapshot, d Delta) Snapshot {
	next := prev

	next.TotalConversations += d.TotalConversations
	next.TotalMessages += d.TotalMessages
	next.TotalRatings += d.TotalRatings

	if d.UniqueUsers != 0 {
		next.UniqueUsers = d.UniqueUsers
	}
	if d.AvgConversationLength != 0 {
		next.AvgConversationLength = d.AvgConversationLength
	}
	if d.AvgResponseTimeMs != 0 {
		next.AvgResponseTimeMs = d.AvgResponseTimeMs
	}
	if d.UserSatisfactionScore != 0 {
		next.UserSatisfactionScore = d.UserSatisfactionScore
	}
	if d.PopularQueries != nil {
		next.PopularQueries = d.PopularQueries
	}
	if d.ResponseCategories != nil {
		next.ResponseCategories = d.ResponseCategories
	}

	return next
}
