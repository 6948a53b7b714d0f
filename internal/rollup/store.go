package rollup

import (
	"context"
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Snapshot{})
}

// Upsert merges a delta into the snapshot for (chatbotID, day of date) with
// a single insert-or-update statement, so concurrent writers cannot lose
// count increments. Retried once when a concurrent insert wins the race;
// any other failure surfaces immediately, since re-running the statement
// after a non-conflict error would add the count columns twice.
func (s *Store) Upsert(ctx context.Context, chatbotID string, date time.Time, d Delta) error {
	err := s.upsert(ctx, chatbotID, date, d)
	if err == nil || !shared.IsRetryableConflict(err) {
		return err
	}
	return s.upsert(ctx, chatbotID, date, d)
}

func (s *Store) upsert(ctx context.Context, chatbotID string, date time.Time, d Delta) error {
	day := TruncateDay(date)

	row := Snapshot{
		ID:                    shared.NewID("snap_"),
		ChatbotID:             chatbotID,
		Date:                  day,
		TotalConversations:    d.TotalConversations,
		TotalMessages:         d.TotalMessages,
		TotalRatings:          d.TotalRatings,
		UniqueUsers:           d.UniqueUsers,
		AvgConversationLength: d.AvgConversationLength,
		AvgResponseTimeMs:     d.AvgResponseTimeMs,
		UserSatisfactionScore: d.UserSatisfactionScore,
		PopularQueries:        d.PopularQueries,
		ResponseCategories:    d.ResponseCategories,
	}

	assignments := map[string]any{
		"total_conversations": gorm.Expr("total_conversations + ?", d.TotalConversations),
		"total_messages":      gorm.Expr("total_messages + ?", d.TotalMessages),
		"total_ratings":       gorm.Expr("total_ratings + ?", d.TotalRatings),
		"updated_at":          time.Now().UTC(),
	}
	if d.UniqueUsers != 0 {
		assignments["unique_users"] = d.UniqueUsers
	}
	if d.AvgConversationLength != 0 {
		assignments["avg_conversation_length"] = d.AvgConversationLength
	}
	if d.AvgResponseTimeMs != 0 {
		assignments["avg_response_time_ms"] = d.AvgResponseTimeMs
	}
	if d.UserSatisfactionScore != 0 {
		assignments["user_satisfaction_score"] = d.UserSatisfactionScore
	}
	if d.PopularQueries != nil {
		assignments["popular_queries"] = d.PopularQueries
	}
	if d.ResponseCategories != nil {
		assignments["response_categories"] = d.ResponseCategories
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chatbot_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&row).Error
}

// Get returns the snapshot for one calendar day, or shared.ErrNotFound.
func (s *Store) Get(ctx context.Context, chatbotID string, date time.Time) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).
		Where("chatbot_id = ? AND date = ?", chatbotID, TruncateDay(date)).
		First(&snap).Error
	if err == gorm.ErrRecordNotFound {
		return nil, shared.ErrNotFound
	}
	return &snap, err
}

// ListRange returns snapshots for the inclusive [start, end] day range,
// ascending by date. Days without a snapshot are absent.
func (s *Store) ListRange(ctx context.Context, chatbotID string, start, end time.Time) ([]*Snapshot, error) {
	var snaps []*Snapshot
	err := s.db.WithContext(ctx).
		Where("chatbot_id = ? AND date >= ? AND date <= ?",
			chatbotID, TruncateDay(start), TruncateDay(end)).
		Order("date ASC").
		Find(&snaps).Error
	return snaps, err
}

// Aggregate rolls a snapshot range up into dashboard totals. Counts are
// summed; averaged fields are averaged over the days that reported them,
// with satisfaction weighted by each day's rating volume when available.
type Aggregate struct {
	TotalConversations    int64   `json:"total_conversations"`
	TotalMessages         int64   `json:"total_messages"`
	TotalRatings          int64   `json:"total_ratings"`
	UniqueUsers           int64   `json:"unique_users"`
	AvgConversationLength float64 `json:"avg_conversation_length"`
	AvgResponseTimeMs     float64 `json:"avg_response_time_ms"`
	UserSatisfactionScore float64 `json:"user_satisfaction_score"`
}

func Aggregated(snaps []*Snapshot) Aggregate {
	var agg Aggregate
	var lengthSum, latencySum float64
	var lengthDays, latencyDays int64
	var satWeighted float64
	var satRatings int64
	var satPlain float64
	var satDays int64

	for _, snap := range snaps {
		agg.TotalConversations += snap.TotalConversations
		agg.TotalMessages += snap.TotalMessages
		agg.TotalRatings += snap.TotalRatings
		agg.UniqueUsers += snap.UniqueUsers

		if snap.AvgConversationLength > 0 {
			lengthSum += snap.AvgConversationLength
			lengthDays++
		}
		if snap.AvgResponseTimeMs > 0 {
			latencySum += snap.AvgResponseTimeMs
			latencyDays++
		}
		if snap.UserSatisfactionScore > 0 {
			satPlain += snap.UserSatisfactionScore
			satDays++
			if snap.TotalRatings > 0 {
				satWeighted += snap.UserSatisfactionScore * float64(snap.TotalRatings)
				satRatings += snap.TotalRatings
			}
		}
	}

	if lengthDays > 0 {
		agg.AvgConversationLength = lengthSum / float64(lengthDays)
	}
	if latencyDays > 0 {
		agg.AvgResponseTimeMs = latencySum / float64(latencyDays)
	}
	if satRatings > 0 {
		agg.UserSatisfactionScore = satWeighted / float64(satRatings)
	} else if satDays > 0 {
		agg.UserSatisfactionScore = satPlain / float64(satDays)
	}

	return agg
}
