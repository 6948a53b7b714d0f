package perf

import (
	"context"
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
	"gorm.io/gorm"
)

const purgeBatchSize = 5000

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Sample{})
}

func (s *Store) Record(ctx context.Context, sample *Sample) error {
	if sample.ID == "" {
		sample.ID = shared.NewID("perf_")
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(sample).Error
}

func (s *Store) RecordBatch(ctx context.Context, samples []*Sample) error {
	if len(samples) == 0 {
		return nil
	}
	for _, sample := range samples {
		if sample.ID == "" {
			sample.ID = shared.NewID("perf_")
		}
		if sample.Timestamp.IsZero() {
			sample.Timestamp = time.Now().UTC()
		}
	}
	return s.db.WithContext(ctx).CreateInBatches(samples, 500).Error
}

// ListRange returns samples for the chatbot with timestamps in [start, end),
// ascending by timestamp.
func (s *Store) ListRange(ctx context.Context, chatbotID string, start, end time.Time) ([]*Sample, error) {
	var samples []*Sample
	err := s.db.WithContext(ctx).
		Where("chatbot_id = ? AND timestamp >= ? AND timestamp < ?", chatbotID, start, end).
		Order("timestamp ASC").
		Find(&samples).Error
	return samples, err
}

func (s *Store) CountRange(ctx context.Context, chatbotID string, start, end time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Sample{}).
		Where("chatbot_id = ? AND timestamp >= ? AND timestamp < ?", chatbotID, start, end).
		Count(&count).Error
	return count, err
}

// PurgeBefore deletes samples older than the cutoff in bounded batches so a
// large backlog never holds one long transaction. Returns rows removed.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for {
		result := s.db.WithContext(ctx).
			Where("id IN (?)", s.db.Model(&Sample{}).
				Select("id").
				Where("timestamp < ?", cutoff).
				Limit(purgeBatchSize)).
			Delete(&Sample{})
		if result.Error != nil {
			return total, result.Error
		}
		total += result.RowsAffected
		if result.RowsAffected < purgeBatchSize {
			return total, nil
		}
	}
}
