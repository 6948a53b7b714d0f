// Package live tracks per-day engagement signals in redis as conversations
// happen: distinct end users, query popularity, and response categories.
// The daily rollup reads these when it materializes snapshots; raw samples
// alone cannot reconstruct them.
package live

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const trackingTTL = 90 * 24 * time.Hour

type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func usersKey(chatbotID string, day time.Time) string {
	return "bot:" + chatbotID + ":users:" + dayKey(day)
}

func queriesKey(chatbotID string, day time.Time) string {
	return "bot:" + chatbotID + ":queries:" + dayKey(day)
}

func categoriesKey(chatbotID string, day time.Time) string {
	return "bot:" + chatbotID + ":categories:" + dayKey(day)
}

// TrackUser registers an end user as active today. Set membership makes the
// daily unique-user count exact.
func (s *Store) TrackUser(ctx context.Context, chatbotID, endUserID string) error {
	key := usersKey(chatbotID, time.Now())
	pipe := s.redis.Pipeline()
	pipe.SAdd(ctx, key, endUserID)
	pipe.Expire(ctx, key, trackingTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// TrackQuery bumps the popularity of a user query for today's leaderboard.
func (s *Store) TrackQuery(ctx context.Context, chatbotID, query string) error {
	key := queriesKey(chatbotID, time.Now())
	pipe := s.redis.Pipeline()
	pipe.ZIncrBy(ctx, key, 1, query)
	pipe.Expire(ctx, key, trackingTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// TrackResponseCategory counts one generated reply against a category label
// (faq, handoff, fallback, ...).
func (s *Store) TrackResponseCategory(ctx context.Context, chatbotID, category string) error {
	key := categoriesKey(chatbotID, time.Now())
	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, category, 1)
	pipe.Expire(ctx, key, trackingTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// UniqueUsers returns the distinct end-user count for one calendar day.
func (s *Store) UniqueUsers(ctx context.Context, chatbotID string, day time.Time) (int64, error) {
	return s.redis.SCard(ctx, usersKey(chatbotID, day)).Result()
}

// TopQueries returns up to n of the day's most frequent queries, most
// popular first.
func (s *Store) TopQueries(ctx context.Context, chatbotID string, day time.Time, n int) ([]string, error) {
	return s.redis.ZRevRange(ctx, queriesKey(chatbotID, day), 0, int64(n-1)).Result()
}

// ResponseCategories returns the day's reply-category counts.
func (s *Store) ResponseCategories(ctx context.Context, chatbotID string, day time.Time) (map[string]int64, error) {
	raw, err := s.redis.HGetAll(ctx, categoriesKey(chatbotID, day)).Result()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(raw))
	for category, v := range raw {
		n, _ := strconv.ParseInt(v, 10, 64)
		counts[category] = n
	}
	return counts, nil
}
