package analytics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/botforge-ai/botforge/internal/chatbot"
	"github.com/botforge-ai/botforge/internal/conversation"
	"github.com/botforge-ai/botforge/internal/live"
	"github.com/botforge-ai/botforge/internal/perf"
	"github.com/botforge-ai/botforge/internal/rollup"
	"github.com/botforge-ai/botforge/internal/shared"
)

const (
	topQueryLimit = 10

	// A window at or under two days renders hourly; anything wider renders
	// daily buckets.
	hourlyWindowMax = 48 * time.Hour
)

// EmbeddingService turns free text into a vector for similarity lookups.
type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Service is the owner-scoped entry point for every analytics read and the
// snapshot generation job. Every method resolves the chatbot through the
// requesting user first; a chatbot the user does not own surfaces as
// shared.ErrNotFound.
type Service struct {
	chatbots      *chatbot.Store
	samples       *perf.Store
	conversations *conversation.Store
	rollups       *rollup.Store
	tracker       *live.Store
	embeddings    EmbeddingService
	logger        *slog.Logger
}

func NewService(
	chatbots *chatbot.Store,
	samples *perf.Store,
	conversations *conversation.Store,
	rollups *rollup.Store,
	tracker *live.Store,
	embeddings EmbeddingService,
	logger *slog.Logger,
) *Service {
	return &Service{
		chatbots:      chatbots,
		samples:       samples,
		conversations: conversations,
		rollups:       rollups,
		tracker:       tracker,
		embeddings:    embeddings,
		logger:        logger,
	}
}

func (s *Service) authorize(ctx context.Context, userID, chatbotID string) error {
	_, err := s.chatbots.GetOwned(ctx, chatbotID, userID)
	return err
}

// Dashboard is the headline metrics block for one chatbot and window.
type Dashboard struct {
	ChatbotID string
	Period    string
	Totals    conversation.Totals
}

func (s *Service) Dashboard(ctx context.Context, userID, chatbotID string, tr TimeRange) (*Dashboard, error) {
	if err := s.authorize(ctx, userID, chatbotID); err != nil {
		return nil, err
	}

	totals, err := s.conversations.TotalsRange(ctx, chatbotID, tr.Start, tr.End)
	if err != nil {
		return nil, err
	}

	// Conversations without per-conversation metrics leave the latency
	// average empty; the raw request samples still know it.
	if totals.AvgResponseTimeMs == 0 {
		samples, err := s.samples.ListRange(ctx, chatbotID, tr.Start, tr.End)
		if err != nil {
			return nil, err
		}
		totals.AvgResponseTimeMs = perf.Summarize(samples).AverageResponseTimeMs
	}

	return &Dashboard{
		ChatbotID: chatbotID,
		Period:    tr.Period,
		Totals:    totals,
	}, nil
}

// Insights bundles the latency summary with its trend series.
type Insights struct {
	ChatbotID   string
	Period      string
	Granularity perf.Granularity
	Stats       perf.Summary
	Trend       []perf.TrendPoint
}

func (s *Service) PerformanceInsights(ctx context.Context, userID, chatbotID string, tr TimeRange) (*Insights, error) {
	if err := s.authorize(ctx, userID, chatbotID); err != nil {
		return nil, err
	}

	samples, err := s.samples.ListRange(ctx, chatbotID, tr.Start, tr.End)
	if err != nil {
		return nil, err
	}

	g := perf.GranularityDay
	if tr.End.Sub(tr.Start) <= hourlyWindowMax {
		g = perf.GranularityHour
	}

	return &Insights{
		ChatbotID:   chatbotID,
		Period:      tr.Period,
		Granularity: g,
		Stats:       perf.Summarize(samples),
		Trend:       perf.BuildTrend(samples, g),
	}, nil
}

func (s *Service) ConversationHistory(ctx context.Context, userID, chatbotID string, f conversation.Filter, p conversation.Page, sort conversation.Sort) (*conversation.Result, error) {
	if err := s.authorize(ctx, userID, chatbotID); err != nil {
		return nil, err
	}
	return s.conversations.Find(ctx, chatbotID, f, p, sort)
}

func (s *Service) SimilarConversations(ctx context.Context, userID, chatbotID, query string, limit int) ([]*conversation.Conversation, error) {
	if err := s.authorize(ctx, userID, chatbotID); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, shared.ErrValidation
	}
	if limit <= 0 {
		limit = topQueryLimit
	}
	if limit > 50 {
		limit = 50
	}
	if s.embeddings == nil {
		return nil, errors.New("embedding service not configured")
	}

	embedding, err := s.embeddings.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.conversations.SearchByEmbedding(ctx, chatbotID, embedding, limit)
}

// Generate materializes one snapshot per calendar day in the range by
// aggregating that day's conversation metrics, request samples, and redis
// engagement signals. Returns the stored snapshots for the range, ascending.
func (s *Service) Generate(ctx context.Context, userID, chatbotID string, tr TimeRange) ([]*rollup.Snapshot, error) {
	if err := s.authorize(ctx, userID, chatbotID); err != nil {
		return nil, err
	}

	firstDay := rollup.TruncateDay(tr.Start)
	for day := firstDay; day.Before(tr.End); day = day.AddDate(0, 0, 1) {
		if err := s.generateDay(ctx, chatbotID, day); err != nil {
			return nil, err
		}
	}

	lastDay := rollup.TruncateDay(tr.End.Add(-time.Second))
	return s.rollups.ListRange(ctx, chatbotID, firstDay, lastDay)
}

func (s *Service) generateDay(ctx context.Context, chatbotID string, day time.Time) error {
	dayEnd := day.AddDate(0, 0, 1)

	totals, err := s.conversations.TotalsRange(ctx, chatbotID, day, dayEnd)
	if err != nil {
		return err
	}

	samples, err := s.samples.ListRange(ctx, chatbotID, day, dayEnd)
	if err != nil {
		return err
	}
	summary := perf.Summarize(samples)

	d := rollup.Delta{
		TotalConversations:    totals.TotalConversations,
		TotalMessages:         totals.TotalMessages,
		TotalRatings:          totals.TotalRatings,
		AvgConversationLength: totals.AvgMessageCount,
		AvgResponseTimeMs:     totals.AvgResponseTimeMs,
		UserSatisfactionScore: totals.UserSatisfactionScore,
	}
	if d.AvgResponseTimeMs == 0 {
		d.AvgResponseTimeMs = summary.AverageResponseTimeMs
	}

	// Engagement signals live in redis only. Losing them degrades the
	// snapshot, it does not fail the run.
	if s.tracker != nil {
		if users, err := s.tracker.UniqueUsers(ctx, chatbotID, day); err != nil {
			s.logger.Warn("unique user lookup failed", "chatbot_id", chatbotID, "day", day, "error", err)
		} else {
			d.UniqueUsers = users
		}
		if queries, err := s.tracker.TopQueries(ctx, chatbotID, day, topQueryLimit); err != nil {
			s.logger.Warn("top query lookup failed", "chatbot_id", chatbotID, "day", day, "error", err)
		} else if len(queries) > 0 {
			d.PopularQueries = shared.StringSlice(queries)
		}
		if categories, err := s.tracker.ResponseCategories(ctx, chatbotID, day); err != nil {
			s.logger.Warn("response category lookup failed", "chatbot_id", chatbotID, "day", day, "error", err)
		} else if len(categories) > 0 {
			m := make(shared.JSONMap, len(categories))
			for k, v := range categories {
				m[k] = v
			}
			d.ResponseCategories = m
		}
	}

	if isEmptyDelta(d) {
		return nil
	}
	return s.rollups.Upsert(ctx, chatbotID, day, d)
}

// SnapshotHistory is the materialized view of a window: the stored daily
// snapshots plus their rolled-up totals. Unlike Dashboard, which recomputes
// from the raw tables, this reads only what Generate persisted.
type SnapshotHistory struct {
	ChatbotID string
	Period    string
	Aggregate rollup.Aggregate
	Snapshots []*rollup.Snapshot
}

func (s *Service) SnapshotHistory(ctx context.Context, userID, chatbotID string, tr TimeRange) (*SnapshotHistory, error) {
	if err := s.authorize(ctx, userID, chatbotID); err != nil {
		return nil, err
	}

	lastDay := rollup.TruncateDay(tr.End.Add(-time.Second))
	snaps, err := s.rollups.ListRange(ctx, chatbotID, rollup.TruncateDay(tr.Start), lastDay)
	if err != nil {
		return nil, err
	}

	return &SnapshotHistory{
		ChatbotID: chatbotID,
		Period:    tr.Period,
		Aggregate: rollup.Aggregated(snaps),
		Snapshots: snaps,
	}, nil
}

func isEmptyDelta(d rollup.Delta) bool {
	return d.TotalConversations == 0 &&
		d.TotalMessages == 0 &&
		d.TotalRatings == 0 &&
		d.UniqueUsers == 0 &&
		d.AvgConversationLength == 0 &&
		d.AvgResponseTimeMs == 0 &&
		d.UserSatisfactionScore == 0 &&
		d.PopularQueries == nil &&
		d.ResponseCategories == nil
}

// Export renders the window's metrics in the requested format.
func (s *Service) Export(ctx context.Context, userID, chatbotID string, tr TimeRange, format Format) (*ExportFile, error) {
	if err := s.authorize(ctx, userID, chatbotID); err != nil {
		return nil, err
	}

	samples, err := s.samples.ListRange(ctx, chatbotID, tr.Start, tr.End)
	if err != nil {
		return nil, err
	}

	totals, err := s.conversations.TotalsRange(ctx, chatbotID, tr.Start, tr.End)
	if err != nil {
		return nil, err
	}

	dist, err := s.conversations.SatisfactionDistribution(ctx, chatbotID, tr.Start, tr.End)
	if err != nil {
		return nil, err
	}

	payload := ExportPayload{
		ChatbotID:                chatbotID,
		StartDate:                tr.StartLabel(),
		EndDate:                  tr.EndLabel(),
		Summary:                  perf.Summarize(samples),
		Conversations:            totals,
		SatisfactionDistribution: dist,
		Trend:                    perf.BuildTrend(samples, perf.GranularityDay),
	}

	return Encode(payload, format)
}
