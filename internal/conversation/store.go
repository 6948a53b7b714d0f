package conversation

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
	"github.com/qdrant/go-client/qdrant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (Conversation) TableName() string { return "conversations" }
func (Message) TableName() string      { return "messages" }
func (Metrics) TableName() string      { return "conversation_metrics" }

type Store struct {
	db     *gorm.DB
	qdrant *qdrant.Client
}

func NewStore(db *gorm.DB, qdrantClient *qdrant.Client) *Store {
	return &Store{
		db:     db,
		qdrant: qdrantClient,
	}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Conversation{}, &Message{}, &Metrics{})
}

func (s *Store) Create(ctx context.Context, conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = shared.NewID("conv_")
	}
	if conv.StartedAt.IsZero() {
		conv.StartedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(conv).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*Conversation, error) {
	var conv Conversation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &conv, err
}

func (s *Store) AddMessage(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = shared.NewID("msg_")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(msg).Error
}

func (s *Store) End(ctx context.Context, id string, endedAt time.Time) error {
	result := s.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ?", id).
		Update("ended_at", endedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpsertMetrics merges the supplied fields into the metrics record for the
// conversation, creating it on first write. Keyed on conversation_id, so the
// same conversation never grows a second record. Retried once when a
// concurrent insert wins the race; other failures surface immediately.
func (s *Store) UpsertMetrics(ctx context.Context, chatbotID, conversationID string, u MetricsUpdate) error {
	err := s.upsertMetrics(ctx, chatbotID, conversationID, u)
	if err == nil || !shared.IsRetryableConflict(err) {
		return err
	}
	return s.upsertMetrics(ctx, chatbotID, conversationID, u)
}

func (s *Store) upsertMetrics(ctx context.Context, chatbotID, conversationID string, u MetricsUpdate) error {
	row := Metrics{
		ID:             shared.NewID("cmet_"),
		ConversationID: conversationID,
		ChatbotID:      chatbotID,
	}
	assignments := map[string]any{"updated_at": time.Now().UTC()}

	if u.MessageCount != nil {
		row.MessageCount = *u.MessageCount
		assignments["message_count"] = *u.MessageCount
	}
	if u.DurationSeconds != nil {
		row.DurationSeconds = *u.DurationSeconds
		assignments["duration_seconds"] = *u.DurationSeconds
	}
	if u.AvgResponseTimeMs != nil {
		row.AvgResponseTimeMs = *u.AvgResponseTimeMs
		assignments["avg_response_time_ms"] = *u.AvgResponseTimeMs
	}
	if u.UserSatisfaction != nil {
		row.UserSatisfaction = u.UserSatisfaction
		assignments["user_satisfaction"] = *u.UserSatisfaction
	}
	if u.UserIntent != nil {
		row.UserIntent = *u.UserIntent
		assignments["user_intent"] = *u.UserIntent
	}
	if u.GoalAchieved != nil {
		row.GoalAchieved = *u.GoalAchieved
		assignments["goal_achieved"] = *u.GoalAchieved
	}
	if u.SentimentSamples != nil {
		row.SentimentSamples = u.SentimentSamples
		assignments["sentiment_samples"] = u.SentimentSamples
	}
	if u.Topics != nil {
		row.Topics = u.Topics
		assignments["topics"] = u.Topics
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&row).Error
}

func (s *Store) GetMetrics(ctx context.Context, conversationID string) (*Metrics, error) {
	var m Metrics
	err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &m, err
}

func (s *Store) metricsByConversation(ctx context.Context, ids []string) (map[string]*Metrics, error) {
	byConv := make(map[string]*Metrics, len(ids))
	if len(ids) == 0 {
		return byConv, nil
	}
	var rows []*Metrics
	err := s.db.WithContext(ctx).Where("conversation_id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		byConv[m.ConversationID] = m
	}
	return byConv, nil
}

// searchConversationIDs returns the distinct conversation ids among the
// candidates whose messages contain the search text, case-insensitive.
func (s *Store) searchConversationIDs(ctx context.Context, candidateIDs []string, search string) (map[string]bool, error) {
	matched := make(map[string]bool)
	if len(candidateIDs) == 0 {
		return matched, nil
	}
	var ids []string
	pattern := "%" + strings.ToLower(search) + "%"
	err := s.db.WithContext(ctx).Model(&Message{}).
		Distinct("conversation_id").
		Where("conversation_id IN ? AND LOWER(content) LIKE ?", candidateIDs, pattern).
		Pluck("conversation_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		matched[id] = true
	}
	return matched, nil
}

func (s *Store) messagesByConversation(ctx context.Context, ids []string) (map[string][]*Message, error) {
	byConv := make(map[string][]*Message, len(ids))
	if len(ids) == 0 {
		return byConv, nil
	}
	var rows []*Message
	err := s.db.WithContext(ctx).
		Where("conversation_id IN ?", ids).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		byConv[m.ConversationID] = append(byConv[m.ConversationID], m)
	}
	return byConv, nil
}

// Find runs the filtered, paginated history query. Candidates are paged at
// the datastore level on the date bound alone; satisfaction and search
// filters then narrow the page in memory. The reported total also covers
// only the date bound (see Filter.DatePredicate).
func (s *Store) Find(ctx context.Context, chatbotID string, f Filter, p Page, sort Sort) (*Result, error) {
	p, err := p.Normalize()
	if err != nil {
		return nil, err
	}

	pred, args := f.DatePredicate(chatbotID)

	var convs []*Conversation
	err = s.db.WithContext(ctx).
		Where(pred, args...).
		Order(sort.OrderClause()).
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&convs).Error
	if err != nil {
		return nil, err
	}

	candidateIDs := make([]string, len(convs))
	for i, c := range convs {
		candidateIDs[i] = c.ID
	}

	metrics, err := s.metricsByConversation(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	if f.HasSatisfactionBound() {
		kept := convs[:0]
		for _, c := range convs {
			if f.MatchesSatisfaction(metrics[c.ID]) {
				kept = append(kept, c)
			}
		}
		convs = kept
	}

	if f.Search != "" {
		ids := make([]string, len(convs))
		for i, c := range convs {
			ids[i] = c.ID
		}
		matched, err := s.searchConversationIDs(ctx, ids, f.Search)
		if err != nil {
			return nil, err
		}
		kept := convs[:0]
		for _, c := range convs {
			if matched[c.ID] {
				kept = append(kept, c)
			}
		}
		convs = kept
	}

	survivorIDs := make([]string, len(convs))
	for i, c := range convs {
		survivorIDs[i] = c.ID
	}
	messages, err := s.messagesByConversation(ctx, survivorIDs)
	if err != nil {
		return nil, err
	}

	items := make([]*Detail, len(convs))
	for i, c := range convs {
		items[i] = &Detail{
			Conversation: c,
			Messages:     messages[c.ID],
			Metrics:      metrics[c.ID],
		}
	}

	var total int64
	err = s.db.WithContext(ctx).Model(&Conversation{}).
		Where(pred, args...).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	return &Result{
		Items: items,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}, nil
}

// TotalsRange aggregates the metrics records of conversations started in
// [start, end) into the dashboard totals.
type Totals struct {
	TotalConversations    int64
	TotalMessages         int64
	AvgResponseTimeMs     float64
	UserSatisfactionScore float64
	TotalRatings          int64
	AvgMessageCount       float64
}

func (s *Store) TotalsRange(ctx context.Context, chatbotID string, start, end time.Time) (Totals, error) {
	var t Totals

	err := s.db.WithContext(ctx).Model(&Conversation{}).
		Where("chatbot_id = ? AND started_at >= ? AND started_at < ?", chatbotID, start, end).
		Count(&t.TotalConversations).Error
	if err != nil {
		return t, err
	}

	var row struct {
		MessageSum   int64
		AvgResponse  float64
		AvgSatisf    float64
		RatingCount  int64
		AvgMsgLength float64
	}
	err = s.db.WithContext(ctx).Model(&Metrics{}).
		Select(
			"COALESCE(SUM(message_count), 0) AS message_sum, "+
				"COALESCE(AVG(CASE WHEN avg_response_time_ms > 0 THEN avg_response_time_ms END), 0) AS avg_response, "+
				"COALESCE(AVG(user_satisfaction), 0) AS avg_satisf, "+
				"COUNT(user_satisfaction) AS rating_count, "+
				"COALESCE(AVG(CASE WHEN message_count > 0 THEN message_count END), 0) AS avg_msg_length").
		Joins("JOIN conversations ON conversations.id = conversation_metrics.conversation_id").
		Where("conversation_metrics.chatbot_id = ? AND conversations.started_at >= ? AND conversations.started_at < ?",
			chatbotID, start, end).
		Scan(&row).Error
	if err != nil {
		return t, err
	}

	t.TotalMessages = row.MessageSum
	t.AvgResponseTimeMs = row.AvgResponse
	t.UserSatisfactionScore = row.AvgSatisf
	t.TotalRatings = row.RatingCount
	t.AvgMessageCount = row.AvgMsgLength
	return t, nil
}

// SatisfactionDistribution counts rated conversations per score 1..5 for
// conversations started in [start, end). Unrated conversations are absent.
func (s *Store) SatisfactionDistribution(ctx context.Context, chatbotID string, start, end time.Time) (map[int]int64, error) {
	var rows []struct {
		UserSatisfaction int
		Count            int64
	}
	err := s.db.WithContext(ctx).Model(&Metrics{}).
		Select("user_satisfaction, COUNT(*) AS count").
		Joins("JOIN conversations ON conversations.id = conversation_metrics.conversation_id").
		Where("conversation_metrics.chatbot_id = ? AND conversations.started_at >= ? AND conversations.started_at < ? AND user_satisfaction IS NOT NULL",
			chatbotID, start, end).
		Group("user_satisfaction").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dist := make(map[int]int64, 5)
	for _, r := range rows {
		dist[r.UserSatisfaction] = r.Count
	}
	return dist, nil
}
