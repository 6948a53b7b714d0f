package analytics

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/botforge-ai/botforge/internal/auth"
	"github.com/botforge-ai/botforge/internal/conversation"
	"github.com/botforge-ai/botforge/internal/dto"
	"github.com/botforge-ai/botforge/internal/rollup"
	"github.com/botforge-ai/botforge/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the analytics surface under /chatbots/:id/analytics.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/dashboard", h.Dashboard)
	g.GET("/performance", h.Performance)
	g.GET("/conversations", h.Conversations)
	g.GET("/conversations/similar", h.SimilarConversations)
	g.GET("/snapshots", h.Snapshots)
	g.GET("/export", h.Export)
	g.POST("/generate", h.Generate)
}

func (h *Handler) mapError(c echo.Context, err error, op string) error {
	switch err {
	case shared.ErrNotFound:
		return shared.NotFound("chatbot_not_found", "chatbot not found")
	case shared.ErrValidation:
		return shared.BadRequest("invalid_request", "invalid request parameters")
	}
	h.logger.Error("analytics request failed",
		"error", err, "op", op, "chatbot_id", c.Param("id"))
	return shared.InternalError(op+"_failed", "analytics request failed")
}

func (h *Handler) resolveRange(c echo.Context) (TimeRange, error) {
	return ResolveTimeRange(
		c.QueryParam("start_date"),
		c.QueryParam("end_date"),
		c.QueryParam("period"),
		time.Now().UTC(),
	)
}

// Dashboard godoc
// @Summary      Dashboard metrics
// @Description  Headline conversation and latency metrics for one chatbot
// @Tags         analytics
// @Produce      json
// @Param        id          path      string  true   "Chatbot ID"
// @Param        period      query     string  false  "Named period (7d, 30d, 90d, 1y)"
// @Param        start_date  query     string  false  "Explicit range start (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Explicit range end (YYYY-MM-DD)"
// @Success      200  {object}  dto.DashboardResponse
// @Failure      404  {object}  shared.APIError
// @Router       /chatbots/{id}/analytics/dashboard [get]
func (h *Handler) Dashboard(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	tr, err := h.resolveRange(c)
	if err != nil {
		return h.mapError(c, err, "dashboard")
	}

	d, err := h.service.Dashboard(c.Request().Context(), userID, c.Param("id"), tr)
	if err != nil {
		return h.mapError(c, err, "dashboard")
	}

	return c.JSON(http.StatusOK, dto.DashboardResponse{
		ChatbotID:             d.ChatbotID,
		Period:                d.Period,
		TotalConversations:    d.Totals.TotalConversations,
		TotalMessages:         d.Totals.TotalMessages,
		AverageResponseTimeMs: d.Totals.AvgResponseTimeMs,
		UserSatisfactionScore: d.Totals.UserSatisfactionScore,
		TotalRatings:          d.Totals.TotalRatings,
	})
}

// Performance godoc
// @Summary      Performance insights
// @Description  Latency percentiles, error rate, token usage, and the bucketed trend series
// @Tags         analytics
// @Produce      json
// @Param        id          path      string  true   "Chatbot ID"
// @Param        period      query     string  false  "Named period (7d, 30d, 90d, 1y)"
// @Param        start_date  query     string  false  "Explicit range start (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Explicit range end (YYYY-MM-DD)"
// @Success      200  {object}  dto.PerformanceInsightsResponse
// @Failure      404  {object}  shared.APIError
// @Router       /chatbots/{id}/analytics/performance [get]
func (h *Handler) Performance(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	tr, err := h.resolveRange(c)
	if err != nil {
		return h.mapError(c, err, "performance")
	}

	ins, err := h.service.PerformanceInsights(c.Request().Context(), userID, c.Param("id"), tr)
	if err != nil {
		return h.mapError(c, err, "performance")
	}

	trend := make([]dto.TrendPointResponse, len(ins.Trend))
	for i, pt := range ins.Trend {
		trend[i] = dto.TrendPointResponse{
			Bucket:                pt.BucketLabel(ins.Granularity),
			AverageResponseTimeMs: pt.AverageResponseTimeMs,
			RequestCount:          pt.RequestCount,
			ErrorRate:             pt.ErrorRate,
			TokenUsage:            pt.TokenUsage,
		}
	}

	return c.JSON(http.StatusOK, dto.PerformanceInsightsResponse{
		ChatbotID: ins.ChatbotID,
		Period:    ins.Period,
		PerformanceStats: dto.PerformanceStatsResponse{
			AverageResponseTimeMs: ins.Stats.AverageResponseTimeMs,
			MedianResponseTimeMs:  ins.Stats.MedianResponseTimeMs,
			P95ResponseTimeMs:     ins.Stats.P95ResponseTimeMs,
			P99ResponseTimeMs:     ins.Stats.P99ResponseTimeMs,
			TotalRequests:         ins.Stats.TotalRequests,
			ErrorRate:             ins.Stats.ErrorRate,
			TotalTokenUsage:       ins.Stats.TotalTokenUsage,
			AverageTokenUsage:     ins.Stats.AverageTokenUsage,
		},
		PerformanceTrends: trend,
	})
}

// Conversations godoc
// @Summary      Conversation history
// @Description  Paginated conversations with messages and metrics, filtered by date, satisfaction, and text search
// @Tags         analytics
// @Produce      json
// @Param        id                path      string  true   "Chatbot ID"
// @Param        page              query     int     false  "Page number (1-based)"
// @Param        limit             query     int     false  "Page size (max 100)"
// @Param        search            query     string  false  "Case-insensitive message text filter"
// @Param        start_date        query     string  false  "Started-at lower bound (YYYY-MM-DD)"
// @Param        end_date          query     string  false  "Started-at upper bound (YYYY-MM-DD)"
// @Param        min_satisfaction  query     int     false  "Minimum satisfaction rating (1-5)"
// @Param        max_satisfaction  query     int     false  "Maximum satisfaction rating (1-5)"
// @Param        sort_field        query     string  false  "Sort column (started_at, ended_at, session_id)"
// @Param        sort_dir          query     string  false  "Sort direction (asc, desc)"
// @Success      200  {object}  dto.ConversationHistoryResponse
// @Failure      400  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Router       /chatbots/{id}/analytics/conversations [get]
func (h *Handler) Conversations(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	filter, err := parseConversationFilter(c)
	if err != nil {
		return shared.BadRequest("invalid_filter", "invalid filter parameters")
	}
	page := conversation.Page{
		Page:  intQueryParam(c, "page"),
		Limit: intQueryParam(c, "limit"),
	}
	sort := conversation.Sort{
		Field:     c.QueryParam("sort_field"),
		Direction: conversation.SortDirection(c.QueryParam("sort_dir")),
	}

	result, err := h.service.ConversationHistory(c.Request().Context(), userID, c.Param("id"), filter, page, sort)
	if err != nil {
		return h.mapError(c, err, "conversations")
	}

	return c.JSON(http.StatusOK, historyResponse(result, filter))
}

// SimilarConversations godoc
// @Summary      Similar conversations
// @Description  Finds conversations semantically close to a free-text query
// @Tags         analytics
// @Produce      json
// @Param        id     path      string  true   "Chatbot ID"
// @Param        q      query     string  true   "Query text"
// @Param        limit  query     int     false  "Max results (default 10, max 50)"
// @Success      200  {array}   dto.ConversationResponse
// @Failure      400  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Router       /chatbots/{id}/analytics/conversations/similar [get]
func (h *Handler) SimilarConversations(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	convs, err := h.service.SimilarConversations(
		c.Request().Context(), userID, c.Param("id"),
		c.QueryParam("q"), intQueryParam(c, "limit"))
	if err != nil {
		if err == shared.ErrValidation {
			return shared.BadRequest("missing_query", "query text is required")
		}
		return h.mapError(c, err, "similar_conversations")
	}

	response := make([]dto.ConversationResponse, len(convs))
	for i, conv := range convs {
		response[i] = conversationResponse(conv, nil, nil)
	}
	return c.JSON(http.StatusOK, response)
}

// Snapshots godoc
// @Summary      Snapshot history
// @Description  Stored daily snapshots for the window plus their rolled-up totals; serves only what generate persisted
// @Tags         analytics
// @Produce      json
// @Param        id          path      string  true   "Chatbot ID"
// @Param        period      query     string  false  "Named period (7d, 30d, 90d, 1y)"
// @Param        start_date  query     string  false  "Explicit range start (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Explicit range end (YYYY-MM-DD)"
// @Success      200  {object}  dto.SnapshotHistoryResponse
// @Failure      404  {object}  shared.APIError
// @Router       /chatbots/{id}/analytics/snapshots [get]
func (h *Handler) Snapshots(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	tr, err := h.resolveRange(c)
	if err != nil {
		return h.mapError(c, err, "snapshots")
	}

	hist, err := h.service.SnapshotHistory(c.Request().Context(), userID, c.Param("id"), tr)
	if err != nil {
		return h.mapError(c, err, "snapshots")
	}

	response := dto.SnapshotHistoryResponse{
		ChatbotID: hist.ChatbotID,
		Period:    hist.Period,
		Aggregate: dto.AggregateResponse{
			TotalConversations:    hist.Aggregate.TotalConversations,
			TotalMessages:         hist.Aggregate.TotalMessages,
			TotalRatings:          hist.Aggregate.TotalRatings,
			UniqueUsers:           hist.Aggregate.UniqueUsers,
			AvgConversationLength: hist.Aggregate.AvgConversationLength,
			AvgResponseTimeMs:     hist.Aggregate.AvgResponseTimeMs,
			UserSatisfactionScore: hist.Aggregate.UserSatisfactionScore,
		},
		Snapshots: make([]dto.SnapshotResponse, len(hist.Snapshots)),
	}
	for i, snap := range hist.Snapshots {
		response.Snapshots[i] = snapshotResponse(snap)
	}
	return c.JSON(http.StatusOK, response)
}

// Export godoc
// @Summary      Export analytics
// @Description  Downloads the window's metrics as JSON or CSV; both dates are required
// @Tags         analytics
// @Produce      json
// @Produce      text/csv
// @Param        id          path      string  true   "Chatbot ID"
// @Param        start_date  query     string  true   "Range start (YYYY-MM-DD)"
// @Param        end_date    query     string  true   "Range end, inclusive (YYYY-MM-DD)"
// @Param        format      query     string  false  "Export format (json or csv, default json)"
// @Success      200  {file}    file
// @Failure      400  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Router       /chatbots/{id}/analytics/export [get]
func (h *Handler) Export(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	tr, err := ResolveExportRange(c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return shared.BadRequest("invalid_range", "start_date and end_date are required and must be ordered")
	}

	format, err := ParseFormat(c.QueryParam("format"))
	if err != nil {
		return shared.BadRequest("invalid_format", "format must be json or csv")
	}

	file, err := h.service.Export(c.Request().Context(), userID, c.Param("id"), tr, format)
	if err != nil {
		return h.mapError(c, err, "export")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}

// Generate godoc
// @Summary      Generate daily snapshots
// @Description  Recomputes and upserts one analytics snapshot per day in the range
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Chatbot ID"
// @Param        request  body      dto.GenerateAnalyticsRequest  true  "Date range"
// @Success      200      {object}  dto.GenerateAnalyticsResponse
// @Failure      400      {object}  shared.APIError
// @Failure      404      {object}  shared.APIError
// @Router       /chatbots/{id}/analytics/generate [post]
func (h *Handler) Generate(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req dto.GenerateAnalyticsRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	tr, err := ResolveExportRange(req.StartDate, req.EndDate)
	if err != nil {
		return shared.BadRequest("invalid_range", "start_date and end_date are required and must be ordered")
	}

	snaps, err := h.service.Generate(c.Request().Context(), userID, c.Param("id"), tr)
	if err != nil {
		return h.mapError(c, err, "generate")
	}

	response := dto.GenerateAnalyticsResponse{
		ChatbotID: c.Param("id"),
		Snapshots: make([]dto.SnapshotResponse, len(snaps)),
	}
	for i, snap := range snaps {
		response.Snapshots[i] = snapshotResponse(snap)
	}
	return c.JSON(http.StatusOK, response)
}

func parseConversationFilter(c echo.Context) (conversation.Filter, error) {
	f := conversation.Filter{Search: c.QueryParam("search")}

	if v := c.QueryParam("start_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, err
		}
		// The whole requested day: everything started before the next
		// midnight is in, including the final sub-second.
		t = t.AddDate(0, 0, 1)
		f.EndDate = &t
	}
	if v := c.QueryParam("min_satisfaction"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, err
		}
		f.MinSatisfaction = &n
	}
	if v := c.QueryParam("max_satisfaction"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, err
		}
		f.MaxSatisfaction = &n
	}
	return f, nil
}

func intQueryParam(c echo.Context, name string) int {
	v := c.QueryParam(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func historyResponse(result *conversation.Result, f conversation.Filter) dto.ConversationHistoryResponse {
	conversations := make([]dto.ConversationResponse, len(result.Items))
	for i, item := range result.Items {
		conversations[i] = conversationResponse(item.Conversation, item.Messages, item.Metrics)
	}

	filters := dto.ConversationFiltersResponse{
		Search:          f.Search,
		MinSatisfaction: f.MinSatisfaction,
		MaxSatisfaction: f.MaxSatisfaction,
	}
	if f.StartDate != nil {
		filters.StartDate = f.StartDate.Format("2006-01-02")
	}
	if f.EndDate != nil {
		// The bound is exclusive next-midnight; echo back the requested day.
		filters.EndDate = f.EndDate.AddDate(0, 0, -1).Format("2006-01-02")
	}

	return dto.ConversationHistoryResponse{
		Conversations: conversations,
		Pagination: dto.PaginationResponse{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
			Pages: result.Pages,
		},
		Filters: filters,
	}
}

func conversationResponse(conv *conversation.Conversation, messages []*conversation.Message, m *conversation.Metrics) dto.ConversationResponse {
	r := dto.ConversationResponse{
		ID:        conv.ID,
		ChatbotID: conv.ChatbotID,
		SessionID: conv.SessionID,
		StartedAt: conv.StartedAt.Format(time.RFC3339),
		Messages:  make([]dto.MessageResponse, len(messages)),
	}
	if conv.EndedAt != nil {
		r.EndedAt = conv.EndedAt.Format(time.RFC3339)
	}

	for i, msg := range messages {
		r.Messages[i] = dto.MessageResponse{
			ID:        msg.ID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp.Format(time.RFC3339),
		}
	}

	if m != nil {
		mr := &dto.ConversationMetricsResponse{
			ConversationID:    m.ConversationID,
			MessageCount:      m.MessageCount,
			DurationSeconds:   m.DurationSeconds,
			AvgResponseTimeMs: m.AvgResponseTimeMs,
			UserSatisfaction:  m.UserSatisfaction,
			UserIntent:        m.UserIntent,
			GoalAchieved:      m.GoalAchieved,
			Topics:            m.Topics,
		}
		for _, sample := range m.SentimentSamples {
			mr.SentimentSamples = append(mr.SentimentSamples, dto.SentimentSampleResponse{
				Timestamp:  sample.Timestamp.Format(time.RFC3339),
				Score:      sample.Score,
				Confidence: sample.Confidence,
			})
		}
		r.Metrics = mr
	}

	return r
}

func snapshotResponse(snap *rollup.Snapshot) dto.SnapshotResponse {
	return dto.SnapshotResponse{
		ChatbotID:             snap.ChatbotID,
		Date:                  snap.Date.Format("2006-01-02"),
		TotalConversations:    snap.TotalConversations,
		TotalMessages:         snap.TotalMessages,
		UniqueUsers:           snap.UniqueUsers,
		AvgConversationLength: snap.AvgConversationLength,
		AvgResponseTimeMs:     snap.AvgResponseTimeMs,
		UserSatisfactionScore: snap.UserSatisfactionScore,
		TotalRatings:          snap.TotalRatings,
		PopularQueries:        snap.PopularQueries,
		ResponseCategories:    snap.ResponseCategories,
	}
}
