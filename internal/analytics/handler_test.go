package analytics

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/botforge-ai/botforge/internal/auth"
	"github.com/botforge-ai/botforge/internal/conversation"
	"github.com/botforge-ai/botforge/internal/dto"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *testEnv) {
	env := setupTestService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(env.service, logger), env
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID, chatbotID string) echo.Context {
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(chatbotID)
	auth.SetClaimsForTest(c, &auth.Claims{UserID: userID})
	return c
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	g := e.Group("/chatbots/:id/analytics")

	h.RegisterRoutes(g)

	expectedPaths := []string{
		"/chatbots/:id/analytics/dashboard",
		"/chatbots/:id/analytics/performance",
		"/chatbots/:id/analytics/conversations",
		"/chatbots/:id/analytics/conversations/similar",
		"/chatbots/:id/analytics/snapshots",
		"/chatbots/:id/analytics/export",
		"/chatbots/:id/analytics/generate",
	}

	routePaths := make(map[string]bool)
	for _, r := range e.Routes() {
		routePaths[r.Path] = true
	}
	for _, path := range expectedPaths {
		if !routePaths[path] {
			t.Errorf("expected route %s to be registered", path)
		}
	}
}

func TestHandler_Dashboard_Unauthorized(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/chatbots/bot_1/analytics/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Dashboard(c)
	if err == nil {
		t.Fatal("expected error when not authenticated")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, httpErr.Code)
	}
}

func TestHandler_Dashboard_NotOwner(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_owner")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/chatbots/"+botID+"/analytics/dashboard", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_intruder", botID)

	err := h.Dashboard(c)
	if err == nil {
		t.Fatal("expected error for non-owner")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, httpErr.Code)
	}
}

func TestHandler_Dashboard_Success(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")
	env.seedConversation(t, botID, time.Now().UTC().Add(-time.Hour), conversation.MetricsUpdate{
		MessageCount:     int64Ptr(5),
		UserSatisfaction: intPtr(4),
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/chatbots/"+botID+"/analytics/dashboard?period=7d", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp dto.DashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Period != "7d" {
		t.Errorf("period = %q, want 7d", resp.Period)
	}
	if resp.TotalConversations != 1 || resp.TotalMessages != 5 {
		t.Errorf("counts = %d/%d, want 1/5", resp.TotalConversations, resp.TotalMessages)
	}
}

func TestHandler_Performance_Success(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")
	env.seedSample(t, botID, time.Now().UTC().Add(-time.Hour), 300, 200, 50)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/chatbots/"+botID+"/analytics/performance", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	if err := h.Performance(c); err != nil {
		t.Fatalf("Performance() error = %v", err)
	}

	var resp dto.PerformanceInsightsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.PerformanceStats.TotalRequests != 1 {
		t.Errorf("total requests = %d, want 1", resp.PerformanceStats.TotalRequests)
	}
	if len(resp.PerformanceTrends) != 1 {
		t.Errorf("trend points = %d, want 1", len(resp.PerformanceTrends))
	}
}

func TestHandler_Conversations_InvalidPagination(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/chatbots/"+botID+"/analytics/conversations?limit=500", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	err := h.Conversations(c)
	if err == nil {
		t.Fatal("expected error for oversized limit")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, httpErr.Code)
	}
}

func TestHandler_Conversations_Success(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")
	started := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	env.seedConversation(t, botID, started, conversation.MetricsUpdate{
		UserSatisfaction: intPtr(4),
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/chatbots/"+botID+"/analytics/conversations?start_date=2026-01-01&end_date=2026-01-31&min_satisfaction=3", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	if err := h.Conversations(c); err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}

	var resp dto.ConversationHistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Conversations) != 1 {
		t.Fatalf("conversations = %d, want 1", len(resp.Conversations))
	}
	if resp.Pagination.Total != 1 || resp.Pagination.Page != 1 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
	if resp.Filters.MinSatisfaction == nil || *resp.Filters.MinSatisfaction != 3 {
		t.Errorf("filters echo = %+v", resp.Filters)
	}
}

func TestHandler_Conversations_EndDateCoversWholeDay(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")
	env.seedConversation(t, botID,
		time.Date(2026, 1, 31, 23, 59, 59, 900000000, time.UTC),
		conversation.MetricsUpdate{MessageCount: int64Ptr(2)})
	env.seedConversation(t, botID,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		conversation.MetricsUpdate{MessageCount: int64Ptr(2)})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/chatbots/"+botID+"/analytics/conversations?start_date=2026-01-01&end_date=2026-01-31", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	if err := h.Conversations(c); err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}

	var resp dto.ConversationHistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// The last sub-second of January 31 is inside the range; February 1 is not.
	if len(resp.Conversations) != 1 {
		t.Fatalf("conversations = %d, want 1", len(resp.Conversations))
	}
	if resp.Filters.EndDate != "2026-01-31" {
		t.Errorf("filters end date = %q, want the requested day", resp.Filters.EndDate)
	}
	if resp.Filters.StartDate != "2026-01-01" {
		t.Errorf("filters start date = %q", resp.Filters.StartDate)
	}
}

func TestHandler_Export_MissingDates(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/chatbots/"+botID+"/analytics/export", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	err := h.Export(c)
	if err == nil {
		t.Fatal("expected error when dates are missing")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, httpErr.Code)
	}
}

func TestHandler_Export_CSV(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")
	env.seedSample(t, botID, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), 300, 200, 50)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		"/chatbots/"+botID+"/analytics/export?start_date=2026-01-01&end_date=2026-01-31&format=csv", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	if err := h.Export(c); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	disposition := rec.Header().Get(echo.HeaderContentDisposition)
	if !strings.Contains(disposition, "analytics-"+botID+"-2026-01-01-2026-01-31.csv") {
		t.Errorf("content disposition = %q", disposition)
	}
	if !strings.Contains(rec.Body.String(), "average_response_time_ms") {
		t.Error("expected csv body to contain summary rows")
	}
}

func TestHandler_Generate_Success(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")
	env.seedConversation(t, botID, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), conversation.MetricsUpdate{
		MessageCount: int64Ptr(4),
	})

	e := echo.New()
	body := `{"start_date":"2026-01-15","end_date":"2026-01-15"}`
	req := httptest.NewRequest(http.MethodPost,
		"/chatbots/"+botID+"/analytics/generate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	if err := h.Generate(c); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var resp dto.GenerateAnalyticsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Snapshots) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(resp.Snapshots))
	}
	if resp.Snapshots[0].Date != "2026-01-15" {
		t.Errorf("snapshot date = %q, want 2026-01-15", resp.Snapshots[0].Date)
	}
	if resp.Snapshots[0].TotalConversations != 1 {
		t.Errorf("snapshot conversations = %d, want 1", resp.Snapshots[0].TotalConversations)
	}
}

func TestHandler_Snapshots_Success(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")
	env.seedConversation(t, botID, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), conversation.MetricsUpdate{
		MessageCount: int64Ptr(4),
	})

	e := echo.New()
	body := `{"start_date":"2026-01-15","end_date":"2026-01-15"}`
	req := httptest.NewRequest(http.MethodPost,
		"/chatbots/"+botID+"/analytics/generate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Generate(authedContext(e, req, rec, "user_1", botID)); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	req = httptest.NewRequest(http.MethodGet,
		"/chatbots/"+botID+"/analytics/snapshots?start_date=2026-01-15&end_date=2026-01-15", nil)
	rec = httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	if err := h.Snapshots(c); err != nil {
		t.Fatalf("Snapshots() error = %v", err)
	}

	var resp dto.SnapshotHistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Snapshots) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(resp.Snapshots))
	}
	if resp.Aggregate.TotalConversations != 1 || resp.Aggregate.TotalMessages != 4 {
		t.Errorf("aggregate = %+v, want 1 conversation with 4 messages", resp.Aggregate)
	}
}

func TestHandler_Generate_InvalidRange(t *testing.T) {
	h, env := newTestHandler(t)
	botID := env.seedChatbot(t, "user_1")

	e := echo.New()
	body := `{"start_date":"2026-01-31","end_date":"2026-01-01"}`
	req := httptest.NewRequest(http.MethodPost,
		"/chatbots/"+botID+"/analytics/generate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, "user_1", botID)

	err := h.Generate(c)
	if err == nil {
		t.Fatal("expected error for reversed range")
	}
	httpErr := err.(*echo.HTTPError)
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, httpErr.Code)
	}
}
