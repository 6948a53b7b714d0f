package analytics

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/botforge-ai/botforge/internal/conversation"
	"github.com/botforge-ai/botforge/internal/perf"
	"github.com/botforge-ai/botforge/internal/shared"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts the export format query value. Empty defaults to JSON;
// anything else unknown is a validation error.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", shared.ErrValidation
	}
}

// ExportPayload is the full dataset behind one export download. The JSON
// encoding nests it as-is; the CSV encoding flattens the same numbers into
// labeled rows.
type ExportPayload struct {
	ChatbotID                string              `json:"chatbot_id"`
	StartDate                string              `json:"start_date"`
	EndDate                  string              `json:"end_date"`
	Summary                  perf.Summary        `json:"summary"`
	Conversations            conversation.Totals `json:"conversations"`
	SatisfactionDistribution map[int]int64       `json:"satisfaction_distribution"`
	Trend                    []perf.TrendPoint   `json:"trend"`
}

type ExportFile struct {
	Data        []byte
	ContentType string
	Filename    string
}

func Encode(p ExportPayload, format Format) (*ExportFile, error) {
	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(p, "", "  ")
		contentType = "application/json"
	case FormatCSV:
		data, err = encodeCSV(p)
		contentType = "text/csv"
	default:
		return nil, shared.ErrValidation
	}
	if err != nil {
		return nil, err
	}

	return &ExportFile{
		Data:        data,
		ContentType: contentType,
		Filename:    fmt.Sprintf("analytics-%s-%s-%s.%s", p.ChatbotID, p.StartDate, p.EndDate, format),
	}, nil
}

// encodeCSV writes three sections into one file: metric/value rows for the
// summary, satisfaction_N/count rows, then the trend table with its own
// header. Sections are separated by a blank line.
func encodeCSV(p ExportPayload) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"metric", "value"},
		{"chatbot_id", p.ChatbotID},
		{"start_date", p.StartDate},
		{"end_date", p.EndDate},
		{"total_conversations", formatInt(p.Conversations.TotalConversations)},
		{"total_messages", formatInt(p.Conversations.TotalMessages)},
		{"total_ratings", formatInt(p.Conversations.TotalRatings)},
		{"user_satisfaction_score", formatFloat(p.Conversations.UserSatisfactionScore)},
		{"total_requests", formatInt(p.Summary.TotalRequests)},
		{"average_response_time_ms", formatFloat(p.Summary.AverageResponseTimeMs)},
		{"median_response_time_ms", formatFloat(p.Summary.MedianResponseTimeMs)},
		{"p95_response_time_ms", formatFloat(p.Summary.P95ResponseTimeMs)},
		{"p99_response_time_ms", formatFloat(p.Summary.P99ResponseTimeMs)},
		{"error_rate", formatFloat(p.Summary.ErrorRate)},
		{"total_token_usage", formatInt(p.Summary.TotalTokenUsage)},
		{"average_token_usage", formatFloat(p.Summary.AverageTokenUsage)},
	}
	for score := 1; score <= 5; score++ {
		rows = append(rows, []string{
			fmt.Sprintf("satisfaction_%d", score),
			formatInt(p.SatisfactionDistribution[score]),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	buf.WriteByte('\n')

	trendRows := [][]string{
		{"bucket", "average_response_time_ms", "request_count", "error_rate", "token_usage"},
	}
	for _, pt := range p.Trend {
		trendRows = append(trendRows, []string{
			pt.BucketLabel(perf.GranularityDay),
			formatFloat(pt.AverageResponseTimeMs),
			formatInt(pt.RequestCount),
			formatFloat(pt.ErrorRate),
			formatInt(pt.TokenUsage),
		})
	}
	if err := w.WriteAll(trendRows); err != nil {
		return nil, err
	}
	w.Flush()

	return buf.Bytes(), w.Error()
}

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
