package perf

import (
	"sort"
	"time"
)

// Summary aggregates a sample set into the dashboard's latency and token
// statistics. All fields are zero when the set is empty; none of the
// computations can produce NaN.
type Summary struct {
	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
	MedianResponseTimeMs  float64 `json:"median_response_time_ms"`
	P95ResponseTimeMs     float64 `json:"p95_response_time_ms"`
	P99ResponseTimeMs     float64 `json:"p99_response_time_ms"`
	TotalRequests         int64   `json:"total_requests"`
	ErrorRate             float64 `json:"error_rate"`
	TotalTokenUsage       int64   `json:"total_token_usage"`
	AverageTokenUsage     float64 `json:"average_token_usage"`
}

// Summarize computes latency percentiles by sorting ascending and indexing
// at floor(n*q). The floor-index tie-break is load-bearing: dashboards and
// exports compare against historical values computed the same way.
// Malformed samples (negative latency) are aggregated as-is; validation
// belongs to the sample writer.
func Summarize(samples []*Sample) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{}
	}

	latencies := make([]int, n)
	var latencySum, tokenSum, errorCount int64
	for i, s := range samples {
		latencies[i] = s.ResponseTimeMs
		latencySum += int64(s.ResponseTimeMs)
		tokenSum += int64(s.TokenCount)
		if s.StatusCode >= 400 {
			errorCount++
		}
	}
	sort.Ints(latencies)

	return Summary{
		AverageResponseTimeMs: float64(latencySum) / float64(n),
		MedianResponseTimeMs:  float64(latencies[quantileIndex(n, 0.5)]),
		P95ResponseTimeMs:     float64(latencies[quantileIndex(n, 0.95)]),
		P99ResponseTimeMs:     float64(latencies[quantileIndex(n, 0.99)]),
		TotalRequests:         int64(n),
		ErrorRate:             float64(errorCount) / float64(n) * 100,
		TotalTokenUsage:       tokenSum,
		AverageTokenUsage:     float64(tokenSum) / float64(n),
	}
}

// SummarizeRange filters samples to [start, end) before summarizing. Zero
// start/end values disable the respective bound.
func SummarizeRange(samples []*Sample, start, end time.Time) Summary {
	bounded := make([]*Sample, 0, len(samples))
	for _, s := range samples {
		if !start.IsZero() && s.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && !s.Timestamp.Before(end) {
			continue
		}
		bounded = append(bounded, s)
	}
	return Summarize(bounded)
}

func quantileIndex(n int, q float64) int {
	idx := int(float64(n) * q)
	if idx >= n {
		idx = n - 1
	}
	return idx
}
