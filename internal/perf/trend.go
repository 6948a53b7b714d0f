package perf

import (
	"sort"
	"time"
)

type Granularity string

const (
	GranularityDay  Granularity = "day"
	GranularityHour Granularity = "hour"
)

// TrendPoint is one time bucket of the performance trend series.
type TrendPoint struct {
	Bucket                time.Time `json:"bucket"`
	AverageResponseTimeMs float64   `json:"average_response_time_ms"`
	RequestCount          int64     `json:"request_count"`
	ErrorRate             float64   `json:"error_rate"`
	TokenUsage            int64     `json:"token_usage"`
}

// BucketLabel renders the bucket key the way the API exposes it.
func (p TrendPoint) BucketLabel(g Granularity) string {
	if g == GranularityHour {
		return p.Bucket.Format("2006-01-02T15:00")
	}
	return p.Bucket.Format("2006-01-02")
}

// TruncateBucket drops sub-bucket precision from a timestamp. Day buckets
// are calendar days in UTC, hour buckets clock hours.
func TruncateBucket(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	if g == GranularityHour {
		return t.Truncate(time.Hour)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildTrend partitions samples into buckets keyed by truncated timestamp
// and emits them in ascending order. Buckets with zero samples are absent;
// callers are expected to handle sparse series.
func BuildTrend(samples []*Sample, g Granularity) []TrendPoint {
	type bucketAccum struct {
		latencySum int64
		tokenSum   int64
		errors     int64
		count      int64
	}

	buckets := make(map[time.Time]*bucketAccum)
	for _, s := range samples {
		key := TruncateBucket(s.Timestamp, g)
		acc := buckets[key]
		if acc == nil {
			acc = &bucketAccum{}
			buckets[key] = acc
		}
		acc.latencySum += int64(s.ResponseTimeMs)
		acc.tokenSum += int64(s.TokenCount)
		if s.StatusCode >= 400 {
			acc.errors++
		}
		acc.count++
	}

	points := make([]TrendPoint, 0, len(buckets))
	for key, acc := range buckets {
		points = append(points, TrendPoint{
			Bucket:                key,
			AverageResponseTimeMs: float64(acc.latencySum) / float64(acc.count),
			RequestCount:          acc.count,
			ErrorRate:             float64(acc.errors) / float64(acc.count) * 100,
			TokenUsage:            acc.tokenSum,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Bucket.Before(points[j].Bucket)
	})

	return points
}
