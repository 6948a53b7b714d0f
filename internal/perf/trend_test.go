package perf

import (
	"testing"
	"time"
)

func TestBuildTrend_DayBuckets(t *testing.T) {
	day1 := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	day3 := time.Date(2026, 1, 12, 23, 0, 0, 0, time.UTC)

	samples := []*Sample{
		{Timestamp: day3, ResponseTimeMs: 400, StatusCode: 200, TokenCount: 40},
		{Timestamp: day1, ResponseTimeMs: 100, StatusCode: 200, TokenCount: 10},
		{Timestamp: day1.Add(2 * time.Hour), ResponseTimeMs: 300, StatusCode: 500, TokenCount: 30},
	}

	points := BuildTrend(samples, GranularityDay)

	// Jan 11 has no samples and must be absent, not zero-filled.
	if len(points) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(points))
	}

	if !points[0].Bucket.Equal(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first bucket = %v, want 2026-01-10", points[0].Bucket)
	}
	if points[0].RequestCount != 2 {
		t.Errorf("first bucket count = %d, want 2", points[0].RequestCount)
	}
	if points[0].AverageResponseTimeMs != 200 {
		t.Errorf("first bucket avg = %v, want 200", points[0].AverageResponseTimeMs)
	}
	if points[0].ErrorRate != 50 {
		t.Errorf("first bucket error rate = %v, want 50", points[0].ErrorRate)
	}
	if points[0].TokenUsage != 40 {
		t.Errorf("first bucket tokens = %v, want 40", points[0].TokenUsage)
	}

	if !points[1].Bucket.Equal(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("second bucket = %v, want 2026-01-12", points[1].Bucket)
	}
}

func TestBuildTrend_HourBuckets(t *testing.T) {
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	samples := []*Sample{
		{Timestamp: base.Add(10 * time.Minute), ResponseTimeMs: 100, StatusCode: 200},
		{Timestamp: base.Add(50 * time.Minute), ResponseTimeMs: 300, StatusCode: 200},
		{Timestamp: base.Add(3 * time.Hour), ResponseTimeMs: 500, StatusCode: 200},
	}

	points := BuildTrend(samples, GranularityHour)

	if len(points) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(points))
	}
	if !points[0].Bucket.Equal(base) {
		t.Errorf("first bucket = %v, want %v", points[0].Bucket, base)
	}
	if points[0].AverageResponseTimeMs != 200 {
		t.Errorf("first bucket avg = %v, want 200", points[0].AverageResponseTimeMs)
	}
}

func TestBuildTrend_Empty(t *testing.T) {
	points := BuildTrend(nil, GranularityDay)
	if len(points) != 0 {
		t.Errorf("expected empty series, got %d points", len(points))
	}
}

func TestBuildTrend_StrictlyAscendingUniqueBuckets(t *testing.T) {
	var samples []*Sample
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Deliberately unsorted input spread over 10 days, 3 samples each.
	for i := 29; i >= 0; i-- {
		samples = append(samples, &Sample{
			Timestamp:      base.AddDate(0, 0, i%10).Add(time.Duration(i) * time.Minute),
			ResponseTimeMs: 100 + i,
			StatusCode:     200,
		})
	}

	points := BuildTrend(samples, GranularityDay)
	if len(points) != 10 {
		t.Fatalf("expected 10 buckets, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Bucket.Before(points[i].Bucket) {
			t.Errorf("buckets not strictly ascending at %d: %v >= %v",
				i, points[i-1].Bucket, points[i].Bucket)
		}
	}
}

func TestTrendPoint_BucketLabel(t *testing.T) {
	p := TrendPoint{Bucket: time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC)}
	if got := p.BucketLabel(GranularityDay); got != "2026-01-10" {
		t.Errorf("day label = %s", got)
	}
	if got := p.BucketLabel(GranularityHour); got != "2026-01-10T14:00" {
		t.Errorf("hour label = %s", got)
	}
}
