package rollup

import (
	"testing"
	"time"

	"github.com/botforge-ai/botforge/internal/shared"
)

func TestTruncateDay(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "midday utc",
			in:   time.Date(2026, 1, 15, 14, 30, 45, 123, time.UTC),
			want: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "already midnight",
			in:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-utc zone normalized",
			in:   time.Date(2026, 1, 15, 23, 30, 0, 0, time.FixedZone("UTC+3", 3*3600)),
			want: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateDay(tt.in); !got.Equal(tt.want) {
				t.Errorf("TruncateDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_CountsSum(t *testing.T) {
	prev := Snapshot{TotalConversations: 5, TotalMessages: 40, TotalRatings: 3}

	next := Merge(prev, Delta{TotalConversations: 2, TotalMessages: 10, TotalRatings: 1})

	if next.TotalConversations != 7 || next.TotalMessages != 50 || next.TotalRatings != 4 {
		t.Errorf("counts not summed: %+v", next)
	}
	if prev.TotalConversations != 5 {
		t.Error("Merge must not mutate its input")
	}
}

func TestMerge_OverwriteFields(t *testing.T) {
	prev := Snapshot{
		AvgResponseTimeMs:     500,
		UserSatisfactionScore: 4.5,
		UniqueUsers:           12,
	}

	// Zero-valued delta fields leave the stored value alone.
	next := Merge(prev, Delta{TotalConversations: 1})
	if next.AvgResponseTimeMs != 500 || next.UserSatisfactionScore != 4.5 || next.UniqueUsers != 12 {
		t.Errorf("zero delta overwrote stored values: %+v", next)
	}

	// Non-zero delta fields replace, never average.
	next = Merge(prev, Delta{AvgResponseTimeMs: 900, UserSatisfactionScore: 3.0, UniqueUsers: 20})
	if next.AvgResponseTimeMs != 900 {
		t.Errorf("avg response time = %v, want 900", next.AvgResponseTimeMs)
	}
	if next.UserSatisfactionScore != 3.0 {
		t.Errorf("satisfaction = %v, want 3.0", next.UserSatisfactionScore)
	}
	if next.UniqueUsers != 20 {
		t.Errorf("unique users = %v, want 20", next.UniqueUsers)
	}
}

func TestMerge_SplitDeltasEqualSingleDelta(t *testing.T) {
	a := Delta{TotalConversations: 1, TotalMessages: 5}
	b := Delta{TotalConversations: 1, TotalMessages: 3, AvgResponseTimeMs: 900}

	split := Merge(Merge(Snapshot{}, a), b)
	combined := Merge(Snapshot{}, Delta{
		TotalConversations: 2, TotalMessages: 8, AvgResponseTimeMs: 900,
	})

	if split.TotalConversations != combined.TotalConversations ||
		split.TotalMessages != combined.TotalMessages ||
		split.AvgResponseTimeMs != combined.AvgResponseTimeMs {
		t.Errorf("split %+v != combined %+v", split, combined)
	}
}

func TestMerge_ListsReplacedWhenSupplied(t *testing.T) {
	prev := Snapshot{
		PopularQueries:     shared.StringSlice{"pricing"},
		ResponseCategories: shared.JSONMap{"faq": float64(10)},
	}

	next := Merge(prev, Delta{PopularQueries: shared.StringSlice{"refunds", "shipping"}})
	if len(next.PopularQueries) != 2 || next.PopularQueries[0] != "refunds" {
		t.Errorf("popular queries not replaced: %v", next.PopularQueries)
	}
	if next.ResponseCategories["faq"] != float64(10) {
		t.Error("nil delta map should leave categories untouched")
	}
}
