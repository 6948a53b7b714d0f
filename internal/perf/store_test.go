package perf

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	store := NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return store
}

func TestStore_Record(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sample := &Sample{ChatbotID: "bot_1", ResponseTimeMs: 150}
	if err := store.Record(ctx, sample); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if sample.ID == "" {
		t.Error("sample ID should be generated if not provided")
	}
	if sample.Timestamp.IsZero() {
		t.Error("timestamp should default to now")
	}
}

func TestStore_ListRange(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	samples := []*Sample{
		{ChatbotID: "bot_1", Timestamp: base.Add(-time.Hour), ResponseTimeMs: 1},
		{ChatbotID: "bot_1", Timestamp: base.Add(2 * time.Hour), ResponseTimeMs: 2},
		{ChatbotID: "bot_1", Timestamp: base.Add(time.Hour), ResponseTimeMs: 3},
		{ChatbotID: "bot_1", Timestamp: base.Add(24 * time.Hour), ResponseTimeMs: 4},
		{ChatbotID: "bot_2", Timestamp: base.Add(time.Hour), ResponseTimeMs: 5},
	}
	if err := store.RecordBatch(ctx, samples); err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}

	got, err := store.ListRange(ctx, "bot_1", base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListRange() error = %v", err)
	}

	// Window is [start, end): before-start, at-end, and foreign-bot samples
	// are all excluded.
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if got[0].ResponseTimeMs != 3 || got[1].ResponseTimeMs != 2 {
		t.Errorf("expected ascending timestamp order, got %d then %d",
			got[0].ResponseTimeMs, got[1].ResponseTimeMs)
	}

	count, err := store.CountRange(ctx, "bot_1", base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("CountRange() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountRange() = %d, want 2", count)
	}
}

func TestStore_PurgeBefore(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	samples := []*Sample{
		{ChatbotID: "bot_1", Timestamp: now.AddDate(0, 0, -100), ResponseTimeMs: 1},
		{ChatbotID: "bot_1", Timestamp: now.AddDate(0, 0, -91), ResponseTimeMs: 2},
		{ChatbotID: "bot_1", Timestamp: now.AddDate(0, 0, -10), ResponseTimeMs: 3},
	}
	if err := store.RecordBatch(ctx, samples); err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}

	removed, err := store.PurgeBefore(ctx, now.AddDate(0, 0, -DefaultRetentionDays))
	if err != nil {
		t.Fatalf("PurgeBefore() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	remaining, _ := store.ListRange(ctx, "bot_1", now.AddDate(-1, 0, 0), now)
	if len(remaining) != 1 || remaining[0].ResponseTimeMs != 3 {
		t.Errorf("expected only the recent sample to survive, got %d", len(remaining))
	}
}
