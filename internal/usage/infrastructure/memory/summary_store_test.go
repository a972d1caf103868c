package memory

import (
	"context"
	"errors"
	"testing"

	usage "restroom-cloud/internal/usage/domain"
)

func TestSummaryStoreGetMiss(t *testing.T) {
	store := NewSummaryStore()
	if _, err := store.Get(context.Background(), "2026-08-29"); !errors.Is(err, usage.ErrSummaryNotFound) {
		t.Fatalf("error = %v, want ErrSummaryNotFound", err)
	}
	if _, err := store.Get(context.Background(), ""); !errors.Is(err, usage.ErrEmptyDayKey) {
		t.Fatalf("error = %v, want ErrEmptyDayKey", err)
	}
}

func TestSummaryStoreSaveThenGet(t *testing.T) {
	store := NewSummaryStore()
	ctx := context.Background()

	summary, err := usage.NewDailySummary("2026-08-29")
	if err != nil {
		t.Fatalf("new summary: %v", err)
	}
	summary.TotalUsers = 12
	if err := store.Save(ctx, summary); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Get(ctx, "2026-08-29")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.TotalUsers != 12 {
		t.Fatalf("loaded users = %d, want 12", loaded.TotalUsers)
	}

	// Upsert overwrites.
	summary.TotalUsers = 13
	if err := store.Save(ctx, summary); err != nil {
		t.Fatalf("save again: %v", err)
	}
	loaded, _ = store.Get(ctx, "2026-08-29")
	if loaded.TotalUsers != 13 {
		t.Fatalf("upsert not applied: users = %d", loaded.TotalUsers)
	}
}

func TestSummaryStoreDeleteBefore(t *testing.T) {
	store := NewSummaryStore()
	ctx := context.Background()
	for _, key := range []usage.DayKey{"2026-05-01", "2026-05-31", "2026-06-15"} {
		summary, err := usage.NewDailySummary(key)
		if err != nil {
			t.Fatalf("new summary: %v", err)
		}
		if err := store.Save(ctx, summary); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	removed, err := store.DeleteBefore(ctx, "2026-05-31")
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(ctx, "2026-05-31"); err != nil {
		t.Fatalf("boundary day removed: %v", err)
	}
}
