package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"garden-guide/internal/database"
	"garden-guide/internal/schedule"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	store := NewStore(db.SQL)

	recent := FromGuide("alice", "api", schedule.Stats{Week: 20, Varieties: 3, Tasks: 9, Skipped: 1, Latency: 4 * time.Millisecond})
	if recent.LatencyMS != 4 || recent.Tasks != 9 {
		t.Errorf("Unexpected metric %+v", recent)
	}
	if err := store.Record(ctx, recent); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, GuideMetric{UserID: "bob", Source: "cli", Week: 21, Tasks: 2}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	old := GuideMetric{UserID: "alice", Source: "telegram", Week: 1, Tasks: 5, Timestamp: time.Now().UTC().AddDate(0, 0, -60)}
	if err := store.Record(ctx, old); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	t.Run("GetDailyUsage", func(t *testing.T) {
		usage, err := store.GetDailyUsage(ctx, 7)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected one day of usage, got %+v", usage)
		}
		if usage[0].Guides != 2 || usage[0].Tasks != 11 || usage[0].Skipped != 1 {
			t.Errorf("Unexpected usage %+v", usage[0])
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		removed, err := store.Cleanup(ctx, 30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if removed != 1 {
			t.Errorf("Expected 1 record removed, got %d", removed)
		}
	})
}

func TestGetSysHealth(t *testing.T) {
	h := GetSysHealth(t.TempDir())
	if h.Goroutines == 0 {
		t.Error("Expected at least one goroutine")
	}
	if h.DataDiskSize != "0 B" {
		t.Errorf("Expected empty dir to be 0 B, got %q", h.DataDiskSize)
	}
}
