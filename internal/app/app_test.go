package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"garden-guide/internal/calendar"
	"garden-guide/internal/database"
	"garden-guide/internal/storage"
	"garden-guide/internal/variety"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer, *storage.GuideArchive) {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "garden.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	archive, err := storage.NewGuideArchive(filepath.Join(dir, "guides"))
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	out := &bytes.Buffer{}
	return NewApp(db, archive, out), out, archive
}

func TestApp(t *testing.T) {
	ctx := context.Background()
	a, out, archive := newTestApp(t)

	if err := a.Seed(ctx, ""); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if !strings.Contains(out.String(), "Seeded 52 weeks") {
		t.Errorf("Unexpected seed output %q", out.String())
	}

	t.Run("PrintGuide", func(t *testing.T) {
		out.Reset()
		week := 20
		if err := a.PrintGuide(ctx, "demo", &week, true); err != nil {
			t.Fatalf("PrintGuide failed: %v", err)
		}
		text := out.String()
		for _, want := range []string{"=== WEEK 20", "Sow       : Courgette", "Transplant: Tomato", "Harvest   : Rhubarb", "  - Water: Tomato"} {
			if !strings.Contains(text, want) {
				t.Errorf("Expected %q in output:\n%s", want, text)
			}
		}
		if !archive.Exists("demo", 20) {
			t.Error("Expected week 20 to be archived")
		}

		usage, err := a.Metrics().GetDailyUsage(ctx, 1)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 || usage[0].Guides != 1 {
			t.Errorf("Expected one recorded guide, got %+v", usage)
		}
	})

	t.Run("PrintGuideUnknownWeek", func(t *testing.T) {
		for _, week := range []int{0, 60} {
			if err := a.PrintGuide(ctx, "demo", &week, false); !errors.Is(err, calendar.ErrWeekNotFound) {
				t.Errorf("Expected ErrWeekNotFound for week %d, got %v", week, err)
			}
		}
	})

	t.Run("PrintGuideCurrentWeek", func(t *testing.T) {
		out.Reset()
		if err := a.PrintGuide(ctx, "demo", nil, false); err != nil {
			t.Fatalf("PrintGuide failed: %v", err)
		}
		if !strings.Contains(out.String(), "=== WEEK ") {
			t.Errorf("Expected a week header, got:\n%s", out.String())
		}
	})

	t.Run("Activate", func(t *testing.T) {
		out.Reset()
		if err := a.Activate(ctx, "bob", 1); err != nil {
			t.Fatalf("Activate failed: %v", err)
		}
		if !strings.Contains(out.String(), "Variety 1 is now active for bob") {
			t.Errorf("Unexpected output %q", out.String())
		}
		if err := a.Activate(ctx, "bob", 999); !errors.Is(err, variety.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SeedMissingFile", func(t *testing.T) {
		if err := a.Seed(ctx, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("Expected an error for a missing catalogue, got nil")
		}
	})

	t.Run("CleanupMetrics", func(t *testing.T) {
		out.Reset()
		if err := a.CleanupMetrics(ctx, 30); err != nil {
			t.Fatalf("CleanupMetrics failed: %v", err)
		}
		if !strings.Contains(out.String(), "removed 0 old metric records") {
			t.Errorf("Unexpected output %q", out.String())
		}
	})
}
