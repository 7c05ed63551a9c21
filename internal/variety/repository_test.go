package variety

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"garden-guide/internal/calendar"
	"garden-guide/internal/database"
	"garden-guide/internal/frequency"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "garden.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	weekRepo := calendar.NewRepository(db.SQL)
	weekIDs := make(map[int]int64)
	for _, w := range calendar.YearWeeks(2026) {
		id, err := weekRepo.SaveWeek(ctx, w)
		if err != nil {
			t.Fatalf("SaveWeek failed: %v", err)
		}
		weekIDs[w.Ordinal] = id
	}

	freqRepo := frequency.NewRepository(db.SQL)
	dailyID, err := freqRepo.Save(ctx, frequency.Frequency{Name: "daily", OccurrencesPerYear: 365, DefaultWeekdays: []int{1, 2, 3, 4, 5, 6, 7}})
	if err != nil {
		t.Fatalf("Save frequency failed: %v", err)
	}
	weeklyID, err := freqRepo.Save(ctx, frequency.Frequency{Name: "weekly", OccurrencesPerYear: 52, DefaultWeekdays: []int{6}})
	if err != nil {
		t.Fatalf("Save frequency failed: %v", err)
	}

	repo := NewRepository(db.SQL)
	familyID, err := repo.SaveFamily(ctx, "Nightshades")
	if err != nil {
		t.Fatalf("SaveFamily failed: %v", err)
	}
	feedTypeID, err := repo.SaveFeedType(ctx, "Tomato feed")
	if err != nil {
		t.Fatalf("SaveFeedType failed: %v", err)
	}

	tomato := NewVariety{
		Name:      "Tomato",
		FamilyID:  familyID,
		Lifecycle: Annual,
		Sow:       WeekRange{weekIDs[14], weekIDs[16]},
		Harvest:   WeekRange{weekIDs[30], weekIDs[36]},
		Feed:      &NewFeed{StartWeekID: weekIDs[22], FrequencyID: weeklyID, FeedTypeID: feedTypeID},

		WaterFrequencyID: dailyID,
	}

	t.Run("CreateRejectsInvalid", func(t *testing.T) {
		bad := tomato
		bad.Transplant = &WeekRange{StartWeekID: weekIDs[18]}
		if _, err := repo.Create(ctx, bad); !errors.Is(err, ErrIncompleteWindow) {
			t.Errorf("Expected ErrIncompleteWindow, got %v", err)
		}
		bad = tomato
		bad.Lifecycle = "tree"
		if _, err := repo.Create(ctx, bad); !errors.Is(err, ErrUnknownLifecycle) {
			t.Errorf("Expected ErrUnknownLifecycle, got %v", err)
		}
	})

	t.Run("CreateRollsBackOnWaterDaysFailure", func(t *testing.T) {
		broken := newTestDB(t)
		brokenWeeks := calendar.NewRepository(broken.SQL)
		ids := make(map[int]int64)
		for _, w := range calendar.YearWeeks(2026) {
			id, err := brokenWeeks.SaveWeek(ctx, w)
			if err != nil {
				t.Fatalf("SaveWeek failed: %v", err)
			}
			ids[w.Ordinal] = id
		}
		waterID, err := frequency.NewRepository(broken.SQL).Save(ctx, frequency.Frequency{Name: "daily", OccurrencesPerYear: 365, DefaultWeekdays: []int{1, 2, 3, 4, 5, 6, 7}})
		if err != nil {
			t.Fatalf("Save frequency failed: %v", err)
		}
		if _, err := broken.SQL.ExecContext(ctx, `DROP TABLE variety_water_days`); err != nil {
			t.Fatalf("Failed to drop water days: %v", err)
		}

		brokenRepo := NewRepository(broken.SQL)
		v := NewVariety{
			Name:             "Courgette",
			Lifecycle:        Annual,
			Sow:              WeekRange{ids[16], ids[18]},
			Harvest:          WeekRange{ids[28], ids[38]},
			WaterFrequencyID: waterID,
		}
		if _, err := brokenRepo.Create(ctx, v); err == nil {
			t.Fatal("Expected Create to fail without the water days table")
		}
		if _, err := brokenRepo.IDByName(ctx, "Courgette"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected the variety insert to be rolled back, got %v", err)
		}
	})

	tomatoID, err := repo.Create(ctx, tomato)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("Get", func(t *testing.T) {
		rec, err := repo.Get(ctx, tomatoID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if rec.Name != "Tomato" || rec.FamilyName != "Nightshades" || rec.FeedTypeName != "Tomato feed" {
			t.Errorf("Unexpected record %+v", rec)
		}
		if rec.TransplantStartWeekID.Valid || rec.PruneEndWeekID.Valid {
			t.Error("Expected optional windows to be null")
		}
		if len(rec.WaterWeekdays) != 7 {
			t.Errorf("Expected water days copied from frequency defaults, got %v", rec.WaterWeekdays)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		if _, err := repo.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ActivateAndList", func(t *testing.T) {
		records, err := repo.ListActive(ctx, "alice")
		if err != nil {
			t.Fatalf("ListActive failed: %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("Expected no active varieties yet, got %d", len(records))
		}

		if err := repo.Activate(ctx, "alice", tomatoID); err != nil {
			t.Fatalf("Activate failed: %v", err)
		}
		if err := repo.Activate(ctx, "alice", tomatoID); err != nil {
			t.Fatalf("Second Activate failed: %v", err)
		}
		if err := repo.Activate(ctx, "alice", 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown variety, got %v", err)
		}

		records, err = repo.ListActive(ctx, "alice")
		if err != nil {
			t.Fatalf("ListActive failed: %v", err)
		}
		if len(records) != 1 || records[0].ID != tomatoID {
			t.Fatalf("Expected only the tomato, got %+v", records)
		}
		if len(records[0].WaterWeekdays) != 7 {
			t.Errorf("Expected 7 water days, got %v", records[0].WaterWeekdays)
		}

		if err := repo.Deactivate(ctx, "alice", tomatoID); err != nil {
			t.Fatalf("Deactivate failed: %v", err)
		}
		records, _ = repo.ListActive(ctx, "alice")
		if len(records) != 0 {
			t.Errorf("Expected no active varieties after deactivation, got %d", len(records))
		}
	})

	t.Run("FeedDays", func(t *testing.T) {
		if err := repo.SetFeedDay(ctx, "alice", feedTypeID, 6); err != nil {
			t.Fatalf("SetFeedDay failed: %v", err)
		}
		if err := repo.SetFeedDay(ctx, "alice", feedTypeID, 3); err != nil {
			t.Fatalf("SetFeedDay update failed: %v", err)
		}
		if err := repo.SetFeedDay(ctx, "alice", feedTypeID, 8); err == nil {
			t.Error("Expected an error for weekday 8")
		}
		prefs, err := repo.FeedDays(ctx, "alice")
		if err != nil {
			t.Fatalf("FeedDays failed: %v", err)
		}
		if prefs[feedTypeID] != 3 {
			t.Errorf("Expected feed day 3, got %d", prefs[feedTypeID])
		}
		other, _ := repo.FeedDays(ctx, "bob")
		if len(other) != 0 {
			t.Errorf("Expected no preferences for bob, got %v", other)
		}
	})

	t.Run("Lifecycles", func(t *testing.T) {
		if err := repo.SaveLifecycle(ctx, LifecycleInfo{Lifecycle: Perennial, ProductivityYears: 10}); err != nil {
			t.Fatalf("SaveLifecycle failed: %v", err)
		}
		infos, err := repo.Lifecycles(ctx)
		if err != nil {
			t.Fatalf("Lifecycles failed: %v", err)
		}
		if len(infos) != 1 || infos[0].ProductivityYears != 10 {
			t.Errorf("Unexpected lifecycles %+v", infos)
		}
	})
}
