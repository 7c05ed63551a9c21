package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"garden-guide/internal/calendar"
	"garden-guide/internal/database"
	"garden-guide/internal/frequency"
	"garden-guide/internal/metrics"
	"garden-guide/internal/schedule"
	"garden-guide/internal/seed"
	"garden-guide/internal/storage"
	"garden-guide/internal/variety"
)

// App holds the application's dependencies.
type App struct {
	db           *database.DB
	weekRepo     *calendar.Repository
	freqRepo     *frequency.Repository
	varietyRepo  *variety.Repository
	guides       *schedule.Service
	metricsStore *metrics.Store
	archive      *storage.GuideArchive
	out          io.Writer
}

// NewApp creates and initializes a new App instance. archive may be nil
// when guides are never archived.
func NewApp(db *database.DB, archive *storage.GuideArchive, out io.Writer) *App {
	weekRepo := calendar.NewRepository(db.SQL)
	freqRepo := frequency.NewRepository(db.SQL)
	varietyRepo := variety.NewRepository(db.SQL)
	return &App{
		db:           db,
		weekRepo:     weekRepo,
		freqRepo:     freqRepo,
		varietyRepo:  varietyRepo,
		guides:       schedule.NewService(weekRepo, freqRepo, varietyRepo, log.Default()),
		metricsStore: metrics.NewStore(db.SQL),
		archive:      archive,
		out:          out,
	}
}

// Guides returns the guide service.
func (a *App) Guides() *schedule.Service {
	return a.guides
}

// Metrics returns the metrics store.
func (a *App) Metrics() *metrics.Store {
	return a.metricsStore
}

// Seed loads a catalogue file, or the built-in one when path is empty, in
// a single transaction.
func (a *App) Seed(ctx context.Context, path string) error {
	var cat *seed.Catalogue
	var err error
	if path == "" {
		cat, err = seed.Default()
	} else {
		cat, err = seed.Load(path)
	}
	if err != nil {
		return err
	}

	var res seed.Result
	err = a.db.InTx(ctx, func(tx *sql.Tx) error {
		res, err = seed.Apply(ctx, cat, seed.Repos{
			Calendar:    a.weekRepo.WithTx(tx),
			Frequencies: a.freqRepo.WithTx(tx),
			Varieties:   a.varietyRepo.WithTx(tx),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to seed catalogue: %w", err)
	}

	fmt.Fprintf(a.out, "Seeded %d weeks, %d frequencies, %d new varieties (%d kept), %d gardens.\n",
		res.Weeks, res.Frequencies, res.VarietiesCreated, res.VarietiesKept, res.Gardens)
	return nil
}

// Activate adds a variety to the user's garden.
func (a *App) Activate(ctx context.Context, userID string, varietyID int64) error {
	if err := a.varietyRepo.Activate(ctx, userID, varietyID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Variety %d is now active for %s.\n", varietyID, userID)
	return nil
}

// PrintGuide computes the guide for userID and prints it. A nil week means
// the current week. With archive set the guide is also written to the archive.
func (a *App) PrintGuide(ctx context.Context, userID string, week *int, archive bool) error {
	reqID := uuid.NewString()
	req := schedule.Request{ID: reqID, UserID: userID, Current: week == nil}
	if week != nil {
		req.Week = *week
	}
	guide, err := a.guides.Guide(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to build guide: %w", err)
	}

	if err := a.metricsStore.Record(ctx, metrics.FromGuide(userID, "cli", guide.Stats)); err != nil {
		log.Printf("Warning: [request %s] failed to record metrics: %v", reqID, err)
	}

	if archive {
		if a.archive == nil {
			return fmt.Errorf("no guide archive configured")
		}
		if err := a.archive.Save(userID, guide); err != nil {
			return err
		}
		log.Printf("Archived week %d for %s.", guide.Week.Ordinal, userID)
	}

	fmt.Fprint(a.out, FormatGuideText(guide))
	return nil
}

// CleanupMetrics removes metric records older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) error {
	affected, err := a.metricsStore.Cleanup(ctx, days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Fprintf(a.out, "Successfully removed %d old metric records.\n", affected)
	return nil
}

func summaryNames(vs []variety.Summary) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.Name
	}
	return strings.Join(parts, ", ")
}

// FormatGuideText renders a guide as plain text.
func FormatGuideText(guide *schedule.Guide) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== WEEK %d (%s - %s) ===\n", guide.Week.Ordinal, guide.Week.StartLabel, guide.Week.EndLabel)

	sections := []struct {
		title string
		items []variety.Summary
	}{
		{"Sow", guide.Weekly.Sow},
		{"Transplant", guide.Weekly.Transplant},
		{"Harvest", guide.Weekly.Harvest},
		{"Prune", guide.Weekly.Prune},
		{"Compost", guide.Weekly.Compost},
	}
	for _, s := range sections {
		if len(s.items) > 0 {
			fmt.Fprintf(&sb, "%-10s: %s\n", s.title, summaryNames(s.items))
		}
	}

	sb.WriteString("\n=== DAILY ===\n")
	for n := 1; n <= calendar.DaysPerWeek; n++ {
		day := guide.Daily[n]
		if len(day.Feed)+len(day.Water) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s\n", day.Weekday.Name)
		for _, f := range day.Feed {
			fmt.Fprintf(&sb, "  - Feed (%s): %s\n", f.FeedType.Name, summaryNames(f.Varieties))
		}
		if len(day.Water) > 0 {
			fmt.Fprintf(&sb, "  - Water: %s\n", summaryNames(day.Water))
		}
	}
	return sb.String()
}
