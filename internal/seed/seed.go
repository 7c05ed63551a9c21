// Package seed loads the reference catalogue of weeks, frequencies and
// varieties into the database.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"garden-guide/internal/calendar"
	"garden-guide/internal/frequency"
	"garden-guide/internal/variety"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// ErrInvalidCatalogue is returned when a catalogue references something it
// does not define.
var ErrInvalidCatalogue = errors.New("invalid catalogue")

// Range is a window given in week ordinals.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type Feed struct {
	Start     int    `yaml:"start"`
	Frequency string `yaml:"frequency"`
	Type      string `yaml:"type"`
}

type HighTempWater struct {
	Frequency  string  `yaml:"frequency"`
	ThresholdC float64 `yaml:"threshold_c"`
}

type Variety struct {
	Name          string         `yaml:"name"`
	Family        string         `yaml:"family"`
	Lifecycle     string         `yaml:"lifecycle"`
	Sow           Range          `yaml:"sow"`
	Transplant    *Range         `yaml:"transplant"`
	Harvest       Range          `yaml:"harvest"`
	Prune         *Range         `yaml:"prune"`
	Feed          *Feed          `yaml:"feed"`
	Water         string         `yaml:"water"`
	HighTempWater *HighTempWater `yaml:"high_temp_water"`
}

type Frequency struct {
	Name               string `yaml:"name"`
	OccurrencesPerYear int    `yaml:"occurrences_per_year"`
	Weekdays           []int  `yaml:"weekdays"`
}

type Lifecycle struct {
	Name              string `yaml:"name"`
	ProductivityYears int    `yaml:"productivity_years"`
}

type Weekday struct {
	Number int    `yaml:"number"`
	Name   string `yaml:"name"`
}

// Garden is one user's active varieties and feed-day preferences, keyed by
// feed type name.
type Garden struct {
	User      string         `yaml:"user"`
	Varieties []string       `yaml:"varieties"`
	FeedDays  map[string]int `yaml:"feed_days"`
}

// Catalogue is the YAML document describing all reference data.
type Catalogue struct {
	Year        int         `yaml:"year"`
	Weekdays    []Weekday   `yaml:"weekdays"`
	Frequencies []Frequency `yaml:"frequencies"`
	Lifecycles  []Lifecycle `yaml:"lifecycles"`
	Families    []string    `yaml:"families"`
	FeedTypes   []string    `yaml:"feed_types"`
	Varieties   []Variety   `yaml:"varieties"`
	Gardens     []Garden    `yaml:"gardens"`
}

// Load reads and validates a catalogue file.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the built-in catalogue.
func Default() (*Catalogue, error) {
	return Parse(defaultCatalogue)
}

// Parse decodes and validates a catalogue document.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCatalogue, fmt.Sprintf(format, args...))
}

func validWeek(ordinal int) bool {
	return ordinal >= 1 && ordinal <= calendar.WeeksPerYear
}

func validWeekday(n int) bool {
	return n >= 1 && n <= calendar.DaysPerWeek
}

func set(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Validate checks every cross reference in the catalogue.
func (c *Catalogue) Validate() error {
	for _, d := range c.Weekdays {
		if !validWeekday(d.Number) {
			return invalid("weekday %d out of range", d.Number)
		}
	}

	freqs := make(map[string]bool, len(c.Frequencies))
	for _, f := range c.Frequencies {
		if f.Name == "" {
			return invalid("frequency without a name")
		}
		for _, d := range f.Weekdays {
			if !validWeekday(d) {
				return invalid("frequency %q: weekday %d out of range", f.Name, d)
			}
		}
		freqs[f.Name] = true
	}
	for _, lc := range c.Lifecycles {
		if _, err := variety.ParseLifecycle(lc.Name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCatalogue, err)
		}
	}
	families := set(c.Families)
	feedTypes := set(c.FeedTypes)

	varieties := make(map[string]bool, len(c.Varieties))
	for _, v := range c.Varieties {
		if v.Name == "" {
			return invalid("variety without a name")
		}
		if _, err := variety.ParseLifecycle(v.Lifecycle); err != nil {
			return fmt.Errorf("%w: variety %q: %w", ErrInvalidCatalogue, v.Name, err)
		}
		if v.Family != "" && !families[v.Family] {
			return invalid("variety %q: unknown family %q", v.Name, v.Family)
		}
		ranges := map[string]*Range{"sow": &v.Sow, "harvest": &v.Harvest, "transplant": v.Transplant, "prune": v.Prune}
		for name, r := range ranges {
			if r != nil && (!validWeek(r.Start) || !validWeek(r.End)) {
				return invalid("variety %q: %s window %d-%d out of range", v.Name, name, r.Start, r.End)
			}
		}
		if !freqs[v.Water] {
			return invalid("variety %q: unknown water frequency %q", v.Name, v.Water)
		}
		if f := v.Feed; f != nil {
			if !validWeek(f.Start) {
				return invalid("variety %q: feed start %d out of range", v.Name, f.Start)
			}
			if !freqs[f.Frequency] {
				return invalid("variety %q: unknown feed frequency %q", v.Name, f.Frequency)
			}
			if !feedTypes[f.Type] {
				return invalid("variety %q: unknown feed type %q", v.Name, f.Type)
			}
		}
		if h := v.HighTempWater; h != nil && !freqs[h.Frequency] {
			return invalid("variety %q: unknown high temperature frequency %q", v.Name, h.Frequency)
		}
		varieties[v.Name] = true
	}

	for _, g := range c.Gardens {
		if g.User == "" {
			return invalid("garden without a user")
		}
		for _, name := range g.Varieties {
			if !varieties[name] {
				return invalid("garden %s: unknown variety %q", g.User, name)
			}
		}
		for feedType, day := range g.FeedDays {
			if !feedTypes[feedType] {
				return invalid("garden %s: unknown feed type %q", g.User, feedType)
			}
			if !validWeekday(day) {
				return invalid("garden %s: weekday %d out of range", g.User, day)
			}
		}
	}
	return nil
}

// Repos are the repositories a catalogue is written through. Callers that
// want the seed applied atomically pass repositories bound to one transaction.
type Repos struct {
	Calendar    *calendar.Repository
	Frequencies *frequency.Repository
	Varieties   *variety.Repository
}

// Result counts what Apply wrote.
type Result struct {
	Weeks            int
	Frequencies      int
	VarietiesCreated int
	VarietiesKept    int
	Gardens          int
}

// Apply validates and writes the catalogue. Reference rows are upserted;
// varieties that already exist by name are kept as they are.
func Apply(ctx context.Context, c *Catalogue, r Repos) (Result, error) {
	var res Result
	if err := c.Validate(); err != nil {
		return res, err
	}

	year := c.Year
	if year == 0 {
		year = time.Now().Year()
	}

	weekdays := make([]calendar.Weekday, 0, len(c.Weekdays))
	for _, d := range c.Weekdays {
		weekdays = append(weekdays, calendar.Weekday{Number: d.Number, Name: d.Name})
	}
	if len(weekdays) == 0 {
		weekdays = calendar.DefaultWeekdays()
	}
	for _, d := range weekdays {
		if err := r.Calendar.SaveWeekday(ctx, d); err != nil {
			return res, err
		}
	}

	weekIDs := make(map[int]int64, calendar.WeeksPerYear)
	for _, w := range calendar.YearWeeks(year) {
		id, err := r.Calendar.SaveWeek(ctx, w)
		if err != nil {
			return res, err
		}
		weekIDs[w.Ordinal] = id
		res.Weeks++
	}

	freqIDs := make(map[string]int64, len(c.Frequencies))
	for _, f := range c.Frequencies {
		id, err := r.Frequencies.Save(ctx, frequency.Frequency{
			Name:               f.Name,
			OccurrencesPerYear: f.OccurrencesPerYear,
			DefaultWeekdays:    f.Weekdays,
		})
		if err != nil {
			return res, err
		}
		freqIDs[f.Name] = id
		res.Frequencies++
	}

	for _, lc := range c.Lifecycles {
		parsed, err := variety.ParseLifecycle(lc.Name)
		if err != nil {
			return res, err
		}
		if err := r.Varieties.SaveLifecycle(ctx, variety.LifecycleInfo{Lifecycle: parsed, ProductivityYears: lc.ProductivityYears}); err != nil {
			return res, err
		}
	}

	familyIDs := make(map[string]int64, len(c.Families))
	for _, name := range c.Families {
		id, err := r.Varieties.SaveFamily(ctx, name)
		if err != nil {
			return res, err
		}
		familyIDs[name] = id
	}
	feedTypeIDs := make(map[string]int64, len(c.FeedTypes))
	for _, name := range c.FeedTypes {
		id, err := r.Varieties.SaveFeedType(ctx, name)
		if err != nil {
			return res, err
		}
		feedTypeIDs[name] = id
	}

	varietyIDs := make(map[string]int64, len(c.Varieties))
	for _, v := range c.Varieties {
		id, err := r.Varieties.IDByName(ctx, v.Name)
		if err == nil {
			varietyIDs[v.Name] = id
			res.VarietiesKept++
			continue
		}
		if !errors.Is(err, variety.ErrNotFound) {
			return res, err
		}

		nv, err := newVariety(v, weekIDs, freqIDs, familyIDs, feedTypeIDs)
		if err != nil {
			return res, err
		}
		id, err = r.Varieties.Create(ctx, nv)
		if err != nil {
			return res, err
		}
		varietyIDs[v.Name] = id
		res.VarietiesCreated++
	}

	for _, g := range c.Gardens {
		for _, name := range g.Varieties {
			if err := r.Varieties.Activate(ctx, g.User, varietyIDs[name]); err != nil {
				return res, err
			}
		}
		for feedType, day := range g.FeedDays {
			if err := r.Varieties.SetFeedDay(ctx, g.User, feedTypeIDs[feedType], day); err != nil {
				return res, err
			}
		}
		res.Gardens++
	}
	return res, nil
}

func newVariety(v Variety, weeks map[int]int64, freqs, families, feedTypes map[string]int64) (variety.NewVariety, error) {
	lc, err := variety.ParseLifecycle(v.Lifecycle)
	if err != nil {
		return variety.NewVariety{}, fmt.Errorf("%w: variety %q: %w", ErrInvalidCatalogue, v.Name, err)
	}
	toRange := func(r *Range) *variety.WeekRange {
		if r == nil {
			return nil
		}
		return &variety.WeekRange{StartWeekID: weeks[r.Start], EndWeekID: weeks[r.End]}
	}

	nv := variety.NewVariety{
		Name:             v.Name,
		FamilyID:         families[v.Family],
		Lifecycle:        lc,
		Sow:              *toRange(&v.Sow),
		Transplant:       toRange(v.Transplant),
		Harvest:          *toRange(&v.Harvest),
		Prune:            toRange(v.Prune),
		WaterFrequencyID: freqs[v.Water],
	}
	if f := v.Feed; f != nil {
		nv.Feed = &variety.NewFeed{
			StartWeekID: weeks[f.Start],
			FrequencyID: freqs[f.Frequency],
			FeedTypeID:  feedTypes[f.Type],
		}
	}
	if h := v.HighTempWater; h != nil {
		nv.HighTempWaterFrequencyID = freqs[h.Frequency]
		nv.HighTempThreshold = h.ThresholdC
	}
	return nv, nil
}
