package variety

import (
	"maps"

	"garden-guide/internal/frequency"
)

// Field names a part of a variety's calendar facts that can fail to resolve.
type Field string

const (
	FieldLifecycle  Field = "lifecycle"
	FieldSow        Field = "sow"
	FieldTransplant Field = "transplant"
	FieldHarvest    Field = "harvest"
	FieldPrune      Field = "prune"
	FieldFeed       Field = "feed"
	FieldWater      Field = "water"
)

// Summary identifies a variety in task lists.
type Summary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	FamilyName string `json:"family_name,omitempty"`
}

// FeedType is a kind of fertiliser a variety is fed with.
type FeedType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FeedSchedule says when and with what a variety is fed.
type FeedSchedule struct {
	StartWeek int
	Frequency frequency.Frequency
	FeedType  FeedType
}

// WaterSchedule is a variety's watering frequency and the weekdays it
// waters on.
type WaterSchedule struct {
	Frequency frequency.Frequency
	Weekdays  []int
}

// HighTempWater is the extra watering schedule used above a temperature
// threshold. It rides along with the facts and plays no part in weekly
// or daily derivation.
type HighTempWater struct {
	Frequency  frequency.Frequency
	ThresholdC float64
}

// Facts is the flat, already-resolved calendar snapshot of one variety.
//
// Fields that could not be resolved carry a fault instead of a value; the
// task derivers skip the affected task type for that variety.
type Facts struct {
	Summary
	Lifecycle     Lifecycle
	Sow           Window
	Transplant    Window
	Harvest       Window
	Prune         Window
	Feed          *FeedSchedule
	Water         WaterSchedule
	HighTempWater *HighTempWater

	faults map[Field]error
}

// Fault returns the resolution error recorded for field, if any.
func (f Facts) Fault(field Field) error {
	return f.faults[field]
}

// Faults returns a copy of every recorded fault.
func (f Facts) Faults() map[Field]error {
	return maps.Clone(f.faults)
}

// WithFault returns a copy of f with err recorded against field.
func (f Facts) WithFault(field Field, err error) Facts {
	faults := maps.Clone(f.faults)
	if faults == nil {
		faults = make(map[Field]error)
	}
	faults[field] = err
	f.faults = faults
	return f
}
