package schedule

import "garden-guide/internal/variety"

// WeeklyTasks lists the varieties needing each kind of work this week.
type WeeklyTasks struct {
	Sow        []variety.Summary `json:"sow"`
	Transplant []variety.Summary `json:"transplant"`
	Harvest    []variety.Summary `json:"harvest"`
	Prune      []variety.Summary `json:"prune"`
	Compost    []variety.Summary `json:"compost"`
}

func newWeeklyTasks() WeeklyTasks {
	return WeeklyTasks{
		Sow:        []variety.Summary{},
		Transplant: []variety.Summary{},
		Harvest:    []variety.Summary{},
		Prune:      []variety.Summary{},
		Compost:    []variety.Summary{},
	}
}

// Count returns the total number of task entries.
func (w WeeklyTasks) Count() int {
	return len(w.Sow) + len(w.Transplant) + len(w.Harvest) + len(w.Prune) + len(w.Compost)
}

// Weekly classifies each variety into the weekly task categories for the
// target week. Output order follows input order.
func (d *Deriver) Weekly(target int, varieties []variety.Facts) WeeklyTasks {
	tasks := newWeeklyTasks()

	for _, v := range varieties {
		if d.usable(v, "sow", variety.FieldSow) && v.Sow.Contains(target) {
			tasks.Sow = append(tasks.Sow, v.Summary)
		}
		if d.usable(v, "transplant", variety.FieldTransplant) && v.Transplant.Contains(target) {
			tasks.Transplant = append(tasks.Transplant, v.Summary)
		}
		if d.usable(v, "harvest", variety.FieldHarvest) && v.Harvest.Contains(target) {
			tasks.Harvest = append(tasks.Harvest, v.Summary)
		}
		if d.usable(v, "prune", variety.FieldPrune) && v.Prune.Contains(target) {
			tasks.Prune = append(tasks.Prune, v.Summary)
		}
		if d.compost(v, target) {
			tasks.Compost = append(tasks.Compost, v.Summary)
		}
	}
	return tasks
}

func (d *Deriver) compost(v variety.Facts, target int) bool {
	if !d.usable(v, "compost", variety.FieldLifecycle, variety.FieldHarvest) {
		return false
	}
	_, harvestEnd, ok := v.Harvest.Bounds()
	if !ok {
		return false
	}
	return DueForCompost(v.Lifecycle, harvestEnd, target)
}
