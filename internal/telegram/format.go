package telegram

import (
	"fmt"
	"strings"

	"garden-guide/internal/calendar"
	"garden-guide/internal/metrics"
	"garden-guide/internal/schedule"
	"garden-guide/internal/variety"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func names(vs []variety.Summary) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = escapeMarkdown(v.Name)
	}
	return strings.Join(parts, ", ")
}

func formatWeeklyMarkdown(guide *schedule.Guide) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🌱 *Week %d* (%s - %s)\n\n", guide.Week.Ordinal, guide.Week.StartLabel, guide.Week.EndLabel))

	sections := []struct {
		title string
		items []variety.Summary
	}{
		{"🌰 Sow", guide.Weekly.Sow},
		{"🪴 Transplant", guide.Weekly.Transplant},
		{"🧺 Harvest", guide.Weekly.Harvest},
		{"✂️ Prune", guide.Weekly.Prune},
		{"♻️ Compost", guide.Weekly.Compost},
	}
	written := 0
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("*%s*: %s\n", s.title, names(s.items)))
		written++
	}
	if written == 0 {
		sb.WriteString("_Nothing to sow, plant or harvest this week_\n")
	}
	return sb.String()
}

func formatDailyMarkdown(guide *schedule.Guide) string {
	var sb strings.Builder
	sb.WriteString("📅 *Daily Jobs*\n\n")

	written := 0
	for n := 1; n <= calendar.DaysPerWeek; n++ {
		day, ok := guide.Daily[n]
		if !ok || len(day.Feed)+len(day.Water) == 0 {
			continue
		}
		sb.WriteString(formatDayMarkdown(day))
		sb.WriteString("\n")
		written++
	}
	if written == 0 {
		sb.WriteString("_No feeding or watering this week_\n")
	}
	return sb.String()
}

func formatDayMarkdown(day schedule.DayTasks) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(day.Weekday.Name)))
	if len(day.Feed)+len(day.Water) == 0 {
		sb.WriteString("_Nothing to do_\n")
		return sb.String()
	}
	for _, f := range day.Feed {
		sb.WriteString(fmt.Sprintf("• Feed (%s): %s\n", escapeMarkdown(f.FeedType.Name), names(f.Varieties)))
	}
	if len(day.Water) > 0 {
		sb.WriteString(fmt.Sprintf("• Water: %s\n", names(day.Water)))
	}
	return sb.String()
}

func formatMetricsMarkdown(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Guides*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d guides, %d tasks (%d skipped)\n", d.Date, d.Guides, d.Tasks, d.Skipped))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
