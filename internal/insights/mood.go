package insights

import (
	"fmt"
	"sort"

	"fintrack/internal/core"
)

// MoodStat summarizes spending under one mood tag.
type MoodStat struct {
	Mood        core.Mood `json:"mood"`
	Count       int       `json:"count"`
	Percent     float64   `json:"percent"`
	TopCategory string    `json:"top_category"`
}

// MoodInsights reports which moods drive spending and when. PeakHours is a
// 3-hour window around the single busiest hour of day, taken from the
// transaction timestamps (time-of-day is preserved on ingest).
type MoodInsights struct {
	TopMood       core.Mood  `json:"top_mood"`
	Moods         []MoodStat `json:"moods"`
	PeakHourStart int        `json:"peak_hour_start"`
	PeakHours     string     `json:"peak_hours"`
}

// BuildMoodInsights groups the trailing-90-day mood-tagged expenses by mood
// and by hour of day. Returns false when no tagged expenses exist.
func BuildMoodInsights(last90 []core.Transaction) (*MoodInsights, bool) {
	type moodGroup struct {
		count      int
		categories map[string]int
	}
	groups := make(map[core.Mood]*moodGroup)
	hourCounts := make(map[int]int)
	total := 0

	for _, tx := range last90 {
		if tx.Type != core.Expense || tx.Mood == core.MoodNone {
			continue
		}
		g := groups[tx.Mood]
		if g == nil {
			g = &moodGroup{categories: make(map[string]int)}
			groups[tx.Mood] = g
		}
		g.count++
		g.categories[tx.Category]++
		hourCounts[tx.Date.Hour()]++
		total++
	}
	if total == 0 {
		return nil, false
	}

	stats := make([]MoodStat, 0, len(groups))
	for mood, g := range groups {
		stats = append(stats, MoodStat{
			Mood:        mood,
			Count:       g.count,
			Percent:     float64(g.count) / float64(total) * 100,
			TopCategory: topCountKey(g.categories),
		})
	}
	// Highest count first; mood name breaks ties so output is stable.
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Mood < stats[j].Mood
	})

	peak := peakHour(hourCounts)
	return &MoodInsights{
		TopMood:       stats[0].Mood,
		Moods:         stats,
		PeakHourStart: peak,
		PeakHours:     fmt.Sprintf("%s - %s", hourLabel(peak), hourLabel((peak+3)%24)),
	}, true
}

// topCountKey returns the most frequent key, smallest name on ties.
func topCountKey(counts map[string]int) string {
	best, bestCount := "", -1
	for k, c := range counts {
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best
}

// peakHour returns the busiest hour, earliest on ties.
func peakHour(counts map[int]int) int {
	best, bestCount := 0, -1
	for h, c := range counts {
		if c > bestCount || (c == bestCount && h < best) {
			best, bestCount = h, c
		}
	}
	return best
}

// hourLabel renders an hour on the 12-hour clock, e.g. 0 -> "12 AM",
// 15 -> "3 PM".
func hourLabel(h int) string {
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d %s", display, suffix)
}
