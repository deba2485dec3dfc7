// Package report aggregates finished time records into per-person summary
// statistics and detail projections. Everything here is a stateless transform
// over in-memory data; callers supply the wall clock so the relative windows
// are testable.
package report

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/maps"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

type Window string

const (
	WindowAll   Window = "all"
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "", WindowAll:
		return WindowAll, nil
	case WindowToday, WindowWeek, WindowMonth:
		return Window(s), nil
	}
	return "", fmt.Errorf("unknown report window %q", s)
}

// Start returns the window's lower bound relative to now. The week starts on
// Sunday; the ok result is false for the unbounded window.
func (w Window) Start(now time.Time) (time.Time, bool) {
	switch w {
	case WindowToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case WindowWeek:
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return startOfDay.AddDate(0, 0, -int(now.Weekday())), true
	case WindowMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

// Filter keeps records whose timer started inside the window, optionally
// restricted to one person.
func Filter(records []model.TimeRecord, w Window, now time.Time, personID *model.ID) []model.TimeRecord {
	start, bounded := w.Start(now)

	filtered := make([]model.TimeRecord, 0, len(records))
	for _, record := range records {
		if bounded && record.StartedAt.Before(start) {
			continue
		}
		if personID != nil && record.PersonID != *personID {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

type PersonStats struct {
	PersonID   model.ID `json:"personId"`
	PersonName string   `json:"personName"`
	Count      int      `json:"count"`
	Total      int      `json:"totalSeconds"`
	Average    int      `json:"averageSeconds"`
	Min        int      `json:"minSeconds"`
	Max        int      `json:"maxSeconds"`
}

// Summarize groups the records by person and computes count, total, average
// (floored), min and max durations. Every known person appears, with zeroes
// when no records match.
func Summarize(people []model.Person, records []model.TimeRecord) []PersonStats {
	byPerson := make(map[model.ID]*PersonStats, len(people))
	for _, person := range people {
		byPerson[person.ID] = &PersonStats{PersonID: person.ID, PersonName: person.Name}
	}

	for _, record := range records {
		stats, known := byPerson[record.PersonID]
		if !known {
			continue
		}

		stats.Count++
		stats.Total += record.Duration
		if stats.Count == 1 || record.Duration < stats.Min {
			stats.Min = record.Duration
		}
		if record.Duration > stats.Max {
			stats.Max = record.Duration
		}
	}

	ids := maps.Keys(byPerson)
	sort.Slice(ids, func(i, j int) bool {
		return byPerson[ids[i]].PersonName < byPerson[ids[j]].PersonName
	})

	summary := make([]PersonStats, 0, len(ids))
	for _, id := range ids {
		stats := byPerson[id]
		if stats.Count > 0 {
			stats.Average = stats.Total / stats.Count
		}
		summary = append(summary, *stats)
	}
	return summary
}

type DetailRow struct {
	PersonName string    `json:"personName"`
	Number     string    `json:"number"`
	Stage      string    `json:"stage"`
	StartedAt  time.Time `json:"startedAt"`
	Duration   int       `json:"duration"`
}

// Details projects the records into display rows, newest first.
func Details(people []model.Person, records []model.TimeRecord) []DetailRow {
	names := make(map[model.ID]string, len(people))
	for _, person := range people {
		names[person.ID] = person.Name
	}

	rows := make([]DetailRow, 0, len(records))
	for _, record := range records {
		name, known := names[record.PersonID]
		if !known {
			name = "unknown"
		}
		rows = append(rows, DetailRow{
			PersonName: name,
			Number:     record.Number,
			Stage:      string(record.Stage),
			StartedAt:  record.StartedAt,
			Duration:   record.Duration,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].StartedAt.After(rows[j].StartedAt)
	})
	return rows
}

// FormatDuration renders whole seconds as hh:mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
