// Package analytics derives adherence views from dose logs and medicines.
// Everything here is pure computation over already-fetched, owner-scoped rows;
// nothing in this package touches the database.
package analytics

import (
	"sort"
	"time"

	"github.com/Aravind22s/MedTracker/internal/models"
)

const (
	// MaxDailyEntries caps the daily completion series.
	MaxDailyEntries = 30
	// MaxDelaySamples caps the timing-delay sample list.
	MaxDelaySamples = 50

	dateLayout   = "2006-01-02"
	minuteLayout = "15:04"

	statusTaken = "taken"
)

// DailyEntry is one calendar day of the completion series.
type DailyEntry struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
	Taken int    `json:"taken"`
}

// WeekdayEntry aggregates adherence per weekday (0=Sunday..6=Saturday).
type WeekdayEntry struct {
	Weekday int `json:"weekday"`
	Total   int `json:"total"`
	Taken   int `json:"taken"`
}

// MedicineEntry aggregates adherence per medicine. Zero counts are valid and
// represent a medicine that was never logged.
type MedicineEntry struct {
	MedicineID int    `json:"medicine_id"`
	Name       string `json:"name"`
	Total      int    `json:"total"`
	Taken      int    `json:"taken"`
}

// DelaySample is the signed distance in minutes between a taken dose and the
// medicine's scheduled reminder on the same day. Negative means taken early.
type DelaySample struct {
	MedicineID   int    `json:"medicine_id"`
	Date         string `json:"date"`
	DelayMinutes int    `json:"delay_minutes"`
}

// Stats are the derived headline numbers shown on the dashboard.
type Stats struct {
	Streak      int `json:"streak"`
	MissedLast7 int `json:"missed_last7"`
	BestWeekday int `json:"best_weekday"` // -1 when no data
}

// DailySeries groups logs by calendar date, counts total and taken doses per
// day, and returns the most recent MaxDailyEntries sorted ascending by date.
func DailySeries(logs []models.DoseLog) []DailyEntry {
	byDate := make(map[string]*DailyEntry)
	for _, l := range logs {
		date := l.TakenAt.Format(dateLayout)
		entry, ok := byDate[date]
		if !ok {
			entry = &DailyEntry{Date: date}
			byDate[date] = entry
		}
		entry.Total++
		if l.Status == statusTaken {
			entry.Taken++
		}
	}

	series := make([]DailyEntry, 0, len(byDate))
	for _, entry := range byDate {
		series = append(series, *entry)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	if len(series) > MaxDailyEntries {
		series = series[len(series)-MaxDailyEntries:]
	}
	return series
}

// WeekdaySeries groups logs by weekday index derived from the taken-at time.
func WeekdaySeries(logs []models.DoseLog) []WeekdayEntry {
	entries := make([]WeekdayEntry, 7)
	for i := range entries {
		entries[i].Weekday = i
	}
	for _, l := range logs {
		wd := int(l.TakenAt.Weekday())
		entries[wd].Total++
		if l.Status == statusTaken {
			entries[wd].Taken++
		}
	}
	return entries
}

// PerMedicine counts total and taken logs for every medicine the user owns.
func PerMedicine(medicines []models.Medicine, logs []models.DoseLog) []MedicineEntry {
	entries := make([]MedicineEntry, 0, len(medicines))
	index := make(map[int]int, len(medicines))
	for i, m := range medicines {
		index[m.ID] = i
		entries = append(entries, MedicineEntry{MedicineID: m.ID, Name: m.Name})
	}
	for _, l := range logs {
		i, ok := index[l.MedicineID]
		if !ok {
			continue
		}
		entries[i].Total++
		if l.Status == statusTaken {
			entries[i].Taken++
		}
	}
	return entries
}

// DelaySamples computes signed taken-vs-scheduled delays for taken logs whose
// medicine carries a reminder time. Only the most recent MaxDelaySamples are
// returned, in natural log order.
func DelaySamples(medicines []models.Medicine, logs []models.DoseLog) []DelaySample {
	reminders := make(map[int]string, len(medicines))
	for _, m := range medicines {
		if m.ReminderTime != nil && *m.ReminderTime != "" {
			reminders[m.ID] = *m.ReminderTime
		}
	}

	samples := make([]DelaySample, 0, len(logs))
	for _, l := range logs {
		if l.Status != statusTaken {
			continue
		}
		reminder, ok := reminders[l.MedicineID]
		if !ok {
			continue
		}
		parsed, err := time.Parse(minuteLayout, reminder)
		if err != nil {
			continue
		}
		scheduled := time.Date(
			l.TakenAt.Year(), l.TakenAt.Month(), l.TakenAt.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, l.TakenAt.Location(),
		)
		samples = append(samples, DelaySample{
			MedicineID:   l.MedicineID,
			Date:         l.TakenAt.Format(dateLayout),
			DelayMinutes: int(l.TakenAt.Sub(scheduled) / time.Minute),
		})
	}

	if len(samples) > MaxDelaySamples {
		samples = samples[len(samples)-MaxDelaySamples:]
	}
	return samples
}

// ComputeStats derives streak, last-7-day miss count, and the best weekday.
//
// The streak scans the daily series newest to oldest and counts consecutive
// fully-adherent days; days with zero logged doses are skipped rather than
// breaking the streak, and the scan stops at the first partially-missed day.
func ComputeStats(daily []DailyEntry, weekday []WeekdayEntry) Stats {
	stats := Stats{BestWeekday: -1}

	for i := len(daily) - 1; i >= 0; i-- {
		if daily[i].Total == 0 {
			continue
		}
		if daily[i].Taken == daily[i].Total {
			stats.Streak++
			continue
		}
		break
	}

	if len(daily) > 0 {
		newest, err := time.Parse(dateLayout, daily[len(daily)-1].Date)
		if err == nil {
			cutoff := newest.AddDate(0, 0, -6)
			for _, d := range daily {
				day, err := time.Parse(dateLayout, d.Date)
				if err != nil || day.Before(cutoff) {
					continue
				}
				stats.MissedLast7 += d.Total - d.Taken
			}
		}
	}

	bestRatio := -1.0
	for _, w := range weekday {
		if w.Total == 0 {
			continue
		}
		ratio := float64(w.Taken) / float64(w.Total)
		if ratio > bestRatio {
			bestRatio = ratio
			stats.BestWeekday = w.Weekday
		}
	}

	return stats
}
