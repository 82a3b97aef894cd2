package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aravind22s/MedTracker/internal/models"
)

func logAt(medicineID int, takenAt time.Time, status string) models.DoseLog {
	return models.DoseLog{
		MedicineID: medicineID,
		TakenAt:    takenAt,
		Status:     status,
	}
}

func medicineWithReminder(id int, name string, reminder string) models.Medicine {
	m := models.Medicine{ID: id, Name: name}
	if reminder != "" {
		m.ReminderTime = &reminder
	}
	return m
}

func TestDailySeriesSortedAscending(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	logs := []models.DoseLog{
		logAt(1, base.AddDate(0, 0, 2), "taken"),
		logAt(1, base, "taken"),
		logAt(1, base.AddDate(0, 0, 1), "missed"),
		logAt(1, base.AddDate(0, 0, 1), "taken"),
	}

	series := DailySeries(logs)
	require.Len(t, series, 3)
	assert.Equal(t, "2025-03-10", series[0].Date)
	assert.Equal(t, "2025-03-11", series[1].Date)
	assert.Equal(t, "2025-03-12", series[2].Date)
	assert.Equal(t, 2, series[1].Total)
	assert.Equal(t, 1, series[1].Taken)
}

func TestDailySeriesCapsAtThirtyNewestDays(t *testing.T) {
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	logs := make([]models.DoseLog, 0, 40)
	for day := 0; day < 40; day++ {
		logs = append(logs, logAt(1, base.AddDate(0, 0, day), "taken"))
	}

	series := DailySeries(logs)
	require.Len(t, series, MaxDailyEntries)
	assert.Equal(t, "2025-01-11", series[0].Date)
	assert.Equal(t, "2025-02-09", series[len(series)-1].Date)
}

func TestWeekdaySeriesFixedSevenEntries(t *testing.T) {
	// 2025-03-09 is a Sunday.
	sunday := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	logs := []models.DoseLog{
		logAt(1, sunday, "taken"),
		logAt(1, sunday.AddDate(0, 0, 1), "missed"),
	}

	series := WeekdaySeries(logs)
	require.Len(t, series, 7)
	assert.Equal(t, 0, series[0].Weekday)
	assert.Equal(t, 1, series[0].Total)
	assert.Equal(t, 1, series[0].Taken)
	assert.Equal(t, 1, series[1].Total)
	assert.Equal(t, 0, series[1].Taken)
	assert.Equal(t, 0, series[2].Total)
}

func TestPerMedicineKeepsZeroCountEntries(t *testing.T) {
	medicines := []models.Medicine{
		medicineWithReminder(1, "Paracetamol", "08:00"),
		medicineWithReminder(2, "Metformin", ""),
	}
	logs := []models.DoseLog{
		logAt(1, time.Date(2025, 3, 10, 8, 5, 0, 0, time.UTC), "taken"),
	}

	entries := PerMedicine(medicines, logs)
	require.Len(t, entries, 2)
	assert.Equal(t, "Paracetamol", entries[0].Name)
	assert.Equal(t, 1, entries[0].Taken)
	assert.Equal(t, "Metformin", entries[1].Name)
	assert.Equal(t, 0, entries[1].Total)
}

func TestDelaySamplesSignedMinutes(t *testing.T) {
	medicines := []models.Medicine{
		medicineWithReminder(1, "Paracetamol", "08:00"),
		medicineWithReminder(2, "Metformin", ""),
	}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	logs := []models.DoseLog{
		logAt(1, day.Add(8*time.Hour+15*time.Minute), "taken"),
		logAt(1, day.AddDate(0, 0, 1).Add(7*time.Hour+50*time.Minute), "taken"),
		logAt(2, day.Add(9*time.Hour), "taken"),  // no reminder time
		logAt(1, day.Add(10*time.Hour), "missed"), // not taken
	}

	samples := DelaySamples(medicines, logs)
	require.Len(t, samples, 2)
	assert.Equal(t, 15, samples[0].DelayMinutes)
	assert.Equal(t, -10, samples[1].DelayMinutes)
	assert.Equal(t, "2025-03-11", samples[1].Date)
}

func TestDelaySamplesCapsAtFifty(t *testing.T) {
	medicines := []models.Medicine{medicineWithReminder(1, "Paracetamol", "08:00")}
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	logs := make([]models.DoseLog, 0, 60)
	for i := 0; i < 60; i++ {
		logs = append(logs, logAt(1, base.AddDate(0, 0, i).Add(time.Duration(i)*time.Minute), "taken"))
	}

	samples := DelaySamples(medicines, logs)
	require.Len(t, samples, MaxDelaySamples)
	// the oldest ten samples are dropped
	assert.Equal(t, 10, samples[0].DelayMinutes)
	assert.Equal(t, 59, samples[len(samples)-1].DelayMinutes)
}

func TestComputeStatsStreak(t *testing.T) {
	cases := []struct {
		daily  []DailyEntry
		streak int
	}{
		{
			daily:  []DailyEntry{},
			streak: 0,
		},
		{
			// newest day partially missed breaks the streak immediately
			daily: []DailyEntry{
				{Date: "2025-03-09", Total: 2, Taken: 2},
				{Date: "2025-03-10", Total: 2, Taken: 1},
			},
			streak: 0,
		},
		{
			// zero-dose day is skipped, not a break
			daily: []DailyEntry{
				{Date: "2025-03-07", Total: 1, Taken: 1},
				{Date: "2025-03-08", Total: 0, Taken: 0},
				{Date: "2025-03-09", Total: 2, Taken: 2},
				{Date: "2025-03-10", Total: 1, Taken: 1},
			},
			streak: 3,
		},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			stats := ComputeStats(tc.daily, nil)
			assert.Equal(t, tc.streak, stats.Streak)
		})
	}
}

func TestComputeStatsMissedLast7(t *testing.T) {
	daily := []DailyEntry{
		{Date: "2025-03-01", Total: 2, Taken: 0}, // outside window
		{Date: "2025-03-05", Total: 2, Taken: 1},
		{Date: "2025-03-10", Total: 3, Taken: 1},
	}

	stats := ComputeStats(daily, nil)
	assert.Equal(t, 3, stats.MissedLast7)
}

func TestComputeStatsBestWeekday(t *testing.T) {
	weekday := []WeekdayEntry{
		{Weekday: 0, Total: 0, Taken: 0},
		{Weekday: 1, Total: 4, Taken: 4},
		{Weekday: 2, Total: 2, Taken: 2}, // tied ratio, first wins
		{Weekday: 3, Total: 4, Taken: 3},
		{Weekday: 4}, {Weekday: 5}, {Weekday: 6},
	}

	stats := ComputeStats(nil, weekday)
	assert.Equal(t, 1, stats.BestWeekday)

	empty := ComputeStats(nil, make([]WeekdayEntry, 7))
	assert.Equal(t, -1, empty.BestWeekday)
}
