package reminder

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aravind22s/MedTracker/internal/models"
)

type recordingNotifier struct {
	mu       sync.Mutex
	alerts   []Alert
	sounds   []string
	customs  []*string
	soundErr error
}

func (n *recordingNotifier) Notify(alert Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *recordingNotifier) PlaySound(tone string, customData *string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sounds = append(n.sounds, tone)
	n.customs = append(n.customs, customData)
	return n.soundErr
}

func newTestEngine(notifier *recordingNotifier, at time.Time) *Engine {
	e := New(notifier, zap.NewNop(), time.Second)
	e.now = func() time.Time { return at }
	return e
}

func reminderMedicine(id int, name string, reminder string) models.Medicine {
	return models.Medicine{ID: id, UserID: 7, Name: name, ReminderTime: &reminder}
}

func snapshotOf(medicines []models.Medicine, logs []models.DoseLog) Snapshot {
	return Snapshot{Medicines: medicines, Logs: logs}
}

func TestTickFiresOncePerMinute(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 30, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)
	e.Update(snapshotOf([]models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")}, nil))

	fired := e.Tick()
	require.Len(t, fired, 1)
	assert.Equal(t, "Paracetamol", fired[0].Name)
	assert.Equal(t, "08:00", fired[0].Minute)

	// a second tick in the same minute stays silent
	assert.Empty(t, e.Tick())
	assert.Len(t, notifier.alerts, 1)
}

func TestTickRefiresNextDay(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)
	e.Update(snapshotOf([]models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")}, nil))

	require.Len(t, e.Tick(), 1)

	e.now = func() time.Time { return at.AddDate(0, 0, 1) }
	require.Len(t, e.Tick(), 1)
	assert.Len(t, notifier.alerts, 2)
}

func TestTickSkipsNonMatchingMinute(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 1, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)
	e.Update(snapshotOf([]models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")}, nil))

	assert.Empty(t, e.Tick())
	assert.Empty(t, notifier.alerts)
}

func TestTickSkipsTakenToday(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)
	e.Update(snapshotOf(
		[]models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")},
		[]models.DoseLog{{MedicineID: 1, TakenAt: at.Add(-time.Hour), Status: "taken"}},
	))

	assert.Empty(t, e.Tick())

	// a skipped log does not count as taken
	e.Update(snapshotOf(
		[]models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")},
		[]models.DoseLog{{MedicineID: 1, TakenAt: at.Add(-time.Hour), Status: "skipped"}},
	))
	assert.Len(t, e.Tick(), 1)
}

func TestTickRespectsSnooze(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)

	snoozed := reminderMedicine(1, "Paracetamol", "08:00")
	future := at.Add(10 * time.Minute)
	snoozed.SnoozedUntil = &future
	e.Update(snapshotOf([]models.Medicine{snoozed}, nil))
	assert.Empty(t, e.Tick())

	// an elapsed snooze no longer suppresses
	past := at.Add(-time.Minute)
	snoozed.SnoozedUntil = &past
	e.Update(snapshotOf([]models.Medicine{snoozed}, nil))
	assert.Len(t, e.Tick(), 1)
}

func TestSoundFailureStillNotifies(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{soundErr: errors.New("audio device busy")}
	e := newTestEngine(notifier, at)
	e.Update(snapshotOf([]models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")}, nil))

	require.Len(t, e.Tick(), 1)
	assert.Len(t, notifier.alerts, 1)
	assert.Len(t, notifier.sounds, 1)
}

func TestNoSoundWhenToneNoneWithoutCustomData(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)
	e.Update(Snapshot{
		Medicines: []models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")},
		Sounds:    map[int]SoundPreference{7: {Tone: "none"}},
	})

	require.Len(t, e.Tick(), 1)
	assert.Empty(t, notifier.sounds)
	assert.Len(t, notifier.alerts, 1)
}

func TestAlertUsesOwnerSoundPreference(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)

	custom := "ZmFrZSBhdWRpbw=="
	amy := reminderMedicine(1, "Paracetamol", "08:00")
	bob := reminderMedicine(2, "Metformin", "08:00")
	bob.UserID = 8
	e.Update(Snapshot{
		Medicines: []models.Medicine{amy, bob},
		Sounds: map[int]SoundPreference{
			7: {Tone: "bell"},
			8: {Tone: "custom", CustomData: &custom},
		},
	})

	require.Len(t, e.Tick(), 2)
	require.Len(t, notifier.sounds, 2)
	assert.Equal(t, "bell", notifier.sounds[0])
	assert.Nil(t, notifier.customs[0])
	assert.Equal(t, "custom", notifier.sounds[1])
	require.NotNil(t, notifier.customs[1])
	assert.Equal(t, custom, *notifier.customs[1])
}

func TestAlertFallsBackToDefaultTone(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)
	e.Update(snapshotOf([]models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")}, nil))

	require.Len(t, e.Tick(), 1)
	require.Len(t, notifier.sounds, 1)
	assert.Equal(t, "chime", notifier.sounds[0])
}

func TestRecentAlertsBounded(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)

	medicines := make([]models.Medicine, 0, 15)
	for i := 1; i <= 15; i++ {
		medicines = append(medicines, reminderMedicine(i, fmt.Sprintf("Med %d", i), "08:00"))
	}
	e.Update(snapshotOf(medicines, nil))

	require.Len(t, e.Tick(), 15)

	recent := e.RecentAlerts()
	require.Len(t, recent, maxRecentAlerts)
	assert.Equal(t, 6, recent[0].MedicineID)
	assert.Equal(t, 15, recent[len(recent)-1].MedicineID)
}

func TestActiveReminderClearDoesNotRefire(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)
	e.Update(snapshotOf([]models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")}, nil))

	require.Len(t, e.Tick(), 1)
	active := e.ActiveReminder()
	require.NotNil(t, active)
	assert.Equal(t, 1, active.MedicineID)

	e.ClearActive()
	assert.Nil(t, e.ActiveReminder())
	assert.Empty(t, e.Tick())
}

func TestTakenTodayMatchedInClockLocation(t *testing.T) {
	// 00:05 IST on Mar 11 is still Mar 10 in UTC; the stored UTC timestamp
	// must count as taken "today" for an IST clock.
	ist := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2025, 3, 11, 0, 30, 0, 0, ist)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)

	takenAt := time.Date(2025, 3, 10, 18, 35, 0, 0, time.UTC) // 00:05 IST Mar 11
	e.Update(snapshotOf(
		[]models.Medicine{reminderMedicine(1, "Paracetamol", "00:30")},
		[]models.DoseLog{{MedicineID: 1, TakenAt: takenAt, Status: "taken"}},
	))

	assert.Empty(t, e.Tick())
	assert.Empty(t, notifier.alerts)
}

func TestEvictExpiredFiredKeys(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	e := newTestEngine(notifier, at)
	e.Update(snapshotOf([]models.Medicine{reminderMedicine(1, "Paracetamol", "08:00")}, nil))

	require.Len(t, e.Tick(), 1)
	require.Len(t, e.fired, 1)

	e.now = func() time.Time { return at.Add(49 * time.Hour) }
	e.Tick()
	assert.Empty(t, e.fired, "markers older than the retention window should be evicted")
}
