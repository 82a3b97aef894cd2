// Package reminder implements the polling loop that decides, once per tick,
// whether any medicine is due for a reminder "now" without repeating a
// reminder already fired for the same medicine-minute.
package reminder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Aravind22s/MedTracker/internal/models"
	"github.com/Aravind22s/MedTracker/internal/monitoring"
)

const (
	// maxRecentAlerts bounds the recent-alerts list.
	maxRecentAlerts = 10
	// firedRetention is how long fired-minute markers are kept before
	// eviction. Two days comfortably outlives a minute-keyed marker.
	firedRetention = 48 * time.Hour

	dateLayout   = "2006-01-02"
	minuteLayout = "15:04"

	statusTaken = "taken"
	defaultTone = "chime"
)

// Alert describes a fired reminder.
type Alert struct {
	MedicineID int       `json:"medicine_id"`
	Name       string    `json:"name"`
	Date       string    `json:"date"`
	Minute     string    `json:"minute"`
	FiredAt    time.Time `json:"fired_at"`
}

// Notifier delivers a fired reminder to the user. Notify raises the visual
// notification and the modal; PlaySound is best effort and its failure must
// never suppress the visual side.
type Notifier interface {
	Notify(alert Alert) error
	PlaySound(tone string, customData *string) error
}

// SoundPreference is one user's configured reminder tone. A non-nil CustomData
// payload takes precedence over the enumerated tone.
type SoundPreference struct {
	Tone       string
	CustomData *string
}

type firedKey struct {
	MedicineID int
	Date       string
	Minute     string
}

// Engine polls a snapshot of medicines and logs against the clock and fires at
// most one notification per (medicine, date, minute).
type Engine struct {
	mu        sync.Mutex
	medicines []models.Medicine
	logs      []models.DoseLog
	sounds    map[int]SoundPreference
	fired     map[firedKey]time.Time
	recent    []Alert
	active    *Alert

	notifier Notifier
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// New creates an Engine polling at the given interval.
func New(notifier Notifier, log *zap.Logger, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Engine{
		sounds:   make(map[int]SoundPreference),
		fired:    make(map[firedKey]time.Time),
		notifier: notifier,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the loop until ctx is canceled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("reminder engine stopping")
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Update swaps in the latest fetched snapshot. The ticker always reads
// whatever snapshot was installed last; a fetch in flight never races a tick
// mid-update.
func (e *Engine) Update(snap Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.medicines = snap.Medicines
	e.logs = snap.Logs
	e.sounds = snap.Sounds
}

// soundFor resolves the owner's configured tone, falling back to the default
// for users whose preference is absent from the snapshot.
func (e *Engine) soundFor(userID int) SoundPreference {
	pref, ok := e.sounds[userID]
	if !ok {
		return SoundPreference{Tone: defaultTone}
	}
	if pref.Tone == "" {
		pref.Tone = defaultTone
	}
	return pref
}

// Tick evaluates every medicine against the current minute and fires the due
// ones. It returns the alerts fired on this tick.
func (e *Engine) Tick() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	date := now.Format(dateLayout)
	minute := now.Format(minuteLayout)

	e.evictExpired(now)

	var fired []Alert
	for _, m := range e.medicines {
		if m.ReminderTime == nil || *m.ReminderTime == "" {
			continue
		}
		if e.takenOn(m.ID, date, now.Location()) {
			continue
		}
		if m.SnoozedUntil != nil && m.SnoozedUntil.After(now) {
			continue
		}
		if *m.ReminderTime != minute {
			continue
		}
		key := firedKey{MedicineID: m.ID, Date: date, Minute: minute}
		if _, seen := e.fired[key]; seen {
			continue
		}

		e.fired[key] = now
		alert := Alert{
			MedicineID: m.ID,
			Name:       m.Name,
			Date:       date,
			Minute:     minute,
			FiredAt:    now,
		}
		e.deliver(alert, e.soundFor(m.UserID))
		fired = append(fired, alert)
	}
	return fired
}

// deliver plays the owner's tone, records the alert, and raises the modal.
// Sound failures are logged and swallowed; the visual notification still goes
// out.
func (e *Engine) deliver(alert Alert, pref SoundPreference) {
	if pref.Tone != "none" || pref.CustomData != nil {
		if err := e.notifier.PlaySound(pref.Tone, pref.CustomData); err != nil {
			e.log.Warn("reminder sound failed",
				zap.Int("medicine_id", alert.MedicineID),
				zap.Error(err),
			)
		}
	}

	if err := e.notifier.Notify(alert); err != nil {
		e.log.Error("reminder notification failed",
			zap.Int("medicine_id", alert.MedicineID),
			zap.Error(err),
		)
	}

	e.recent = append(e.recent, alert)
	if len(e.recent) > maxRecentAlerts {
		e.recent = e.recent[len(e.recent)-maxRecentAlerts:]
	}
	active := alert
	e.active = &active
	monitoring.RecordReminderFired()

	e.log.Info("reminder fired",
		zap.Int("medicine_id", alert.MedicineID),
		zap.String("minute", alert.Minute),
	)
}

// takenOn reports whether a taken log for the medicine exists on the date.
// Stored timestamps are normalized to the clock's location first so a dose
// logged near midnight lands on the same calendar day the tick sees.
func (e *Engine) takenOn(medicineID int, date string, loc *time.Location) bool {
	for _, l := range e.logs {
		if l.MedicineID == medicineID && l.Status == statusTaken && l.TakenAt.In(loc).Format(dateLayout) == date {
			return true
		}
	}
	return false
}

// evictExpired drops fired markers older than the retention window so the
// dedup map stays bounded over long sessions.
func (e *Engine) evictExpired(now time.Time) {
	for key, at := range e.fired {
		if now.Sub(at) > firedRetention {
			delete(e.fired, key)
		}
	}
}

// RecentAlerts returns a copy of the bounded recent-alerts list.
func (e *Engine) RecentAlerts() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Alert, len(e.recent))
	copy(out, e.recent)
	return out
}

// ActiveReminder returns the alert currently surfacing a modal, or nil.
func (e *Engine) ActiveReminder() *Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return nil
	}
	alert := *e.active
	return &alert
}

// ClearActive dismisses the modal. The fired marker for the minute stays, so
// the medicine will not re-fire until its next scheduled match.
func (e *Engine) ClearActive() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = nil
}
