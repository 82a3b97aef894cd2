package reminder

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/Aravind22s/MedTracker/internal/models"
)

// Snapshot is one consistent view of everything the engine needs for a tick:
// reminder-carrying medicines, today's dose logs, and each owner's sound
// preference keyed by user id.
type Snapshot struct {
	Medicines []models.Medicine
	Logs      []models.DoseLog
	Sounds    map[int]SoundPreference
}

// Source supplies the engine with fresh snapshots.
type Source interface {
	FetchSnapshot(ctx context.Context) (Snapshot, error)
}

// StoreSource reads reminder-relevant rows from the record store: medicines
// that carry a reminder time, today's dose logs, and user sound settings.
type StoreSource struct {
	DB *sql.DB
}

func (s *StoreSource) FetchSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, name, reminder_time, snoozed_until
		FROM medicines
		WHERE reminder_time IS NOT NULL
	`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	medicines := make([]models.Medicine, 0)
	for rows.Next() {
		var m models.Medicine
		var reminderTime sql.NullString
		var snoozedUntil sql.NullTime
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &reminderTime, &snoozedUntil); err != nil {
			return snap, err
		}
		if reminderTime.Valid {
			m.ReminderTime = &reminderTime.String
		}
		if snoozedUntil.Valid {
			m.SnoozedUntil = &snoozedUntil.Time
		}
		medicines = append(medicines, m)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	logRows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, medicine_id, taken_at, status
		FROM dose_logs
		WHERE taken_at >= CURRENT_DATE
	`)
	if err != nil {
		return snap, err
	}
	defer logRows.Close()

	logs := make([]models.DoseLog, 0)
	for logRows.Next() {
		var l models.DoseLog
		if err := logRows.Scan(&l.ID, &l.UserID, &l.MedicineID, &l.TakenAt, &l.Status); err != nil {
			return snap, err
		}
		logs = append(logs, l)
	}
	if err := logRows.Err(); err != nil {
		return snap, err
	}

	soundRows, err := s.DB.QueryContext(ctx, `
		SELECT id, reminder_sound, custom_sound_data
		FROM users
	`)
	if err != nil {
		return snap, err
	}
	defer soundRows.Close()

	sounds := make(map[int]SoundPreference)
	for soundRows.Next() {
		var userID int
		var tone string
		var customData sql.NullString
		if err := soundRows.Scan(&userID, &tone, &customData); err != nil {
			return snap, err
		}
		pref := SoundPreference{Tone: tone}
		if customData.Valid && customData.String != "" {
			pref.CustomData = &customData.String
		}
		sounds[userID] = pref
	}
	if err := soundRows.Err(); err != nil {
		return snap, err
	}

	snap.Medicines = medicines
	snap.Logs = logs
	snap.Sounds = sounds
	return snap, nil
}

// Refresh periodically swaps fresh snapshots into the engine until ctx is
// canceled. A failed fetch keeps the previous snapshot; the engine never sees
// a half-updated one.
func Refresh(ctx context.Context, engine *Engine, source Source, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("reminder refresh stopping")
			return
		case <-ticker.C:
			snap, err := source.FetchSnapshot(ctx)
			if err != nil {
				log.Error("snapshot fetch failed", zap.Error(err))
				continue
			}
			engine.Update(snap)
		}
	}
}
