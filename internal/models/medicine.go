package models

import (
	"time"
)

// Medicine is owned by exactly one user. ReminderTime holds a single daily
// reminder as "HH:MM"; nil means no reminder is scheduled.
type Medicine struct {
	ID           int        `json:"id" db:"id"`
	UserID       int        `json:"user_id" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Dosage       *string    `json:"dosage,omitempty" db:"dosage"`
	Frequency    *string    `json:"frequency,omitempty" db:"frequency"`
	TimeOfDay    *string    `json:"time_of_day,omitempty" db:"time_of_day"`
	StartDate    *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty" db:"end_date"`
	Instructions *string    `json:"instructions,omitempty" db:"instructions"`
	ReminderTime *string    `json:"reminder_time,omitempty" db:"reminder_time"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty" db:"snoozed_until"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// DoseLog records that a medicine was actioned at a point in time. Rows are
// append-only through the API; they go away only when the medicine is deleted.
type DoseLog struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	MedicineID   int       `json:"medicine_id" db:"medicine_id"`
	MedicineName string    `json:"medicine_name,omitempty" db:"-"`
	TakenAt      time.Time `json:"taken_at" db:"taken_at"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
