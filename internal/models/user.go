package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID              int       `json:"id" db:"id"`
	Email           string    `json:"email" db:"email" validate:"required,email"`
	Name            string    `json:"name" db:"name" validate:"required,min=1,max=255"`
	Password        string    `json:"password,omitempty" db:"password" validate:"required,min=6"`
	ReminderSound   string    `json:"reminder_sound" db:"reminder_sound"`
	CustomSoundData *string   `json:"custom_sound_data,omitempty" db:"custom_sound_data"`
	Language        string    `json:"language" db:"language"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
