package database

import (
	"fmt"
	"log"
)

// CreateTables creates all required tables in the database
func CreateTables() {
	createUsersTable()
	createMedicinesTable()
	createDoseLogsTable()
}

// createUsersTable creates the users table
func createUsersTable() {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		reminder_sound VARCHAR(32) DEFAULT 'chime',
		custom_sound_data TEXT,
		language VARCHAR(32) DEFAULT 'English',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := DB.Exec(query)
	if err != nil {
		log.Fatal("Failed to create users table:", err)
	}

	ensureUsersSchema()
	fmt.Println("Users table created successfully")
}

func createMedicinesTable() {
	query := `
	CREATE TABLE IF NOT EXISTS medicines (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		dosage VARCHAR(100),
		frequency VARCHAR(100),
		time_of_day VARCHAR(100),
		start_date DATE,
		end_date DATE,
		instructions TEXT,
		reminder_time VARCHAR(5),
		snoozed_until TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := DB.Exec(query)
	if err != nil {
		log.Fatal("Failed to create medicines table:", err)
	}

	ensureMedicinesSchema()
	fmt.Println("Medicines table created successfully")
}

func createDoseLogsTable() {
	query := `
	CREATE TABLE IF NOT EXISTS dose_logs (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		medicine_id INTEGER NOT NULL REFERENCES medicines(id) ON DELETE CASCADE,
		taken_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status VARCHAR(16) NOT NULL DEFAULT 'taken',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := DB.Exec(query)
	if err != nil {
		log.Fatal("Failed to create dose_logs table:", err)
	}

	ensureDoseLogsSchema()
	fmt.Println("Dose_logs table created successfully")
}

func ensureUsersSchema() {
	if _, err := DB.Exec(`ALTER TABLE users ADD COLUMN IF NOT EXISTS custom_sound_data TEXT`); err != nil {
		log.Fatal("Failed to ensure users.custom_sound_data column:", err)
	}

	if _, err := DB.Exec(`ALTER TABLE users ADD COLUMN IF NOT EXISTS language VARCHAR(32) DEFAULT 'English'`); err != nil {
		log.Fatal("Failed to ensure users.language column:", err)
	}
}

func ensureMedicinesSchema() {
	if _, err := DB.Exec(`ALTER TABLE medicines ADD COLUMN IF NOT EXISTS snoozed_until TIMESTAMP`); err != nil {
		log.Fatal("Failed to ensure medicines.snoozed_until column:", err)
	}

	if _, err := DB.Exec(`CREATE INDEX IF NOT EXISTS medicines_user_idx ON medicines(user_id)`); err != nil {
		log.Fatal("Failed to ensure medicines user index:", err)
	}

	if _, err := DB.Exec(`CREATE INDEX IF NOT EXISTS medicines_user_reminder_idx ON medicines(user_id, reminder_time)`); err != nil {
		log.Fatal("Failed to ensure medicines user/reminder index:", err)
	}
}

func ensureDoseLogsSchema() {
	if _, err := DB.Exec(`CREATE INDEX IF NOT EXISTS dose_logs_user_taken_idx ON dose_logs(user_id, taken_at DESC)`); err != nil {
		log.Fatal("Failed to ensure dose_logs user/taken index:", err)
	}

	if _, err := DB.Exec(`CREATE INDEX IF NOT EXISTS dose_logs_medicine_idx ON dose_logs(medicine_id)`); err != nil {
		log.Fatal("Failed to ensure dose_logs medicine index:", err)
	}
}
