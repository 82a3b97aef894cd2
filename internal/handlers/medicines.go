package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aravind22s/MedTracker/internal/database"
	"github.com/Aravind22s/MedTracker/internal/models"
)

type medicineRequest struct {
	Name         string  `json:"name"`
	Dosage       *string `json:"dosage"`
	Frequency    *string `json:"frequency"`
	TimeOfDay    *string `json:"time_of_day"`
	StartDate    *string `json:"start_date"` // "2006-01-02"
	EndDate      *string `json:"end_date"`
	Instructions *string `json:"instructions"`
	ReminderTime *string `json:"reminder_time"` // "HH:MM"
}

func parseDateField(raw *string) (*time.Time, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func validReminderTime(raw *string) bool {
	if raw == nil || *raw == "" {
		return true
	}
	_, err := time.Parse("15:04", *raw)
	return err == nil
}

// GetMedicines returns all medicines owned by the current user.
func GetMedicines(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, ok := userIDInterface.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return
	}

	db := database.DB
	query := `
		SELECT id, user_id, name, dosage, frequency, time_of_day, start_date, end_date,
		       instructions, reminder_time, snoozed_until, created_at, updated_at
		FROM medicines
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		log.Printf("Error retrieving medicines: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving medicines"})
		return
	}
	defer rows.Close()

	medicines := make([]models.Medicine, 0)
	for rows.Next() {
		medicine, err := scanMedicine(rows)
		if err != nil {
			log.Printf("Error scanning medicine: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning medicine"})
			return
		}
		medicines = append(medicines, medicine)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Error iterating medicines: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving medicines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medicines": medicines,
		"count":     len(medicines),
	})
}

// CreateMedicine creates a new medicine for the current user.
func CreateMedicine(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, ok := userIDInterface.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return
	}

	var req medicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Medicine name is required"})
		return
	}

	startDate, ok1 := parseDateField(req.StartDate)
	endDate, ok2 := parseDateField(req.EndDate)
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must use the YYYY-MM-DD format"})
		return
	}
	if !validReminderTime(req.ReminderTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reminder time must use the HH:MM format"})
		return
	}

	db := database.DB
	query := `
		INSERT INTO medicines (user_id, name, dosage, frequency, time_of_day, start_date, end_date, instructions, reminder_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, user_id, name, dosage, frequency, time_of_day, start_date, end_date,
		          instructions, reminder_time, snoozed_until, created_at, updated_at
	`

	row := db.QueryRow(query, userID, req.Name, req.Dosage, req.Frequency, req.TimeOfDay,
		startDate, endDate, req.Instructions, req.ReminderTime)
	medicine, err := scanMedicine(row)
	if err != nil {
		log.Printf("Error creating medicine: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating medicine"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Medicine created successfully",
		"medicine": medicine,
	})
}

// UpdateMedicine updates a medicine the current user owns.
func UpdateMedicine(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, ok := userIDInterface.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return
	}

	medicineID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid medicine ID"})
		return
	}

	var req medicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Medicine name is required"})
		return
	}

	startDate, ok1 := parseDateField(req.StartDate)
	endDate, ok2 := parseDateField(req.EndDate)
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must use the YYYY-MM-DD format"})
		return
	}
	if !validReminderTime(req.ReminderTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reminder time must use the HH:MM format"})
		return
	}

	db := database.DB
	query := `
		UPDATE medicines
		SET name = $1, dosage = $2, frequency = $3, time_of_day = $4, start_date = $5,
		    end_date = $6, instructions = $7, reminder_time = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $9 AND user_id = $10
		RETURNING id, user_id, name, dosage, frequency, time_of_day, start_date, end_date,
		          instructions, reminder_time, snoozed_until, created_at, updated_at
	`

	row := db.QueryRow(query, req.Name, req.Dosage, req.Frequency, req.TimeOfDay,
		startDate, endDate, req.Instructions, req.ReminderTime, medicineID, userID)
	medicine, err := scanMedicine(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Medicine not found"})
			return
		}
		log.Printf("Error updating medicine: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating medicine"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Medicine updated successfully",
		"medicine": medicine,
	})
}

// DeleteMedicine removes a medicine and all of its dose logs. The cascade is
// run as an explicit two-statement transaction scoped to the owner.
func DeleteMedicine(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, ok := userIDInterface.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return
	}

	medicineID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid medicine ID"})
		return
	}

	db := database.DB
	tx, err := db.Begin()
	if err != nil {
		log.Printf("Error starting delete transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting medicine"})
		return
	}
	defer tx.Rollback()

	logsResult, err := tx.Exec(`DELETE FROM dose_logs WHERE medicine_id = $1 AND user_id = $2`, medicineID, userID)
	if err != nil {
		log.Printf("Error deleting dose logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting medicine"})
		return
	}
	deletedLogs, _ := logsResult.RowsAffected()

	result, err := tx.Exec(`DELETE FROM medicines WHERE id = $1 AND user_id = $2`, medicineID, userID)
	if err != nil {
		log.Printf("Error deleting medicine: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting medicine"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Error reading delete result: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting medicine"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Medicine not found"})
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Error committing delete transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting medicine"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Medicine deleted successfully",
		"deleted_logs": deletedLogs,
	})
}

// SnoozeMedicine postpones the medicine's reminder by the given number of
// minutes. Zero or negative minutes effectively cancel the snooze.
func SnoozeMedicine(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, ok := userIDInterface.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return
	}

	medicineID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid medicine ID"})
		return
	}

	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Stored in UTC so the engine compares the same instant regardless of the
	// server's zone.
	snoozedUntil := time.Now().UTC().Add(time.Duration(req.Minutes) * time.Minute)

	db := database.DB
	result, err := db.Exec(
		`UPDATE medicines SET snoozed_until = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 AND user_id = $3`,
		snoozedUntil, medicineID, userID,
	)
	if err != nil {
		log.Printf("Error snoozing medicine: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error snoozing medicine"})
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Error reading snooze result: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error snoozing medicine"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Medicine not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"snoozed_until": snoozedUntil,
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedicine(row rowScanner) (models.Medicine, error) {
	var medicine models.Medicine
	var dosage, frequency, timeOfDay, instructions, reminderTime sql.NullString
	var startDate, endDate, snoozedUntil sql.NullTime

	err := row.Scan(
		&medicine.ID,
		&medicine.UserID,
		&medicine.Name,
		&dosage,
		&frequency,
		&timeOfDay,
		&startDate,
		&endDate,
		&instructions,
		&reminderTime,
		&snoozedUntil,
		&medicine.CreatedAt,
		&medicine.UpdatedAt,
	)
	if err != nil {
		return medicine, err
	}

	if dosage.Valid {
		medicine.Dosage = &dosage.String
	}
	if frequency.Valid {
		medicine.Frequency = &frequency.String
	}
	if timeOfDay.Valid {
		medicine.TimeOfDay = &timeOfDay.String
	}
	if startDate.Valid {
		medicine.StartDate = &startDate.Time
	}
	if endDate.Valid {
		medicine.EndDate = &endDate.Time
	}
	if instructions.Valid {
		medicine.Instructions = &instructions.String
	}
	if reminderTime.Valid {
		medicine.ReminderTime = &reminderTime.String
	}
	if snoozedUntil.Valid {
		medicine.SnoozedUntil = &snoozedUntil.Time
	}
	return medicine, nil
}
