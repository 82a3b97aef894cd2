package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aravind22s/MedTracker/internal/database"
	"github.com/Aravind22s/MedTracker/internal/models"
)

// GetDoseLogs returns the user's dose logs, newest first, joined with the
// medicine name. Supports limit/offset/search over the medicine name.
func GetDoseLogs(c *gin.Context) {
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
	params := parseLogListQuery(c)

	countQuery := `
		SELECT COUNT(*)
		FROM dose_logs dl
		JOIN medicines m ON m.id = dl.medicine_id
		WHERE dl.user_id = $1
		  AND ($2 = '' OR lower(m.name) LIKE $2)
	`

	var totalCount int
	if err := db.QueryRow(countQuery, userID, params.Pattern).Scan(&totalCount); err != nil {
		log.Printf("Error retrieving dose logs count: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving dose logs"})
		return
	}

	query := `
		SELECT dl.id, dl.user_id, dl.medicine_id, m.name, dl.taken_at, dl.status, dl.created_at
		FROM dose_logs dl
		JOIN medicines m ON m.id = dl.medicine_id
		WHERE dl.user_id = $1
		  AND ($2 = '' OR lower(m.name) LIKE $2)
		ORDER BY dl.taken_at DESC, dl.id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := db.Query(query, userID, params.Pattern, params.Limit, params.Offset)
	if err != nil {
		log.Printf("Error retrieving dose logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving dose logs"})
		return
	}
	defer rows.Close()

	logs := make([]models.DoseLog, 0)
	for rows.Next() {
		var doseLog models.DoseLog
		err := rows.Scan(
			&doseLog.ID,
			&doseLog.UserID,
			&doseLog.MedicineID,
			&doseLog.MedicineName,
			&doseLog.TakenAt,
			&doseLog.Status,
			&doseLog.CreatedAt,
		)
		if err != nil {
			log.Printf("Error scanning dose log: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning dose log"})
			return
		}
		logs = append(logs, doseLog)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Error iterating dose logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving dose logs"})
		return
	}

	pageCount := len(logs)
	c.JSON(http.StatusOK, gin.H{
		"logs":     logs,
		"count":    pageCount,
		"total":    totalCount,
		"limit":    params.Limit,
		"offset":   params.Offset,
		"has_more": params.Offset+pageCount < totalCount,
		"search":   params.Search,
	})
}

// CreateDoseLog appends a dose log for a medicine the user owns. Logs have no
// edit path; they only go away when the medicine is deleted.
func CreateDoseLog(c *gin.Context) {
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

	var req struct {
		MedicineID int     `json:"medicine_id"`
		TakenAt    *string `json:"taken_at"` // RFC 3339; defaults to now
		Status     string  `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.MedicineID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "medicine_id is required"})
		return
	}

	takenAt := time.Now()
	if req.TakenAt != nil && strings.TrimSpace(*req.TakenAt) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.TakenAt))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "taken_at must be an RFC 3339 timestamp"})
			return
		}
		takenAt = parsed
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = "taken"
	}

	// The medicine must belong to the same user before a log may reference it.
	db := database.DB
	var medicineName string
	err := db.QueryRow(`SELECT name FROM medicines WHERE id = $1 AND user_id = $2`, req.MedicineID, userID).
		Scan(&medicineName)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Medicine not found"})
			return
		}
		log.Printf("Error checking medicine ownership: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating dose log"})
		return
	}

	var doseLog models.DoseLog
	query := `
		INSERT INTO dose_logs (user_id, medicine_id, taken_at, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, medicine_id, taken_at, status, created_at
	`
	err = db.QueryRow(query, userID, req.MedicineID, takenAt, status).Scan(
		&doseLog.ID,
		&doseLog.UserID,
		&doseLog.MedicineID,
		&doseLog.TakenAt,
		&doseLog.Status,
		&doseLog.CreatedAt,
	)
	if err != nil {
		log.Printf("Error creating dose log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating dose log"})
		return
	}
	doseLog.MedicineName = medicineName

	c.JSON(http.StatusOK, gin.H{
		"message": "Dose logged successfully",
		"log":     doseLog,
	})
}
