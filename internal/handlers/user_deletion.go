package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aravind22s/MedTracker/internal/database"
)

type deleteUserSummary struct {
	UserID           int   `json:"user_id"`
	DeletedMedicines int64 `json:"deleted_medicines"`
	DeletedDoseLogs  int64 `json:"deleted_dose_logs"`
}

func deleteUserAndRelatedData(db *sql.DB, userID int) (deleteUserSummary, error) {
	summary := deleteUserSummary{UserID: userID}

	tx, err := db.Begin()
	if err != nil {
		return summary, err
	}
	defer tx.Rollback()

	var existingUserID int
	if err := tx.QueryRow(`SELECT id FROM users WHERE id = $1`, userID).Scan(&existingUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return summary, sql.ErrNoRows
		}
		return summary, err
	}

	logsResult, err := tx.Exec(`DELETE FROM dose_logs WHERE user_id = $1`, userID)
	if err != nil {
		return summary, err
	}
	summary.DeletedDoseLogs, _ = logsResult.RowsAffected()

	medicinesResult, err := tx.Exec(`DELETE FROM medicines WHERE user_id = $1`, userID)
	if err != nil {
		return summary, err
	}
	summary.DeletedMedicines, _ = medicinesResult.RowsAffected()

	result, err := tx.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return summary, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return summary, err
	}
	if rowsAffected == 0 {
		return summary, sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return summary, err
	}
	return summary, nil
}

// DeleteProfile removes the current user and everything they own.
func DeleteProfile(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, ok := userIDInterface.(int)
	if !ok || userID <= 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return
	}

	summary, err := deleteUserAndRelatedData(database.DB, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Error deleting profile for user_id=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile deleted successfully",
		"summary": summary,
	})
}
