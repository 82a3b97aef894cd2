package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aravind22s/MedTracker/internal/analytics"
	"github.com/Aravind22s/MedTracker/internal/database"
	"github.com/Aravind22s/MedTracker/internal/models"
)

// GetAnalytics returns the derived adherence views for the current user:
// daily completion series, day-of-week adherence, per-medicine adherence, and
// the headline stats (streak, last-7-day misses, best weekday).
func GetAnalytics(c *gin.Context) {
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

	medicines, logs, err := loadUserRows(userID)
	if err != nil {
		log.Printf("Error loading analytics rows: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving analytics"})
		return
	}

	daily := analytics.DailySeries(logs)
	weekday := analytics.WeekdaySeries(logs)
	perMedicine := analytics.PerMedicine(medicines, logs)
	stats := analytics.ComputeStats(daily, weekday)

	c.JSON(http.StatusOK, gin.H{
		"daily":        daily,
		"weekday":      weekday,
		"per_medicine": perMedicine,
		"stats":        stats,
	})
}

// GetBehaviorAnalysis returns dose-timing delay samples: how far from the
// scheduled reminder each taken dose landed, negative when taken early.
func GetBehaviorAnalysis(c *gin.Context) {
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

	medicines, logs, err := loadUserRows(userID)
	if err != nil {
		log.Printf("Error loading behavior rows: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving behavior analysis"})
		return
	}

	delays := analytics.DelaySamples(medicines, logs)

	averageDelay := 0.0
	if len(delays) > 0 {
		sum := 0
		for _, d := range delays {
			sum += d.DelayMinutes
		}
		averageDelay = float64(sum) / float64(len(delays))
	}

	c.JSON(http.StatusOK, gin.H{
		"delays":                delays,
		"average_delay_minutes": averageDelay,
		"count":                 len(delays),
	})
}

// loadUserRows fetches the user's medicines and dose logs for aggregation.
func loadUserRows(userID int) ([]models.Medicine, []models.DoseLog, error) {
	db := database.DB

	medicineRows, err := db.Query(`
		SELECT id, user_id, name, dosage, frequency, time_of_day, start_date, end_date,
		       instructions, reminder_time, snoozed_until, created_at, updated_at
		FROM medicines
		WHERE user_id = $1
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer medicineRows.Close()

	medicines := make([]models.Medicine, 0)
	for medicineRows.Next() {
		medicine, err := scanMedicine(medicineRows)
		if err != nil {
			return nil, nil, err
		}
		medicines = append(medicines, medicine)
	}
	if err := medicineRows.Err(); err != nil {
		return nil, nil, err
	}

	logRows, err := db.Query(`
		SELECT id, user_id, medicine_id, taken_at, status, created_at
		FROM dose_logs
		WHERE user_id = $1
		ORDER BY taken_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer logRows.Close()

	logs := make([]models.DoseLog, 0)
	for logRows.Next() {
		var doseLog models.DoseLog
		if err := logRows.Scan(
			&doseLog.ID,
			&doseLog.UserID,
			&doseLog.MedicineID,
			&doseLog.TakenAt,
			&doseLog.Status,
			&doseLog.CreatedAt,
		); err != nil {
			return nil, nil, err
		}
		logs = append(logs, doseLog)
	}
	if err := logRows.Err(); err != nil {
		return nil, nil, err
	}

	return medicines, logs, nil
}
