package handlers

import (
	"database/sql"
	"encoding/base64"
	"log"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/Aravind22s/MedTracker/internal/database"
	"github.com/Aravind22s/MedTracker/internal/models"
)

// The enumerated reminder tones the client ships with. "custom" means the
// user-uploaded payload in custom_sound_data is used instead.
var allowedReminderSounds = map[string]bool{
	"chime":  true,
	"beep":   true,
	"bell":   true,
	"none":   true,
	"custom": true,
}

const maxCustomSoundBytes = 1 << 20 // decoded audio payload cap

// GetMe returns the current user's profile without the credential hash.
func GetMe(c *gin.Context) {
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
	var user models.User
	var customSound sql.NullString
	query := `SELECT id, email, name, reminder_sound, custom_sound_data, language, created_at, updated_at
	          FROM users WHERE id = $1`
	err := db.QueryRow(query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.ReminderSound,
		&customSound,
		&user.Language,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Error retrieving user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving user"})
		return
	}
	if customSound.Valid {
		user.CustomSoundData = &customSound.String
	}
	user.Password = ""

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateSettings updates reminder sound, custom sound payload, and language.
// Only provided fields change.
func UpdateSettings(c *gin.Context) {
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
		ReminderSound   *string `json:"reminder_sound"`
		CustomSoundData *string `json:"custom_sound_data"`
		Language        *string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.ReminderSound != nil && !allowedReminderSounds[*req.ReminderSound] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown reminder sound"})
		return
	}

	if req.CustomSoundData != nil && *req.CustomSoundData != "" {
		if !isAudioPayload(*req.CustomSoundData) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Custom sound must be an audio payload"})
			return
		}
	}

	if req.Language != nil && strings.TrimSpace(*req.Language) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Language must not be empty"})
		return
	}

	db := database.DB
	var user models.User
	var customSound sql.NullString
	query := `
		UPDATE users
		SET reminder_sound = COALESCE($1, reminder_sound),
		    custom_sound_data = COALESCE($2, custom_sound_data),
		    language = COALESCE($3, language),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING id, email, name, reminder_sound, custom_sound_data, language, created_at, updated_at
	`
	err := db.QueryRow(query, req.ReminderSound, req.CustomSoundData, req.Language, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.ReminderSound,
		&customSound,
		&user.Language,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Error updating settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating settings"})
		return
	}
	if customSound.Valid {
		user.CustomSoundData = &customSound.String
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings updated successfully",
		"user":    user,
	})
}

// isAudioPayload decodes a base64 (optionally data-URL) payload and sniffs the
// content type.
func isAudioPayload(payload string) bool {
	raw := payload
	if idx := strings.Index(raw, ";base64,"); idx >= 0 {
		raw = raw[idx+len(";base64,"):]
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return false
	}
	if len(decoded) == 0 || len(decoded) > maxCustomSoundBytes {
		return false
	}

	detected := mimetype.Detect(decoded)
	return strings.HasPrefix(detected.String(), "audio/")
}
