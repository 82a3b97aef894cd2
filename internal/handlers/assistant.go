package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Aravind22s/MedTracker/internal/assistant"
	"github.com/Aravind22s/MedTracker/internal/database"
)

var assistantClient *assistant.Client

// SetAssistantClient registers the language-model client used by the
// assistant endpoints. The client is constructed once in main and passed in.
func SetAssistantClient(client *assistant.Client) {
	assistantClient = client
}

func requireAssistant(c *gin.Context) *assistant.Client {
	if assistantClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "assistant_unavailable",
			"message": "The assistant is not configured on this server.",
		})
		return nil
	}
	return assistantClient
}

// ParseMedicine turns free text into structured medicine fields. Nothing is
// persisted here; the client reviews the parse before creating the medicine.
func ParseMedicine(c *gin.Context) {
	client := requireAssistant(c)
	if client == nil {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	parsed, err := client.ParseMedicine(c.Request.Context(), req.Text)
	if err != nil {
		log.Printf("Error parsing medicine text: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not understand the medicine description"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"medicine": parsed})
}

// Chat relays a multi-turn health conversation, answering in the user's
// preferred language.
func Chat(c *gin.Context) {
	client := requireAssistant(c)
	if client == nil {
		return
	}

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
		Messages []assistant.Message `json:"messages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one message is required"})
		return
	}

	language := userLanguage(userID)
	reply, err := client.Chat(c.Request.Context(), req.Messages, language)
	if err != nil {
		log.Printf("Error in assistant chat: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant is not responding"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// Insights summarizes the caller-provided behavior payload into prose.
func Insights(c *gin.Context) {
	client := requireAssistant(c)
	if client == nil {
		return
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil || len(payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An analysis payload is required"})
		return
	}

	insights, err := client.Insights(c.Request.Context(), payload)
	if err != nil {
		log.Printf("Error generating insights: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not generate insights"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// Translate renders text in the requested language.
func Translate(c *gin.Context) {
	client := requireAssistant(c)
	if client == nil {
		return
	}

	var req struct {
		Text           string `json:"text"`
		TargetLanguage string `json:"target_language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	translated, err := client.Translate(c.Request.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		log.Printf("Error translating text: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not translate the text"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"translated": translated})
}

// userLanguage looks up the user's language preference, defaulting to English
// when the lookup fails so chat still answers.
func userLanguage(userID int) string {
	var language string
	err := database.DB.QueryRow(`SELECT language FROM users WHERE id = $1`, userID).Scan(&language)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Error reading user language: %v", err)
		}
		return "English"
	}
	return language
}
