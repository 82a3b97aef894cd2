package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func userColumns() []string {
	return []string{
		"id", "email", "name", "reminder_sound", "custom_sound_data",
		"language", "created_at", "updated_at",
	}
}

func TestGetMeOmitsPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.
		ExpectQuery(`SELECT id, email, name, reminder_sound`).
		WithArgs(7).
		WillReturnRows(
			sqlmock.NewRows(userColumns()).
				AddRow(7, "amy@example.com", "Amy", "chime", nil, "English", now, now),
		)

	router := gin.New()
	router.GET("/user/me", withTestUserID(7), GetMe)

	req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	expectHTTP200(t, resp.Code)

	var out struct {
		User map[string]any `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if out.User["email"] != "amy@example.com" {
		t.Fatalf("unexpected email: %v", out.User["email"])
	}
	if pw, ok := out.User["password"]; ok && pw != "" {
		t.Fatalf("password leaked in profile response: %v", pw)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpdateSettingsLanguage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.
		ExpectQuery(`UPDATE users`).
		WithArgs(nil, nil, "Tamil", 7).
		WillReturnRows(
			sqlmock.NewRows(userColumns()).
				AddRow(7, "amy@example.com", "Amy", "chime", nil, "Tamil", now, now),
		)

	router := gin.New()
	router.PUT("/user/settings", withTestUserID(7), UpdateSettings)

	body := strings.NewReader(`{"language": "Tamil"}`)
	req := httptest.NewRequest(http.MethodPut, "/user/settings", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	expectHTTP200(t, resp.Code)

	var out struct {
		User struct {
			Language string `json:"language"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if out.User.Language != "Tamil" {
		t.Fatalf("expected language Tamil, got %q", out.User.Language)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpdateSettingsRejectsUnknownSound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, _, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.PUT("/user/settings", withTestUserID(7), UpdateSettings)

	body := strings.NewReader(`{"reminder_sound": "kazoo"}`)
	req := httptest.NewRequest(http.MethodPut, "/user/settings", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	mustStatus(t, resp.Code, http.StatusBadRequest)
}

func TestUpdateSettingsRejectsNonAudioPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, _, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.PUT("/user/settings", withTestUserID(7), UpdateSettings)

	// base64 of plain text, not an audio container.
	body := strings.NewReader(`{"reminder_sound": "custom", "custom_sound_data": "aGVsbG8gd29ybGQ="}`)
	req := httptest.NewRequest(http.MethodPut, "/user/settings", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	mustStatus(t, resp.Code, http.StatusBadRequest)
}
