package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func queryOf(t *testing.T, rawQuery string) logListQuery {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/logs?"+rawQuery, nil)
	return parseLogListQuery(c)
}

func TestParseLogListQueryDefaults(t *testing.T) {
	params := queryOf(t, "")
	if params.Limit != defaultLogPageLimit || params.Offset != 0 {
		t.Fatalf("unexpected defaults: %+v", params)
	}
	if params.Pattern != "" {
		t.Fatalf("expected empty pattern, got %q", params.Pattern)
	}
}

func TestParseLogListQueryClampsAndFilters(t *testing.T) {
	params := queryOf(t, "limit=5000&offset=-3&search=%20Paracetamol%20")
	if params.Limit != maxLogPageLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxLogPageLimit, params.Limit)
	}
	if params.Offset != 0 {
		t.Fatalf("negative offset should fall back to 0, got %d", params.Offset)
	}
	if params.Search != "Paracetamol" || params.Pattern != "%paracetamol%" {
		t.Fatalf("unexpected search normalization: %+v", params)
	}
}
