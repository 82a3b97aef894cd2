package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Dose-log history is the only windowed listing; medicines are few enough to
// return whole.
const (
	defaultLogPageLimit = 50
	maxLogPageLimit     = 200
)

type logListQuery struct {
	Limit   int
	Offset  int
	Search  string // trimmed medicine-name filter, echoed back to the client
	Pattern string // lowercased LIKE pattern, "" when no filter
}

// parseLogListQuery reads limit/offset/search from the request, clamping the
// window to the log-history bounds.
func parseLogListQuery(c *gin.Context) logListQuery {
	limit := defaultLogPageLimit
	if parsed, err := strconv.Atoi(strings.TrimSpace(c.Query("limit"))); err == nil && parsed > 0 {
		limit = parsed
	}
	if limit > maxLogPageLimit {
		limit = maxLogPageLimit
	}

	offset := 0
	if parsed, err := strconv.Atoi(strings.TrimSpace(c.Query("offset"))); err == nil && parsed >= 0 {
		offset = parsed
	}

	search := strings.TrimSpace(c.Query("search"))
	pattern := ""
	if search != "" {
		pattern = "%" + strings.ToLower(search) + "%"
	}

	return logListQuery{
		Limit:   limit,
		Offset:  offset,
		Search:  search,
		Pattern: pattern,
	}
}
