package monitoring

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	activeHTTPRequests   atomic.Int64
	totalHTTPRequests    atomic.Uint64
	clientErrorResponses atomic.Uint64
	serverErrorResponses atomic.Uint64
	remindersFired       atomic.Uint64
)

// RequestMetricsMiddleware tracks request counters and splits completed
// responses into client-error and server-error classes so the snapshot can
// tell a misbehaving client apart from a failing backend.
func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		activeHTTPRequests.Add(1)
		totalHTTPRequests.Add(1)
		defer activeHTTPRequests.Add(-1)
		c.Next()

		switch status := c.Writer.Status(); {
		case status >= 500:
			serverErrorResponses.Add(1)
		case status >= 400:
			clientErrorResponses.Add(1)
		}
	}
}

// RecordReminderFired counts one delivered reminder alert.
func RecordReminderFired() {
	remindersFired.Add(1)
}

func getHTTPStats() (active int64, total, clientErrors, serverErrors uint64) {
	return activeHTTPRequests.Load(), totalHTTPRequests.Load(),
		clientErrorResponses.Load(), serverErrorResponses.Load()
}

func getRemindersFired() uint64 {
	return remindersFired.Load()
}
