package monitoring

import (
	"runtime"
	"time"

	"github.com/Aravind22s/MedTracker/internal/database"
)

// Service holds runtime context for monitoring and reporting.
type Service struct {
	startedAt time.Time
}

type Snapshot struct {
	TimestampUTC       string `json:"timestamp_utc"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
	HTTPActiveRequests int64  `json:"http_active_requests"`
	HTTPTotalRequests  uint64 `json:"http_total_requests"`
	HTTPClientErrors   uint64 `json:"http_client_errors"`
	HTTPServerErrors   uint64 `json:"http_server_errors"`
	RemindersFired     uint64 `json:"reminders_fired"`
	DBOpenConnections  int    `json:"db_open_connections"`
	DBInUseConnections int    `json:"db_in_use_connections"`
	DBWaitCount        int64  `json:"db_wait_count"`
	Goroutines         int    `json:"goroutines"`
	GoMemoryAllocBytes uint64 `json:"go_memory_alloc_bytes"`
	GoHeapInUseBytes   uint64 `json:"go_heap_in_use_bytes"`
	GoGCCount          uint32 `json:"go_gc_count"`
	UsersTotal         int64  `json:"users_total"`
	MedicinesTotal     int64  `json:"medicines_total"`
	DoseLogsTotal      int64  `json:"dose_logs_total"`
	DBSizeBytes        int64  `json:"db_size_bytes"`
}

func NewService(startedAt time.Time) *Service {
	return &Service{startedAt: startedAt}
}

// CollectSnapshot gathers runtime and table counters. Count queries are best
// effort; a failing counter is reported as zero rather than failing the call.
func (s *Service) CollectSnapshot() Snapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	activeHTTP, totalHTTP, clientErrors, serverErrors := getHTTPStats()
	dbStats := database.DB.Stats()

	var usersTotal, medicinesTotal, doseLogsTotal, dbSizeBytes int64
	_ = database.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&usersTotal)
	_ = database.DB.QueryRow(`SELECT COUNT(*) FROM medicines`).Scan(&medicinesTotal)
	_ = database.DB.QueryRow(`SELECT COUNT(*) FROM dose_logs`).Scan(&doseLogsTotal)
	_ = database.DB.QueryRow(`SELECT COALESCE(pg_database_size(current_database()), 0)`).Scan(&dbSizeBytes)

	return Snapshot{
		TimestampUTC:       time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds:      int64(time.Since(s.startedAt).Seconds()),
		HTTPActiveRequests: activeHTTP,
		HTTPTotalRequests:  totalHTTP,
		HTTPClientErrors:   clientErrors,
		HTTPServerErrors:   serverErrors,
		RemindersFired:     getRemindersFired(),
		DBOpenConnections:  dbStats.OpenConnections,
		DBInUseConnections: dbStats.InUse,
		DBWaitCount:        dbStats.WaitCount,
		Goroutines:         runtime.NumGoroutine(),
		GoMemoryAllocBytes: memStats.Alloc,
		GoHeapInUseBytes:   memStats.HeapInuse,
		GoGCCount:          memStats.NumGC,
		UsersTotal:         usersTotal,
		MedicinesTotal:     medicinesTotal,
		DoseLogsTotal:      doseLogsTotal,
		DBSizeBytes:        dbSizeBytes,
	}
}
