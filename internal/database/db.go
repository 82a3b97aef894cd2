package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/sethvargo/go-retry"

	"github.com/Aravind22s/MedTracker/internal/config"
)

var DB *sql.DB

// InitDB opens the database connection and waits for the backend to accept it.
// Postgres may still be starting when the API boots, so the initial ping is
// retried with a fixed backoff instead of failing fast.
func InitDB(cfg config.Config) error {
	log.Printf("Connecting to database: host=%s port=%s user=%s db=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBName, cfg.DBSSLMode)

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleMin) * time.Minute)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifeMin) * time.Minute)

	attempts := cfg.DBConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(2*time.Second))
	err = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if pingErr := db.PingContext(ctx); pingErr != nil {
			log.Printf("Database not ready yet: %v", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	DB = db
	log.Println("Connected to database successfully")
	return nil
}

// Available reports whether the record store currently answers pings.
func Available(ctx context.Context) error {
	if DB == nil {
		return sql.ErrConnDone
	}
	return DB.PingContext(ctx)
}

// CloseDB closes the database connection
func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}
