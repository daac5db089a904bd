// Package db はgorm/sqliteベースのデータベース接続を提供します。
package db

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sim_backend/internal/feature/replay/adapters"
)

// OpenDB opens the sqlite candle database at DB_PATH (default
// "simulation.db"). sqlite briefly locks under concurrent writers, so the
// open is retried within a short window before giving up.
func OpenDB() *gorm.DB {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "simulation.db"
	}

	var (
		gdb *gorm.DB
		err error
	)

	deadline := time.Now().Add(10 * time.Second)
	for {
		gdb, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB open failed after 10s: %v", err)
		}
		log.Printf("DB open failed, retrying...: %v", err)
		time.Sleep(1 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := gdb.AutoMigrate(&adapters.CandleModel{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return gdb
}
