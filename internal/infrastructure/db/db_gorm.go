// Package db opens the gorm database handle for the configured driver.
package db

import (
	"fmt"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockintel/internal/infrastructure/sqlite"
)

// Open connects with the given driver ("sqlite" or "postgres") and DSN.
// The location is always passed in explicitly so the pipeline and the
// query server can target different stores within one process.
//
// When migrate is true the stock_data schema is created; only the write
// path (cmd/ingest) migrates, so a query server against a fresh store
// correctly reports it as uninitialized.
func Open(driver, dsn string, migrate bool) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "postgres":
		dial = gpostgres.Open(dsn)
	case "sqlite", "":
		dial = gsqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if migrate {
		if err := db.AutoMigrate(&sqlite.MetricRowModel{}); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}
