// Package testutil opens throwaway sqlite databases with the full schema applied.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/frahmantamala/exeat-management/internal/core/datamodel"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMemoryDB returns an in-memory database pinned to a single connection, so
// every query sees the same schema.
func NewMemoryDB() (*gorm.DB, error) {
	return open(":memory:")
}

// NewFileDB creates a database file under dir; use it when a second handle
// (for example an sqlx connection) must see the same data.
func NewFileDB(dir string) (*gorm.DB, string, error) {
	path := filepath.Join(dir, "exeat_test.db")
	db, err := open(path + "?_busy_timeout=5000")
	return db, path, err
}

func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := datamodel.Migrate(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
