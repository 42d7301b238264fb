// Package gormstore implements the account repositories on top of GORM.
package gormstore

import (
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"password-dashboard/internal/domain"
	"password-dashboard/internal/repository/sqlite"
)

// Options selects the database backing the account store.
type Options struct {
	// Driver is "sqlite" (default) or "mysql".
	Driver string
	// Path is the sqlite database file.
	Path string
	// DSN is the mysql data source name.
	DSN string
}

// Open connects GORM to the configured database. For sqlite the connection is
// opened through modernc.org/sqlite so no cgo driver is needed at runtime.
func Open(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "sqlite":
		sqlDB, err := sqlite.Open(opts.Path)
		if err != nil {
			return nil, err
		}
		db, err := OpenSQLite(sqlDB, cfg)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		return db, nil
	case "mysql":
		if opts.DSN == "" {
			return nil, fmt.Errorf("mysql dsn is required")
		}
		db, err := gorm.Open(mysql.Open(opts.DSN), cfg)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// OpenSQLite wraps an already opened sqlite handle.
func OpenSQLite(sqlDB *sql.DB, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: sqlite.DriverName, Conn: sqlDB}, cfg)
	if err != nil {
		return nil, fmt.Errorf("open gorm sqlite: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the account tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.SiteCredential{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
