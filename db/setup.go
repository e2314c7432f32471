package db

import (
	"database/sql"
	"fmt"

	"github.com/sarthak7846/uptime-monitor/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// Connect opens the relational store. The postgres driver is the production
// path; the CGO-free sqlite driver exists for local development and tests.
func Connect(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return gdb, nil
	case "sqlite":
		if dsn != ":memory:" {
			// WAL mode allows readers alongside the single writer
			dsn += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=1"
		}
		sqlDB, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite tolerates a single writer
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)

		gdb, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func Migrate(gdb *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Monitor{},
		&models.MonitorLog{},
		&models.Incident{},
		&models.NotificationEndpoint{},
		&models.NotificationRule{},
		&models.NotificationEvent{},
	}

	migrator := gdb.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := gdb.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}
