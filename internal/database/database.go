package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/circulate/internal/entities"
)

// Database wraps the gorm connection to the local durable store. A single
// handle is created at startup and passed explicitly to every repository;
// there is no package-level singleton.
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the sqlite store at dbPath and runs migrations.
// Migrations are idempotent, so calling this against an existing store is a
// no-op beyond opening the connection. Failures are reported as
// ErrStorageUnavailable.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageUnavailable, dbPath, err)
	}

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Checkout{},
		&entities.User{},
		&entities.OfflineSync{},
		&entities.SyncRun{},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorageUnavailable, err)
	}

	log.Printf("Database initialized at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Reset clears every collection in one transaction. Either all collections
// confirm clearance or none do; a failed clear rolls the whole reset back.
func (d *Database) Reset() error {
	models := []any{
		&entities.Book{},
		&entities.Checkout{},
		&entities.User{},
		&entities.OfflineSync{},
		&entities.SyncRun{},
	}

	return d.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range models {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}
