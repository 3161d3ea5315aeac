package database

import (
	"showtix/internal/bookings"
	"showtix/internal/shows"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid_generate_v4 backs every primary key default.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	if err := db.AutoMigrate(
		&shows.Show{},
		&bookings.Booking{},
	); err != nil {
		return err
	}

	return migrateIndexes(db)
}

// migrateIndexes adds indexes the reclaim sweep depends on beyond what the
// model tags declare.
func migrateIndexes(db *gorm.DB) error {
	// Partial index so the sweep's stale-PENDING scan stays fast no matter
	// how many terminal rows accumulate.
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_pending_created_at
		ON bookings (created_at)
		WHERE status = 'PENDING';
	`).Error
}
