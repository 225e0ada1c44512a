package db

import (
	"topicpulse/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	// Raw ingest and warehouse tables live in separate Postgres schemas; the
	// models use schema-qualified table names, so the schemas must exist first.
	for _, schema := range []string{"raw", "dw"} {
		if err := db.Gorm.Exec("CREATE SCHEMA IF NOT EXISTS " + schema).Error; err != nil {
			return err
		}
	}

	return db.Gorm.AutoMigrate(
		&models.RawEvent{},
		&models.Message{},
		&models.SentimentResult{},
		&models.DailyMetric{},
		&models.CleanSkip{},
	)
}
