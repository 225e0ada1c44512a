package models

import (
	"time"

	"gorm.io/datatypes"
)

// Source values for RawEvent.Source.
const (
	SourceSearch = "hn"
	SourceFeed   = "rss"
)

// RawEvent is an ingested upstream item. Rows are append-only: the ingestor
// inserts with DO NOTHING on conflict and nothing ever updates or deletes them.
type RawEvent struct {
	ID        string         `gorm:"type:text;primaryKey"`
	Source    string         `gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time      `gorm:"type:timestamptz;not null;index"`
	Author    *string        `gorm:"type:text"`
	Text      string         `gorm:"type:text;not null"`
	Lang      *string        `gorm:"type:varchar(8)"`
	Meta      datatypes.JSON `gorm:"type:jsonb"`
}

func (RawEvent) TableName() string {
	return "raw.events"
}
