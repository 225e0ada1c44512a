package models

import "time"

// Message is a cleaned raw event that survived normalization and the language
// filter. ID matches the originating RawEvent. Write-once: a given id is
// cleaned at most once.
type Message struct {
	ID        string    `gorm:"type:text;primaryKey"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;index"`
	Author    *string   `gorm:"type:text"`
	TextClean string    `gorm:"type:text;not null"`
	Lang      *string   `gorm:"type:varchar(8)"`
	Source    string    `gorm:"type:varchar(20);not null"`
}

func (Message) TableName() string {
	return "dw.messages"
}
