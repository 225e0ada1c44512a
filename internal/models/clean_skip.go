package models

import "time"

// Skip reasons recorded by the cleaner.
const (
	SkipReasonEmpty     = "empty"
	SkipReasonWrongLang = "wrong_lang"
)

// CleanSkip marks a raw event the cleaner rejected (empty after normalization
// or wrong language). Without this marker the anti-join would re-select those
// rows on every run forever. Internal bookkeeping only; downstream consumers
// never read this table.
type CleanSkip struct {
	ID        string    `gorm:"type:text;primaryKey"`
	Reason    string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;autoCreateTime"`
}

func (CleanSkip) TableName() string {
	return "dw.clean_skips"
}
