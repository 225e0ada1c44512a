package models

import "time"

// DailyMetric is one row per calendar day, fully recomputed and upserted on
// every aggregate pass. It always reflects current totals for that day.
type DailyMetric struct {
	Day         time.Time `gorm:"type:date;primaryKey"`
	AvgCompound float64   `gorm:"not null"`
	PosRatio    float64   `gorm:"not null"`
	Volume      int64     `gorm:"not null"`
}

func (DailyMetric) TableName() string {
	return "dw.daily_metrics"
}
