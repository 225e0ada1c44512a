package models

// Sentiment labels derived from the compound score.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// SentimentResult holds the polarity score for one message. Unlike messages,
// rows are mutable: re-scoring overwrites compound and label.
type SentimentResult struct {
	ID       string  `gorm:"type:text;primaryKey"`
	Compound float64 `gorm:"not null"`
	Label    string  `gorm:"type:varchar(10);not null;index"`
}

func (SentimentResult) TableName() string {
	return "dw.sentiment"
}
