package repository

import (
	"context"
	"time"

	"topicpulse/internal/models"
)

// Repository is the persistence surface the pipeline stages run against.
// Each stage performs one bounded read plus one batched write per run, so a
// crash between the two leaves rows unprocessed for the next run rather than
// half-written.
type Repository interface {
	// Ingest: append-only, duplicate ids are silently ignored.
	InsertRawEvents(ctx context.Context, items []models.RawEvent) (int64, error)

	// Clean: raw events with neither a message nor a skip marker, oldest first.
	ListUncleanedRawEvents(ctx context.Context, limit int) ([]models.RawEvent, error)
	InsertMessages(ctx context.Context, items []models.Message) (int64, error)
	InsertCleanSkips(ctx context.Context, items []models.CleanSkip) error

	// Score: messages without a sentiment row.
	ListUnscoredMessages(ctx context.Context, limit int) ([]models.Message, error)
	UpsertSentimentResults(ctx context.Context, items []models.SentimentResult) (int64, error)

	// Aggregate: full recompute of dw.daily_metrics from the
	// messages-sentiment join, upserting one row per day.
	RebuildDailyMetrics(ctx context.Context) error

	// Read-only queries for the metrics API.
	ListDailyMetrics(ctx context.Context, params ListDailyMetricsParams) ([]models.DailyMetric, error)
	ListMessages(ctx context.Context, params ListMessagesParams) ([]models.Message, error)
	SentimentDistribution(ctx context.Context, since time.Time) ([]LabelCount, error)
	PipelineStatus(ctx context.Context) (PipelineStatus, error)
}

type ListDailyMetricsParams struct {
	Since *time.Time
	Until *time.Time
	Limit int
}

type ListMessagesParams struct {
	Source *string
	Lang   *string
	Limit  int
	Offset int
}

// LabelCount is one bucket of the sentiment label distribution.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// PipelineStatus reports row counts per stage so operators can see how far
// processing has progressed.
type PipelineStatus struct {
	RawEvents int64 `json:"raw_events"`
	Messages  int64 `json:"messages"`
	Scored    int64 `json:"scored"`
	Skipped   int64 `json:"skipped"`
	Days      int64 `json:"days"`
}
