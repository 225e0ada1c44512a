package gormrepository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"topicpulse/internal/models"
	"topicpulse/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Ingest -----------------------------------------------------------------

func (s *Store) InsertRawEvents(ctx context.Context, items []models.RawEvent) (int64, error) {
	if s == nil || s.db == nil || len(items) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&items)
	return res.RowsAffected, res.Error
}

// --- Clean ------------------------------------------------------------------

const uncleanedRawEventsSQL = `
SELECT r.id, r.source, r.created_at, r.author, r.text, r.lang, r.meta
FROM raw.events r
LEFT JOIN dw.messages m ON m.id = r.id
LEFT JOIN dw.clean_skips k ON k.id = r.id
WHERE m.id IS NULL AND k.id IS NULL
ORDER BY r.created_at
LIMIT ?`

func (s *Store) ListUncleanedRawEvents(ctx context.Context, limit int) ([]models.RawEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 1000)
	var items []models.RawEvent
	if err := s.db.WithContext(ctx).Raw(uncleanedRawEventsSQL, limit).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertMessages(ctx context.Context, items []models.Message) (int64, error) {
	if s == nil || s.db == nil || len(items) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&items)
	return res.RowsAffected, res.Error
}

func (s *Store) InsertCleanSkips(ctx context.Context, items []models.CleanSkip) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&items).Error
}

// --- Score ------------------------------------------------------------------

const unscoredMessagesSQL = `
SELECT m.id, m.created_at, m.author, m.text_clean, m.lang, m.source
FROM dw.messages m
LEFT JOIN dw.sentiment s ON s.id = m.id
WHERE s.id IS NULL
ORDER BY m.created_at
LIMIT ?`

func (s *Store) ListUnscoredMessages(ctx context.Context, limit int) ([]models.Message, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 1000)
	var items []models.Message
	if err := s.db.WithContext(ctx).Raw(unscoredMessagesSQL, limit).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertSentimentResults(ctx context.Context, items []models.SentimentResult) (int64, error) {
	if s == nil || s.db == nil || len(items) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"compound", "label"}),
	}).Create(&items)
	return res.RowsAffected, res.Error
}

// --- Aggregate --------------------------------------------------------------

// Full recompute over the whole messages-sentiment join. Correctness never
// depends on prior daily_metrics state, only on messages/sentiment being
// consistent inputs. O(all history) per run; fine at this scale.
const rebuildDailyMetricsSQL = `
INSERT INTO dw.daily_metrics (day, avg_compound, pos_ratio, volume)
SELECT
  DATE(m.created_at) AS day,
  AVG(s.compound) AS avg_compound,
  AVG(CASE WHEN s.label = 'positive' THEN 1.0 ELSE 0.0 END) AS pos_ratio,
  COUNT(*) AS volume
FROM dw.messages m
JOIN dw.sentiment s ON s.id = m.id
GROUP BY 1
ON CONFLICT (day) DO UPDATE
  SET avg_compound = EXCLUDED.avg_compound,
      pos_ratio = EXCLUDED.pos_ratio,
      volume = EXCLUDED.volume`

func (s *Store) RebuildDailyMetrics(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Exec(rebuildDailyMetricsSQL).Error
}

// --- Read-only queries ------------------------------------------------------

func (s *Store) ListDailyMetrics(ctx context.Context, params repository.ListDailyMetricsParams) ([]models.DailyMetric, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.DailyMetric{})
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("day >= ?", params.Since.Format("2006-01-02"))
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("day <= ?", params.Until.Format("2006-01-02"))
	}
	limit := normalizeLimit(params.Limit, 365)
	var items []models.DailyMetric
	if err := query.Order("day asc").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListMessages(ctx context.Context, params repository.ListMessagesParams) ([]models.Message, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Message{})
	if params.Source != nil && *params.Source != "" {
		query = query.Where("source = ?", *params.Source)
	}
	if params.Lang != nil && *params.Lang != "" {
		query = query.Where("lang = ?", *params.Lang)
	}
	limit := normalizeLimit(params.Limit, 100)
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	var items []models.Message
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

const sentimentDistributionSQL = `
SELECT s.label, COUNT(*) AS count
FROM dw.sentiment s
JOIN dw.messages m ON m.id = s.id
WHERE m.created_at >= ?
GROUP BY s.label
ORDER BY count DESC`

func (s *Store) SentimentDistribution(ctx context.Context, since time.Time) ([]repository.LabelCount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []repository.LabelCount
	if err := s.db.WithContext(ctx).Raw(sentimentDistributionSQL, since).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) PipelineStatus(ctx context.Context) (repository.PipelineStatus, error) {
	var status repository.PipelineStatus
	if s == nil || s.db == nil {
		return status, nil
	}
	counts := []struct {
		model any
		dest  *int64
	}{
		{&models.RawEvent{}, &status.RawEvents},
		{&models.Message{}, &status.Messages},
		{&models.SentimentResult{}, &status.Scored},
		{&models.CleanSkip{}, &status.Skipped},
		{&models.DailyMetric{}, &status.Days},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Count(c.dest).Error; err != nil {
			return status, err
		}
	}
	return status, nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
