package service

import (
	"context"

	"github.com/jonreiter/govader"
	"go.uber.org/zap"

	"topicpulse/internal/config"
	"topicpulse/internal/models"
	"topicpulse/internal/repository"
)

// Label thresholds on the compound score. 0.05 itself is positive, -0.05
// itself is negative.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// ScoreService computes a VADER compound polarity score for messages that do
// not yet have a sentiment row. The upsert overwrites compound and label on
// conflict, so a re-score after a lexicon change converges on the new values.
type ScoreService struct {
	Repo   repository.Repository
	Config config.ScoreConfig
	Logger *zap.Logger

	analyzer *govader.SentimentIntensityAnalyzer
}

func NewScoreService(repo repository.Repository, cfg config.ScoreConfig, logger *zap.Logger) *ScoreService {
	return &ScoreService{
		Repo:     repo,
		Config:   cfg,
		Logger:   logger,
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

func (s *ScoreService) Name() string { return "score" }

func (s *ScoreService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	batch := s.Config.BatchSize
	if batch <= 0 {
		batch = 1000
	}

	rows, err := s.Repo.ListUnscoredMessages(ctx, batch)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	out := make([]models.SentimentResult, 0, len(rows))
	for _, m := range rows {
		compound := s.Score(m.TextClean)
		out = append(out, models.SentimentResult{
			ID:       m.ID,
			Compound: compound,
			Label:    labelFromCompound(compound),
		})
	}

	written, err := s.Repo.UpsertSentimentResults(ctx, out)
	if err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("score pass ok",
			zap.Int("selected", len(rows)),
			zap.Int64("written", written),
		)
	}
	return nil
}

// Score returns the compound polarity in [-1,1]. Deterministic for a fixed
// text and lexicon version.
func (s *ScoreService) Score(text string) float64 {
	if s.analyzer == nil {
		s.analyzer = govader.NewSentimentIntensityAnalyzer()
	}
	return s.analyzer.PolarityScores(text).Compound
}

func labelFromCompound(c float64) string {
	switch {
	case c >= positiveThreshold:
		return models.LabelPositive
	case c <= negativeThreshold:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}
