package service

import (
	"context"

	"go.uber.org/zap"

	"topicpulse/internal/repository"
)

// AggregateService rebuilds dw.daily_metrics from the messages-sentiment
// join. The aggregation runs entirely in the store: one INSERT ... SELECT
// with an upsert per day, no per-row work in the application.
type AggregateService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (s *AggregateService) Name() string { return "aggregate" }

func (s *AggregateService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if err := s.Repo.RebuildDailyMetrics(ctx); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("aggregate pass ok")
	}
	return nil
}
