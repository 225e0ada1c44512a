package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Stage is one batch pass of the pipeline.
type Stage interface {
	Name() string
	RunOnce(ctx context.Context) error
}

// PipelineService runs the stages sequentially: ingest, clean, score,
// aggregate. A stage failure (store-level) stops the run; per-source ingest
// failures are already absorbed inside the ingest stage.
type PipelineService struct {
	Stages []Stage
	Logger *zap.Logger
}

func (s *PipelineService) RunOnce(ctx context.Context) error {
	if s == nil {
		return nil
	}
	for _, stage := range s.Stages {
		start := time.Now()
		if err := stage.RunOnce(ctx); err != nil {
			if s.Logger != nil {
				s.Logger.Error("pipeline stage failed",
					zap.String("stage", stage.Name()),
					zap.Error(err),
				)
			}
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		if s.Logger != nil {
			s.Logger.Info("pipeline stage complete",
				zap.String("stage", stage.Name()),
				zap.Duration("took", time.Since(start)),
			)
		}
	}
	return nil
}
