package service

import (
	"context"

	"go.uber.org/zap"

	"topicpulse/internal/config"
	"topicpulse/internal/langdetect"
	"topicpulse/internal/models"
	"topicpulse/internal/repository"
	"topicpulse/internal/textnorm"
)

// CleanService promotes raw events to dw.messages: normalize text, filter by
// language, insert-if-absent. Rejected rows (empty after normalization, wrong
// language) get a skip marker so the anti-join never selects them again.
//
// Stateless per call and safe to re-run: already-cleaned and already-skipped
// ids are excluded by the selection query.
type CleanService struct {
	Repo     repository.Repository
	Detector langdetect.Detector
	Config   config.CleanConfig
	Logger   *zap.Logger
}

func (s *CleanService) Name() string { return "clean" }

func (s *CleanService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	batch := s.Config.BatchSize
	if batch <= 0 {
		batch = 1000
	}
	target := s.Config.TargetLang
	if target == "" {
		target = "en"
	}

	rows, err := s.Repo.ListUncleanedRawEvents(ctx, batch)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	msgs := make([]models.Message, 0, len(rows))
	var skips []models.CleanSkip
	for _, r := range rows {
		text := textnorm.Normalize(r.Text)
		if text == "" {
			skips = append(skips, models.CleanSkip{ID: r.ID, Reason: models.SkipReasonEmpty})
			continue
		}
		var lang *string
		if s.Detector != nil {
			// Detection failure is not an error: keep the item with lang unknown.
			if code, ok := s.Detector.Detect(text); ok {
				if code != target {
					skips = append(skips, models.CleanSkip{ID: r.ID, Reason: models.SkipReasonWrongLang})
					continue
				}
				lang = &code
			}
		}
		msgs = append(msgs, models.Message{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			Author:    r.Author,
			TextClean: text,
			Lang:      lang,
			Source:    r.Source,
		})
	}

	inserted, err := s.Repo.InsertMessages(ctx, msgs)
	if err != nil {
		return err
	}
	if err := s.Repo.InsertCleanSkips(ctx, skips); err != nil {
		return err
	}

	if s.Logger != nil {
		s.Logger.Info("clean pass ok",
			zap.Int("selected", len(rows)),
			zap.Int64("written", inserted),
			zap.Int("skipped", len(skips)),
		)
	}
	return nil
}
