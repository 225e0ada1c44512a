package service

import (
	"context"
	"time"

	"topicpulse/internal/models"
	"topicpulse/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// Selection order follows insertion order, which stands in for the
// created_at ordering of the real queries.
type stubRepo struct {
	raw       map[string]models.RawEvent
	rawOrder  []string
	messages  map[string]models.Message
	msgOrder  []string
	sentiment map[string]models.SentimentResult
	skips     map[string]models.CleanSkip
	daily     map[string]models.DailyMetric

	insertRawErr     error
	insertMessageErr error

	sentimentWrites int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		raw:       map[string]models.RawEvent{},
		messages:  map[string]models.Message{},
		sentiment: map[string]models.SentimentResult{},
		skips:     map[string]models.CleanSkip{},
		daily:     map[string]models.DailyMetric{},
	}
}

func (s *stubRepo) InsertRawEvents(ctx context.Context, items []models.RawEvent) (int64, error) {
	if s.insertRawErr != nil {
		return 0, s.insertRawErr
	}
	var inserted int64
	for _, item := range items {
		if _, ok := s.raw[item.ID]; ok {
			continue
		}
		s.raw[item.ID] = item
		s.rawOrder = append(s.rawOrder, item.ID)
		inserted++
	}
	return inserted, nil
}

func (s *stubRepo) ListUncleanedRawEvents(ctx context.Context, limit int) ([]models.RawEvent, error) {
	var out []models.RawEvent
	for _, id := range s.rawOrder {
		if len(out) >= limit {
			break
		}
		if _, ok := s.messages[id]; ok {
			continue
		}
		if _, ok := s.skips[id]; ok {
			continue
		}
		out = append(out, s.raw[id])
	}
	return out, nil
}

func (s *stubRepo) InsertMessages(ctx context.Context, items []models.Message) (int64, error) {
	if s.insertMessageErr != nil {
		return 0, s.insertMessageErr
	}
	var inserted int64
	for _, item := range items {
		if _, ok := s.messages[item.ID]; ok {
			continue
		}
		s.messages[item.ID] = item
		s.msgOrder = append(s.msgOrder, item.ID)
		inserted++
	}
	return inserted, nil
}

func (s *stubRepo) InsertCleanSkips(ctx context.Context, items []models.CleanSkip) error {
	for _, item := range items {
		if _, ok := s.skips[item.ID]; ok {
			continue
		}
		s.skips[item.ID] = item
	}
	return nil
}

func (s *stubRepo) ListUnscoredMessages(ctx context.Context, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, id := range s.msgOrder {
		if len(out) >= limit {
			break
		}
		if _, ok := s.sentiment[id]; ok {
			continue
		}
		out = append(out, s.messages[id])
	}
	return out, nil
}

func (s *stubRepo) UpsertSentimentResults(ctx context.Context, items []models.SentimentResult) (int64, error) {
	for _, item := range items {
		s.sentiment[item.ID] = item
	}
	s.sentimentWrites += int64(len(items))
	return int64(len(items)), nil
}

// RebuildDailyMetrics mirrors the SQL contract: group the messages-sentiment
// join by day, avg_compound = mean(compound), pos_ratio = positive fraction,
// volume = row count, upsert per day.
func (s *stubRepo) RebuildDailyMetrics(ctx context.Context) error {
	type acc struct {
		sum float64
		pos int64
		n   int64
	}
	byDay := map[string]*acc{}
	for id, m := range s.messages {
		res, ok := s.sentiment[id]
		if !ok {
			continue
		}
		day := m.CreatedAt.Format("2006-01-02")
		a := byDay[day]
		if a == nil {
			a = &acc{}
			byDay[day] = a
		}
		a.sum += res.Compound
		if res.Label == models.LabelPositive {
			a.pos++
		}
		a.n++
	}
	for day, a := range byDay {
		d, _ := time.Parse("2006-01-02", day)
		s.daily[day] = models.DailyMetric{
			Day:         d,
			AvgCompound: a.sum / float64(a.n),
			PosRatio:    float64(a.pos) / float64(a.n),
			Volume:      a.n,
		}
	}
	return nil
}

func (s *stubRepo) ListDailyMetrics(ctx context.Context, params repository.ListDailyMetricsParams) ([]models.DailyMetric, error) {
	var out []models.DailyMetric
	for _, m := range s.daily {
		out = append(out, m)
	}
	return out, nil
}

func (s *stubRepo) ListMessages(ctx context.Context, params repository.ListMessagesParams) ([]models.Message, error) {
	var out []models.Message
	for _, id := range s.msgOrder {
		out = append(out, s.messages[id])
	}
	return out, nil
}

func (s *stubRepo) SentimentDistribution(ctx context.Context, since time.Time) ([]repository.LabelCount, error) {
	counts := map[string]int64{}
	for id, res := range s.sentiment {
		m, ok := s.messages[id]
		if !ok || m.CreatedAt.Before(since) {
			continue
		}
		counts[res.Label]++
	}
	var out []repository.LabelCount
	for label, n := range counts {
		out = append(out, repository.LabelCount{Label: label, Count: n})
	}
	return out, nil
}

func (s *stubRepo) PipelineStatus(ctx context.Context) (repository.PipelineStatus, error) {
	return repository.PipelineStatus{
		RawEvents: int64(len(s.raw)),
		Messages:  int64(len(s.messages)),
		Scored:    int64(len(s.sentiment)),
		Skipped:   int64(len(s.skips)),
		Days:      int64(len(s.daily)),
	}, nil
}
