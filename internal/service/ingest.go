package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"topicpulse/internal/client/algolia"
	"topicpulse/internal/config"
	"topicpulse/internal/models"
	"topicpulse/internal/repository"
)

// SearchAPI is the keyword-search upstream (see internal/client/algolia).
type SearchAPI interface {
	SearchByDate(ctx context.Context, query, tags string, sinceUnix int64) ([]algolia.Hit, error)
}

// FeedParser matches gofeed.Parser.
type FeedParser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// IngestService pulls candidate items from the search API and the configured
// feeds and appends new rows to raw.events. Duplicate ids are ignored by the
// insert, so re-running against the same upstream data is a no-op.
//
// Fetch and parse failures are isolated per source: one broken feed never
// stops the others. A store failure aborts the run.
type IngestService struct {
	Repo         repository.Repository
	Search       SearchAPI
	Parser       FeedParser
	SearchConfig config.SearchConfig
	FeedsConfig  config.FeedsConfig
	Logger       *zap.Logger

	// Now is overridable for tests; defaults to time.Now UTC.
	Now func() time.Time
}

func (s *IngestService) Name() string { return "ingest" }

func (s *IngestService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}

	if s.SearchConfig.Enabled && s.Search != nil {
		rows, err := s.fetchSearchEvents(ctx)
		if err != nil {
			s.logWarn("search fetch failed", err)
		} else {
			inserted, err := s.Repo.InsertRawEvents(ctx, rows)
			if err != nil {
				return err
			}
			s.logInfo("search ingest ok", zap.Int("fetched", len(rows)), zap.Int64("inserted", inserted))
		}
	}

	if s.FeedsConfig.Enabled && s.Parser != nil {
		rows := s.fetchFeedEvents(ctx)
		inserted, err := s.Repo.InsertRawEvents(ctx, rows)
		if err != nil {
			return err
		}
		s.logInfo("feed ingest ok", zap.Int("fetched", len(rows)), zap.Int64("inserted", inserted))
	}

	return nil
}

func (s *IngestService) fetchSearchEvents(ctx context.Context) ([]models.RawEvent, error) {
	lookback := s.SearchConfig.Lookback
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	since := s.now().Add(-lookback).Unix()
	hits, err := s.Search.SearchByDate(ctx, s.SearchConfig.Query, s.SearchConfig.Tags, since)
	if err != nil {
		return nil, err
	}
	rows := make([]models.RawEvent, 0, len(hits))
	for _, h := range hits {
		if ev, ok := searchHitToRawEvent(h); ok {
			rows = append(rows, ev)
		}
	}
	return rows, nil
}

func (s *IngestService) fetchFeedEvents(ctx context.Context) []models.RawEvent {
	var rows []models.RawEvent
	for _, feedURL := range s.FeedsConfig.URLs {
		timeout := s.FeedsConfig.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		feedCtx, cancel := context.WithTimeout(ctx, timeout)
		feed, err := s.Parser.ParseURLWithContext(feedURL, feedCtx)
		cancel()
		if err != nil {
			s.logWarn("feed fetch failed", err, zap.String("feed", feedURL))
			continue
		}
		for _, item := range feed.Items {
			if ev, ok := feedItemToRawEvent(item, s.now()); ok {
				rows = append(rows, ev)
			}
		}
	}
	return rows
}

// searchHitToRawEvent converts one search hit. Hits with no extracted text
// are rejected here so they never reach the store.
func searchHitToRawEvent(h algolia.Hit) (models.RawEvent, bool) {
	text := strings.TrimSpace(h.Title)
	if text == "" {
		text = strings.TrimSpace(h.CommentText)
	}
	if text == "" {
		return models.RawEvent{}, false
	}
	meta, _ := json.Marshal(map[string]any{
		"url":         h.URL,
		"points":      h.Points,
		"parent_id":   h.ParentID,
		"story_id":    h.StoryID,
		"story_title": h.StoryTitle,
	})
	return models.RawEvent{
		ID:        models.SourceSearch + "_" + h.ObjectID,
		Source:    models.SourceSearch,
		CreatedAt: time.Unix(h.CreatedAtI, 0).UTC(),
		Author:    optional(h.Author),
		Text:      text,
		Meta:      datatypes.JSON(meta),
	}, true
}

// feedItemToRawEvent derives text from title and summary and a stable id from
// the entry link (or title) plus the derived timestamp, so a re-fetch of the
// same feed yields the same ids while distinct entries stay distinct.
func feedItemToRawEvent(item *gofeed.Item, now time.Time) (models.RawEvent, bool) {
	if item == nil {
		return models.RawEvent{}, false
	}
	title := strings.TrimSpace(item.Title)
	summary := strings.TrimSpace(item.Description)
	text := title
	if summary != "" {
		if text != "" {
			text = text + ". " + summary
		} else {
			text = summary
		}
	}
	if text == "" {
		return models.RawEvent{}, false
	}

	created := now.UTC()
	if item.PublishedParsed != nil {
		created = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		created = item.UpdatedParsed.UTC()
	}

	base := item.Link
	if base == "" {
		base = title
	}
	sum := md5.Sum([]byte(base + strconv.FormatInt(created.Unix(), 10)))

	var author string
	if item.Author != nil {
		author = item.Author.Name
	}
	meta, _ := json.Marshal(map[string]any{"link": item.Link})
	return models.RawEvent{
		ID:        models.SourceFeed + "_" + hex.EncodeToString(sum[:]),
		Source:    models.SourceFeed,
		CreatedAt: created,
		Author:    optional(author),
		Text:      text,
		Meta:      datatypes.JSON(meta),
	}, true
}

func (s *IngestService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *IngestService) logWarn(msg string, err error, fields ...zap.Field) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn(msg, append(fields, zap.Error(err))...)
}

func (s *IngestService) logInfo(msg string, fields ...zap.Field) {
	if s.Logger == nil {
		return
	}
	s.Logger.Info(msg, fields...)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
