package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"topicpulse/internal/client/algolia"
	"topicpulse/internal/config"
)

type stubSearch struct {
	hits []algolia.Hit
	err  error
}

func (s *stubSearch) SearchByDate(ctx context.Context, query, tags string, sinceUnix int64) ([]algolia.Hit, error) {
	return s.hits, s.err
}

type stubFeedParser struct {
	feeds map[string]*gofeed.Feed
	err   error
}

func (p *stubFeedParser) ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error) {
	if p.err != nil {
		return nil, p.err
	}
	feed, ok := p.feeds[feedURL]
	if !ok {
		return nil, errors.New("unknown feed")
	}
	return feed, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestSearchHitToRawEvent(t *testing.T) {
	hit := algolia.Hit{
		ObjectID:   "39001",
		Title:      "New battery plant announced",
		Author:     "jane",
		CreatedAtI: 1710000000,
		URL:        "https://example.com/plant",
	}
	ev, ok := searchHitToRawEvent(hit)
	if !ok {
		t.Fatalf("expected event")
	}
	if ev.ID != "hn_39001" {
		t.Fatalf("id = %q, want hn_39001", ev.ID)
	}
	if ev.Source != "hn" {
		t.Fatalf("source = %q, want hn", ev.Source)
	}
	if !ev.CreatedAt.Equal(time.Unix(1710000000, 0).UTC()) {
		t.Fatalf("created_at = %v", ev.CreatedAt)
	}
	if ev.Author == nil || *ev.Author != "jane" {
		t.Fatalf("author = %v", ev.Author)
	}
}

func TestSearchHitToRawEvent_CommentFallbackAndEmpty(t *testing.T) {
	comment := algolia.Hit{ObjectID: "1", CommentText: "cheap chargers everywhere"}
	ev, ok := searchHitToRawEvent(comment)
	if !ok || ev.Text != "cheap chargers everywhere" {
		t.Fatalf("comment text not extracted: %v %v", ev, ok)
	}

	empty := algolia.Hit{ObjectID: "2", Title: "   "}
	if _, ok := searchHitToRawEvent(empty); ok {
		t.Fatalf("expected empty hit to be rejected")
	}
}

func TestFeedItemToRawEvent_EmptyEntryRejected(t *testing.T) {
	if _, ok := feedItemToRawEvent(&gofeed.Item{}, fixedNow()); ok {
		t.Fatalf("entry with empty title and summary must not produce a raw event")
	}
}

func TestFeedItemToRawEvent_StableID(t *testing.T) {
	published := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	item := &gofeed.Item{
		Title:           "EV sales up",
		Description:     "Quarterly numbers released.",
		Link:            "https://example.com/a",
		PublishedParsed: &published,
	}
	a, ok := feedItemToRawEvent(item, fixedNow())
	if !ok {
		t.Fatalf("expected event")
	}
	b, _ := feedItemToRawEvent(item, fixedNow().Add(time.Hour))
	if a.ID != b.ID {
		t.Fatalf("re-fetch produced different ids: %q vs %q", a.ID, b.ID)
	}
	other := &gofeed.Item{Title: "EV sales up", Link: "https://example.com/b", PublishedParsed: &published}
	c, _ := feedItemToRawEvent(other, fixedNow())
	if a.ID == c.ID {
		t.Fatalf("distinct entries share id %q", a.ID)
	}
	if a.Text != "EV sales up. Quarterly numbers released." {
		t.Fatalf("text = %q", a.Text)
	}
}

func TestFeedItemToRawEvent_MissingTimestampFallsBackToNow(t *testing.T) {
	item := &gofeed.Item{Title: "No date here", Link: "https://example.com/x"}
	ev, ok := feedItemToRawEvent(item, fixedNow())
	if !ok {
		t.Fatalf("expected event")
	}
	if !ev.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("created_at = %v, want %v", ev.CreatedAt, fixedNow())
	}
}

func TestIngestRunOnce_Idempotent(t *testing.T) {
	repo := newStubRepo()
	svc := &IngestService{
		Repo:         repo,
		Search:       &stubSearch{hits: []algolia.Hit{{ObjectID: "1", Title: "one"}, {ObjectID: "2", Title: "two"}}},
		SearchConfig: config.SearchConfig{Enabled: true, Query: "ev"},
		FeedsConfig:  config.FeedsConfig{},
		Now:          fixedNow,
	}
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(repo.raw) != 2 {
		t.Fatalf("raw rows = %d, want 2", len(repo.raw))
	}
}

func TestIngestRunOnce_SourceFailureIsolated(t *testing.T) {
	published := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	repo := newStubRepo()
	svc := &IngestService{
		Repo:         repo,
		Search:       &stubSearch{err: &algolia.APIError{Status: 503, Body: "unavailable"}},
		SearchConfig: config.SearchConfig{Enabled: true, Query: "ev"},
		Parser: &stubFeedParser{feeds: map[string]*gofeed.Feed{
			"https://example.com/rss": {Items: []*gofeed.Item{
				{Title: "still ingested", Link: "https://example.com/a", PublishedParsed: &published},
			}},
		}},
		FeedsConfig: config.FeedsConfig{Enabled: true, URLs: []string{"https://example.com/rss"}},
		Now:         fixedNow,
	}
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("search failure must not abort feed ingest: %v", err)
	}
	if len(repo.raw) != 1 {
		t.Fatalf("raw rows = %d, want 1 from feed source", len(repo.raw))
	}
}

func TestIngestRunOnce_StoreFailureFatal(t *testing.T) {
	repo := newStubRepo()
	repo.insertRawErr = errors.New("connection refused")
	svc := &IngestService{
		Repo:         repo,
		Search:       &stubSearch{hits: []algolia.Hit{{ObjectID: "1", Title: "one"}}},
		SearchConfig: config.SearchConfig{Enabled: true, Query: "ev"},
		Now:          fixedNow,
	}
	if err := svc.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected store error to abort the run")
	}
}
