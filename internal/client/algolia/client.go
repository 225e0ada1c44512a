package algolia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to an Algolia-style search API (hn.algolia.com by default).
type Client struct {
	host       string
	httpClient *http.Client
}

// APIError is returned for non-2xx responses. The ingest stage surfaces it
// without retrying; retry policy belongs to the scheduler.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://hn.algolia.com/api/v1"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

// Hit is one search result. Stories carry Title; comments carry CommentText.
type Hit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	CommentText string `json:"comment_text"`
	Author      string `json:"author"`
	CreatedAtI  int64  `json:"created_at_i"`
	URL         string `json:"url"`
	Points      *int   `json:"points"`
	ParentID    *int64 `json:"parent_id"`
	StoryID     *int64 `json:"story_id"`
	StoryTitle  string `json:"story_title"`
}

type searchResponse struct {
	Hits []Hit `json:"hits"`
}

// SearchByDate queries /search_by_date for items matching the keyword created
// after the given unix timestamp. An empty hit list is not an error.
func (c *Client) SearchByDate(ctx context.Context, query, tags string, sinceUnix int64) ([]Hit, error) {
	params := url.Values{}
	params.Set("query", query)
	if tags != "" {
		params.Set("tags", tags)
	}
	params.Set("numericFilters", fmt.Sprintf("created_at_i>%d", sinceUnix))
	body, err := c.doRequest(ctx, "/search_by_date", params)
	if err != nil {
		return nil, err
	}
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return parsed.Hits, nil
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
