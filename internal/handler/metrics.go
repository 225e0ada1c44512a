package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"topicpulse/internal/repository"
)

// MetricsHandler is the read-only surface for the dashboard. It never writes;
// all mutation happens in the pipeline stages.
type MetricsHandler struct {
	Repo repository.Repository
}

func (h *MetricsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.GET("/metrics/daily", h.daily)
	group.GET("/messages", h.messages)
	group.GET("/sentiment/distribution", h.distribution)
	group.GET("/pipeline/status", h.status)
}

func (h *MetricsHandler) daily(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListDailyMetricsParams{
		Limit: queryInt(c, "limit", 365),
	}
	if since, ok := queryDate(c, "since"); ok {
		params.Since = &since
	}
	if until, ok := queryDate(c, "until"); ok {
		params.Until = &until
	}
	rows, err := h.Repo.ListDailyMetrics(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, map[string]any{"count": len(rows)})
}

func (h *MetricsHandler) messages(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListMessagesParams{
		Limit:  queryInt(c, "limit", 100),
		Offset: queryInt(c, "offset", 0),
	}
	if source := c.Query("source"); source != "" {
		params.Source = &source
	}
	if lang := c.Query("lang"); lang != "" {
		params.Lang = &lang
	}
	rows, err := h.Repo.ListMessages(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, map[string]any{"count": len(rows)})
}

func (h *MetricsHandler) distribution(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	days := queryInt(c, "days", 7)
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := h.Repo.SentimentDistribution(c.Request.Context(), since)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, map[string]any{"since": since.Format(time.RFC3339)})
}

func (h *MetricsHandler) status(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	status, err := h.Repo.PipelineStatus(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, status, nil)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryDate(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
