package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/caish-collective/luma-proxy/internal/config"
	apperrors "github.com/caish-collective/luma-proxy/internal/errors"
	"github.com/caish-collective/luma-proxy/internal/events"
	"github.com/caish-collective/luma-proxy/internal/luma"
	"github.com/caish-collective/luma-proxy/internal/monitoring"
)

// Handler serves the events proxy endpoint: gate, upstream fetch, filter
// pipeline, envelope.
type Handler struct {
	cfg      config.Config
	client   *luma.Client
	pipeline *events.Pipeline
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
}

// NewHandler wires the handler from its injected dependencies.
func NewHandler(cfg config.Config, client *luma.Client, metrics *monitoring.Metrics, logger *monitoring.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		client:   client,
		pipeline: events.NewPipeline(cfg.OrgKeyword, cfg.RecencyWindow),
		metrics:  metrics,
		logger:   logger,
	}
}

// Events handles GET /api/events. The configuration check runs before any
// network I/O; the upstream is contacted exactly once per request.
func (h *Handler) Events(c *gin.Context) {
	if h.cfg.LumaAPIKey == "" {
		appErr := apperrors.NewConfigurationError("LUMA_API_KEY is not set")
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr.Response())
		return
	}

	fetchStart := time.Now()
	h.metrics.IncrementUpstreamCall()

	listing, err := h.client.ListEvents(c.Request.Context())
	if err != nil {
		h.metrics.IncrementUpstreamError()
		appErr := apperrors.ToAppError(err)
		h.logger.UpstreamLogger(h.client.Endpoint(), appErr.HTTPStatus, time.Since(fetchStart), false)
		apperrors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr.Response())
		return
	}
	h.logger.UpstreamLogger(h.client.Endpoint(), http.StatusOK, time.Since(fetchStart), true)

	catalog := events.BuildTagCatalog(listing.RawTags())
	filtered := h.pipeline.Run(listing.EventEntries(), catalog, time.Now(), parseLimit(c.Query("limit")))

	c.JSON(http.StatusOK, gin.H{
		"events":     filtered,
		"count":      len(filtered),
		"fetched_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// parseLimit parses the limit query parameter. Non-numeric, zero, negative
// and absent values all mean "no limit".
func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
