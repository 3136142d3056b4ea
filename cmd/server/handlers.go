package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rankdelta/internal/compare"
	"rankdelta/internal/dataset"
	"rankdelta/internal/db"
	"rankdelta/internal/riot"
)

// Comparer runs one player-vs-rank comparison.
type Comparer interface {
	Compare(ctx context.Context, req compare.Request) (*compare.Result, error)
}

type handlers struct {
	comparer  Comparer
	summaries db.Store // nil when no summary database is configured
	logger    *slog.Logger
}

func newRouter(h *handlers, origins []string, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLog(h.logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.POST("/compare", h.handleCompare)
	router.GET("/cohorts/:tier/:division", h.handleCohort)
	return router
}

func (h *handlers) handleCompare(c *gin.Context) {
	var req compare.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body: " + err.Error()})
		return
	}

	res, err := h.comparer.Compare(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("compare failed", "riot_id", req.RiotID, "status", status, "error", err)
		}
		c.JSON(status, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) handleCohort(c *gin.Context) {
	if h.summaries == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "cohort summaries are not published on this server"})
		return
	}
	tier := strings.ToUpper(c.Param("tier"))
	division := strings.ToUpper(c.Param("division"))

	s, err := h.summaries.Get(c.Request.Context(), tier, division)
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case err != nil:
		h.logger.Error("cohort lookup failed", "tier", tier, "division", division, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	default:
		c.JSON(http.StatusOK, s)
	}
}

const requestIDHeader = "X-Request-ID"

// requestLog tags each request with an id and logs it on completion.
func requestLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		start := time.Now()

		c.Next()

		logger.Info("request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond))
	}
}

// statusFor maps a comparison error onto its HTTP status.
func statusFor(err error) int {
	var (
		validation *compare.ValidationError
		emptyRank  *dataset.EmptyCohortError
		upstream   *riot.UpstreamError
	)
	switch {
	case errors.As(err, &validation), errors.Is(err, dataset.ErrDivisionRequired):
		return http.StatusBadRequest
	case errors.As(err, &emptyRank), compare.IsNotFound(err), riot.IsNotFound(err):
		return http.StatusNotFound
	case riot.IsAuthError(err), errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
