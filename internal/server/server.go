// Package server exposes the coloring and timetable runs over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling/internal/config"
	"github.com/limaJavier/timetabling/internal/logger"
	"github.com/limaJavier/timetabling/internal/metrics"
	"github.com/limaJavier/timetabling/pkg/assignment"
	"github.com/limaJavier/timetabling/pkg/coloring"
)

// RunIDHeader carries the run id back to the client. A client supplied value is kept.
const RunIDHeader = "X-Run-ID"

// NewRouter wires the middleware chain and the routes.
func NewRouter(cfg *config.Config, l *zap.Logger, recorder *metrics.Recorder) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RunID())
	r.Use(BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(logger.GinMiddleware(l))
	r.Use(Metrics(recorder))

	handler := NewHandler(cfg, l, recorder)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/strategies", func(c *gin.Context) {
		JSON(c, http.StatusOK, gin.H{"strategies": coloring.Names(), "matchers": assignment.Matchers()})
	})
	r.GET("/metrics", gin.WrapH(recorder.Handler()))

	r.POST("/colorings", handler.Color)
	r.POST("/timetables", handler.Schedule)

	return r
}

func RunID() gin.HandlerFunc {
	return func(c *gin.Context) {
		runID := c.GetHeader(RunIDHeader)
		if runID == "" {
			runID = uuid.NewString()
		}

		c.Set(logger.RunIDKey, runID)
		c.Writer.Header().Set(RunIDHeader, runID)

		c.Next()
	}
}

// BodyLimit caps the request body at limit bytes. Reading past it fails the bind.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// Metrics observes every request by route template.
func Metrics(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		recorder.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
