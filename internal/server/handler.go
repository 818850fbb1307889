package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling/internal/config"
	"github.com/limaJavier/timetabling/internal/logger"
	"github.com/limaJavier/timetabling/internal/metrics"
	"github.com/limaJavier/timetabling/internal/runner"
	"github.com/limaJavier/timetabling/pkg/coloring"
	"github.com/limaJavier/timetabling/pkg/dataset"
	"github.com/limaJavier/timetabling/pkg/graph"
	"github.com/limaJavier/timetabling/pkg/timetable"
)

var errNoGraph = errors.New("either rows or adjacency must be given")

// GraphRequest describes the conflict graph, either as dataset rows or as an adjacency
// list. Without an explicit order the adjacency keys are taken in sorted order.
type GraphRequest struct {
	Rows        []map[string]any    `json:"rows"`
	NodeColumn  string              `json:"node_column"`
	Constraints []string            `json:"constraints"`
	Order       []string            `json:"order"`
	Adjacency   map[string][]string `json:"adjacency"`
}

type ColoringRequest struct {
	GraphRequest
	Strategy string `json:"strategy" binding:"omitempty,oneof=greedy dsatur rlf backtracking"`
	Seed     int64  `json:"seed"`
}

// TimetableRequest may carry a ready coloring, in which case no strategy runs.
type TimetableRequest struct {
	ColoringRequest
	Coloring         coloring.Coloring `json:"coloring"`
	Preferences      map[string]string `json:"preferences"`
	PreferenceColumn string            `json:"preference_column"`
	Matcher          string            `json:"matcher" binding:"omitempty,oneof=augmenting hopcroft-karp"`
}

type Handler struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Recorder
}

func NewHandler(cfg *config.Config, l *zap.Logger, recorder *metrics.Recorder) *Handler {
	return &Handler{cfg: cfg, logger: l, metrics: recorder}
}

// Color handles POST /colorings.
func (h *Handler) Color(c *gin.Context) {
	var req ColoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, validationError(err))
		return
	}

	g, _, err := h.graph(req.GraphRequest)
	if err != nil {
		Fail(c, err)
		return
	}

	strategy, err := h.strategy(req, g)
	if err != nil {
		Fail(c, err)
		return
	}

	report, err := h.runner(c).Run(runner.Job{
		Graph:    g,
		Strategy: strategy,
		Seed:     lo.CoalesceOrEmpty(req.Seed, h.cfg.Seed),
	})
	if err != nil {
		Fail(c, err)
		return
	}

	JSON(c, http.StatusOK, report)
}

// Schedule handles POST /timetables.
func (h *Handler) Schedule(c *gin.Context) {
	var req TimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, validationError(err))
		return
	}

	g, data, err := h.graph(req.GraphRequest)
	if err != nil {
		Fail(c, err)
		return
	}

	preferences, err := h.preferences(req, data)
	if err != nil {
		Fail(c, err)
		return
	}

	run := h.runner(c)
	matcher := lo.CoalesceOrEmpty(req.Matcher, h.cfg.Matcher)

	if req.Coloring != nil {
		result, err := run.Schedule(g, req.Coloring, preferences, matcher)
		if err != nil {
			Fail(c, err)
			return
		}
		JSON(c, http.StatusOK, &runner.Report{
			Graph:     g.Metrics(),
			Coloring:  req.Coloring,
			Colors:    req.Coloring.Count(),
			Timetable: result,
		})
		return
	}

	strategy, err := h.strategy(req.ColoringRequest, g)
	if err != nil {
		Fail(c, err)
		return
	}

	report, err := run.Run(runner.Job{
		Graph:       g,
		Preferences: preferences,
		Strategy:    strategy,
		Seed:        lo.CoalesceOrEmpty(req.Seed, h.cfg.Seed),
		Matcher:     matcher,
	})
	if err != nil {
		Fail(c, err)
		return
	}

	JSON(c, http.StatusOK, report)
}

func (h *Handler) runner(c *gin.Context) *runner.Runner {
	return runner.New(h.logger.With(zap.String(logger.RunIDKey, c.GetString(logger.RunIDKey))), h.metrics)
}

// strategy resolves the requested strategy and keeps the exact search to graphs
// no larger than the configured limit.
func (h *Handler) strategy(req ColoringRequest, g *graph.ConflictGraph) (string, error) {
	strategy := lo.CoalesceOrEmpty(req.Strategy, h.cfg.Strategy)
	if strategy == coloring.Backtracking && g.Len() > h.cfg.ExactLimit {
		return "", validationError(fmt.Errorf("%v strategy accepts at most %d vertices, got %d", strategy, h.cfg.ExactLimit, g.Len()))
	}
	return strategy, nil
}

// graph returns the dataset too when the graph came from rows.
func (h *Handler) graph(req GraphRequest) (*graph.ConflictGraph, *dataset.Dataset, error) {
	if len(req.Rows) > 0 {
		data, err := dataset.FromMap(map[string]any{"rows": req.Rows})
		if err != nil {
			return nil, nil, validationError(err)
		}
		g, err := data.BuildGraph(h.nodeColumn(req), lo.Ternary(len(req.Constraints) > 0, req.Constraints, h.cfg.Input.Constraints))
		if err != nil {
			return nil, nil, err
		}
		return g, data, nil
	}

	if req.Adjacency == nil && req.Order == nil {
		return nil, nil, validationError(errNoGraph)
	}

	order := req.Order
	if len(order) == 0 {
		order = lo.Keys(req.Adjacency)
		slices.Sort(order)
	}
	return graph.New(order, req.Adjacency), nil, nil
}

// preferences favors the explicit map over the preference column of the rows.
func (h *Handler) preferences(req TimetableRequest, data *dataset.Dataset) (map[string]timetable.Preference, error) {
	if req.Preferences != nil || data == nil {
		return lo.MapValues(req.Preferences, func(value string, _ string) timetable.Preference {
			return timetable.ParsePreference(value)
		}), nil
	}
	return data.Preferences(h.nodeColumn(req.GraphRequest), lo.CoalesceOrEmpty(req.PreferenceColumn, h.cfg.Input.PreferenceColumn))
}

func (h *Handler) nodeColumn(req GraphRequest) string {
	return lo.CoalesceOrEmpty(req.NodeColumn, h.cfg.Input.NodeColumn)
}
