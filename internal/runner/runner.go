// Package runner drives one scheduling run: color the conflict graph, check the
// coloring, then optionally place every color class in a half-day slot.
package runner

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/limaJavier/timetabling/internal/metrics"
	"github.com/limaJavier/timetabling/pkg/assignment"
	"github.com/limaJavier/timetabling/pkg/coloring"
	"github.com/limaJavier/timetabling/pkg/graph"
	"github.com/limaJavier/timetabling/pkg/timetable"
)

// Job describes a run. A nil Preferences map skips the timetable step.
type Job struct {
	Graph       *graph.ConflictGraph
	Preferences map[string]timetable.Preference
	Strategy    string
	Seed        int64 // 0 seeds from the clock
	Matcher     string
}

type Report struct {
	Strategy  string            `json:"strategy" yaml:"strategy"`
	Graph     graph.Metrics     `json:"graph" yaml:"graph"`
	Coloring  coloring.Coloring `json:"coloring" yaml:"coloring"`
	Colors    int               `json:"colors" yaml:"colors"`
	Duration  time.Duration     `json:"duration_ns" yaml:"duration_ns"`
	Timetable *timetable.Result `json:"timetable,omitempty" yaml:"timetable,omitempty"`
}

type Runner struct {
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// New returns a runner; a nil logger is replaced by a no-op one and a nil recorder
// records nothing.
func New(logger *zap.Logger, recorder *metrics.Recorder) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, metrics: recorder}
}

func (runner *Runner) Run(job Job) (*Report, error) {
	report := &Report{Strategy: job.Strategy, Graph: job.Graph.Metrics()}
	logger := runner.logger.With(zap.String("strategy", job.Strategy))

	colors, duration, err := runner.Color(job.Graph, job.Strategy, job.Seed)
	if err != nil {
		return nil, err
	}
	report.Coloring, report.Colors, report.Duration = colors, colors.Count(), duration
	logger.Info("graph colored",
		zap.Int("vertices", report.Graph.Vertices),
		zap.Int("edges", report.Graph.Edges),
		zap.Int("colors", report.Colors),
		zap.Duration("duration", duration),
	)

	if job.Preferences == nil {
		return report, nil
	}

	report.Timetable, err = runner.Schedule(job.Graph, colors, job.Preferences, job.Matcher)
	if err != nil {
		return nil, err
	}
	logger.Info("timetable built",
		zap.Int("weeks", report.Timetable.Weeks),
		zap.Float64("satisfaction", report.Timetable.Satisfaction),
	)

	return report, nil
}

// Color runs the named strategy and rejects improper results.
func (runner *Runner) Color(g *graph.ConflictGraph, strategy string, seed int64) (coloring.Coloring, time.Duration, error) {
	var options []coloring.Option
	if seed != 0 {
		options = append(options, coloring.WithSeed(seed))
	}
	colorer, err := coloring.New(strategy, options...)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	colors := colorer.Color(g)
	duration := time.Since(start)

	if err := coloring.Verify(g, colors); err != nil {
		return nil, 0, fmt.Errorf("%v produced an invalid coloring: %w", strategy, err)
	}
	runner.metrics.ObserveColoring(strategy, colors.Count(), duration)

	return colors, duration, nil
}

// Schedule builds and verifies the timetable of a proper coloring.
func (runner *Runner) Schedule(g *graph.ConflictGraph, colors coloring.Coloring, preferences map[string]timetable.Preference, matcher string) (*timetable.Result, error) {
	solver, err := assignment.NewSolver(matcher)
	if err != nil {
		return nil, err
	}

	builder := timetable.NewBuilder(timetable.WithSolver(solver), timetable.WithLogger(runner.logger))
	result, err := builder.Build(preferences, g, colors)
	if err == nil {
		err = timetable.Verify(g, result)
	}
	runner.metrics.ObserveTimetable(result, err)
	if err != nil {
		return nil, err
	}

	return result, nil
}
