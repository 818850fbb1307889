// Package timetable turns a coloring into a weekly schedule. Every color class takes
// one half-day slot, chosen by a minimum-cost assignment that maximizes how many
// entities get their preferred half of the day.
package timetable

import (
	"errors"
	"fmt"

	"github.com/limaJavier/timetabling/pkg/assignment"
	"github.com/limaJavier/timetabling/pkg/coloring"
	"github.com/limaJavier/timetabling/pkg/graph"
	"go.uber.org/zap"
)

var (
	ErrUnscheduled = errors.New("entity has no slot")
	ErrSlotClash   = errors.New("conflicting entities share a slot")
)

// Result is everything a build derives, from the color count to the satisfaction score.
type Result struct {
	K              int             `json:"k" yaml:"k"`
	Weeks          int             `json:"weeks" yaml:"weeks"`
	Slots          []Slot          `json:"slots" yaml:"slots"`
	Colors         []int           `json:"colors" yaml:"colors"`
	Tallies        map[int]Tally   `json:"tallies" yaml:"tallies"`
	CostMatrix     [][]float64     `json:"cost_matrix" yaml:"cost_matrix"`
	AssignmentRows []int           `json:"assignment_rows" yaml:"assignment_rows"`
	AssignmentCols []int           `json:"assignment_cols" yaml:"assignment_cols"`
	AssignmentCost float64         `json:"assignment_cost" yaml:"assignment_cost"`
	ColorToSlot    map[int]Slot    `json:"color_to_slot" yaml:"color_to_slot"`
	CourseToSlot   map[string]Slot `json:"course_to_slot" yaml:"course_to_slot"`
	Satisfied      int             `json:"satisfied" yaml:"satisfied"`
	Total          int             `json:"total" yaml:"total"`
	Satisfaction   float64         `json:"satisfaction" yaml:"satisfaction"`
}

type Builder interface {
	Build(preferences map[string]Preference, g *graph.ConflictGraph, coloring coloring.Coloring) (*Result, error)
}

type Option func(*builder)

func WithSolver(solver assignment.Solver) Option {
	return func(builder *builder) {
		builder.solver = solver
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(builder *builder) {
		builder.logger = logger
	}
}

type builder struct {
	solver assignment.Solver
	logger *zap.Logger
}

// NewBuilder returns a builder using the augmenting-path Hungarian solver and a no-op
// logger unless told otherwise.
func NewBuilder(options ...Option) Builder {
	builder := &builder{logger: zap.NewNop()}
	for _, option := range options {
		option(builder)
	}
	if builder.solver == nil {
		builder.solver, _ = assignment.NewSolver(assignment.Augmenting)
	}
	return builder
}

func (builder *builder) Build(preferences map[string]Preference, g *graph.ConflictGraph, colors coloring.Coloring) (*Result, error) {
	if err := coloring.Verify(g, colors); err != nil {
		return nil, fmt.Errorf("cannot build timetable: %w", err)
	}
	for entity, color := range colors {
		if color < 0 {
			return nil, fmt.Errorf("cannot build timetable: %w: entity %q has color %d", coloring.ErrIncomplete, entity, color)
		}
	}

	//** Catalog and tallies
	result := &Result{Colors: colors.Colors()}
	result.K = len(result.Colors)
	result.Weeks = Weeks(result.K)
	result.Slots = Catalog(result.Weeks)
	result.Tallies = Tallies(colors.Classes(), preferences)

	//** Cost matrix, one row per color in ascending order
	result.CostMatrix = make([][]float64, result.K)
	for row, color := range result.Colors {
		tally := result.Tallies[color]
		result.CostMatrix[row] = make([]float64, len(result.Slots))
		for col, slot := range result.Slots {
			result.CostMatrix[row][col] = tally.Cost(slot.Half)
		}
	}

	assigned, err := builder.solver.Solve(result.CostMatrix)
	if err != nil {
		return nil, fmt.Errorf("cannot assign slots: %w", err)
	}
	if len(assigned.Rows) != result.K {
		return nil, fmt.Errorf("cannot assign slots: %w", &assignment.InfeasibleError{Size: result.K, Matched: len(assigned.Rows)})
	}
	result.AssignmentRows, result.AssignmentCols, result.AssignmentCost = assigned.Rows, assigned.Cols, assigned.Cost

	//** Compose coloring and assignment
	result.ColorToSlot = make(map[int]Slot, result.K)
	for i, row := range assigned.Rows {
		result.ColorToSlot[result.Colors[row]] = result.Slots[assigned.Cols[i]]
	}
	result.CourseToSlot = make(map[string]Slot, len(colors))
	for entity, color := range colors {
		slot := result.ColorToSlot[color]
		result.CourseToSlot[entity] = slot
		if preferences[entity].SatisfiedBy(slot.Half) {
			result.Satisfied++
		}
	}

	result.Total = len(colors)
	if result.Total > 0 {
		result.Satisfaction = float64(result.Satisfied) / float64(result.Total)
	}

	builder.logger.Debug("timetable built",
		zap.Int("colors", result.K),
		zap.Int("weeks", result.Weeks),
		zap.Float64("assignment_cost", result.AssignmentCost),
		zap.Int("satisfied", result.Satisfied),
		zap.Int("total", result.Total),
	)

	return result, nil
}

// Verify checks that every vertex of g has a slot and that no edge joins two entities
// scheduled in the same slot.
func Verify(g *graph.ConflictGraph, result *Result) error {
	for _, vertex := range g.Vertices() {
		if _, ok := result.CourseToSlot[vertex]; !ok {
			return fmt.Errorf("%w: %q", ErrUnscheduled, vertex)
		}
	}
	for _, edge := range g.Edges() {
		if slot := result.CourseToSlot[edge[0]]; slot == result.CourseToSlot[edge[1]] {
			return fmt.Errorf("%w: %q and %q in %v", ErrSlotClash, edge[0], edge[1], slot)
		}
	}
	return nil
}
