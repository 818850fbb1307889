package coloring

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/limaJavier/timetabling/pkg/graph"
	"github.com/samber/lo"
)

// Strategy colors a conflict graph.
type Strategy interface {
	Color(g *graph.ConflictGraph) Coloring
}

const (
	Greedy       = "greedy"
	Dsatur       = "dsatur"
	Rlf          = "rlf"
	Backtracking = "backtracking"
)

var ErrUnknownStrategy = errors.New("unknown coloring strategy")

var strategies = map[string]func(settings) Strategy{
	Greedy:       func(s settings) Strategy { return NewGreedy(s.rng) },
	Dsatur:       func(settings) Strategy { return NewDsatur() },
	Rlf:          func(settings) Strategy { return NewRlf() },
	Backtracking: func(settings) Strategy { return NewExact() },
}

type settings struct {
	rng *rand.Rand
}

// Option tunes the strategies built by New and Compute.
type Option func(*settings)

// WithSeed makes the greedy strategy reproducible.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand hands the greedy strategy its random source. The source must not be shared
// across goroutines.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) {
		s.rng = rng
	}
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	names := lo.Keys(strategies)
	slices.Sort(names)
	return names
}

// New builds the strategy registered under name. Without WithSeed or WithRand the
// greedy strategy is seeded from the clock.
func New(name string, options ...Option) (Strategy, error) {
	constructor, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownStrategy, name, Names())
	}

	s := settings{}
	for _, option := range options {
		option(&s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return constructor(s), nil
}

// Compute colors g with the strategy registered under name.
func Compute(g *graph.ConflictGraph, name string, options ...Option) (Coloring, error) {
	strategy, err := New(name, options...)
	if err != nil {
		return nil, err
	}
	return strategy.Color(g), nil
}
