package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/limaJavier/timetabling/internal/metrics"
	"github.com/limaJavier/timetabling/internal/runner"
	"github.com/limaJavier/timetabling/pkg/coloring"
	"github.com/limaJavier/timetabling/pkg/dataset"
	"github.com/limaJavier/timetabling/pkg/graph"
	"github.com/limaJavier/timetabling/pkg/timetable"
)

const (
	defaultSizes = "10,20,40,80"
	// The exact search is exponential; larger graphs are only colored heuristically.
	defaultExactLimit = 30
)

type TestMetadata struct {
	Name        string
	Graph       *graph.ConflictGraph
	Preferences map[string]timetable.Preference
}

type BenchmarkResult struct {
	Test         string  `csv:"test"`
	Strategy     string  `csv:"strategy"`
	Vertices     int     `csv:"vertices"`
	Edges        int     `csv:"edges"`
	Density      float64 `csv:"density"`
	Colors       int     `csv:"colors"`
	Weeks        int     `csv:"weeks"`
	Satisfaction float64 `csv:"satisfaction"`
	Duration     int64   `csv:"duration_us"`
	Result       string  `csv:"result"`
}

func main() {
	filePathPtr := flag.String("file", "", "Path to a dataset to benchmark; random graphs are generated when empty")
	nodePtr := flag.String("node", "course_id", "Column holding the entity id")
	constraintsPtr := flag.String("constraints", "", "Comma separated constraint columns of the dataset")
	preferencePtr := flag.String("preference", "preferred_time", "Column holding the preferred half-day")
	sizesPtr := flag.String("sizes", defaultSizes, "Comma separated vertex counts of the random graphs")
	densityPtr := flag.Float64("density", 0.3, "Edge probability of the random graphs (between 0 and 1)")
	seedPtr := flag.Int64("seed", 1, "Seed for random graphs and the greedy strategy")
	exactLimitPtr := flag.Int("exact-limit", defaultExactLimit, "Largest graph handed to the backtracking strategy")
	outFilePathPtr := flag.String("out", "benchmark_results.csv", "Path to the CSV results; \"-\" writes to the Standard Output")
	flag.Parse()

	if *densityPtr < 0 || *densityPtr > 1 {
		log.Fatalf("density must be between 0 and 1: %v", *densityPtr)
	}

	var tests []TestMetadata
	if *filePathPtr != "" {
		test, err := datasetTest(*filePathPtr, *nodePtr, *preferencePtr, splitList(*constraintsPtr))
		if err != nil {
			log.Fatalf("cannot load dataset: %v", err)
		}
		tests = append(tests, test)
	} else {
		sizes, err := parseSizes(*sizesPtr)
		if err != nil {
			log.Fatal(err)
		}
		tests = randomTests(rand.New(rand.NewSource(*seedPtr)), sizes, *densityPtr)
	}

	recorder := metrics.New()
	results := benchmark(runner.New(nil, recorder), tests, *seedPtr, *exactLimitPtr)

	for _, result := range results {
		fmt.Printf("Benchmarked test %q with strategy %q: %d colors, %d weeks, satisfaction %.2f in %dus (%v)\n",
			result.Test, result.Strategy, result.Colors, result.Weeks, result.Satisfaction, result.Duration, result.Result)
	}

	var out io.Writer = os.Stdout
	if *outFilePathPtr != "-" {
		file, err := os.Create(*outFilePathPtr)
		if err != nil {
			log.Fatalf("cannot create CSV file: %v", err)
		}
		defer file.Close()
		out = file
	}
	if err := toCsv(out, results); err != nil {
		log.Fatalf("cannot write CSV results: %v", err)
	}
}

// benchmark runs every strategy on every test, one at a time.
func benchmark(run *runner.Runner, tests []TestMetadata, seed int64, exactLimit int) []BenchmarkResult {
	strategies := coloring.Names()
	results := make([]BenchmarkResult, 0, len(tests)*len(strategies))

	for _, test := range tests {
		metadata := test.Graph.Metrics()
		for _, strategy := range strategies {
			result := BenchmarkResult{
				Test:     test.Name,
				Strategy: strategy,
				Vertices: metadata.Vertices,
				Edges:    metadata.Edges,
				Density:  metadata.Density,
			}
			if strategy == coloring.Backtracking && metadata.Vertices > exactLimit {
				result.Result = "skipped"
				results = append(results, result)
				continue
			}

			report, err := run.Run(runner.Job{Graph: test.Graph, Preferences: test.Preferences, Strategy: strategy, Seed: seed})
			if err != nil {
				result.Result = "error: " + err.Error()
				results = append(results, result)
				continue
			}

			result.Colors = report.Colors
			result.Duration = report.Duration.Microseconds()
			result.Weeks = report.Timetable.Weeks
			result.Satisfaction = report.Timetable.Satisfaction
			result.Result = "solved"
			results = append(results, result)
		}
	}

	return results
}

func datasetTest(path, node, preference string, constraints []string) (TestMetadata, error) {
	data, err := dataset.Load(path, ',')
	if err != nil {
		return TestMetadata{}, err
	}
	g, err := data.BuildGraph(node, constraints)
	if err != nil {
		return TestMetadata{}, err
	}

	preferences := map[string]timetable.Preference{}
	if lo.Contains(data.Columns, preference) {
		if preferences, err = data.Preferences(node, preference); err != nil {
			return TestMetadata{}, err
		}
	}

	return TestMetadata{Name: path, Graph: g, Preferences: preferences}, nil
}

// randomTests builds one Erdős–Rényi graph per size with random half-day preferences.
func randomTests(rng *rand.Rand, sizes []int, density float64) []TestMetadata {
	return lo.Map(sizes, func(size int, _ int) TestMetadata {
		vertices := lo.Times(size, func(i int) string { return fmt.Sprintf("v%d", i) })
		var edges [][2]string
		for i := range vertices {
			for j := i + 1; j < len(vertices); j++ {
				if rng.Float64() < density {
					edges = append(edges, [2]string{vertices[i], vertices[j]})
				}
			}
		}

		preferences := make(map[string]timetable.Preference, size)
		for _, vertex := range vertices {
			switch rng.Intn(3) {
			case 0:
				preferences[vertex] = timetable.Prefers(timetable.Morning)
			case 1:
				preferences[vertex] = timetable.Prefers(timetable.Afternoon)
			default:
				preferences[vertex] = timetable.NoPreference
			}
		}

		return TestMetadata{
			Name:        fmt.Sprintf("random-%d-%.2f", size, density),
			Graph:       graph.FromEdges(vertices, edges),
			Preferences: preferences,
		}
	})
}

func toCsv(w io.Writer, results []BenchmarkResult) error {
	return gocsv.Marshal(results, w)
}

func parseSizes(raw string) ([]int, error) {
	sizes := make([]int, 0)
	for _, part := range splitList(raw) {
		size, err := strconv.Atoi(part)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("invalid graph size %q", part)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

func splitList(raw string) []string {
	return lo.FilterMap(strings.Split(raw, ","), func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
}
