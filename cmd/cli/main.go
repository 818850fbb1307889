package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/limaJavier/timetabling/internal/config"
	"github.com/limaJavier/timetabling/internal/logger"
	"github.com/limaJavier/timetabling/internal/runner"
	"github.com/limaJavier/timetabling/pkg/coloring"
	"github.com/limaJavier/timetabling/pkg/dataset"
	"github.com/limaJavier/timetabling/pkg/export"
	"github.com/limaJavier/timetabling/pkg/timetable"
)

const exitVerificationFailed = 15

var validFormats = []string{"text", "json", "yaml"}

type arguments struct {
	configPath  string
	file        string
	strategy    string
	seed        int64
	matcher     string
	node        string
	preference  string
	constraints string
	start       string
	out         string
	grid        string
	format      string
	colorOnly   bool
}

func main() {
	args, set := parseArguments(flag.CommandLine, os.Args[1:])

	// Validate arguments
	if args.file == "" {
		log.Fatal("an input file must be specified")
	} else if !slices.Contains(validFormats, args.format) {
		log.Fatalf("%v is not a valid format", args.format)
	}

	cfg, err := config.Load(args.configPath)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	if err := applyArguments(cfg, args, set); err != nil {
		log.Fatal(err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("cannot init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	// Extract input
	data, err := dataset.Load(args.file, cfg.Input.Delimiter)
	if err != nil {
		logr.Fatal("cannot parse input file", zap.String("file", args.file), zap.Error(err))
	}
	g, err := data.BuildGraph(cfg.Input.NodeColumn, cfg.Input.Constraints)
	if err != nil {
		logr.Fatal("cannot build conflict graph", zap.Error(err))
	}

	job := runner.Job{Graph: g, Strategy: cfg.Strategy, Seed: cfg.Seed, Matcher: cfg.Matcher}
	if !args.colorOnly {
		job.Preferences, err = data.Preferences(cfg.Input.NodeColumn, cfg.Input.PreferenceColumn)
		if err != nil {
			logr.Fatal("cannot read preferences", zap.Error(err))
		}
	}

	// Color and schedule
	report, err := runner.New(logr, nil).Run(job)
	if isVerificationError(err) {
		logr.Error("verification failed", zap.Error(err))
		os.Exit(exitVerificationFailed)
	} else if err != nil {
		logr.Fatal("an error occurred during timetable construction", zap.Error(err))
	}

	var start *time.Time
	if cfg.Export.StartDate != "" {
		date, err := export.ParseStart(cfg.Export.StartDate)
		if err != nil {
			logr.Fatal("invalid start date", zap.Error(err))
		}
		start = &date
	}
	columns := export.Columns{
		Node:     cfg.Input.NodeColumn,
		Title:    cfg.Export.TitleColumn,
		Room:     cfg.Export.RoomColumn,
		Lecturer: cfg.Export.LecturerColumn,
	}

	var rows []*export.ScheduleRow
	if report.Timetable != nil {
		rows = export.Rows(report.Timetable, data, columns, start)
	}

	if err := render(os.Stdout, report, rows, args.format); err != nil {
		logr.Fatal("cannot write report", zap.Error(err))
	}

	// Verify outfiles are set, if so then write the schedule and the week grid as CSV
	if rows == nil {
		return
	}
	if args.out != "" {
		err := writeFile(args.out, func(w io.Writer) error {
			return export.WriteCSV(w, rows, cfg.Input.Delimiter)
		})
		if err != nil {
			logr.Fatal("an error occurred while writing to the output file", zap.Error(err))
		}
	}
	if args.grid != "" {
		err := writeFile(args.grid, func(w io.Writer) error {
			return export.WriteWeekGrid(w, report.Timetable, rows, start, cfg.Input.Delimiter)
		})
		if err != nil {
			logr.Fatal("an error occurred while writing the week grid", zap.Error(err))
		}
	}
}

// writeFile creates path and hands it to write.
func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// parseArguments returns the parsed flags and the names of those given explicitly.
func parseArguments(flags *flag.FlagSet, argv []string) (arguments, map[string]bool) {
	var args arguments
	flags.StringVar(&args.configPath, "config", "", "Path to an optional configuration file; TIMETABLE_* environment variables override it")
	flags.StringVar(&args.file, "file", "", "Path to the input dataset (.csv or .json)")
	flags.StringVar(&args.strategy, "strategy", "", fmt.Sprintf("Coloring strategy. Allowed values are: %v", strings.Join(coloring.Names(), ", ")))
	flags.Int64Var(&args.seed, "seed", 0, "Seed of the greedy strategy; 0 seeds from the clock")
	flags.StringVar(&args.matcher, "matcher", "", "Zero-cell matcher of the assignment solver: \"augmenting\" or \"hopcroft-karp\"")
	flags.StringVar(&args.node, "node", "", "Column holding the entity id")
	flags.StringVar(&args.preference, "preference", "", "Column holding the preferred half-day (Morning/Afternoon)")
	flags.StringVar(&args.constraints, "constraints", "", "Comma separated columns; rows sharing a value in any of them conflict")
	flags.StringVar(&args.start, "start", "", "Calendar start date (YYYY-MM-DD) used to date the exported slots")
	flags.StringVar(&args.out, "out", "", "Path of the CSV schedule to write; nothing is written if empty")
	flags.StringVar(&args.grid, "grid", "", "Path of the CSV week grid to write; nothing is written if empty")
	flags.StringVar(&args.format, "format", "text", "Report format written to the Standard Output: \"text\", \"json\" or \"yaml\"")
	flags.BoolVar(&args.colorOnly, "color-only", false, "Stop after coloring the conflict graph")
	_ = flags.Parse(argv)

	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	args.strategy = strings.ToLower(args.strategy)
	args.matcher = strings.ToLower(args.matcher)
	args.format = strings.ToLower(args.format)
	return args, set
}

// applyArguments lets explicit flags win over the loaded configuration.
func applyArguments(cfg *config.Config, args arguments, set map[string]bool) error {
	if set["strategy"] {
		cfg.Strategy = args.strategy
	}
	if set["seed"] {
		cfg.Seed = args.seed
	}
	if set["matcher"] {
		cfg.Matcher = args.matcher
	}
	if set["node"] {
		cfg.Input.NodeColumn = args.node
	}
	if set["preference"] {
		cfg.Input.PreferenceColumn = args.preference
	}
	if set["constraints"] {
		cfg.Input.Constraints = nil
		for _, column := range strings.Split(args.constraints, ",") {
			if column = strings.TrimSpace(column); column != "" {
				cfg.Input.Constraints = append(cfg.Input.Constraints, column)
			}
		}
	}
	if set["start"] {
		cfg.Export.StartDate = args.start
	}
	return cfg.Validate()
}

func isVerificationError(err error) bool {
	return errors.Is(err, coloring.ErrConflict) ||
		errors.Is(err, coloring.ErrIncomplete) ||
		errors.Is(err, timetable.ErrSlotClash) ||
		errors.Is(err, timetable.ErrUnscheduled)
}

type output struct {
	runner.Report `yaml:",inline"`
	Schedule      []*export.ScheduleRow `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

func render(w io.Writer, report *runner.Report, rows []*export.ScheduleRow, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output{Report: *report, Schedule: rows})
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(output{Report: *report, Schedule: rows})
	}

	fmt.Fprintf(w, "Graph: %d vertices, %d edges, max degree %d, density %.3f\n",
		report.Graph.Vertices, report.Graph.Edges, report.Graph.MaxDegree, report.Graph.Density)
	fmt.Fprintf(w, "Coloring: %v used %d colors in %v\n", report.Strategy, report.Colors, report.Duration)
	if report.Timetable == nil {
		vertices := lo.Keys(report.Coloring)
		slices.Sort(vertices)
		for _, vertex := range vertices {
			fmt.Fprintf(w, "%v\t%d\n", vertex, report.Coloring[vertex])
		}
		return nil
	}

	result := report.Timetable
	fmt.Fprintf(w, "Timetable: %d weeks, assignment cost %v, satisfaction %d/%d (%.1f%%)\n",
		result.Weeks, result.AssignmentCost, result.Satisfied, result.Total, result.Satisfaction*100)
	for _, row := range rows {
		line := fmt.Sprintf("W%d %v %v\t%v", row.Week, row.Day, row.Half, row.CourseID)
		if row.Date != "" {
			line = row.Date + "\t" + line
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
