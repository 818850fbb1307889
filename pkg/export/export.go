// Package export writes a built timetable as a flat CSV schedule or as one grid per week.
package export

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/limaJavier/timetabling/pkg/dataset"
	"github.com/limaJavier/timetabling/pkg/timetable"
)

const DateLayout = time.DateOnly

type ScheduleRow struct {
	CourseID string `csv:"course_id" json:"course_id" yaml:"course_id"`
	Title    string `csv:"title" json:"title" yaml:"title"`
	Room     string `csv:"room" json:"room" yaml:"room"`
	Lecturer string `csv:"lecturer" json:"lecturer" yaml:"lecturer"`
	Week     int    `csv:"week" json:"week" yaml:"week"`
	Day      string `csv:"day" json:"day" yaml:"day"`
	Half     string `csv:"half" json:"half" yaml:"half"`
	Date     string `csv:"date" json:"date" yaml:"date"`

	slot timetable.Slot
}

// Columns names the dataset columns copied into each row. Empty names are skipped.
type Columns struct {
	Node     string
	Title    string
	Room     string
	Lecturer string
}

var DefaultColumns = Columns{Node: "course_id", Room: "room", Lecturer: "lecturer"}

// FirstMonday returns the Monday of the week holding start.
func FirstMonday(start time.Time) time.Time {
	offset := (int(start.Weekday()) + 6) % 7 // Monday = 0
	year, month, day := start.AddDate(0, 0, -offset).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, start.Location())
}

// Date returns the calendar day of slot when week 1 starts on the Monday of start.
func Date(start time.Time, slot timetable.Slot) time.Time {
	return FirstMonday(start).AddDate(0, 0, (slot.Week-1)*7+int(slot.Day))
}

// Rows lists every scheduled entity ordered by slot, then by id. Without a start date
// the Date column stays empty.
func Rows(result *timetable.Result, data *dataset.Dataset, columns Columns, start *time.Time) []*ScheduleRow {
	var first map[string]dataset.Row
	if data != nil && columns.Node != "" {
		first = data.First(columns.Node)
	}
	cell := func(row dataset.Row, column string) string {
		if column == "" {
			return ""
		}
		return row[column]
	}

	rows := make([]*ScheduleRow, 0, len(result.CourseToSlot))
	for entity, slot := range result.CourseToSlot {
		source := first[entity]
		row := &ScheduleRow{
			CourseID: entity,
			Title:    cell(source, columns.Title),
			Room:     cell(source, columns.Room),
			Lecturer: cell(source, columns.Lecturer),
			Week:     slot.Week,
			Day:      slot.Day.String(),
			Half:     slot.Half.String(),
			slot:     slot,
		}
		if start != nil {
			row.Date = Date(*start, slot).Format(DateLayout)
		}
		rows = append(rows, row)
	}

	slices.SortFunc(rows, func(a, b *ScheduleRow) int {
		return cmp.Or(
			cmp.Compare(a.slot.Week, b.slot.Week),
			cmp.Compare(a.slot.Day, b.slot.Day),
			cmp.Compare(a.slot.Half, b.slot.Half),
			cmp.Compare(a.CourseID, b.CourseID),
		)
	})
	return rows
}

// WriteCSV marshals rows with a header line.
func WriteCSV(writer io.Writer, rows []*ScheduleRow, delimiter rune) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("cannot write schedule: %w", err)
	}
	return nil
}

// Summary heads the week grid. StartMonday is empty without a start date.
type Summary struct {
	StartMonday string `csv:"start_monday"`
	Weeks       int    `csv:"weeks"`
	Courses     int    `csv:"courses"`
}

func Summarize(result *timetable.Result, start *time.Time) Summary {
	summary := Summary{Weeks: result.Weeks, Courses: len(result.CourseToSlot)}
	if start != nil {
		summary.StartMonday = FirstMonday(*start).Format(DateLayout)
	}
	return summary
}

// WriteWeekGrid writes the summary, then for every week a header with the weekdays
// (and their dates when start is given) followed by a morning and an afternoon row.
// A cell lists the rows scheduled in its slot, in the order given.
func WriteWeekGrid(writer io.Writer, result *timetable.Result, rows []*ScheduleRow, start *time.Time, delimiter rune) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = delimiter
	safe := gocsv.NewSafeCSVWriter(csvWriter)

	if err := gocsv.MarshalCSV([]Summary{Summarize(result, start)}, safe); err != nil {
		return fmt.Errorf("cannot write summary: %w", err)
	}

	entries := lo.GroupBy(rows, func(row *ScheduleRow) timetable.Slot { return row.slot })
	for index, week := range lo.Chunk(timetable.Catalog(result.Weeks), timetable.SlotsPerWeek) {
		header := []string{fmt.Sprintf("Week %d", index+1)}
		dates := []string{""}
		grid := [timetable.HalvesPerDay][]string{{timetable.Morning.String()}, {timetable.Afternoon.String()}}

		for _, slot := range week {
			if slot.Half == timetable.Morning {
				header = append(header, slot.Day.String())
				if start != nil {
					dates = append(dates, Date(*start, slot).Format(DateLayout))
				}
			}
			labels := lo.Map(entries[slot], func(row *ScheduleRow, _ int) string { return row.label() })
			grid[slot.Half] = append(grid[slot.Half], strings.Join(labels, "; "))
		}

		records := [][]string{{}, header}
		if start != nil {
			records = append(records, dates)
		}
		for _, record := range append(records, grid[:]...) {
			if err := safe.Write(record); err != nil {
				return fmt.Errorf("cannot write week %d: %w", index+1, err)
			}
		}
	}

	safe.Flush()
	if err := safe.Error(); err != nil {
		return fmt.Errorf("cannot write week grid: %w", err)
	}
	return nil
}

// label is the id followed by the non-empty title, room and lecturer.
func (row *ScheduleRow) label() string {
	details := lo.Compact([]string{row.Title, row.Room, row.Lecturer})
	if len(details) == 0 {
		return row.CourseID
	}
	return fmt.Sprintf("%s (%s)", row.CourseID, strings.Join(details, " / "))
}

// ParseStart parses a YYYY-MM-DD start date.
func ParseStart(value string) (time.Time, error) {
	start, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q: %w", value, err)
	}
	return start, nil
}
