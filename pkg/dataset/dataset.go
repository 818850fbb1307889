// Package dataset loads tabular course data and derives conflict graphs and
// preferences from it.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrNoHeader      = errors.New("csv input has no header row")
)

type Row map[string]string

// Dataset is a table of string cells. Columns keeps the header order.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// RawDataset is the JSON document shape. Columns is optional; cells may hold any scalar.
type RawDataset struct {
	Columns []string         `mapstructure:"columns"`
	Rows    []map[string]any `mapstructure:"rows"`
}

// FromCSV reads a header row followed by data rows.
func FromCSV(reader io.Reader, delimiter rune) (*Dataset, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	records, err := gocsv.NewSimpleDecoderFromCSVReader(csvReader).GetCSVRows()
	if err != nil {
		return nil, fmt.Errorf("cannot read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	header := lo.Map(records[0], func(column string, _ int) string { return strings.TrimSpace(column) })
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue // Blank line
		}
		row := make(Row, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return &Dataset{Columns: header, Rows: rows}, nil
}

// FromJSON accepts either {"columns": [...], "rows": [{...}]} or a bare array of row
// objects. Numbers and booleans are turned into strings.
func FromJSON(data []byte) (*Dataset, error) {
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("cannot parse json dataset: %w", err)
	}
	if rows, ok := document.([]any); ok {
		document = map[string]any{"rows": rows}
	}
	return FromMap(document)
}

// FromMap decodes an already parsed document, see FromJSON.
func FromMap(document any) (*Dataset, error) {
	var raw RawDataset
	if err := mapstructure.Decode(document, &raw); err != nil {
		return nil, fmt.Errorf("cannot decode dataset: %w", err)
	}

	rows := make([]Row, 0, len(raw.Rows))
	for i, rawRow := range raw.Rows {
		row := make(Row, len(rawRow))
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &row,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(lo.OmitByValues(rawRow, []any{nil})); err != nil {
			return nil, fmt.Errorf("cannot decode row %d: %w", i, err)
		}
		rows = append(rows, lo.MapValues(row, func(value string, _ string) string { return strings.TrimSpace(value) }))
	}

	columns := raw.Columns
	if len(columns) == 0 {
		columns = lo.Uniq(lo.FlatMap(rows, func(row Row, _ int) []string { return lo.Keys(row) }))
		slices.Sort(columns)
	}

	return &Dataset{Columns: columns, Rows: rows}, nil
}

// Load picks the parser from the file extension: .json, or CSV otherwise.
func Load(path string, delimiter rune) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return FromJSON(data)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return FromCSV(file, delimiter)
}

// Require fails with ErrMissingColumn naming every absent column.
func (dataset *Dataset) Require(columns ...string) error {
	missing := lo.Without(columns, dataset.Columns...)
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v (available: %v)", ErrMissingColumn, missing, dataset.Columns)
	}
	return nil
}

// Nodes returns the distinct non-empty values of the node column in order of first
// appearance.
func (dataset *Dataset) Nodes(node string) []string {
	return lo.Uniq(lo.FilterMap(dataset.Rows, func(row Row, _ int) (string, bool) {
		return row[node], row[node] != ""
	}))
}

// First returns the first row of every node id.
func (dataset *Dataset) First(node string) map[string]Row {
	first := make(map[string]Row)
	for _, row := range dataset.Rows {
		if id := row[node]; id != "" {
			if _, ok := first[id]; !ok {
				first[id] = row
			}
		}
	}
	return first
}
