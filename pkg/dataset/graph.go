package dataset

import (
	"github.com/limaJavier/timetabling/pkg/graph"
	"github.com/limaJavier/timetabling/pkg/timetable"
	"github.com/samber/lo"
)

// BuildGraph makes two node ids conflict when their rows share a non-empty value in any
// of the constraint columns. Every node id becomes a vertex, in order of first
// appearance, including ids with no conflicts at all.
func (dataset *Dataset) BuildGraph(node string, constraints []string) (*graph.ConflictGraph, error) {
	if err := dataset.Require(append([]string{node}, constraints...)...); err != nil {
		return nil, err
	}

	rows := lo.Filter(dataset.Rows, func(row Row, _ int) bool { return row[node] != "" })
	adjacency := make(map[string][]string)
	for _, constraint := range constraints {
		groups := lo.GroupBy(rows, func(row Row) string { return row[constraint] })
		delete(groups, "")

		for _, group := range groups {
			ids := lo.Uniq(lo.Map(group, func(row Row, _ int) string { return row[node] }))
			for _, id := range ids {
				adjacency[id] = append(adjacency[id], lo.Without(ids, id)...)
			}
		}
	}

	return graph.New(dataset.Nodes(node), adjacency), nil
}

// Preferences reads each node's preferred half-day from its first row.
func (dataset *Dataset) Preferences(node, column string) (map[string]timetable.Preference, error) {
	if err := dataset.Require(node, column); err != nil {
		return nil, err
	}
	return lo.MapValues(dataset.First(node), func(row Row, _ string) timetable.Preference {
		return timetable.ParsePreference(row[column])
	}), nil
}
