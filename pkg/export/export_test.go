package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/limaJavier/timetabling/pkg/dataset"
	"github.com/limaJavier/timetabling/pkg/timetable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstMonday(t *testing.T) {
	for input, expected := range map[string]string{
		"2025-03-03": "2025-03-03", // Monday
		"2025-03-05": "2025-03-03", // Wednesday
		"2025-03-09": "2025-03-03", // Sunday
		"2025-01-01": "2024-12-30",
	} {
		start, err := ParseStart(input)
		require.NoError(t, err)
		assert.Equal(t, expected, FirstMonday(start).Format(DateLayout), "start %v", input)
	}
}

func TestDate(t *testing.T) {
	start, err := ParseStart("2025-03-05")
	require.NoError(t, err)

	assert.Equal(t, "2025-03-03", Date(start, timetable.Slot{Week: 1, Day: timetable.Monday}).Format(DateLayout))
	assert.Equal(t, "2025-03-07", Date(start, timetable.Slot{Week: 1, Day: timetable.Friday, Half: timetable.Afternoon}).Format(DateLayout))
	assert.Equal(t, "2025-03-11", Date(start, timetable.Slot{Week: 2, Day: timetable.Tuesday}).Format(DateLayout))
}

func TestParseStart(t *testing.T) {
	_, err := ParseStart("05.03.2025")
	assert.Error(t, err)
}

func TestRowsAndWriteCSV(t *testing.T) {
	//** Arrange
	data, err := dataset.FromCSV(strings.NewReader("course_id,title,room,lecturer\nK1,Algebra,R1,Smith\nK2,Physics,R2,Jones\nK3,Art,R1,Brown\n"), ',')
	require.NoError(t, err)
	result := &timetable.Result{CourseToSlot: map[string]timetable.Slot{
		"K3": {Week: 2, Day: timetable.Monday, Half: timetable.Morning},
		"K2": {Week: 1, Day: timetable.Monday, Half: timetable.Afternoon},
		"K1": {Week: 1, Day: timetable.Monday, Half: timetable.Morning},
	}}
	start, err := ParseStart("2025-03-05")
	require.NoError(t, err)
	columns := DefaultColumns
	columns.Title = "title"

	//** Act
	rows := Rows(result, data, columns, &start)
	var buffer bytes.Buffer
	err = WriteCSV(&buffer, rows, ',')

	//** Assert
	require.NoError(t, err)
	expected := "course_id,title,room,lecturer,week,day,half,date\n" +
		"K1,Algebra,R1,Smith,1,Mon,Morning,2025-03-03\n" +
		"K2,Physics,R2,Jones,1,Mon,Afternoon,2025-03-03\n" +
		"K3,Art,R1,Brown,2,Mon,Morning,2025-03-10\n"
	assert.Equal(t, expected, buffer.String())
}

func TestRowsWithoutDatasetOrStart(t *testing.T) {
	result := &timetable.Result{CourseToSlot: map[string]timetable.Slot{
		"b": {Week: 1, Day: timetable.Tuesday},
		"a": {Week: 1, Day: timetable.Tuesday},
	}}

	rows := Rows(result, nil, DefaultColumns, nil)

	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].CourseID)
	assert.Equal(t, "Tue", rows[0].Day)
	assert.Empty(t, rows[0].Room)
	assert.Empty(t, rows[0].Date)

	var buffer bytes.Buffer
	require.NoError(t, WriteCSV(&buffer, rows, ';'))
	assert.True(t, strings.HasPrefix(buffer.String(), "course_id;title;room;lecturer;week;day;half;date\n"))
}

func TestDateKeepsLocation(t *testing.T) {
	location := time.FixedZone("CET", 3600)
	start := time.Date(2025, 3, 5, 15, 30, 0, 0, location)

	monday := FirstMonday(start)

	assert.Equal(t, location, monday.Location())
	assert.Equal(t, 0, monday.Hour())
}

func TestWriteWeekGrid(t *testing.T) {
	t.Run("With dataset and start", func(t *testing.T) {
		//** Arrange
		data, err := dataset.FromCSV(strings.NewReader("course_id,title,room,lecturer\nK1,Algebra,R1,Smith\nK2,Physics,R2,Jones\nK3,Art,R1,Brown\n"), ',')
		require.NoError(t, err)
		result := &timetable.Result{Weeks: 2, CourseToSlot: map[string]timetable.Slot{
			"K3": {Week: 2, Day: timetable.Monday, Half: timetable.Morning},
			"K2": {Week: 1, Day: timetable.Wednesday, Half: timetable.Afternoon},
			"K1": {Week: 1, Day: timetable.Monday, Half: timetable.Morning},
		}}
		start, err := ParseStart("2025-03-05")
		require.NoError(t, err)
		columns := DefaultColumns
		columns.Title = "title"

		//** Act
		var buffer bytes.Buffer
		err = WriteWeekGrid(&buffer, result, Rows(result, data, columns, &start), &start, ',')

		//** Assert
		require.NoError(t, err)
		expected := "start_monday,weeks,courses\n" +
			"2025-03-03,2,3\n" +
			"\n" +
			"Week 1,Mon,Tue,Wed,Thu,Fri\n" +
			",2025-03-03,2025-03-04,2025-03-05,2025-03-06,2025-03-07\n" +
			"Morning,K1 (Algebra / R1 / Smith),,,,\n" +
			"Afternoon,,,K2 (Physics / R2 / Jones),,\n" +
			"\n" +
			"Week 2,Mon,Tue,Wed,Thu,Fri\n" +
			",2025-03-10,2025-03-11,2025-03-12,2025-03-13,2025-03-14\n" +
			"Morning,K3 (Art / R1 / Brown),,,,\n" +
			"Afternoon,,,,,\n"
		assert.Equal(t, expected, buffer.String())
	})

	t.Run("Shared slot without start", func(t *testing.T) {
		result := &timetable.Result{Weeks: 1, CourseToSlot: map[string]timetable.Slot{
			"b": {Week: 1, Day: timetable.Friday, Half: timetable.Afternoon},
			"a": {Week: 1, Day: timetable.Friday, Half: timetable.Afternoon},
		}}

		var buffer bytes.Buffer
		err := WriteWeekGrid(&buffer, result, Rows(result, nil, DefaultColumns, nil), nil, ';')

		require.NoError(t, err)
		expected := "start_monday;weeks;courses\n" +
			";1;2\n" +
			"\n" +
			"Week 1;Mon;Tue;Wed;Thu;Fri\n" +
			"Morning;;;;;\n" +
			"Afternoon;;;;;\"a; b\"\n"
		assert.Equal(t, expected, buffer.String())
	})
}

func TestSummarize(t *testing.T) {
	result := &timetable.Result{Weeks: 3, CourseToSlot: map[string]timetable.Slot{"a": {Week: 1}}}
	start := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, Summary{StartMonday: "2025-03-03", Weeks: 3, Courses: 1}, Summarize(result, &start))
	assert.Equal(t, Summary{Weeks: 3, Courses: 1}, Summarize(result, nil))
}
