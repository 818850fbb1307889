package timetable

import (
	"fmt"
	"strings"
)

// Weekday is a teaching day, Monday to Friday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

var weekdayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri"}

func (day Weekday) String() string {
	if day < Monday || day > Friday {
		return fmt.Sprintf("Weekday(%d)", int(day))
	}
	return weekdayNames[day]
}

func (day Weekday) MarshalText() ([]byte, error) {
	return []byte(day.String()), nil
}

// Half is the morning or afternoon half of a day.
type Half int

const (
	Morning Half = iota
	Afternoon
)

func (half Half) String() string {
	switch half {
	case Morning:
		return "Morning"
	case Afternoon:
		return "Afternoon"
	}
	return fmt.Sprintf("Half(%d)", int(half))
}

func (half Half) MarshalText() ([]byte, error) {
	return []byte(half.String()), nil
}

const (
	DaysPerWeek  = 5
	HalvesPerDay = 2
	SlotsPerWeek = DaysPerWeek * HalvesPerDay
)

// Slot is one half-day of the calendar. Weeks are numbered from 1.
type Slot struct {
	Week int     `json:"week" yaml:"week"`
	Day  Weekday `json:"day" yaml:"day"`
	Half Half    `json:"half" yaml:"half"`
}

func (slot Slot) String() string {
	return fmt.Sprintf("W%d %v %v", slot.Week, slot.Day, slot.Half)
}

// Weeks returns how many weeks k color classes need.
func Weeks(k int) int {
	return (k + SlotsPerWeek - 1) / SlotsPerWeek
}

// Catalog enumerates the slots of the given number of weeks: week ascending, then
// Monday to Friday, then morning before afternoon.
func Catalog(weeks int) []Slot {
	slots := make([]Slot, 0, max(weeks, 0)*SlotsPerWeek)
	for week := 1; week <= weeks; week++ {
		for day := Monday; day <= Friday; day++ {
			slots = append(slots, Slot{Week: week, Day: day, Half: Morning}, Slot{Week: week, Day: day, Half: Afternoon})
		}
	}
	return slots
}

// ParseHalf accepts "morning" and "afternoon" in any case.
func ParseHalf(value string) (Half, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "morning":
		return Morning, true
	case "afternoon":
		return Afternoon, true
	}
	return 0, false
}
