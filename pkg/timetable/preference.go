package timetable

import "github.com/samber/lo"

// Preference is the half-day an entity would like to be scheduled in, if any.
type Preference struct {
	Half Half
	Set  bool
}

// NoPreference is satisfied by no slot.
var NoPreference = Preference{}

// Prefers returns the preference for half.
func Prefers(half Half) Preference {
	return Preference{Half: half, Set: true}
}

// ParsePreference maps "Morning" or "Afternoon" (any case, surrounding blanks ignored)
// to a preference. Any other value means no preference.
func ParsePreference(value string) Preference {
	half, ok := ParseHalf(value)
	if !ok {
		return NoPreference
	}
	return Prefers(half)
}

// SatisfiedBy reports whether a slot in the given half fulfils the preference.
func (preference Preference) SatisfiedBy(half Half) bool {
	return preference.Set && preference.Half == half
}

func (preference Preference) String() string {
	if !preference.Set {
		return ""
	}
	return preference.Half.String()
}

func (preference Preference) MarshalText() ([]byte, error) {
	return []byte(preference.String()), nil
}

// Tally counts the preferences inside one color class.
type Tally struct {
	Morning   int `json:"morning" yaml:"morning"`
	Afternoon int `json:"afternoon" yaml:"afternoon"`
}

// Cost is the number of members left unsatisfied when the class is placed in half:
// a morning slot costs the afternoon count and vice versa.
func (tally Tally) Cost(half Half) float64 {
	if half == Morning {
		return float64(tally.Afternoon)
	}
	return float64(tally.Morning)
}

// Tallies counts morning and afternoon preferences per color class.
func Tallies(classes map[int][]string, preferences map[string]Preference) map[int]Tally {
	return lo.MapValues(classes, func(members []string, _ int) Tally {
		tally := Tally{}
		for _, member := range members {
			preference := preferences[member]
			switch {
			case preference.SatisfiedBy(Morning):
				tally.Morning++
			case preference.SatisfiedBy(Afternoon):
				tally.Afternoon++
			}
		}
		return tally
	})
}
