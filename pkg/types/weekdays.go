package types

import "time"

// Weekdays is the set of weekdays a shop is open, stored as jsonb.
type Weekdays []time.Weekday

// Contains reports whether the given weekday is part of the set.
func (w Weekdays) Contains(day time.Weekday) bool {
	for _, candidate := range w {
		if candidate == day {
			return true
		}
	}
	return false
}

// EveryDay returns a set covering the whole week.
func EveryDay() Weekdays {
	return Weekdays{
		time.Monday,
		time.Tuesday,
		time.Wednesday,
		time.Thursday,
		time.Friday,
		time.Saturday,
		time.Sunday,
	}
}
