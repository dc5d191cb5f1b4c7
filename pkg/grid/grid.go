// Package grid derives the per-dot state of the life grid.
package grid

import (
	"time"

	"tableflip.dev/lifedots/pkg/lifecal"
)

// State is the display state of a single dot.
type State int

const (
	// Future weeks have not started yet.
	Future State = iota
	// Lived weeks ended before the current week.
	Lived
	// Current is the single week containing now.
	Current
)

func (s State) String() string {
	switch s {
	case Lived:
		return "lived"
	case Current:
		return "current"
	default:
		return "future"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Cell is one dot on the grid.
type Cell struct {
	Index    int              `json:"index"`
	State    State            `json:"state"`
	Interval lifecal.Interval `json:"interval"`
	Birthday bool             `json:"birthday"`
}

// IsLived is true for past weeks and the current week.
func (c Cell) IsLived() bool { return c.State != Future }

// IsCurrent is true only for the week containing now.
func (c Cell) IsCurrent() bool { return c.State == Current }

// Row returns the life year of the cell, zero based.
func (c Cell) Row() int { return c.Index / lifecal.WeeksPerYear }

// Col returns the week within the life year, zero based.
func (c Cell) Col() int { return c.Index % lifecal.WeeksPerYear }

// Build computes every cell of the grid at now. Current is the index whose
// interval contains now and every earlier index is lived.
func Build(cal lifecal.Calendar, now time.Time) []Cell {
	current := cal.CurrentIndex(now)
	cells := make([]Cell, lifecal.TotalWeeks)
	for i := range cells {
		iv := cal.Interval(i)
		cells[i] = Cell{
			Index:    i,
			State:    stateFor(i, current),
			Interval: iv,
			Birthday: cal.IsBirthdayWeek(iv),
		}
	}
	return cells
}

// At computes a single cell without building the whole grid.
func At(cal lifecal.Calendar, index int, now time.Time) Cell {
	iv := cal.Interval(index)
	return Cell{
		Index:    index,
		State:    stateFor(index, cal.CurrentIndex(now)),
		Interval: iv,
		Birthday: cal.IsBirthdayWeek(iv),
	}
}

func stateFor(index, current int) State {
	switch {
	case index == current:
		return Current
	case index < current:
		return Lived
	default:
		return Future
	}
}

// Summary aggregates the grid for headers and printers.
type Summary struct {
	WeeksLived     int `json:"weeksLived"`
	WeeksRemaining int `json:"weeksRemaining"`
	CurrentIndex   int `json:"currentIndex"`
	Lived          int `json:"livedDots"`
	Future         int `json:"futureDots"`
	Birthdays      int `json:"birthdayDots"`
}

// Summarize counts cell states alongside the calendar totals at now.
func Summarize(cal lifecal.Calendar, cells []Cell, now time.Time) Summary {
	s := Summary{
		WeeksLived:     cal.WeeksLived(now),
		WeeksRemaining: cal.RemainingDots(now),
		CurrentIndex:   cal.CurrentIndex(now),
	}
	for _, c := range cells {
		if c.IsLived() {
			s.Lived++
		} else {
			s.Future++
		}
		if c.Birthday {
			s.Birthdays++
		}
	}
	return s
}
