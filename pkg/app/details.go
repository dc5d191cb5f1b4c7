package app

import (
	"context"
	"fmt"
	"time"

	"tableflip.dev/lifedots/pkg/grid"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/week"
)

// WeekView is everything shown about one selected week.
type WeekView struct {
	lifecal.Details
	State    grid.State   `json:"state"`
	Birthday bool         `json:"birthday"`
	Age      int          `json:"age"`
	DaysIn   int          `json:"daysIn"`
	Record   *week.Record `json:"record"`
}

// Describe resolves index against cal at now. Record is left for the caller.
func Describe(cal lifecal.Calendar, index int, now time.Time) (WeekView, error) {
	d, err := cal.Details(index)
	if err != nil {
		return WeekView{}, err
	}
	cell := grid.At(cal, index, now)
	return WeekView{
		Details:  d,
		State:    cell.State,
		Birthday: cell.Birthday,
		Age:      cal.AgeAt(d.Start),
		DaysIn:   cal.DaysAt(d.Start),
	}, nil
}

// Prompt is the heading shown above the journal editor.
func (v WeekView) Prompt() string {
	if v.State == grid.Future {
		return "This week hasn't happened yet, let's plan ahead"
	}
	return "Let's take a look at your past week"
}

// Calendar loads the caller's profile through api and returns their life
// calendar. It fails with week.ErrNoBirthDate before onboarding.
func Calendar(ctx context.Context, api API, loc *time.Location, weekStart time.Weekday) (lifecal.Calendar, *week.User, error) {
	u, err := api.GetUser(ctx)
	if err != nil {
		return lifecal.Calendar{}, nil, err
	}
	if !u.HasBirthDate() {
		return lifecal.Calendar{}, u, week.ErrNoBirthDate
	}
	if loc == nil {
		loc = time.Local
	}
	cal, err := u.Calendar(loc, weekStart)
	if err != nil {
		return lifecal.Calendar{}, u, fmt.Errorf("app: stored birth date: %w", err)
	}
	return cal, u, nil
}
