// Package mcp provides the Model Context Protocol server integration for
// lifedots.
package mcp

import (
	"context"
	"errors"
	"time"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/grid"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/week"
)

// Service wraps the week store with the calendar lookups shared by tools
// and resources.
type Service struct {
	API       app.API
	Location  *time.Location
	WeekStart time.Weekday
	Clock     lifecal.Clock
}

// NewService builds a service over api using local time and Sunday weeks.
func NewService(api app.API) *Service {
	return &Service{API: api, Location: time.Local, Clock: lifecal.RealClock{}}
}

// Overview summarizes the caller's grid.
type Overview struct {
	BirthDate string       `json:"birthDate"`
	Summary   grid.Summary `json:"summary"`
	Written   int          `json:"writtenWeeks"`
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) calendar(ctx context.Context) (lifecal.Calendar, *week.User, error) {
	if s.API == nil {
		return lifecal.Calendar{}, nil, errors.New("week store is not configured")
	}
	return app.Calendar(ctx, s.API, s.Location, s.WeekStart)
}

// WeekDetails resolves the dates and state of a week and attaches its record.
func (s *Service) WeekDetails(ctx context.Context, weekNumber int) (app.WeekView, error) {
	if err := week.ValidateNumber(weekNumber); err != nil {
		return app.WeekView{}, err
	}
	cal, _, err := s.calendar(ctx)
	if err != nil {
		return app.WeekView{}, err
	}
	view, err := app.Describe(cal, week.IndexFromNumber(weekNumber), s.now())
	if err != nil {
		return app.WeekView{}, err
	}
	view.Record, err = s.API.GetWeek(ctx, weekNumber)
	if err != nil {
		return app.WeekView{}, err
	}
	return view, nil
}

// Overview returns the grid summary with the number of written weeks.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	cal, u, err := s.calendar(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.API.GetAllWeeks(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &Overview{
		BirthDate: u.BirthDate,
		Summary:   grid.Summarize(cal, grid.Build(cal, now), now),
		Written:   len(all),
	}, nil
}
