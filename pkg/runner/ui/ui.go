// Package ui launches the interactive life grid.
package ui

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/app"
	teaui "tableflip.dev/lifedots/pkg/tui/app"
	"tableflip.dev/lifedots/pkg/tui/theme"
)

// ErrNotTerminal is returned when stdin or stdout is not an interactive
// terminal.
var ErrNotTerminal = errors.New("ui: an interactive terminal is required")

// UI runs the Bubble Tea program against an API.
type UI struct {
	API app.API
	// Watcher streams local storage changes. Leave nil for remote stores;
	// Refresh then controls how often data is reloaded.
	Watcher   teaui.Watcher
	Refresh   time.Duration
	Location  *time.Location
	WeekStart time.Weekday
	Log       *zap.Logger

	// IsTerminal overrides terminal detection.
	IsTerminal func() bool
	// DarkBackground overrides background detection.
	DarkBackground func() bool
}

// Do runs the program until the user quits.
func (u *UI) Do(ctx context.Context) error {
	if u.API == nil {
		return errors.New("ui: no week store configured")
	}
	isTerminal := u.IsTerminal
	if isTerminal == nil {
		isTerminal = interactive
	}
	if !isTerminal() {
		return ErrNotTerminal
	}
	dark := u.DarkBackground
	if dark == nil {
		dark = termenv.HasDarkBackground
	}
	th := theme.ForBackground(dark())
	return teaui.Run(teaui.Options{
		API:       u.API,
		Watcher:   u.Watcher,
		Refresh:   u.Refresh,
		Location:  u.Location,
		WeekStart: u.WeekStart,
		Log:       u.Log,
		Theme:     &th,
	})
}

func interactive() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}
