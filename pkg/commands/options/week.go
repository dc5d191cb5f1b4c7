package options

import (
	"fmt"
	"strconv"
	"strings"

	"tableflip.dev/lifedots/pkg/week"
)

// WeekNumber parses a week number argument, 1 through 4680.
func WeekNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, week.NewValidationError("weekNumber", fmt.Sprintf("%q is not a week number", arg))
	}
	if err := week.ValidateNumber(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Text joins the remaining arguments into one entry. A single "-" is
// replaced by read.
func Text(args []string, read func() (string, error)) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		s, err := read()
		if err != nil {
			return "", err
		}
		return strings.TrimRight(s, "\n"), nil
	}
	return strings.Join(args, " "), nil
}
