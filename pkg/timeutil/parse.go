package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultRefresh is how often remote data is reloaded when no file
	// watch is available.
	DefaultRefresh = "30s"
)

var (
	intervalPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitMap         = map[string]time.Duration{
		"s":       time.Second,
		"sec":     time.Second,
		"secs":    time.Second,
		"second":  time.Second,
		"seconds": time.Second,
		"m":       time.Minute,
		"min":     time.Minute,
		"mins":    time.Minute,
		"minute":  time.Minute,
		"minutes": time.Minute,
		"h":       time.Hour,
		"hr":      time.Hour,
		"hour":    time.Hour,
		"hours":   time.Hour,
	}
	weekdayMap = map[string]time.Weekday{
		"su":        time.Sunday,
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mo":        time.Monday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tu":        time.Tuesday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"we":        time.Wednesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"th":        time.Thursday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fr":        time.Friday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sa":        time.Saturday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}
)

// ParseWeekday parses a day name such as "sunday", "Mon" or "sa". An empty
// string yields Sunday.
func ParseWeekday(input string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(input))
	if key == "" {
		return time.Sunday, nil
	}
	if wd, ok := weekdayMap[key]; ok {
		return wd, nil
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", input)
}

// ParseRefresh parses a compact interval such as "30s", "5m" or "1m30s".
// Zero disables refreshing; an empty input uses DefaultRefresh.
func ParseRefresh(input string) (time.Duration, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		trimmed = DefaultRefresh
	}
	if trimmed == "0" || trimmed == "off" {
		return 0, nil
	}

	remaining := trimmed
	total := time.Duration(0)
	for len(remaining) > 0 {
		matches := intervalPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, fmt.Errorf("invalid interval segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid interval value %q: %w", matches[1], err)
		}
		base, ok := unitMap[matches[2]]
		if !ok {
			return 0, fmt.Errorf("unsupported interval unit %q", matches[2])
		}
		total += time.Duration(value) * base
		remaining = remaining[len(matches[0]):]
	}
	return total, nil
}
