// Package week holds the persisted journal and reminder records attached to
// individual weeks of a life grid.
package week

import (
	"fmt"
	"time"

	"tableflip.dev/lifedots/pkg/lifecal"
)

// Field names one independently editable text field of a Record.
type Field string

const (
	// Journal is the free text reflection for a week.
	Journal Field = "journal"
	// Reminders is the opaque reminder text for a week.
	Reminders Field = "reminders"
)

// Fields lists the editable fields in display order.
var Fields = []Field{Journal, Reminders}

func (f Field) String() string { return string(f) }

// Label is the human readable name of the field.
func (f Field) Label() string {
	switch f {
	case Journal:
		return "Journal entry"
	case Reminders:
		return "Reminders"
	default:
		return string(f)
	}
}

// ParseField accepts the field names used on the wire and the command line.
func ParseField(s string) (Field, error) {
	switch s {
	case "journal", "journalText", "journal_text":
		return Journal, nil
	case "reminders", "reminder":
		return Reminders, nil
	}
	return "", NewValidationError("field", fmt.Sprintf("unknown field %q", s))
}

// Record is the stored data for one (user, week number) pair. Records are
// created on first write and never on read.
type Record struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	WeekNumber  int       `json:"weekNumber"`
	JournalText *string   `json:"journalText"`
	Reminders   *string   `json:"reminders"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Get returns the text of f, or "" when unset.
func (r *Record) Get(f Field) string {
	if r == nil {
		return ""
	}
	var p *string
	switch f {
	case Journal:
		p = r.JournalText
	case Reminders:
		p = r.Reminders
	}
	if p == nil {
		return ""
	}
	return *p
}

// Set stores text into f.
func (r *Record) Set(f Field, text string) {
	switch f {
	case Journal:
		r.JournalText = &text
	case Reminders:
		r.Reminders = &text
	}
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	if r.JournalText != nil {
		v := *r.JournalText
		cp.JournalText = &v
	}
	if r.Reminders != nil {
		v := *r.Reminders
		cp.Reminders = &v
	}
	return &cp
}

// Summary returns the list projection of r.
func (r *Record) Summary() Summary {
	return Summary{
		WeekNumber:  r.WeekNumber,
		JournalText: r.JournalText,
		Reminders:   r.Reminders,
	}
}

// Summary is the projection returned when listing all weeks.
type Summary struct {
	WeekNumber  int     `json:"weekNumber"`
	JournalText *string `json:"journalText"`
	Reminders   *string `json:"reminders"`
}

// Placeholder builds the record shown before the store confirms a first
// write: id 0, no user and timestamps at now.
func Placeholder(number int, now time.Time) *Record {
	return &Record{
		WeekNumber: number,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Merge returns a copy of base with f set to text. A nil base yields a
// placeholder record. The other field is carried over untouched.
func Merge(base *Record, number int, f Field, text string, now time.Time) *Record {
	next := base.Clone()
	if next == nil {
		next = Placeholder(number, now)
	}
	next.Set(f, text)
	next.UpdatedAt = now
	return next
}

// NumberFromIndex converts a zero based grid index into a week number.
func NumberFromIndex(index int) int { return index + 1 }

// IndexFromNumber converts a week number back into a grid index.
func IndexFromNumber(number int) int { return number - 1 }

// ValidateNumber rejects week numbers that do not map onto the grid.
func ValidateNumber(number int) error {
	if number < 1 || number > lifecal.TotalWeeks {
		return NewValidationError("weekNumber",
			fmt.Sprintf("week number %d out of range [1, %d]", number, lifecal.TotalWeeks))
	}
	return nil
}
