package week

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestMergeKeepsOtherField(t *testing.T) {
	now := time.Date(2024, time.October, 2, 0, 0, 0, 0, time.UTC)
	base := &Record{ID: 7, UserID: "u1", WeekNumber: 12, Reminders: strPtr("call mom")}

	got := Merge(base, 12, Journal, "good week", now)
	if got.Get(Journal) != "good week" {
		t.Fatalf("expected journal to be set, got %q", got.Get(Journal))
	}
	if got.Get(Reminders) != "call mom" {
		t.Fatalf("expected reminders to survive merge, got %q", got.Get(Reminders))
	}
	if got.ID != 7 || got.UserID != "u1" {
		t.Fatalf("expected identity to be kept, got %#v", got)
	}
	if base.JournalText != nil {
		t.Fatalf("merge mutated its base record")
	}
}

func TestMergePlaceholder(t *testing.T) {
	now := time.Date(2024, time.October, 2, 0, 0, 0, 0, time.UTC)
	got := Merge(nil, 3, Reminders, "dentist", now)
	if got.ID != 0 || got.UserID != "" {
		t.Fatalf("expected placeholder identity, got %#v", got)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps at now, got %v %v", got.CreatedAt, got.UpdatedAt)
	}
	if got.JournalText != nil {
		t.Fatalf("expected journal to stay null")
	}
}

func TestValidateNumber(t *testing.T) {
	for _, n := range []int{1, 4680} {
		if err := ValidateNumber(n); err != nil {
			t.Fatalf("expected %d to be valid: %v", n, err)
		}
	}
	for _, n := range []int{0, -1, 4681} {
		err := ValidateNumber(n)
		if !IsValidation(err) {
			t.Fatalf("expected validation error for %d, got %v", n, err)
		}
	}
}

func TestIsValidationWrapped(t *testing.T) {
	err := fmt.Errorf("app: update: %w", NewValidationError("birthdate", "bad"))
	if !IsValidation(err) {
		t.Fatalf("expected wrapped validation error to be detected")
	}
	if IsValidation(errors.New("boom")) {
		t.Fatalf("plain errors are not validation errors")
	}
}

func TestParseField(t *testing.T) {
	cases := map[string]Field{
		"journal":     Journal,
		"journalText": Journal,
		"reminders":   Reminders,
	}
	for in, want := range cases {
		got, err := ParseField(in)
		if err != nil || got != want {
			t.Fatalf("ParseField(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseField("tags"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestUserCalendar(t *testing.T) {
	var u *User
	if _, err := u.Calendar(time.UTC, time.Sunday); !errors.Is(err, ErrNoBirthDate) {
		t.Fatalf("expected ErrNoBirthDate, got %v", err)
	}
	u = &User{ID: "u1", BirthDate: "1998-10-02"}
	cal, err := u.Calendar(time.UTC, time.Sunday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(1998, time.October, 2, 0, 0, 0, 0, time.UTC)
	if !cal.Birth().Equal(want) {
		t.Fatalf("expected calendar birth %v, got %v", want, cal.Birth())
	}
}
