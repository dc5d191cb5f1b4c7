package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"tableflip.dev/lifedots/pkg/config"
	"tableflip.dev/lifedots/pkg/week"
)

type testConfig struct {
	path   string
	driver string
}

func (t testConfig) BasePath() string    { return t.path }
func (t testConfig) StoreDriver() string { return t.driver }

func strPtr(s string) *string { return &s }

// engines returns a fresh instance of every engine for table driven tests.
func engines(t *testing.T) map[string]Persistence {
	t.Helper()
	out := map[string]Persistence{}
	for _, driver := range []string{config.DriverDiskv, config.DriverSQLite, config.DriverMemory} {
		p, err := Load(testConfig{path: t.TempDir(), driver: driver})
		if err != nil {
			t.Fatalf("load %s: %v", driver, err)
		}
		t.Cleanup(func() { _ = p.Close() })
		out[driver] = p
	}
	return out
}

func TestGetWeekNeverWrittenIsNil(t *testing.T) {
	for name, p := range engines(t) {
		t.Run(name, func(t *testing.T) {
			r, err := p.GetWeek(context.Background(), "alex", 12)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r != nil {
				t.Fatalf("expected nil record, got %#v", r)
			}
			all, err := p.ListWeeks(context.Background(), "alex")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(all) != 0 {
				t.Fatalf("reading created records: %#v", all)
			}
		})
	}
}

func TestSaveWeekUpsertsSingleRecord(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, time.October, 2, 10, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	for name, p := range engines(t) {
		t.Run(name, func(t *testing.T) {
			first, err := p.SaveWeek(ctx, &week.Record{
				UserID: "alex", WeekNumber: 42, JournalText: strPtr("x"),
				CreatedAt: created, UpdatedAt: created,
			})
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if first.ID == 0 {
				t.Fatalf("expected id to be assigned")
			}

			second, err := p.SaveWeek(ctx, &week.Record{
				UserID: "alex", WeekNumber: 42, JournalText: strPtr("x"), Reminders: strPtr("y"),
				CreatedAt: later, UpdatedAt: later,
			})
			if err != nil {
				t.Fatalf("save again: %v", err)
			}
			if second.ID != first.ID {
				t.Fatalf("expected id %d to be kept, got %d", first.ID, second.ID)
			}
			if !second.CreatedAt.Equal(created) {
				t.Fatalf("expected created at %v to be kept, got %v", created, second.CreatedAt)
			}

			got, err := p.GetWeek(ctx, "alex", 42)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Get(week.Journal) != "x" || got.Get(week.Reminders) != "y" {
				t.Fatalf("unexpected record: %#v", got)
			}

			all, err := p.ListWeeks(ctx, "alex")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(all) != 1 {
				t.Fatalf("expected one record, got %d", len(all))
			}
		})
	}
}

func TestListWeeksOrderedAndScoped(t *testing.T) {
	ctx := context.Background()
	for name, p := range engines(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []int{300, 2, 1001, 45} {
				if _, err := p.SaveWeek(ctx, &week.Record{UserID: "alex", WeekNumber: n, Reminders: strPtr(fmt.Sprint(n))}); err != nil {
					t.Fatalf("save %d: %v", n, err)
				}
			}
			if _, err := p.SaveWeek(ctx, &week.Record{UserID: "sam", WeekNumber: 7}); err != nil {
				t.Fatalf("save other user: %v", err)
			}

			all, err := p.ListWeeks(ctx, "alex")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			want := []int{2, 45, 300, 1001}
			if len(all) != len(want) {
				t.Fatalf("expected %d records, got %d", len(want), len(all))
			}
			for i, r := range all {
				if r.WeekNumber != want[i] {
					t.Fatalf("position %d: expected week %d, got %d", i, want[i], r.WeekNumber)
				}
				if r.UserID != "alex" {
					t.Fatalf("leaked record of %q", r.UserID)
				}
			}
		})
	}
}

func TestNullFieldsStayNull(t *testing.T) {
	ctx := context.Background()
	for name, p := range engines(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := p.SaveWeek(ctx, &week.Record{UserID: "alex", WeekNumber: 5, Reminders: strPtr("")}); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := p.GetWeek(ctx, "alex", 5)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.JournalText != nil {
				t.Fatalf("expected journal to stay null, got %q", *got.JournalText)
			}
			if got.Reminders == nil || *got.Reminders != "" {
				t.Fatalf("expected empty reminders to round trip, got %v", got.Reminders)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	for name, p := range engines(t) {
		t.Run(name, func(t *testing.T) {
			u, err := p.GetUser(ctx, "user/with-odd id")
			if err != nil || u != nil {
				t.Fatalf("expected no user, got %#v, %v", u, err)
			}
			saved, err := p.SaveUser(ctx, &week.User{ID: "user/with-odd id", BirthDate: "1998-10-02"})
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if saved.BirthDate != "1998-10-02" {
				t.Fatalf("unexpected user: %#v", saved)
			}
			u, err = p.GetUser(ctx, "user/with-odd id")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if u == nil || u.BirthDate != "1998-10-02" {
				t.Fatalf("unexpected user: %#v", u)
			}
		})
	}
}

func TestSaveWeekConcurrentSameWeek(t *testing.T) {
	ctx := context.Background()
	for name, p := range engines(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _ = p.SaveWeek(ctx, &week.Record{UserID: "alex", WeekNumber: 9, Reminders: strPtr(fmt.Sprint(i))})
				}(i)
			}
			wg.Wait()
			all, err := p.ListWeeks(ctx, "alex")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(all) != 1 {
				t.Fatalf("expected one record after concurrent saves, got %d", len(all))
			}
		})
	}
}

func TestLoadUnknownDriver(t *testing.T) {
	if _, err := Load(testConfig{path: t.TempDir(), driver: "postgres"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
