package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tableflip.dev/lifedots/pkg/week"
)

func TestDiskvListSkipsUnreadableWeeks(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	base := t.TempDir()
	p, err := OpenDiskv(base, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close() })

	if _, err := p.SaveWeek(ctx, &week.Record{UserID: "alex", WeekNumber: 4, JournalText: strPtr("fine")}); err != nil {
		t.Fatal(err)
	}
	corrupt := filepath.Join(base, weeksBucket, encodeUser("alex"), "0009")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	all, err := p.ListWeeks(ctx, "alex")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].WeekNumber != 4 {
		t.Fatalf("expected only week 4, got %+v", all)
	}

	entries := logs.FilterMessage("skipping unreadable week").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if key := entries[0].ContextMap()["key"]; key != weekKey("alex", 9) {
		t.Fatalf("unexpected key %v", key)
	}
}
