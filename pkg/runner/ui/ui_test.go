package ui

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/store"
)

func TestRequiresStore(t *testing.T) {
	u := &UI{IsTerminal: func() bool { return true }}
	if err := u.Do(context.Background()); err == nil {
		t.Fatalf("expected an error without a store")
	}
}

func TestRequiresTerminal(t *testing.T) {
	u := &UI{
		API:        &app.Service{Persistence: store.NewMemory(), UserID: "alex"},
		IsTerminal: func() bool { return false },
	}
	if err := u.Do(context.Background()); !errors.Is(err, ErrNotTerminal) {
		t.Fatalf("Do = %v, want ErrNotTerminal", err)
	}
}
