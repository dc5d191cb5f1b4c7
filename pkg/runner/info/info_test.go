package info

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/config"
	"tableflip.dev/lifedots/pkg/store"
)

func TestInfoLocal(t *testing.T) {
	color.NoColor = true
	t.Setenv("LIFEDOTS_CONFIG_PATH", "")

	svc := &app.Service{Persistence: store.NewMemory(), UserID: "alex"}
	ctx := context.Background()
	_, err := svc.UpdateBirthdate(ctx, "1998-10-02")
	require.NoError(t, err)
	_, err = svc.UpsertJournalEntry(ctx, 12, "first steps")
	require.NoError(t, err)

	var out bytes.Buffer
	i := Info{
		Config: &config.Config{
			Path:      "/tmp/lifedots",
			Driver:    config.DriverMemory,
			User:      "alex",
			WeekStart: time.Monday,
			Server:    config.Server{Addr: "127.0.0.1:8080"},
		},
		API: svc,
		Out: &out,
	}
	require.NoError(t, i.Do(ctx))

	got := out.String()
	assert.Contains(t, got, "LIFEDOTS_CONFIG_PATH env var not set")
	assert.Contains(t, got, "/tmp/lifedots")
	assert.Contains(t, got, "Monday")
	assert.Contains(t, got, "1998-10-02")
	assert.Regexp(t, `Stored weeks\s+1`, got)
	assert.Regexp(t, `API auth\s+none`, got)
}

func TestInfoRemoteWithoutStore(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	i := Info{
		Config: &config.Config{
			Remote: config.Remote{URL: "https://weeks.example.com", Token: "abc"},
		},
		Out: &out,
	}
	assert.Error(t, i.Do(context.Background()))
	assert.Contains(t, out.String(), "https://weeks.example.com")
	assert.Regexp(t, `Token\s+configured`, out.String())
}
