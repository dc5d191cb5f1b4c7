package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lifedots/pkg/app"
	format "tableflip.dev/lifedots/pkg/export"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/store"
)

var fixedNow = time.Date(2024, time.October, 2, 9, 0, 0, 0, time.UTC)

func newExport(t *testing.T) *Export {
	t.Helper()
	clock := lifecal.ClockFunc(func() time.Time { return fixedNow })
	svc := &app.Service{Persistence: store.NewMemory(), UserID: "alex", Clock: clock}
	ctx := context.Background()
	_, err := svc.UpdateBirthdate(ctx, "1998-10-02")
	require.NoError(t, err)
	_, err = svc.UpdateReminders(ctx, 1400, "renew passport")
	require.NoError(t, err)
	return &Export{API: svc, Location: time.UTC, Clock: clock}
}

func TestExportICSToFile(t *testing.T) {
	e := newExport(t)
	e.Format = format.FormatICS
	e.Path = filepath.Join(t.TempDir(), "weeks.ics")
	require.NoError(t, e.Do(context.Background()))

	b, err := os.ReadFile(e.Path)
	require.NoError(t, err)
	text := string(b)
	assert.True(t, strings.HasPrefix(text, "BEGIN:VCALENDAR"))
	assert.Contains(t, text, "UID:week-1400@lifedots")
	assert.Contains(t, text, "renew passport")
}

func TestExportJSON(t *testing.T) {
	e := newExport(t)
	e.Format = format.FormatJSON
	out := &bytes.Buffer{}
	e.Out = out
	require.NoError(t, e.Do(context.Background()))

	var doc struct {
		User struct {
			BirthDate string `json:"birthDate"`
		} `json:"user"`
		Weeks []struct {
			WeekNumber int `json:"weekNumber"`
		} `json:"weeks"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "1998-10-02", doc.User.BirthDate)
	require.Len(t, doc.Weeks, 1)
	assert.Equal(t, 1400, doc.Weeks[0].WeekNumber)
}

func TestExportUnknownFormat(t *testing.T) {
	e := newExport(t)
	e.Format = "pdf"
	assert.Error(t, e.Do(context.Background()))
}
