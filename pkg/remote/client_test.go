package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lifedots/pkg/api"
	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/store"
	"tableflip.dev/lifedots/pkg/week"
)

var fixedNow = time.Date(2024, time.October, 2, 9, 0, 0, 0, time.UTC)

func newClient(t *testing.T, user string) *Client {
	t.Helper()
	clock := lifecal.ClockFunc(func() time.Time { return fixedNow })
	srv := api.New(api.Options{
		API:      &app.Service{Persistence: store.NewMemory(), Clock: clock},
		Secret:   "s3cret",
		Location: time.UTC,
		Clock:    clock,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	token := ""
	if user != "" {
		var err error
		token, err = srv.Tokens().Issue(user, time.Hour)
		require.NoError(t, err)
	}
	c, err := New(ts.URL+"/", token, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return c
}

func TestClientWeeks(t *testing.T) {
	c := newClient(t, "alex")
	ctx := context.Background()

	r, err := c.GetWeek(ctx, 12)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = c.UpsertJournalEntry(ctx, 12, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", r.Get(week.Journal))
	assert.Equal(t, "alex", r.UserID)

	r, err = c.UpdateReminders(ctx, 12, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, "hello", r.Get(week.Journal))
	assert.Equal(t, "buy milk", r.Get(week.Reminders))

	text := "rewritten"
	r, err = c.UpsertWeekData(ctx, 12, &text, nil)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", r.Get(week.Journal))
	assert.Equal(t, "buy milk", r.Get(week.Reminders))

	all, err := c.GetAllWeeks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 12, all[0].WeekNumber)
}

func TestClientUser(t *testing.T) {
	c := newClient(t, "alex")
	ctx := context.Background()

	u, err := c.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = c.UpdateBirthdate(ctx, "1998-13-40")
	require.Error(t, err)
	assert.True(t, week.IsValidation(err))
	var v *week.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "birthdate", v.Field)

	u, err = c.UpdateBirthdate(ctx, "1998-10-02")
	require.NoError(t, err)
	assert.Equal(t, "1998-10-02", u.BirthDate)

	cal, _, err := app.Calendar(ctx, c, time.UTC, time.Sunday)
	require.NoError(t, err)
	assert.Equal(t, 1357, cal.CurrentIndex(fixedNow))
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()

	anon := newClient(t, "")
	_, err := anon.GetWeek(ctx, 1)
	assert.ErrorIs(t, err, app.ErrUnauthenticated)

	c := newClient(t, "alex")
	_, err = c.GetWeek(ctx, 0)
	assert.True(t, week.IsValidation(err), "got %v", err)

	_, _, err = app.Calendar(ctx, c, time.UTC, time.Sunday)
	assert.ErrorIs(t, err, week.ErrNoBirthDate)
}

func TestDecodeServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, "")
	require.NoError(t, err)
	_, err = c.GetAllWeeks(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "boom", se.Message)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("", "")
	assert.Error(t, err)
	_, err = New("ftp://example.com", "")
	assert.Error(t, err)
}
