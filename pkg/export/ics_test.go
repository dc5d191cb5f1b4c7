package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lifedots/pkg/lifecal"
	"tableflip.dev/lifedots/pkg/week"
)

var (
	fixedNow = time.Date(2024, time.October, 2, 9, 0, 0, 0, time.UTC)
	birth    = time.Date(1998, time.October, 2, 0, 0, 0, 0, time.UTC)
)

func strPtr(s string) *string { return &s }

func decodeCalendar(t *testing.T, data []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	return cal
}

func TestICSWrittenWeeks(t *testing.T) {
	cal := lifecal.New(birth)
	weeks := []week.Summary{
		{WeekNumber: 1358, JournalText: strPtr("new job"), Reminders: strPtr("")},
		{WeekNumber: 1400, JournalText: nil, Reminders: strPtr("renew passport")},
		{WeekNumber: 1401, JournalText: strPtr(""), Reminders: strPtr("")},
	}

	var buf bytes.Buffer
	require.NoError(t, ICS(&buf, cal, weeks, Options{Now: fixedNow, RemindersAlarm: true}))

	out := decodeCalendar(t, buf.Bytes())
	events := out.Events()
	require.Len(t, events, 2)

	summary, err := events[0].Props.Text(propSummary)
	require.NoError(t, err)
	assert.Equal(t, "Week 1358 (year 27, week 6)", summary)

	desc, err := events[0].Props.Text(propDescription)
	require.NoError(t, err)
	assert.Equal(t, "new job", desc)

	start, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, cal.Interval(1357).Start.Equal(start), "start %s", start)
	assert.Equal(t, time.Sunday, start.Weekday())

	desc, err = events[1].Props.Text(propDescription)
	require.NoError(t, err)
	assert.Equal(t, "Reminders: renew passport", desc)
	require.Len(t, events[1].Children, 1, "future week with reminders gets an alarm")
	assert.Equal(t, compAlarm, events[1].Children[0].Name)
	assert.Empty(t, events[0].Children)
}

func TestICSEmptyWritesStub(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ICS(&buf, lifecal.New(birth), nil, Options{Now: fixedNow}))
	assert.Equal(t, stubCalendar, buf.String())
	decodeCalendar(t, buf.Bytes())
}

func TestICSBirthdays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ICS(&buf, lifecal.New(birth), nil, Options{Now: fixedNow, Birthdays: true}))

	events := decodeCalendar(t, buf.Bytes()).Events()
	require.Len(t, events, lifecal.YearsInLife)
	first, err := events[0].Props.Text(propSummary)
	require.NoError(t, err)
	assert.Equal(t, "Week of birth", first)
	last, err := events[len(events)-1].Props.Text(propSummary)
	require.NoError(t, err)
	assert.Equal(t, "Birthday week, turning 89", last)
}

func TestICSRejectsBadWeek(t *testing.T) {
	var buf bytes.Buffer
	err := ICS(&buf, lifecal.New(birth), []week.Summary{{WeekNumber: 0, JournalText: strPtr("x")}}, Options{Now: fixedNow})
	assert.True(t, week.IsValidation(err))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	u := &week.User{ID: "alex", BirthDate: "1998-10-02"}
	require.NoError(t, JSON(&buf, u, nil, fixedNow))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "1998-10-02", doc.User.BirthDate)
	assert.NotNil(t, doc.Weeks)
	assert.True(t, strings.Contains(buf.String(), `"weeks": []`))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatICS, f)
	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("csv")
	assert.Error(t, err)
}
