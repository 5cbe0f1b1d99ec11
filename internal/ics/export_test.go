package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Calendar {
	return &Calendar{
		ID:          "cal-1",
		Title:       "Project sync",
		Description: "Pick a slot",
		Organizer:   Person{Name: "Alice Doe", Email: "alice@example.com"},
		Attendees: []Person{
			{Name: "bob", Email: "bob@example.com"},
			{Name: "nomail"},
		},
		Days: []time.Time{
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		Updated: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRender_CandidateDays(t *testing.T) {
	out := Render(sample())

	parsed, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	events := parsed.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "cal-1-20260302", events[0].GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "TENTATIVE", events[0].GetProperty(ical.ComponentPropertyStatus).Value)
	assert.Equal(t, "Project sync", events[1].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "20260304", events[1].GetProperty(ical.ComponentPropertyDtStart).Value)

	assert.Contains(t, out, "bob@example.com")
	assert.NotContains(t, out, "nomail")
}

func TestRender_Finalized(t *testing.T) {
	c := sample()
	c.Finalized = true
	c.Start = time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	c.End = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	out := Render(c)
	parsed, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	events := parsed.Events()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "CONFIRMED", ev.GetProperty(ical.ComponentPropertyStatus).Value)

	start, err := ev.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(c.Start))
	end, err := ev.GetEndAt()
	require.NoError(t, err)
	assert.True(t, end.Equal(c.End))

	assert.Contains(t, out, "mailto:alice@example.com")
}
