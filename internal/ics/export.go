// Package ics renders a scheduling calendar as an iCalendar document.
package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//OneOnOne//Scheduling Calendar//EN"

type Person struct {
	Name  string
	Email string
}

// Calendar is the export view of a scheduling calendar. Start and End are
// only meaningful when Finalized is set.
type Calendar struct {
	ID          string
	Title       string
	Description string
	Organizer   Person
	Attendees   []Person
	Days        []time.Time
	Finalized   bool
	Start       time.Time
	End         time.Time
	Updated     time.Time
}

// Render serializes c. A finalized calendar yields a single confirmed event
// at the chosen slot; otherwise every candidate day becomes a tentative
// all-day event.
func Render(c *Calendar) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(c.Title)

	if c.Finalized {
		ev := newEvent(cal, c.ID, c)
		ev.SetStartAt(c.Start)
		ev.SetEndAt(c.End)
		ev.SetProperty(ical.ComponentPropertyStatus, "CONFIRMED")
		return cal.Serialize()
	}

	for _, day := range c.Days {
		ev := newEvent(cal, c.ID+"-"+day.Format("20060102"), c)
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetProperty(ical.ComponentPropertyStatus, "TENTATIVE")
	}
	return cal.Serialize()
}

func newEvent(cal *ical.Calendar, uid string, c *Calendar) *ical.VEvent {
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(c.Updated)
	ev.SetModifiedAt(c.Updated)
	ev.SetSummary(c.Title)
	if c.Description != "" {
		ev.SetDescription(c.Description)
	}
	if c.Organizer.Email != "" {
		ev.SetOrganizer("mailto:"+c.Organizer.Email, ical.WithCN(c.Organizer.Name))
	}
	for _, a := range c.Attendees {
		if a.Email == "" {
			continue
		}
		ev.AddAttendee(a.Email, ical.WithCN(a.Name))
	}
	return ev
}
