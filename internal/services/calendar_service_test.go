package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayDates(cal *dto.CalendarResponse) []string {
	out := make([]string, 0, len(cal.Days))
	for _, d := range cal.Days {
		out = append(out, d.Date)
	}
	return out
}

func TestCreateCalendar(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")

	cal := f.newCalendar(t, "alice", []string{"bob", "alice", "bob"}, "2026-03-02", "2026-03-04")
	assert.Equal(t, "alice", cal.CreatorUsername)
	assert.Equal(t, []string{"2026-03-02", "2026-03-04"}, dayDates(cal))
	require.Len(t, cal.Participants, 1)
	assert.Equal(t, "bob", cal.Participants[0].Username)
	assert.False(t, cal.IsFinalized)
	assert.Nil(t, cal.FinalDate)
	assert.NotNil(t, cal.Days[0].TimeSlots)
}

func TestCreateCalendar_Invalid(t *testing.T) {
	f := newFixture(t, "alice")

	tests := []struct {
		name string
		days []dto.DayRequest
		want error
	}{
		{"no days", nil, ErrDaysRequired},
		{"missing ranking", []dto.DayRequest{{Date: "2026-03-02"}}, ErrDaysRequired},
		{"bad date", []dto.DayRequest{{Date: "03/02/2026", Ranking: intp(1)}}, ErrInvalidDate},
		{"duplicate ranking", []dto.DayRequest{
			{Date: "2026-03-02", Ranking: intp(1)},
			{Date: "2026-03-03", Ranking: intp(1)},
		}, ErrDuplicateRanking},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.calendars.Create(f.ctx, f.id("alice"), &dto.CreateCalendarRequest{Title: "x", Days: tt.days})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, KindInvalidArgument, KindOf(err))
		})
	}

	// An unknown initial participant aborts the whole creation.
	_, err := f.calendars.Create(f.ctx, f.id("alice"), &dto.CreateCalendarRequest{
		Title: "x", Days: dayReqs("2026-03-02"), Participants: []string{"ghost"},
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, int64(0), f.count(t, &models.Calendar{}, "1 = 1"))
	assert.Equal(t, int64(0), f.count(t, &models.Day{}, "1 = 1"))
}

func TestUpdateCalendar_ReordersDays(t *testing.T) {
	f := newFixture(t, "alice")
	cal := f.newCalendar(t, "alice", nil, "2026-03-02", "2026-03-03", "2026-03-04")
	a, b, c := cal.Days[0].ID, cal.Days[1].ID, cal.Days[2].ID

	// Rotate every ranking and insert a new day at a ranking an old day held.
	got, err := f.calendars.Update(f.ctx, f.id("alice"), cal.ID, &dto.UpdateCalendarRequest{
		Title: "Renamed",
		Days: []dto.DayRequest{
			{ID: &a, Date: "2026-03-02", Ranking: intp(2)},
			{ID: &b, Date: "2026-03-10", Ranking: intp(3)},
			{ID: &c, Date: "2026-03-04", Ranking: intp(1)},
			{Date: "2026-03-05", Ranking: intp(4)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, []string{"2026-03-04", "2026-03-02", "2026-03-10", "2026-03-05"}, dayDates(got))
	assert.Equal(t, c, got.Days[0].ID)
	assert.Equal(t, b, got.Days[2].ID)

	var rankings []int
	require.NoError(t, f.db.Model(&models.Day{}).Where("calendar_id = ?", cal.ID).
		Order("ranking").Pluck("ranking", &rankings).Error)
	assert.Equal(t, []int{1, 2, 3, 4}, rankings)
}

func TestUpdateCalendar_RemovedDayDropsTimeSlots(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	cal := f.newCalendar(t, "alice", []string{"bob"}, "2026-03-02", "2026-03-03")
	keep, drop := cal.Days[0].ID, cal.Days[1].ID

	_, err := f.timeslots.Create(f.ctx, f.id("bob"), cal.ID, drop, &dto.CreateTimeSlotRequest{StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	_, err = f.timeslots.Create(f.ctx, f.id("bob"), cal.ID, keep, &dto.CreateTimeSlotRequest{StartTime: "11:00", EndTime: "12:00"})
	require.NoError(t, err)

	got, err := f.calendars.Update(f.ctx, f.id("alice"), cal.ID, &dto.UpdateCalendarRequest{
		Title: "x",
		Days:  []dto.DayRequest{{ID: &keep, Date: "2026-03-02", Ranking: intp(1)}},
	})
	require.NoError(t, err)
	require.Len(t, got.Days, 1)
	require.Len(t, got.Days[0].TimeSlots, 1)
	assert.Equal(t, "11:00", got.Days[0].TimeSlots[0].StartTime)
	assert.Equal(t, int64(0), f.count(t, &models.Day{}, "id = ?", drop))
	assert.Equal(t, int64(1), f.count(t, &models.TimeSlot{}, "1 = 1"))
}

func TestUpdateCalendar_Rejects(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	cal := f.newCalendar(t, "alice", []string{"bob"}, "2026-03-02")
	other := f.newCalendar(t, "bob", nil, "2026-03-09")
	foreign := other.Days[0].ID
	own := cal.Days[0].ID

	_, err := f.calendars.Update(f.ctx, f.id("bob"), cal.ID, &dto.UpdateCalendarRequest{Title: "x", Days: dayReqs("2026-03-02")})
	assert.ErrorIs(t, err, ErrNotCreator)

	_, err = f.calendars.Update(f.ctx, f.id("alice"), cal.ID, &dto.UpdateCalendarRequest{
		Title: "x",
		Days:  []dto.DayRequest{{ID: &foreign, Date: "2026-03-09", Ranking: intp(1)}},
	})
	assert.ErrorIs(t, err, ErrUnknownDay)

	_, err = f.calendars.Update(f.ctx, f.id("alice"), cal.ID, &dto.UpdateCalendarRequest{
		Title: "x",
		Days: []dto.DayRequest{
			{ID: &own, Date: "2026-03-02", Ranking: intp(1)},
			{ID: &own, Date: "2026-03-03", Ranking: intp(2)},
		},
	})
	assert.ErrorIs(t, err, ErrDuplicateDay)

	// The failed updates left the calendar untouched.
	got, err := f.calendars.Get(f.ctx, f.id("alice"), cal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekly sync", got.Title)
	assert.Equal(t, []string{"2026-03-02"}, dayDates(got))
}

func TestListCalendars(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	own := f.newCalendar(t, "alice", nil, "2026-03-02")
	joined := f.newCalendar(t, "bob", []string{"alice"}, "2026-03-03")
	f.newCalendar(t, "carol", nil, "2026-03-04")

	require.NoError(t, f.db.Model(&models.Calendar{}).Where("id = ?", own.ID).
		UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)

	list, err := f.calendars.List(f.ctx, f.id("alice"), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Count)
	require.Len(t, list.Results, 2)
	assert.Equal(t, joined.ID, list.Results[0].ID)
	assert.Equal(t, own.ID, list.Results[1].ID)

	list, err = f.calendars.List(f.ctx, f.id("alice"), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Count)
	assert.Empty(t, list.Results)
}

func TestGetCalendar_Visibility(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	f.befriend(t, "alice", "bob")
	cal := f.newCalendar(t, "alice", nil, "2026-03-02")

	_, err := f.calendars.Get(f.ctx, f.id("bob"), cal.ID)
	assert.ErrorIs(t, err, ErrCalendarNotFound)

	// A pending invitee may look before answering.
	f.invite(t, cal.ID, "alice", "bob")
	_, err = f.calendars.Get(f.ctx, f.id("bob"), cal.ID)
	assert.NoError(t, err)

	_, err = f.calendars.Get(f.ctx, f.id("carol"), cal.ID)
	assert.ErrorIs(t, err, ErrCalendarNotFound)
	_, err = f.calendars.Get(f.ctx, f.id("alice"), uuid.New())
	assert.ErrorIs(t, err, ErrCalendarNotFound)
}

func TestDeleteCalendar_Cascades(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	f.befriend(t, "alice", "carol")
	cal := f.newCalendar(t, "alice", []string{"bob"}, "2026-03-02")
	f.invite(t, cal.ID, "alice", "carol")
	_, err := f.timeslots.Create(f.ctx, f.id("bob"), cal.ID, cal.Days[0].ID, &dto.CreateTimeSlotRequest{StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	_, err = f.calendars.Delete(f.ctx, f.id("carol"), cal.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	left, err := f.calendars.Delete(f.ctx, f.id("alice"), cal.ID)
	require.NoError(t, err)
	assert.False(t, left)

	for _, model := range []interface{}{&models.Calendar{}, &models.Day{}, &models.Participant{}, &models.Invitation{}, &models.TimeSlot{}} {
		assert.Equal(t, int64(0), f.count(t, model, "1 = 1"))
	}

	_, err = f.calendars.Delete(f.ctx, f.id("alice"), cal.ID)
	assert.ErrorIs(t, err, ErrCalendarNotFound)
}

func TestDeleteCalendar_ParticipantLeaves(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	cal := f.newCalendar(t, "alice", []string{"bob"}, "2026-03-02")

	left, err := f.calendars.Delete(f.ctx, f.id("bob"), cal.ID)
	require.NoError(t, err)
	assert.True(t, left)
	assert.Equal(t, int64(1), f.count(t, &models.Calendar{}, "id = ?", cal.ID))
	assert.Equal(t, int64(0), f.count(t, &models.Participant{}, "calendar_id = ?", cal.ID))
}

func TestFinalizeCalendar(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	cal := f.newCalendar(t, "alice", []string{"bob"}, "2026-03-02", "2026-03-04")

	req := &dto.FinalizeCalendarRequest{FinalDate: "2026-03-04", FinalTimeslotStart: "09:30", FinalTimeslotEnd: "10:00"}

	_, err := f.calendars.Finalize(f.ctx, f.id("bob"), cal.ID, req)
	assert.ErrorIs(t, err, ErrNotCreator)

	_, err = f.calendars.Finalize(f.ctx, f.id("alice"), cal.ID, &dto.FinalizeCalendarRequest{
		FinalDate: "2026-03-05", FinalTimeslotStart: "09:30", FinalTimeslotEnd: "10:00",
	})
	assert.ErrorIs(t, err, ErrFinalDateNotInDays)

	_, err = f.calendars.Finalize(f.ctx, f.id("alice"), cal.ID, &dto.FinalizeCalendarRequest{
		FinalDate: "2026-03-04", FinalTimeslotStart: "11:00", FinalTimeslotEnd: "10:00",
	})
	assert.ErrorIs(t, err, ErrTimeOrder)

	got, err := f.calendars.Finalize(f.ctx, f.id("alice"), cal.ID, req)
	require.NoError(t, err)
	assert.True(t, got.IsFinalized)
	require.NotNil(t, got.FinalDate)
	assert.Equal(t, "2026-03-04", *got.FinalDate)
	assert.Equal(t, "09:30", *got.FinalTimeslotStart)
	assert.Equal(t, "10:00", *got.FinalTimeslotEnd)

	_, err = f.calendars.Finalize(f.ctx, f.id("alice"), cal.ID, req)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestExportCalendar(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	cal := f.newCalendar(t, "alice", []string{"bob"}, "2026-03-04", "2026-03-02")

	out, err := f.calendars.Export(f.ctx, f.id("bob"), cal.ID)
	require.NoError(t, err)
	assert.False(t, out.Finalized)
	assert.Equal(t, "alice@example.com", out.Organizer.Email)
	require.Len(t, out.Attendees, 1)
	assert.Equal(t, "bob@example.com", out.Attendees[0].Email)
	require.Len(t, out.Days, 2)
	assert.Equal(t, "2026-03-04", out.Days[0].Format("2006-01-02"))

	_, err = f.calendars.Finalize(f.ctx, f.id("alice"), cal.ID, &dto.FinalizeCalendarRequest{
		FinalDate: "2026-03-02", FinalTimeslotStart: "14:00", FinalTimeslotEnd: "15:30",
	})
	require.NoError(t, err)

	out, err = f.calendars.Export(f.ctx, f.id("alice"), cal.ID)
	require.NoError(t, err)
	assert.True(t, out.Finalized)
	assert.True(t, out.Start.Equal(time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)))
	assert.True(t, out.End.Equal(time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)))
}
