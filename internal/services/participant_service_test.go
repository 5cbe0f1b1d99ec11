package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddInitial(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	cal := f.newCalendar(t, "alice", []string{"bob"}, "2026-03-02")

	added, err := f.participants.AddInitial(f.ctx, f.id("alice"), cal.ID, []string{"bob", "carol", "carol"})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, int64(2), f.count(t, &models.Participant{}, "calendar_id = ?", cal.ID))

	_, err = f.participants.AddInitial(f.ctx, f.id("bob"), cal.ID, []string{"carol"})
	assert.ErrorIs(t, err, ErrNotCreator)
}

func TestLeave_RemovesTimeSlotsAndInvitation(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	f.befriend(t, "alice", "bob")
	cal := f.newCalendar(t, "alice", []string{"carol"}, "2026-03-02")
	day := cal.Days[0].ID

	inv := f.invite(t, cal.ID, "alice", "bob")
	_, err := f.invitations.Respond(f.ctx, f.id("bob"), cal.ID, inv.ID, &dto.RespondInvitationRequest{Status: "accepted"})
	require.NoError(t, err)

	slot := &dto.CreateTimeSlotRequest{StartTime: "09:00", EndTime: "10:00"}
	_, err = f.timeslots.Create(f.ctx, f.id("bob"), cal.ID, day, slot)
	require.NoError(t, err)
	_, err = f.timeslots.Create(f.ctx, f.id("carol"), cal.ID, day, slot)
	require.NoError(t, err)

	require.NoError(t, f.participants.Leave(f.ctx, f.id("bob"), cal.ID))

	ok, err := f.participants.CanPropose(f.ctx, f.id("bob"), cal.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), f.count(t, &models.TimeSlot{}, "owner_id = ?", f.id("bob")))
	assert.Equal(t, int64(1), f.count(t, &models.TimeSlot{}, "owner_id = ?", f.id("carol")))
	assert.Equal(t, int64(0), f.count(t, &models.Invitation{}, "invitee_id = ?", f.id("bob")))

	// The accepted invitation is gone, so bob can be invited again.
	f.invite(t, cal.ID, "alice", "bob")

	err = f.participants.Leave(f.ctx, f.id("bob"), cal.ID)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestLeave_CreatorCannotLeave(t *testing.T) {
	f := newFixture(t, "alice")
	cal := f.newCalendar(t, "alice", nil, "2026-03-02")

	err := f.participants.Leave(f.ctx, f.id("alice"), cal.ID)
	assert.ErrorIs(t, err, ErrCreatorCannotLeave)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestCanPropose(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	cal := f.newCalendar(t, "alice", []string{"bob"}, "2026-03-02")

	for name, want := range map[string]bool{"alice": true, "bob": true, "carol": false} {
		ok, err := f.participants.CanPropose(f.ctx, f.id(name), cal.ID)
		require.NoError(t, err)
		assert.Equal(t, want, ok, name)
	}
}
