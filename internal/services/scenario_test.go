package services

import (
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestScenario_FriendInviteAcceptPropose(t *testing.T) {
	f := newFixture(t, "a", "b", "c", "d")

	ct, err := f.contacts.RequestAdd(f.ctx, f.id("a"), "b")
	require.NoError(t, err)
	assert.Equal(t, models.ContactPending, ct.Status)
	assert.Equal(t, f.id("a"), ct.UserAID)
	ct, err = f.contacts.Accept(f.ctx, f.id("b"), "a")
	require.NoError(t, err)
	assert.Equal(t, models.ContactFriends, ct.Status)

	// The creator may only invite friends.
	cal := f.newCalendar(t, "c", nil, "2026-03-02", "2026-03-03")
	_, err = f.invitations.Create(f.ctx, f.id("c"), cal.ID, &dto.CreateInvitationRequest{InviteeUsername: "b"})
	assert.ErrorIs(t, err, ErrNotFriends)
	f.befriend(t, "c", "b")

	inv := f.invite(t, cal.ID, "c", "b")
	assert.Equal(t, string(models.InvitationPending), inv.Status)

	got, err := f.invitations.Respond(f.ctx, f.id("b"), cal.ID, inv.ID, &dto.RespondInvitationRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, string(models.InvitationAccepted), got.Status)
	assert.Equal(t, int64(1), f.count(t, &models.Participant{}, "calendar_id = ? AND user_id = ?", cal.ID, f.id("b")))

	req := &dto.CreateTimeSlotRequest{StartTime: "09:00", EndTime: "10:00"}
	_, err = f.timeslots.Create(f.ctx, f.id("b"), cal.ID, cal.Days[0].ID, req)
	require.NoError(t, err)

	_, err = f.timeslots.Create(f.ctx, f.id("d"), cal.ID, cal.Days[0].ID, req)
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestScenario_SecondInvitationAfterRejection(t *testing.T) {
	f := newFixture(t, "c", "b")
	f.befriend(t, "c", "b")
	cal := f.newCalendar(t, "c", nil, "2026-03-02")

	first := f.invite(t, cal.ID, "c", "b")
	_, err := f.invitations.Create(f.ctx, f.id("c"), cal.ID, &dto.CreateInvitationRequest{InviteeUsername: "b"})
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = f.invitations.Respond(f.ctx, f.id("b"), cal.ID, first.ID, &dto.RespondInvitationRequest{Status: "rejected"})
	require.NoError(t, err)

	_, err = f.invitations.Create(f.ctx, f.id("c"), cal.ID, &dto.CreateInvitationRequest{InviteeUsername: "b"})
	assert.NoError(t, err)
}

func TestAcceptIsAtomic(t *testing.T) {
	f := newFixture(t, "c", "b")
	f.befriend(t, "c", "b")
	cal := f.newCalendar(t, "c", nil, "2026-03-02")
	inv := f.invite(t, cal.ID, "c", "b")

	boom := errors.New("participant insert failed")
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_participant", func(tx *gorm.DB) {
		if tx.Statement.Table == "participants" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := f.invitations.Respond(f.ctx, f.id("b"), cal.ID, inv.ID, &dto.RespondInvitationRequest{Status: "accepted"})
	assert.ErrorIs(t, err, boom)

	var stored models.Invitation
	require.NoError(t, f.db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, models.InvitationPending, stored.Status)
	assert.Equal(t, int64(0), f.count(t, &models.Participant{}, "calendar_id = ?", cal.ID))
}

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			next := make([]int, 0, n)
			next = append(next, p[:i]...)
			next = append(next, n-1)
			next = append(next, p[i:]...)
			out = append(out, next)
		}
	}
	return out
}

func TestReplaceDays_RankingsStayUniqueForEveryPermutation(t *testing.T) {
	f := newFixture(t, "alice")
	dates := []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05"}
	cal := f.newCalendar(t, "alice", nil, dates...)
	ids := make([]uuid.UUID, len(cal.Days))
	for i, d := range cal.Days {
		ids[i] = d.ID
	}

	for _, perm := range permutations(len(ids)) {
		req := &dto.UpdateCalendarRequest{Title: "x"}
		for rank, idx := range perm {
			id := ids[idx]
			req.Days = append(req.Days, dto.DayRequest{ID: &id, Date: dates[idx], Ranking: intp(rank + 1)})
		}
		got, err := f.calendars.Update(f.ctx, f.id("alice"), cal.ID, req)
		require.NoError(t, err, "permutation %v", perm)

		for rank, idx := range perm {
			assert.Equal(t, ids[idx], got.Days[rank].ID)
			assert.Equal(t, rank+1, got.Days[rank].Ranking)
		}
		var distinct int64
		require.NoError(t, f.db.Model(&models.Day{}).Where("calendar_id = ?", cal.ID).
			Distinct("ranking").Count(&distinct).Error)
		assert.Equal(t, int64(len(ids)), distinct)
	}
}
