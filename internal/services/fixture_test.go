package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ctx          context.Context
	db           *gorm.DB
	metrics      *metrics.Metrics
	identity     *IdentityService
	contacts     *ContactService
	participants *ParticipantService
	calendars    *CalendarService
	invitations  *InvitationService
	timeslots    *TimeSlotService
	auth         *AuthService
	users        map[string]models.User
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	m := metrics.New(prometheus.NewRegistry())
	return &fixture{
		ctx:          context.Background(),
		db:           db,
		metrics:      m,
		identity:     NewIdentityService(db),
		contacts:     NewContactService(db, m),
		participants: NewParticipantService(db, m),
		calendars:    NewCalendarService(db, cfg, m),
		invitations:  NewInvitationService(db, m),
		timeslots:    NewTimeSlotService(db),
		auth:         NewAuthService(db, cfg),
		users:        testutil.CreateUsers(t, db, names...),
	}
}

func (f *fixture) id(name string) uuid.UUID {
	return f.users[name].ID
}

func (f *fixture) befriend(t *testing.T, a, b string) {
	t.Helper()
	_, err := f.contacts.RequestAdd(f.ctx, f.id(a), b)
	require.NoError(t, err)
	_, err = f.contacts.Accept(f.ctx, f.id(b), a)
	require.NoError(t, err)
}

func intp(i int) *int { return &i }

func dayReqs(dates ...string) []dto.DayRequest {
	out := make([]dto.DayRequest, 0, len(dates))
	for i, d := range dates {
		out = append(out, dto.DayRequest{Date: d, Ranking: intp(i + 1)})
	}
	return out
}

func (f *fixture) newCalendar(t *testing.T, creator string, participants []string, dates ...string) *dto.CalendarResponse {
	t.Helper()
	cal, err := f.calendars.Create(f.ctx, f.id(creator), &dto.CreateCalendarRequest{
		Title:        "Weekly sync",
		Description:  "Pick a time",
		Days:         dayReqs(dates...),
		Participants: participants,
	})
	require.NoError(t, err)
	return cal
}

func (f *fixture) invite(t *testing.T, calendarID uuid.UUID, inviter, invitee string) *dto.InvitationResponse {
	t.Helper()
	inv, err := f.invitations.Create(f.ctx, f.id(inviter), calendarID, &dto.CreateInvitationRequest{InviteeUsername: invitee})
	require.NoError(t, err)
	return inv
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
