package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParticipantService owns calendar membership. Rows are created by the
// creator at calendar creation time or by accepting an invitation.
type ParticipantService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

func NewParticipantService(db *gorm.DB, m *metrics.Metrics) *ParticipantService {
	return &ParticipantService{db: db, metrics: m}
}

// CanEdit reports whether actor may edit, finalize, delete or invite to cal.
func CanEdit(actor uuid.UUID, cal *models.Calendar) bool {
	return cal.CreatorID == actor
}

func loadCalendar(db *gorm.DB, id uuid.UUID) (*models.Calendar, error) {
	var cal models.Calendar
	if err := db.First(&cal, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, ErrCalendarNotFound)
	}
	return &cal, nil
}

func isParticipant(db *gorm.DB, calendarID, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Participant{}).
		Where("calendar_id = ? AND user_id = ?", calendarID, userID).
		Count(&count).Error
	return count > 0, err
}

// isMember is the timeslot-proposal capability: the creator or a participant.
func isMember(db *gorm.DB, cal *models.Calendar, userID uuid.UUID) (bool, error) {
	if CanEdit(userID, cal) {
		return true, nil
	}
	return isParticipant(db, cal.ID, userID)
}

// canView extends membership to users holding an open invitation, so an
// invitee can look at the calendar before answering.
func canView(db *gorm.DB, cal *models.Calendar, userID uuid.UUID) (bool, error) {
	ok, err := isMember(db, cal, userID)
	if err != nil || ok {
		return ok, err
	}
	var count int64
	err = db.Model(&models.Invitation{}).
		Where("calendar_id = ? AND invitee_id = ? AND status <> ?", cal.ID, userID, models.InvitationRejected).
		Count(&count).Error
	return count > 0, err
}

// visibleCalendar loads a calendar and hides it from users who cannot view it.
func visibleCalendar(db *gorm.DB, id, userID uuid.UUID) (*models.Calendar, error) {
	cal, err := loadCalendar(db, id)
	if err != nil {
		return nil, err
	}
	ok, err := canView(db, cal, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCalendarNotFound
	}
	return cal, nil
}

// CanPropose reports whether actor may propose timeslots on the calendar.
func (s *ParticipantService) CanPropose(ctx context.Context, actor, calendarID uuid.UUID) (bool, error) {
	db := s.db.WithContext(ctx)
	cal, err := loadCalendar(db, calendarID)
	if err != nil {
		return false, err
	}
	return isMember(db, cal, actor)
}

// AddInitial seeds the membership of a calendar with the given usernames.
func (s *ParticipantService) AddInitial(ctx context.Context, creator, calendarID uuid.UUID, usernames []string) ([]models.Participant, error) {
	var added []models.Participant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cal, err := loadCalendar(tx, calendarID)
		if err != nil {
			return err
		}
		if !CanEdit(creator, cal) {
			return ErrNotCreator
		}
		added, err = addInitial(tx, cal, usernames)
		return err
	})
	if err != nil {
		return nil, err
	}
	for range added {
		s.metrics.ObserveTransition("participant", "joined")
	}
	return added, nil
}

// addInitial resolves every username and inserts the missing participant
// rows. The creator and repeated names are skipped; an unknown name aborts.
func addInitial(tx *gorm.DB, cal *models.Calendar, usernames []string) ([]models.Participant, error) {
	seen := map[uuid.UUID]bool{cal.CreatorID: true}
	rows := make([]models.Participant, 0, len(usernames))
	for _, name := range usernames {
		user, err := findByUsername(tx, name)
		if err != nil {
			return nil, err
		}
		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		rows = append(rows, models.Participant{UserID: user.ID, CalendarID: cal.ID})
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Leave removes a non-creator from the calendar together with their
// timeslots and accepted invitation.
func (s *ParticipantService) Leave(ctx context.Context, user, calendarID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cal, err := loadCalendar(tx, calendarID)
		if err != nil {
			return err
		}
		return leaveCalendar(tx, cal, user)
	})
	if err != nil {
		return err
	}
	s.metrics.ObserveTransition("participant", "left")
	return nil
}

func leaveCalendar(tx *gorm.DB, cal *models.Calendar, user uuid.UUID) error {
	if CanEdit(user, cal) {
		return ErrCreatorCannotLeave
	}

	result := tx.Where("calendar_id = ? AND user_id = ?", cal.ID, user).Delete(&models.Participant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotMember
	}

	if err := tx.Where("owner_id = ? AND day_id IN (?)", user, daysOf(tx, cal.ID)).
		Delete(&models.TimeSlot{}).Error; err != nil {
		return err
	}
	if err := tx.Where("calendar_id = ? AND invitee_id = ? AND status = ?", cal.ID, user, models.InvitationAccepted).
		Delete(&models.Invitation{}).Error; err != nil {
		return err
	}

	slog.Info("participant left calendar", "action", "participant.leave", "user_id", user.String(), "calendar_id", cal.ID.String())
	return nil
}

// daysOf is a subquery selecting the day IDs of a calendar.
func daysOf(db *gorm.DB, calendarID uuid.UUID) *gorm.DB {
	return db.Model(&models.Day{}).Select("id").Where("calendar_id = ?", calendarID)
}
