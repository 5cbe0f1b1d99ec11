package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvitationService owns the per (calendar, invitee) invitation lifecycle.
type InvitationService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

func NewInvitationService(db *gorm.DB, m *metrics.Metrics) *InvitationService {
	return &InvitationService{db: db, metrics: m}
}

// checkRespond returns why actor may not answer inv, or nil.
func checkRespond(actor uuid.UUID, inv *models.Invitation) error {
	if inv.InviteeID != actor {
		return ErrNotInvitee
	}
	if inv.Status.Terminal() {
		return ErrInvitationTerminal
	}
	return nil
}

// CanRespond reports whether actor may accept or reject inv.
func CanRespond(actor uuid.UUID, inv *models.Invitation) bool {
	return checkRespond(actor, inv) == nil
}

// CanRevoke reports whether actor may delete inv.
func CanRevoke(actor uuid.UUID, inv *models.Invitation) bool {
	return inv.InviterID == actor
}

// findInvitation loads an invitation of the calendar that actor sent or
// received. Anything else is reported as not found.
func findInvitation(db *gorm.DB, actor, calendarID, id uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	if err := db.Where("id = ? AND calendar_id = ?", id, calendarID).First(&inv).Error; err != nil {
		return nil, notFoundAs(err, ErrInvitationNotFound)
	}
	if inv.InviteeID != actor && inv.InviterID != actor {
		return nil, ErrInvitationNotFound
	}
	return &inv, nil
}

func (s *InvitationService) Create(ctx context.Context, inviter, calendarID uuid.UUID, req *dto.CreateInvitationRequest) (*dto.InvitationResponse, error) {
	var inv models.Invitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cal, err := loadCalendar(tx, calendarID)
		if err != nil {
			return err
		}
		invitee, err := findByUsername(tx, req.InviteeUsername)
		if err != nil {
			return err
		}
		if !CanEdit(inviter, cal) {
			return ErrNotCreator
		}
		if invitee.ID == inviter {
			return ErrSelfInvite
		}

		friends, err := areFriends(tx, inviter, invitee.ID)
		if err != nil {
			return err
		}
		if !friends {
			return ErrNotFriends
		}

		var open int64
		if err := tx.Model(&models.Invitation{}).
			Where("calendar_id = ? AND invitee_id = ? AND status IN ?", cal.ID, invitee.ID,
				[]models.InvitationStatus{models.InvitationPending, models.InvitationAccepted}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrInvitationExists
		}
		member, err := isParticipant(tx, cal.ID, invitee.ID)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyParticipant
		}

		inv = models.Invitation{
			CalendarID: cal.ID,
			InviteeID:  invitee.ID,
			InviterID:  inviter,
			Status:     models.InvitationPending,
		}
		return duplicateAs(tx.Create(&inv).Error, ErrInvitationExists)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("invitation sent", "action", "invitation.create", "user_id", inviter.String(), "invitation_id", inv.ID.String())
	s.metrics.ObserveTransition("invitation", string(models.InvitationPending))
	return s.present(s.db.WithContext(ctx), &inv)
}

// ListForCalendar projects every friend of the creator against the latest
// invitation they received for the calendar.
func (s *InvitationService) ListForCalendar(ctx context.Context, creator, calendarID uuid.UUID) ([]dto.FriendInvitationStatus, error) {
	db := s.db.WithContext(ctx)
	cal, err := loadCalendar(db, calendarID)
	if err != nil {
		return nil, err
	}
	if !CanEdit(creator, cal) {
		return nil, ErrNotCreator
	}

	ids, err := friendIDs(db, creator)
	if err != nil {
		return nil, err
	}
	friends, err := usersOrdered(db, ids)
	if err != nil {
		return nil, err
	}

	latest := make(map[uuid.UUID]models.Invitation, len(ids))
	if len(ids) > 0 {
		var invs []models.Invitation
		if err := db.Where("calendar_id = ? AND invitee_id IN ?", cal.ID, ids).
			Order("updated_at DESC").Order("created_at DESC").
			Find(&invs).Error; err != nil {
			return nil, err
		}
		for _, inv := range invs {
			if _, ok := latest[inv.InviteeID]; !ok {
				latest[inv.InviteeID] = inv
			}
		}
	}

	out := make([]dto.FriendInvitationStatus, 0, len(friends))
	for _, f := range friends {
		row := dto.FriendInvitationStatus{
			ID:         f.ID,
			CalendarID: cal.ID,
			Username:   f.Username,
			FirstName:  f.FirstName,
			LastName:   f.LastName,
			Email:      f.Email,
			Status:     dto.NotInvited,
		}
		if inv, ok := latest[f.ID]; ok {
			invID := inv.ID
			row.Status = string(inv.Status)
			row.InvitationID = &invID
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *InvitationService) Get(ctx context.Context, self, calendarID, id uuid.UUID) (*dto.InvitationResponse, error) {
	db := s.db.WithContext(ctx)
	inv, err := findInvitation(db, self, calendarID, id)
	if err != nil {
		return nil, err
	}
	return s.present(db, inv)
}

// Respond accepts or rejects an invitation. Acceptance creates the
// participant row in the same transaction as the status change.
func (s *InvitationService) Respond(ctx context.Context, self, calendarID, id uuid.UUID, req *dto.RespondInvitationRequest) (*dto.InvitationResponse, error) {
	status := models.InvitationStatus(req.Status)
	if status != models.InvitationAccepted && status != models.InvitationRejected {
		return nil, ErrInvalidStatus
	}

	var inv *models.Invitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = findInvitation(forUpdate(tx), self, calendarID, id)
		if err != nil {
			return err
		}
		if err := checkRespond(self, inv); err != nil {
			return err
		}

		if status == models.InvitationAccepted {
			friends, err := areFriends(tx, inv.InviterID, self)
			if err != nil {
				return err
			}
			if !friends {
				return ErrInviterNoLongerFriend
			}
		}

		result := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvitationConcurrent
		}
		inv.Status = status

		if status != models.InvitationAccepted {
			return nil
		}
		member := models.Participant{UserID: self, CalendarID: inv.CalendarID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("invitation answered", "action", "invitation.respond", "user_id", self.String(),
		"invitation_id", id.String(), "status", string(status))
	s.metrics.ObserveTransition("invitation", string(status))
	if status == models.InvitationAccepted {
		s.metrics.ObserveTransition("participant", "joined")
	}
	return s.present(s.db.WithContext(ctx), inv)
}

// Delete revokes an invitation whatever its status. Only the inviter may.
func (s *InvitationService) Delete(ctx context.Context, self, calendarID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := findInvitation(forUpdate(tx), self, calendarID, id)
		if err != nil {
			return err
		}
		if !CanRevoke(self, inv) {
			return ErrNotInviter
		}
		return tx.Where("id = ?", inv.ID).Delete(&models.Invitation{}).Error
	})
	if err != nil {
		return err
	}
	s.metrics.ObserveTransition("invitation", "deleted")
	return nil
}

// ListPending returns the invitations waiting for self to answer.
func (s *InvitationService) ListPending(ctx context.Context, self uuid.UUID) ([]dto.PendingInvitationResponse, error) {
	db := s.db.WithContext(ctx)
	var invs []models.Invitation
	if err := db.Where("invitee_id = ? AND status = ?", self, models.InvitationPending).
		Order("created_at DESC").Find(&invs).Error; err != nil {
		return nil, err
	}

	out := make([]dto.PendingInvitationResponse, 0, len(invs))
	if len(invs) == 0 {
		return out, nil
	}

	calIDs := make([]uuid.UUID, 0, len(invs))
	inviterIDs := make([]uuid.UUID, 0, len(invs))
	for _, inv := range invs {
		calIDs = append(calIDs, inv.CalendarID)
		inviterIDs = append(inviterIDs, inv.InviterID)
	}
	var cals []models.Calendar
	if err := db.Where("id IN ?", calIDs).Find(&cals).Error; err != nil {
		return nil, err
	}
	titles := make(map[uuid.UUID]string, len(cals))
	for _, c := range cals {
		titles[c.ID] = c.Title
	}
	users, err := usersByID(db, inviterIDs)
	if err != nil {
		return nil, err
	}

	for _, inv := range invs {
		out = append(out, dto.PendingInvitationResponse{
			ID:         inv.ID,
			Calendar:   titles[inv.CalendarID],
			CalendarID: inv.CalendarID,
			Inviter:    users[inv.InviterID].Username,
			Status:     string(inv.Status),
		})
	}
	return out, nil
}

func (s *InvitationService) present(db *gorm.DB, inv *models.Invitation) (*dto.InvitationResponse, error) {
	users, err := usersByID(db, []uuid.UUID{inv.InviteeID, inv.InviterID})
	if err != nil {
		return nil, err
	}
	return &dto.InvitationResponse{
		ID:         inv.ID,
		CalendarID: inv.CalendarID,
		InviteeID:  inv.InviteeID,
		Invitee:    users[inv.InviteeID].Username,
		InviterID:  inv.InviterID,
		Inviter:    users[inv.InviterID].Username,
		Status:     string(inv.Status),
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}, nil
}
