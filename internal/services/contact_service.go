package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContactService owns the friendship state machine between two users.
type ContactService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

func NewContactService(db *gorm.DB, m *metrics.Metrics) *ContactService {
	return &ContactService{db: db, metrics: m}
}

// betweenPair matches the contact row of an unordered pair, whichever side
// created it. Every pair lookup goes through this scope.
func betweenPair(a, b uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("((user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?))", a, b, b, a)
	}
}

// involving matches every contact row where userID is on either side.
func involving(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user_a_id = ? OR user_b_id = ?)", userID, userID)
	}
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// findPair returns the row for the pair or nil when none exists.
func findPair(db *gorm.DB, a, b uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := forUpdate(db).Scopes(betweenPair(a, b)).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func areFriends(db *gorm.DB, a, b uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Contact{}).
		Scopes(betweenPair(a, b)).
		Where("status = ?", models.ContactFriends).
		Count(&count).Error
	return count > 0, err
}

func friendIDs(db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var contacts []models.Contact
	if err := db.Scopes(involving(userID)).Where("status = ?", models.ContactFriends).Find(&contacts).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(contacts))
	seen := make(map[uuid.UUID]bool, len(contacts))
	for i := range contacts {
		other := contacts[i].Other(userID)
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids, nil
}

// AreFriends reports whether a and b currently hold Friends status.
func (s *ContactService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return areFriends(s.db.WithContext(ctx), a, b)
}

// RequestAdd creates a pending request from self to the user named target.
func (s *ContactService) RequestAdd(ctx context.Context, self uuid.UUID, target string) (*models.Contact, error) {
	var contact *models.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		other, err := findByUsername(tx, target)
		if err != nil {
			return err
		}
		if other.ID == self {
			return ErrSelfContact
		}

		existing, err := findPair(tx, self, other.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status == models.ContactBlocked {
				return ErrContactBlocked
			}
			return ErrContactExists
		}

		contact = &models.Contact{
			UserAID: self,
			UserBID: other.ID,
			Status:  models.ContactPending,
		}
		return duplicateAs(tx.Create(contact).Error, ErrContactExists)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition("contact", string(models.ContactPending))
	return contact, nil
}

// ListFriends returns the other side of every Friends row involving self.
func (s *ContactService) ListFriends(ctx context.Context, self uuid.UUID) ([]models.User, error) {
	db := s.db.WithContext(ctx)
	ids, err := friendIDs(db, self)
	if err != nil {
		return nil, err
	}
	return usersOrdered(db, ids)
}

// ListIncoming returns users with a pending request addressed to self.
func (s *ContactService) ListIncoming(ctx context.Context, self uuid.UUID) ([]models.User, error) {
	db := s.db.WithContext(ctx)
	var ids []uuid.UUID
	if err := db.Model(&models.Contact{}).
		Where("user_b_id = ? AND status = ?", self, models.ContactPending).
		Pluck("user_a_id", &ids).Error; err != nil {
		return nil, err
	}
	return usersOrdered(db, ids)
}

// ListOutgoing returns users self has a pending request to.
func (s *ContactService) ListOutgoing(ctx context.Context, self uuid.UUID) ([]models.User, error) {
	db := s.db.WithContext(ctx)
	var ids []uuid.UUID
	if err := db.Model(&models.Contact{}).
		Where("user_a_id = ? AND status = ?", self, models.ContactPending).
		Pluck("user_b_id", &ids).Error; err != nil {
		return nil, err
	}
	return usersOrdered(db, ids)
}

func (s *ContactService) Accept(ctx context.Context, self uuid.UUID, from string) (*models.Contact, error) {
	return s.answer(ctx, self, from, models.ContactFriends)
}

func (s *ContactService) Reject(ctx context.Context, self uuid.UUID, from string) (*models.Contact, error) {
	return s.answer(ctx, self, from, models.ContactRejected)
}

// answer moves a pending request sent by from to self into status. The
// request is directional: only the recipient may answer it.
func (s *ContactService) answer(ctx context.Context, self uuid.UUID, from string, status models.ContactStatus) (*models.Contact, error) {
	var contact models.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requester, err := findByUsername(tx, from)
		if err != nil {
			return err
		}

		err = forUpdate(tx).
			Where("user_a_id = ? AND user_b_id = ? AND status = ?", requester.ID, self, models.ContactPending).
			First(&contact).Error
		if err != nil {
			return notFoundAs(err, ErrNoPendingRequest)
		}

		result := tx.Model(&models.Contact{}).
			Where("id = ? AND status = ?", contact.ID, models.ContactPending).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrContactConcurrent
		}
		contact.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition("contact", string(status))
	return &contact, nil
}

// Block marks the pair as blocked by self, creating the row when the two
// users had no relationship yet. Repeated calls leave a single blocked row.
func (s *ContactService) Block(ctx context.Context, self uuid.UUID, target string) (*models.Contact, error) {
	var contact *models.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		other, err := findByUsername(tx, target)
		if err != nil {
			return err
		}
		if other.ID == self {
			return ErrSelfBlock
		}

		contact, err = findPair(tx, self, other.ID)
		if err != nil {
			return err
		}
		if contact == nil {
			contact = &models.Contact{
				UserAID:     self,
				UserBID:     other.ID,
				Status:      models.ContactBlocked,
				BlockedByID: &self,
			}
			return duplicateAs(tx.Create(contact).Error, ErrContactConcurrent)
		}

		contact.Status = models.ContactBlocked
		contact.BlockedByID = &self
		return tx.Model(&models.Contact{}).Where("id = ?", contact.ID).Updates(map[string]interface{}{
			"status":        models.ContactBlocked,
			"blocked_by_id": self,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	slog.Info("user blocked", "action", "contact.block", "user_id", self.String(), "contact_id", contact.ID.String())
	s.metrics.ObserveTransition("contact", string(models.ContactBlocked))
	return contact, nil
}

// Unblock deletes a blocked row. Only the user holding the block may lift it.
func (s *ContactService) Unblock(ctx context.Context, self uuid.UUID, target string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		other, err := findByUsername(tx, target)
		if err != nil {
			return err
		}

		contact, err := findPair(tx, self, other.ID)
		if err != nil {
			return err
		}
		if contact == nil || contact.Status != models.ContactBlocked {
			return ErrNotBlocked
		}
		if contact.BlockedByID != nil && *contact.BlockedByID != self {
			return ErrNotBlocker
		}

		result := tx.Where("id = ? AND status = ?", contact.ID, models.ContactBlocked).Delete(&models.Contact{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrContactConcurrent
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("user unblocked", "action", "contact.unblock", "user_id", self.String())
	s.metrics.ObserveTransition("contact", "unblocked")
	return nil
}

// Unadd deletes a pending, friends or rejected row. Blocked rows need Unblock.
func (s *ContactService) Unadd(ctx context.Context, self uuid.UUID, target string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		other, err := findByUsername(tx, target)
		if err != nil {
			return err
		}

		contact, err := findPair(tx, self, other.ID)
		if err != nil {
			return err
		}
		if contact == nil {
			return ErrNoRelationship
		}
		if contact.Status == models.ContactBlocked {
			return ErrUnaddBlocked
		}

		result := tx.Where("id = ? AND status IN ?", contact.ID, []models.ContactStatus{
			models.ContactPending, models.ContactFriends, models.ContactRejected,
		}).Delete(&models.Contact{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrContactConcurrent
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.ObserveTransition("contact", "removed")
	return nil
}

func usersOrdered(db *gorm.DB, ids []uuid.UUID) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	if err := db.Where("id IN ?", ids).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
