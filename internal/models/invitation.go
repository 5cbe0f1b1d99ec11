package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// Terminal reports whether no further status change is allowed.
func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationRejected
}

// Invitation offers a calendar seat to one invitee. The partial unique index
// keeps at most one pending or accepted invitation per (calendar, invitee);
// rejected rows are history and do not count.
type Invitation struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CalendarID uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_invitations_open,priority:1,where:status <> 'rejected'" json:"calendar_id"`
	InviteeID  uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_invitations_open,priority:2,where:status <> 'rejected'" json:"invitee_id"`
	InviterID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"inviter_id"`
	Status     InvitationStatus `gorm:"size:30;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
