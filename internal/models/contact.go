package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactStatus is the state of the relationship between two users.
type ContactStatus string

const (
	ContactPending  ContactStatus = "pending"
	ContactFriends  ContactStatus = "friends"
	ContactRejected ContactStatus = "rejected"
	ContactBlocked  ContactStatus = "blocked"
)

// Contact is one row per unordered pair of users. UserA is whoever created
// the row (the requester, or the blocker when no row existed); the order
// carries no meaning after that, so lookups must always check both sides.
// PairKey holds the pair in canonical order so the store rejects the mirror
// row outright.
type Contact struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserAID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_a"`
	UserBID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_b"`
	PairKey     string        `gorm:"size:73;not null;uniqueIndex" json:"-"`
	Status      ContactStatus `gorm:"size:20;not null;index" json:"status"`
	BlockedByID *uuid.UUID    `gorm:"type:uuid" json:"blocked_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.PairKey = PairKey(c.UserAID, c.UserBID)
	return nil
}

// Other returns the side of the pair that is not userID.
func (c *Contact) Other(userID uuid.UUID) uuid.UUID {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// PairKey is the order-independent identity of a pair of users.
func PairKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}
