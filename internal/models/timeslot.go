package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TimeSlot is one participant's proposed window on a day.
type TimeSlot struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DayID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"day_id"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	StartTime datatypes.Time `gorm:"not null" json:"start_time"`
	EndTime   datatypes.Time `gorm:"not null" json:"end_time"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (TimeSlot) TableName() string {
	return "timeslots"
}

func (t *TimeSlot) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
