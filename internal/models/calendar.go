package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Calendar is owned by its creator; participants propose timeslots on its
// days until the creator finalizes one date and time.
type Calendar struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title              string          `gorm:"size:100;not null" json:"title"`
	Description        string          `gorm:"type:text" json:"description"`
	IsFinalized        bool            `gorm:"default:false" json:"is_finalized"`
	FinalDate          *datatypes.Date `json:"final_date"`
	FinalTimeslotStart *datatypes.Time `json:"final_timeslot_start"`
	FinalTimeslotEnd   *datatypes.Time `json:"final_timeslot_end"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `gorm:"index" json:"updated_at"`
}

func (c *Calendar) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Day is a candidate date of a calendar. Ranking is the display order and is
// unique within the calendar.
type Day struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CalendarID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_days_calendar_ranking,priority:1" json:"calendar_id"`
	Date       datatypes.Date `gorm:"not null" json:"date"`
	Ranking    int            `gorm:"not null;uniqueIndex:idx_days_calendar_ranking,priority:2" json:"ranking"`
}

func (d *Day) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Participant is a confirmed member of a calendar.
type Participant struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participants_user_calendar,priority:1" json:"user_id"`
	CalendarID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participants_user_calendar,priority:2;index" json:"calendar_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
