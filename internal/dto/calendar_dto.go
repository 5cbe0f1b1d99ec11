package dto

import (
	"time"

	"github.com/google/uuid"
)

type DayRequest struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	Date    string     `json:"date" validate:"required,datetime=2006-01-02"`
	Ranking *int       `json:"ranking" validate:"required"`
}

type CreateCalendarRequest struct {
	Title        string       `json:"title" validate:"required,max=100"`
	Description  string       `json:"description"`
	Days         []DayRequest `json:"days" validate:"required,min=1,dive"`
	Participants []string     `json:"participants" validate:"omitempty,dive,required,max=150"`
}

type UpdateCalendarRequest struct {
	Title       string       `json:"title" validate:"required,max=100"`
	Description string       `json:"description"`
	Days        []DayRequest `json:"days" validate:"required,min=1,dive"`
}

type FinalizeCalendarRequest struct {
	FinalDate          string `json:"final_date" validate:"required,datetime=2006-01-02"`
	FinalTimeslotStart string `json:"final_timeslot_start" validate:"required,datetime=15:04"`
	FinalTimeslotEnd   string `json:"final_timeslot_end" validate:"required,datetime=15:04"`
}

type ParticipantResponse struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

type DayResponse struct {
	ID        uuid.UUID          `json:"id"`
	Date      string             `json:"date"`
	Ranking   int                `json:"ranking"`
	TimeSlots []TimeSlotResponse `json:"timeslots"`
}

type CalendarResponse struct {
	ID                 uuid.UUID             `json:"id"`
	CreatorID          uuid.UUID             `json:"creator_id"`
	CreatorUsername    string                `json:"creator_username"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Days               []DayResponse         `json:"days"`
	Participants       []ParticipantResponse `json:"participants"`
	IsFinalized        bool                  `json:"is_finalized"`
	FinalDate          *string               `json:"final_date"`
	FinalTimeslotStart *string               `json:"final_timeslot_start"`
	FinalTimeslotEnd   *string               `json:"final_timeslot_end"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

type CalendarListResponse struct {
	Count    int64              `json:"count"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Results  []CalendarResponse `json:"results"`
}
