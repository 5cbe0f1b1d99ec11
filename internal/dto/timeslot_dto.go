package dto

import "github.com/google/uuid"

type CreateTimeSlotRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

// UpdateTimeSlotRequest is a partial update; omitted fields keep their value.
type UpdateTimeSlotRequest struct {
	StartTime *string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time" validate:"omitempty,datetime=15:04"`
}

type TimeSlotResponse struct {
	ID            uuid.UUID `json:"id"`
	DayID         uuid.UUID `json:"day_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
}
