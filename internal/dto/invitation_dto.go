package dto

import (
	"time"

	"github.com/google/uuid"
)

// NotInvited is reported in the friend projection for friends who never
// received an invitation to the calendar.
const NotInvited = "notInvited"

type CreateInvitationRequest struct {
	InviteeUsername string `json:"invitee_username" validate:"required,max=150"`
}

type RespondInvitationRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

type InvitationResponse struct {
	ID         uuid.UUID `json:"id"`
	CalendarID uuid.UUID `json:"calendar_id"`
	InviteeID  uuid.UUID `json:"invitee_id"`
	Invitee    string    `json:"invitee"`
	InviterID  uuid.UUID `json:"inviter_id"`
	Inviter    string    `json:"inviter"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FriendInvitationStatus is one row of a calendar's invitation projection:
// a friend of the creator and the state of their latest invitation.
type FriendInvitationStatus struct {
	ID           uuid.UUID  `json:"id"`
	CalendarID   uuid.UUID  `json:"calendar_id"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Status       string     `json:"status"`
	InvitationID *uuid.UUID `json:"invitation_id"`
}

type PendingInvitationResponse struct {
	ID         uuid.UUID `json:"id"`
	Calendar   string    `json:"calendar"`
	CalendarID uuid.UUID `json:"calendar_id"`
	Inviter    string    `json:"inviter"`
	Status     string    `json:"status"`
}
