package dto

import (
	"time"

	"github.com/google/uuid"
)

type UsernameRequest struct {
	Username string `json:"username" validate:"required,max=150"`
}

type ContactResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserA     uuid.UUID  `json:"user_a"`
	UserB     uuid.UUID  `json:"user_b"`
	Status    string     `json:"status"`
	BlockedBy *uuid.UUID `json:"blocked_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
