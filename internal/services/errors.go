package services

import (
	"errors"

	"gorm.io/gorm"
)

// Kind classifies a business-rule failure. Handlers map kinds to status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindNotFound
	KindPermissionDenied
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a business-rule violation. It is never retried automatically.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the Kind of err, or KindUnknown for infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var (
	ErrUsernameRequired = newError(KindInvalidArgument, "username is required")
	ErrUserNotFound     = newError(KindNotFound, "user not found")

	ErrSelfContact       = newError(KindInvalidArgument, "you cannot add yourself")
	ErrContactBlocked    = newError(KindPermissionDenied, "this contact is blocked and cannot be added")
	ErrContactExists     = newError(KindConflict, "this contact already exists")
	ErrNoPendingRequest  = newError(KindNotFound, "no pending request from this user")
	ErrSelfBlock         = newError(KindInvalidArgument, "you cannot block yourself")
	ErrNotBlocked        = newError(KindInvalidArgument, "user is not blocked")
	ErrNotBlocker        = newError(KindPermissionDenied, "only the user who blocked can unblock")
	ErrNoRelationship    = newError(KindInvalidArgument, "no existing relationship with user")
	ErrUnaddBlocked      = newError(KindInvalidArgument, "this contact is blocked, unblock it instead")
	ErrContactConcurrent = newError(KindConflict, "the relationship changed concurrently, retry the request")

	ErrCalendarNotFound   = newError(KindNotFound, "calendar not found")
	ErrNotCreator         = newError(KindPermissionDenied, "only the calendar creator can do this")
	ErrNotMember          = newError(KindPermissionDenied, "you are neither the creator nor a participant of this calendar")
	ErrCreatorCannotLeave = newError(KindPermissionDenied, "the creator cannot leave their own calendar, delete it instead")
	ErrDaysRequired       = newError(KindInvalidArgument, "days must include at least one day with date and ranking")
	ErrDuplicateRanking   = newError(KindInvalidArgument, "day rankings must be unique")
	ErrUnknownDay         = newError(KindInvalidArgument, "day does not belong to this calendar")
	ErrDuplicateDay       = newError(KindInvalidArgument, "each existing day may appear only once")
	ErrInvalidDate        = newError(KindInvalidArgument, "dates must use the YYYY-MM-DD format")
	ErrInvalidTime        = newError(KindInvalidArgument, "times must use the HH:MM format")
	ErrTimeOrder          = newError(KindInvalidArgument, "end time should be later than the start time")
	ErrFinalDateNotInDays = newError(KindInvalidArgument, "final date must be one of the calendar days")
	ErrAlreadyFinalized   = newError(KindConflict, "calendar is already finalized")
	ErrNotFinalized       = newError(KindConflict, "calendar is not finalized")

	ErrInvitationNotFound    = newError(KindNotFound, "invitation not found")
	ErrSelfInvite            = newError(KindInvalidArgument, "you cannot send an invitation to yourself")
	ErrNotFriends            = newError(KindPermissionDenied, "you can only invite users who are your friends")
	ErrInvitationExists      = newError(KindConflict, "an invitation has already been sent to that user")
	ErrAlreadyParticipant    = newError(KindConflict, "user is already a participant of this calendar")
	ErrInvalidStatus         = newError(KindInvalidArgument, "status must be accepted or rejected")
	ErrNotInvitee            = newError(KindPermissionDenied, "you do not have permission to change the status of this invitation")
	ErrInvitationTerminal    = newError(KindPermissionDenied, "this invitation has already been responded to")
	ErrNotInviter            = newError(KindPermissionDenied, "you do not have permission to delete this invitation")
	ErrInviterNoLongerFriend = newError(KindPermissionDenied, "you are no longer friends with the inviter")
	ErrInvitationConcurrent  = newError(KindConflict, "the invitation changed concurrently, retry the request")

	ErrDayNotFound      = newError(KindNotFound, "day not found")
	ErrTimeSlotNotFound = newError(KindNotFound, "time slot not found")
	ErrNotParticipant   = newError(KindPermissionDenied, "you must be a participant of the calendar to create a time slot")
	ErrNotSlotOwner     = newError(KindPermissionDenied, "you do not have permission to modify this time slot")
)

// notFoundAs maps gorm.ErrRecordNotFound to the given business error and
// passes other errors through.
func notFoundAs(err error, target *Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// duplicateAs maps a unique-constraint violation to the given business error.
func duplicateAs(err error, target *Error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return target
	}
	return err
}
