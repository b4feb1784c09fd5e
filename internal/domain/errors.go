package domain

import "errors"

// Sentinel errors shared by services and repositories.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicate          = errors.New("duplicate")
	ErrEventFull          = errors.New("event is full")
	ErrInvitationRequired = errors.New("invitation required")
)

// Human-readable validation reasons returned to clients.
const (
	MsgMissingRequiredFields = "Missing required fields"
	MsgInvalidDate           = "Invalid date"
	MsgEndBeforeStart        = "End date must be after start date"
	MsgStartInPast           = "Start date cannot be in the past"
	MsgInvalidCategory       = "Invalid category"
	MsgInvalidMaxAttendees   = "maxAttendees must be a positive integer"
	MsgInvalidRSVPStatus     = "Invalid RSVP status"
)

// ValidationError reports malformed, missing or contradictory input.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError returns a *ValidationError with the given reason.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}
