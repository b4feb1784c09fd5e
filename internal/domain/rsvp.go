package domain

import (
	"context"
	"strings"
	"time"
)

// RSVPStatus is the closed set of attendance intents.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "GOING"
	RSVPMaybe    RSVPStatus = "MAYBE"
	RSVPNotGoing RSVPStatus = "NOT_GOING"
)

// Valid reports whether s is a member of the enumeration.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPGoing, RSVPMaybe, RSVPNotGoing:
		return true
	}
	return false
}

// ParseRSVPStatus maps s (case-insensitive) to an RSVPStatus.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	st := RSVPStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", NewValidationError(MsgInvalidRSVPStatus)
	}
	return st, nil
}

// RSVP links one user to one event. There is at most one RSVP per (event, user).
// swagger:model RSVP
type RSVP struct {
	ID        string     `json:"id"`
	EventID   string     `json:"eventId"`
	UserID    string     `json:"userId"`
	Status    RSVPStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewRSVP creates a new RSVP. ID is typically set by the repository on upsert.
func NewRSVP(eventID, userID string, status RSVPStatus, createdAt, updatedAt time.Time) *RSVP {
	return &RSVP{
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// RSVPDetail bundles an RSVP with its event (creator and count included) and its user.
// swagger:model RSVPDetail
type RSVPDetail struct {
	RSVP
	Event EventDetail `json:"event"`
	User  UserSummary `json:"user"`
}

// RSVPRepository defines storage operations for RSVPs.
type RSVPRepository interface {
	// WithTx runs fn in a transaction; repository calls made with the ctx passed
	// to fn join it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// CountGoing counts GOING RSVPs for the event, ignoring excludeUserID.
	CountGoing(ctx context.Context, eventID, excludeUserID string) (int, error)
	// Upsert inserts or updates the RSVP keyed by (event, user). created is true
	// when a new row was inserted.
	Upsert(ctx context.Context, rsvp *RSVP) (created bool, err error)
	Delete(ctx context.Context, eventID, userID string) error
	ListByUserIDWithEvent(ctx context.Context, userID string) ([]*RSVPDetail, error)
}

// RSVPService defines attendee-facing operations.
type RSVPService interface {
	// Respond records the caller's attendance intent. Returns (rsvp, created, err).
	Respond(ctx context.Context, eventID string, caller Identity, status RSVPStatus) (*RSVP, bool, error)
	Cancel(ctx context.Context, eventID, userID string) error
	ListMyRSVPs(ctx context.Context, userID string) ([]*RSVPDetail, error)
}
