package domain

import (
	"context"
	"time"
)

// EventInvitation represents an email invited to RSVP to a private event.
// swagger:model EventInvitation
type EventInvitation struct {
	ID      string    `json:"id"`
	EventID string    `json:"eventId"`
	Email   string    `json:"email"`
	SentAt  time.Time `json:"sentAt"`
}

// EventInvitationRepository defines storage operations for event invitations.
type EventInvitationRepository interface {
	// Create returns ErrDuplicate when the email is already invited to the event.
	Create(ctx context.Context, inv *EventInvitation) error
	Exists(ctx context.Context, eventID, email string) (bool, error)
	ListByEventID(ctx context.Context, eventID, search string, params PaginationParams) ([]*EventInvitation, int, error)
}

// InvitationService defines owner-facing invitation operations.
type InvitationService interface {
	SendEventInvitations(ctx context.Context, eventID, ownerID string, emails []string) (sent int, failed []string, err error)
	ListEventInvitations(ctx context.Context, eventID, callerID, search string, params PaginationParams) ([]*EventInvitation, int, error)
}
