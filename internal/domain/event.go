package domain

import (
	"context"
	"strings"
	"time"
)

// Category is the closed set of event categories.
type Category string

const (
	CategoryConcert      Category = "CONCERT"
	CategoryShow         Category = "SHOW"
	CategoryOpera        Category = "OPERA"
	CategoryTheater      Category = "THEATER"
	CategoryConference   Category = "CONFERENCE"
	CategoryWorkshop     Category = "WORKSHOP"
	CategoryTeambuilding Category = "TEAMBUILDING"
	CategoryBirthday     Category = "BIRTHDAY"
	CategoryWedding      Category = "WEDDING"
	CategoryCorporate    Category = "CORPORATE"
	CategoryOther        Category = "OTHER"
)

// CategoryAll is the listing filter sentinel meaning "every category".
const CategoryAll = "ALL"

var categories = []Category{
	CategoryConcert, CategoryShow, CategoryOpera, CategoryTheater, CategoryConference,
	CategoryWorkshop, CategoryTeambuilding, CategoryBirthday, CategoryWedding,
	CategoryCorporate, CategoryOther,
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is a member of the enumeration.
func (c Category) Valid() bool {
	for _, v := range categories {
		if c == v {
			return true
		}
	}
	return false
}

// NormalizeCategory upper-cases and trims s without validating it.
func NormalizeCategory(s string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(s)))
}

// ParseCategory maps s (case-insensitive, surrounding spaces ignored) to a Category.
func ParseCategory(s string) (Category, error) {
	c := NormalizeCategory(s)
	if !c.Valid() {
		return "", NewValidationError(MsgInvalidCategory)
	}
	return c, nil
}

// Event is a listed event. StartDate is always strictly before EndDate.
// swagger:model Event
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Location     string    `json:"location"`
	Category     Category  `json:"category"`
	Image        *string   `json:"image"`
	MaxAttendees *int      `json:"maxAttendees"`
	IsPrivate    bool      `json:"isPrivate"`
	IsPublished  bool      `json:"isPublished"`
	CreatorID    string    `json:"creatorId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateEventInput carries already-parsed creation fields.
type CreateEventInput struct {
	Title        string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	Location     string
	Category     Category
	Image        *string
	MaxAttendees *int
	IsPrivate    bool
	IsPublished  bool
}

// UpdateEventInput holds optional fields for a partial update; nil means unchanged.
type UpdateEventInput struct {
	Title        *string
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	Location     *string
	Category     *Category
	Image        *string
	MaxAttendees *int
	IsPrivate    *bool
	IsPublished  *bool
}

// NewEvent builds an Event owned by creatorID. A zero MaxAttendees means unlimited.
// ID is set by the repository on create.
func NewEvent(in CreateEventInput, creatorID string, now time.Time) *Event {
	capacity := in.MaxAttendees
	if capacity != nil && *capacity == 0 {
		capacity = nil
	}
	return &Event{
		Title:        in.Title,
		Description:  in.Description,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Location:     in.Location,
		Category:     in.Category,
		Image:        in.Image,
		MaxAttendees: capacity,
		IsPrivate:    in.IsPrivate,
		IsPublished:  in.IsPublished,
		CreatorID:    creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ValidateSchedule checks the time window rules: end strictly after start,
// and start not before now.
func ValidateSchedule(start, end, now time.Time) error {
	if !end.After(start) {
		return NewValidationError(MsgEndBeforeStart)
	}
	if start.Before(now) {
		return NewValidationError(MsgStartInPast)
	}
	return nil
}

// HasCapacity reports whether one more GOING attendee fits when goingOthers
// attendees (excluding the caller) are already going.
func (e *Event) HasCapacity(goingOthers int) bool {
	return e.MaxAttendees == nil || goingOthers < *e.MaxAttendees
}

// VisibleTo reports whether userID may see the event. Unpublished events are
// visible only to their creator.
func (e *Event) VisibleTo(userID string) bool {
	return e.IsPublished || (userID != "" && e.CreatorID == userID)
}

// UserSummary is the public projection of a user embedded in responses.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RSVPCount mirrors the aggregate block clients read as _count.rsvps.
type RSVPCount struct {
	RSVPs int `json:"rsvps"`
}

// EventDetail is an event joined with its creator and RSVP count.
// swagger:model EventDetail
type EventDetail struct {
	Event
	Creator UserSummary `json:"creator"`
	Count   RSVPCount   `json:"_count"`
}

// EventFilter narrows the public catalog. A nil Category means every category.
type EventFilter struct {
	Category *Category
	Search   string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetForUpdate locks the event row for the rest of the surrounding transaction.
	GetForUpdate(ctx context.Context, id string) (*Event, error)
	GetDetailByID(ctx context.Context, id string) (*EventDetail, error)
	ListPublished(ctx context.Context, filter EventFilter, params PaginationParams) ([]*EventDetail, int, error)
	ListByCreatorID(ctx context.Context, creatorID string) ([]*EventDetail, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for the event catalog.
type EventService interface {
	CreateEvent(ctx context.Context, creator Identity, in CreateEventInput) (*EventDetail, error)
	ListPublishedEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*EventDetail, int, error)
	ListMyEvents(ctx context.Context, creatorID string) ([]*EventDetail, error)
	// GetEvent returns the event if visible to callerID (which may be empty).
	GetEvent(ctx context.Context, eventID, callerID string) (*EventDetail, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, in UpdateEventInput) (*EventDetail, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
}
