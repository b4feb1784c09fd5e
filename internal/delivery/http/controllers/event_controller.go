package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventcatalog/internal/delivery/http/helpers"
	"eventcatalog/internal/delivery/http/middleware"
	"eventcatalog/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
// Dates accept RFC 3339 or the HTML datetime-local format (read as UTC).
type CreateEventRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Location     string  `json:"location"`
	Category     string  `json:"category"`
	Image        *string `json:"image"`
	MaxAttendees *int    `json:"maxAttendees"`
	IsPrivate    *bool   `json:"isPrivate"`
	IsPublished  *bool   `json:"isPublished"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	for _, v := range []string{c.Title, c.Description, c.StartDate, c.EndDate, c.Location, c.Category} {
		if strings.TrimSpace(v) == "" {
			return []string{domain.MsgMissingRequiredFields}
		}
	}
	return nil
}

func (c CreateEventRequest) toInput() (domain.CreateEventInput, error) {
	start, err := parseEventTime(c.StartDate)
	if err != nil {
		return domain.CreateEventInput{}, err
	}
	end, err := parseEventTime(c.EndDate)
	if err != nil {
		return domain.CreateEventInput{}, err
	}
	// The category is validated by the service once the schedule checks pass.
	in := domain.CreateEventInput{
		Title:        strings.TrimSpace(c.Title),
		Description:  strings.TrimSpace(c.Description),
		StartDate:    start,
		EndDate:      end,
		Location:     strings.TrimSpace(c.Location),
		Category:     domain.NormalizeCategory(c.Category),
		MaxAttendees: c.MaxAttendees,
		IsPrivate:    c.IsPrivate != nil && *c.IsPrivate,
		IsPublished:  c.IsPublished != nil && *c.IsPublished,
	}
	if c.Image != nil {
		if img := strings.TrimSpace(*c.Image); img != "" {
			in.Image = &img
		}
	}
	return in, nil
}

// CreatedEvent is the event returned by POST /events. It carries an empty rsvps list.
type CreatedEvent struct {
	*domain.EventDetail
	RSVPs []domain.RSVP `json:"rsvps"`
}

// CreateEventResponse is the response body for POST /events (201).
type CreateEventResponse struct {
	Message string       `json:"message"`
	Event   CreatedEvent `json:"event"`
}

// EventsResponse is the response body for GET /events/my-events.
type EventsResponse struct {
	Events []*domain.EventDetail `json:"events"`
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Events     []*domain.EventDetail  `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// EventResponse is the response body for GET /events/{eventID}.
type EventResponse struct {
	Event *domain.EventDetail `json:"event"`
}

// UpdateEventResponse is the response body for PATCH /events/{eventID}.
type UpdateEventResponse struct {
	Message string              `json:"message"`
	Event   *domain.EventDetail `json:"event"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event owned by the caller. title, description, startDate, endDate, location and category are required. maxAttendees 0 or absent means unlimited.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventResponse
// @Failure 400 {object} helpers.MessageResponse "validation failure"
// @Failure 401 {object} helpers.MessageResponse "Unauthorized"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), caller, in)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, CreateEventResponse{
		Message: "Event created successfully",
		Event:   CreatedEvent{EventDetail: event, RSVPs: []domain.RSVP{}},
	})
}

// ListEvents godoc
// @Summary List published events
// @Description Public catalog ordered by start date. search matches title, description or location (case-insensitive). category ALL or empty disables the filter.
// @Tags events
// @Produce json
// @Param category query string false "Category or ALL"
// @Param search query string false "Search text"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 12, max 100)"
// @Success 200 {object} controllers.ListEventsResponse
// @Failure 400 {object} helpers.MessageResponse "Invalid category"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter domain.EventFilter
	if raw := strings.TrimSpace(q.Get("category")); raw != "" && !strings.EqualFold(raw, domain.CategoryAll) {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
			return
		}
		filter.Category = &category
	}
	filter.Search = strings.TrimSpace(q.Get("search"))
	params := helpers.ParsePagination(r)

	events, total, err := c.Service.ListPublishedEvents(r.Context(), filter, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params, total),
	})
}

// ListMyEvents godoc
// @Summary List my events
// @Description Every event created by the caller, published or not, ordered by start date.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventsResponse
// @Failure 401 {object} helpers.MessageResponse "Unauthorized"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events/my-events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, EventsResponse{Events: events})
}

// GetEvent godoc
// @Summary Get an event
// @Description Published events are public. Unpublished events are visible to their creator only.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventResponse
// @Failure 400 {object} helpers.MessageResponse "Invalid event ID"
// @Failure 404 {object} helpers.MessageResponse "Event not found"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	callerID, _ := middleware.UserIDFromContext(r.Context())
	event, err := c.Service.GetEvent(r.Context(), eventID, callerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, EventResponse{Event: event})
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. Omitted fields are unchanged.
// An empty image clears it; maxAttendees 0 removes the limit.
type UpdateEventRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	Location     *string `json:"location"`
	Category     *string `json:"category"`
	Image        *string `json:"image"`
	MaxAttendees *int    `json:"maxAttendees"`
	IsPrivate    *bool   `json:"isPrivate"`
	IsPublished  *bool   `json:"isPublished"`
}

func (u UpdateEventRequest) toInput() (domain.UpdateEventInput, error) {
	in := domain.UpdateEventInput{
		Title:        trimmed(u.Title),
		Description:  trimmed(u.Description),
		Location:     trimmed(u.Location),
		Image:        trimmed(u.Image),
		MaxAttendees: u.MaxAttendees,
		IsPrivate:    u.IsPrivate,
		IsPublished:  u.IsPublished,
	}
	if u.StartDate != nil {
		t, err := parseEventTime(*u.StartDate)
		if err != nil {
			return in, err
		}
		in.StartDate = &t
	}
	if u.EndDate != nil {
		t, err := parseEventTime(*u.EndDate)
		if err != nil {
			return in, err
		}
		in.EndDate = &t
	}
	if u.Category != nil {
		category, err := domain.ParseCategory(*u.Category)
		if err != nil {
			return in, err
		}
		in.Category = &category
	}
	return in, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Owner only. The merged start and end must keep start before end; a moved start must not be in the past. Set isPublished to publish.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to update"
// @Success 200 {object} controllers.UpdateEventResponse
// @Failure 400 {object} helpers.MessageResponse "validation failure"
// @Failure 401 {object} helpers.MessageResponse "Unauthorized"
// @Failure 403 {object} helpers.MessageResponse "Forbidden"
// @Failure 404 {object} helpers.MessageResponse "Event not found"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, caller.UserID, in)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, UpdateEventResponse{Message: "Event updated successfully", Event: event})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Owner only. Removes the event with its RSVPs and invitations.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.MessageResponse "Event deleted successfully"
// @Failure 400 {object} helpers.MessageResponse "Invalid event ID"
// @Failure 401 {object} helpers.MessageResponse "Unauthorized"
// @Failure 403 {object} helpers.MessageResponse "Forbidden"
// @Failure 404 {object} helpers.MessageResponse "Event not found"
// @Failure 500 {object} helpers.MessageResponse "Internal server error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, caller.UserID); err != nil {
		writeServiceError(c.Logger, w, r, err, helpers.MsgEventNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.MessageResponse{Message: "Event deleted successfully"})
}
