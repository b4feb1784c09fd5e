package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventcatalog/internal/clock"
	"eventcatalog/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	clock          clock.Clock
	contextTimeout time.Duration
}

// NewEventService returns the event catalog service. Every call runs under timeout.
func NewEventService(eventRepo domain.EventRepository, userRepo domain.UserRepository, clk clock.Clock, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		clock:          clk,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, creator domain.Identity, in domain.CreateEventInput) (*domain.EventDetail, error) {
	if creator.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.clock.Now()
	if err := domain.ValidateSchedule(in.StartDate, in.EndDate, now); err != nil {
		return nil, err
	}
	if !in.Category.Valid() {
		return nil, domain.NewValidationError(domain.MsgInvalidCategory)
	}
	if in.MaxAttendees != nil && *in.MaxAttendees < 0 {
		return nil, domain.NewValidationError(domain.MsgInvalidMaxAttendees)
	}

	if err := s.userRepo.Upsert(ctx, creator); err != nil {
		return nil, fmt.Errorf("upsert creator: %w", err)
	}
	event := domain.NewEvent(in, creator.UserID, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	detail, err := s.eventRepo.GetDetailByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("get created event: %w", err)
	}
	return detail, nil
}

func (s *eventService) ListPublishedEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventDetail, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListPublished(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list published events: %w", err)
	}
	if events == nil {
		events = []*domain.EventDetail{}
	}
	return events, total, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, creatorID string) ([]*domain.EventDetail, error) {
	if creatorID == "" {
		return nil, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list events by creator: %w", err)
	}
	if events == nil {
		events = []*domain.EventDetail{}
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	detail, err := s.eventRepo.GetDetailByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !detail.VisibleTo(callerID) {
		return nil, domain.ErrNotFound
	}
	return detail, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, in domain.UpdateEventInput) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	startChanged := in.StartDate != nil && !in.StartDate.Equal(event.StartDate)
	if err := applyEventUpdate(event, in); err != nil {
		return nil, err
	}
	if !event.EndDate.After(event.StartDate) {
		return nil, domain.NewValidationError(domain.MsgEndBeforeStart)
	}
	if startChanged && event.StartDate.Before(now) {
		return nil, domain.NewValidationError(domain.MsgStartInPast)
	}
	event.UpdatedAt = now

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	detail, err := s.eventRepo.GetDetailByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get updated event: %w", err)
	}
	return detail, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ownedEvent loads the event and checks callerID is its creator.
func (s *eventService) ownedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func applyEventUpdate(e *domain.Event, in domain.UpdateEventInput) error {
	if in.Title != nil {
		if *in.Title == "" {
			return domain.NewValidationError(domain.MsgMissingRequiredFields)
		}
		e.Title = *in.Title
	}
	if in.Description != nil {
		if *in.Description == "" {
			return domain.NewValidationError(domain.MsgMissingRequiredFields)
		}
		e.Description = *in.Description
	}
	if in.Location != nil {
		if *in.Location == "" {
			return domain.NewValidationError(domain.MsgMissingRequiredFields)
		}
		e.Location = *in.Location
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return domain.NewValidationError(domain.MsgInvalidCategory)
		}
		e.Category = *in.Category
	}
	if in.StartDate != nil {
		e.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		e.EndDate = *in.EndDate
	}
	if in.Image != nil {
		if *in.Image == "" {
			e.Image = nil
		} else {
			img := *in.Image
			e.Image = &img
		}
	}
	if in.MaxAttendees != nil {
		switch n := *in.MaxAttendees; {
		case n < 0:
			return domain.NewValidationError(domain.MsgInvalidMaxAttendees)
		case n == 0:
			e.MaxAttendees = nil
		default:
			e.MaxAttendees = &n
		}
	}
	if in.IsPrivate != nil {
		e.IsPrivate = *in.IsPrivate
	}
	if in.IsPublished != nil {
		e.IsPublished = *in.IsPublished
	}
	return nil
}
