package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventcatalog/internal/clock"
	"eventcatalog/internal/domain"
)

type rsvpService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	invitationRepo domain.EventInvitationRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	links          EventLinks
	clock          clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRSVPService returns the attendee-facing RSVP service.
func NewRSVPService(
	eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	invitationRepo domain.EventInvitationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	links EventLinks,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RSVPService {
	return &rsvpService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		links:          links,
		clock:          clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// Respond upserts the caller's RSVP. Visibility, invitation and capacity are
// checked while the event row is locked, so concurrent GOING responses cannot
// overfill the event.
func (s *rsvpService) Respond(ctx context.Context, eventID string, caller domain.Identity, status domain.RSVPStatus) (*domain.RSVP, bool, error) {
	if caller.UserID == "" {
		return nil, false, domain.ErrUnauthorized
	}
	if !status.Valid() {
		return nil, false, domain.NewValidationError(domain.MsgInvalidRSVPStatus)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		event   *domain.Event
		rsvp    *domain.RSVP
		created bool
	)
	err := s.rsvpRepo.WithTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.eventRepo.GetForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if !event.VisibleTo(caller.UserID) {
			return domain.ErrNotFound
		}
		if event.IsPrivate && event.CreatorID != caller.UserID {
			invited, err := s.invitationRepo.Exists(ctx, eventID, caller.NormalizedEmail())
			if err != nil {
				return fmt.Errorf("check invitation: %w", err)
			}
			if !invited {
				return domain.ErrInvitationRequired
			}
		}
		if status == domain.RSVPGoing && event.MaxAttendees != nil {
			going, err := s.rsvpRepo.CountGoing(ctx, eventID, caller.UserID)
			if err != nil {
				return fmt.Errorf("count going: %w", err)
			}
			if !event.HasCapacity(going) {
				return domain.ErrEventFull
			}
		}

		if err := s.userRepo.Upsert(ctx, caller); err != nil {
			return fmt.Errorf("upsert attendee: %w", err)
		}
		now := s.clock.Now()
		rsvp = domain.NewRSVP(eventID, caller.UserID, status, now, now)
		created, err = s.rsvpRepo.Upsert(ctx, rsvp)
		if err != nil {
			return fmt.Errorf("upsert rsvp: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if status == domain.RSVPGoing && caller.Email != "" {
		s.sendConfirmation(ctx, event, caller)
	}
	return rsvp, created, nil
}

func (s *rsvpService) sendConfirmation(ctx context.Context, event *domain.Event, caller domain.Identity) {
	data := &domain.RSVPConfirmationEmailData{
		Email:      caller.NormalizedEmail(),
		Name:       caller.Name,
		EventTitle: event.Title,
		StartDate:  event.StartDate,
		Location:   event.Location,
		EventURL:   s.links.EventURL(event.ID),
	}
	if err := s.emailService.SendRSVPConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "rsvp confirmation not sent", "event_id", event.ID, "user_id", caller.UserID, "err", err)
	}
}

func (s *rsvpService) Cancel(ctx context.Context, eventID, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.rsvpRepo.Delete(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete rsvp: %w", err)
	}
	return nil
}

func (s *rsvpService) ListMyRSVPs(ctx context.Context, userID string) ([]*domain.RSVPDetail, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rsvps, err := s.rsvpRepo.ListByUserIDWithEvent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	if rsvps == nil {
		rsvps = []*domain.RSVPDetail{}
	}
	return rsvps, nil
}
