package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"eventcatalog/internal/clock"
	"eventcatalog/internal/domain"
)

const defaultOwnerName = "Event owner"

type invitationService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	invitationRepo domain.EventInvitationRepository
	emailService   domain.EmailService
	links          EventLinks
	clock          clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewInvitationService returns the owner-facing invitation service.
func NewInvitationService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	invitationRepo domain.EventInvitationRepository,
	emailService domain.EmailService,
	links EventLinks,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		emailService:   emailService,
		links:          links,
		clock:          clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *invitationService) ownedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
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

// SendEventInvitations stores and mails one invitation per address. Addresses
// that are malformed or fail to send are returned in failed; addresses that
// were already invited are skipped silently.
func (s *invitationService) SendEventInvitations(ctx context.Context, eventID, ownerID string, emails []string) (sent int, failed []string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, eventID, ownerID)
	if err != nil {
		return 0, nil, err
	}

	ownerName := defaultOwnerName
	owner, err := s.userRepo.GetSummaryByID(ctx, ownerID)
	if err != nil {
		s.logger.WarnContext(ctx, "owner lookup failed", "user_id", ownerID, "err", err)
	} else if name := strings.TrimSpace(owner.Name); name != "" {
		ownerName = name
	} else if owner.Email != "" {
		ownerName = owner.Email
	}

	failed = []string{}
	seen := make(map[string]struct{}, len(emails))
	for _, raw := range emails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		if !validEmail(email) {
			failed = append(failed, email)
			continue
		}

		inv := &domain.EventInvitation{
			EventID: eventID,
			Email:   email,
			SentAt:  s.clock.Now(),
		}
		if err := s.invitationRepo.Create(ctx, inv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			s.logger.ErrorContext(ctx, "store invitation failed", "event_id", eventID, "err", err)
			failed = append(failed, email)
			continue
		}
		data := &domain.EventInvitationEmailData{
			Email:      email,
			OwnerName:  ownerName,
			EventTitle: event.Title,
			StartDate:  event.StartDate,
			Location:   event.Location,
			EventURL:   s.links.EventURL(event.ID),
		}
		if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "invitation email failed", "event_id", eventID, "err", err)
			failed = append(failed, email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}

func (s *invitationService) ListEventInvitations(ctx context.Context, eventID, callerID, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, 0, err
	}
	invs, total, err := s.invitationRepo.ListByEventID(ctx, eventID, strings.TrimSpace(search), params)
	if err != nil {
		return nil, 0, fmt.Errorf("list event invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.EventInvitation{}
	}
	return invs, total, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
