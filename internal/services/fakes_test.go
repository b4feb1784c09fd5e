package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"eventcatalog/internal/domain"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	listErr   error
	lockCalls int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	f.lockCalls++
	return f.GetByID(ctx, id)
}

func (f *fakeEventRepo) GetDetailByID(ctx context.Context, id string) (*domain.EventDetail, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.EventDetail{Event: *e, Creator: domain.UserSummary{ID: e.CreatorID}}, nil
}

func (f *fakeEventRepo) ListPublished(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventDetail, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var all []*domain.EventDetail
	for _, e := range f.byID {
		if e.IsPublished && (filter.Category == nil || e.Category == *filter.Category) {
			all = append(all, &domain.EventDetail{Event: *e})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartDate.Before(all[j].StartDate) })
	total := len(all)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	return all[start:end], total, nil
}

func (f *fakeEventRepo) ListByCreatorID(ctx context.Context, creatorID string) ([]*domain.EventDetail, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.EventDetail
	for _, e := range f.byID {
		if e.CreatorID == creatorID {
			out = append(out, &domain.EventDetail{Event: *e})
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type rsvpKey struct{ eventID, userID string }

// fakeRSVPRepo is an in-memory RSVPRepository. WithTx discards writes made by
// a failing fn.
type fakeRSVPRepo struct {
	rows    map[rsvpKey]*domain.RSVP
	nextID  int
	txCalls int
	listErr error
	details []*domain.RSVPDetail
}

func newFakeRSVPRepo() *fakeRSVPRepo {
	return &fakeRSVPRepo{rows: make(map[rsvpKey]*domain.RSVP), nextID: 1}
}

func (f *fakeRSVPRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txCalls++
	snapshot := make(map[rsvpKey]*domain.RSVP, len(f.rows))
	for k, v := range f.rows {
		snapshot[k] = v
	}
	if err := fn(ctx); err != nil {
		f.rows = snapshot
		return err
	}
	return nil
}

func (f *fakeRSVPRepo) CountGoing(ctx context.Context, eventID, excludeUserID string) (int, error) {
	n := 0
	for k, r := range f.rows {
		if k.eventID == eventID && k.userID != excludeUserID && r.Status == domain.RSVPGoing {
			n++
		}
	}
	return n, nil
}

func (f *fakeRSVPRepo) Upsert(ctx context.Context, rsvp *domain.RSVP) (bool, error) {
	key := rsvpKey{rsvp.EventID, rsvp.UserID}
	if existing, ok := f.rows[key]; ok {
		rsvp.ID = existing.ID
		rsvp.CreatedAt = existing.CreatedAt
		cp := *rsvp
		f.rows[key] = &cp
		return false, nil
	}
	rsvp.ID = fmt.Sprintf("rsvp-%d", f.nextID)
	f.nextID++
	cp := *rsvp
	f.rows[key] = &cp
	return true, nil
}

func (f *fakeRSVPRepo) Delete(ctx context.Context, eventID, userID string) error {
	key := rsvpKey{eventID, userID}
	if _, ok := f.rows[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, key)
	return nil
}

func (f *fakeRSVPRepo) ListByUserIDWithEvent(ctx context.Context, userID string) ([]*domain.RSVPDetail, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.RSVPDetail
	for _, d := range f.details {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeInvitationRepo is an in-memory EventInvitationRepository.
type fakeInvitationRepo struct {
	byEvent   map[string][]*domain.EventInvitation
	createErr map[string]error
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{
		byEvent:   make(map[string][]*domain.EventInvitation),
		createErr: make(map[string]error),
	}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.EventInvitation) error {
	if err := f.createErr[inv.Email]; err != nil {
		return err
	}
	for _, existing := range f.byEvent[inv.EventID] {
		if existing.Email == inv.Email {
			return domain.ErrDuplicate
		}
	}
	inv.ID = fmt.Sprintf("inv-%d", len(f.byEvent[inv.EventID])+1)
	f.byEvent[inv.EventID] = append(f.byEvent[inv.EventID], inv)
	return nil
}

func (f *fakeInvitationRepo) Exists(ctx context.Context, eventID, email string) (bool, error) {
	for _, inv := range f.byEvent[eventID] {
		if inv.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	all := f.byEvent[eventID]
	total := len(all)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	return all[start:end], total, nil
}

// fakeUserRepo serves user summaries by ID and records upserted identities.
type fakeUserRepo struct {
	byID      map[string]*domain.UserSummary
	upserted  []domain.Identity
	upsertErr error
}

func (f *fakeUserRepo) Upsert(ctx context.Context, id domain.Identity) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, id)
	return nil
}

func (f *fakeUserRepo) GetSummaryByID(ctx context.Context, id string) (*domain.UserSummary, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

// fakeEmailService records sent e-mails and fails for addresses in failFor.
type fakeEmailService struct {
	invitations   []*domain.EventInvitationEmailData
	confirmations []*domain.RSVPConfirmationEmailData
	failFor       map[string]bool
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{failFor: make(map[string]bool)}
}

func (f *fakeEmailService) SendEventInvitation(ctx context.Context, data *domain.EventInvitationEmailData) error {
	if f.failFor[data.Email] {
		return errors.New("mail provider rejected message")
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeEmailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPConfirmationEmailData) error {
	if f.failFor[data.Email] {
		return errors.New("mail provider rejected message")
	}
	f.confirmations = append(f.confirmations, data)
	return nil
}
