package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventcatalog/internal/delivery/http/middleware"
	"eventcatalog/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testEventID = "6f1c2b7e-3d4a-4b8e-9f10-2a3b4c5d6e7f"

var alice = domain.Identity{UserID: "user-alice", Email: "alice@example.com", Name: "Alice"}

// newRequest builds a request with an optional JSON body, caller identity and eventID path value.
func newRequest(method, target, body string, caller *domain.Identity, eventID string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if caller != nil {
		req = req.WithContext(middleware.SetIdentity(req.Context(), *caller))
	}
	if eventID != "" {
		req.SetPathValue("eventID", eventID)
	}
	return req
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Message
}

func sampleDetail(id string) *domain.EventDetail {
	start := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	return &domain.EventDetail{
		Event: domain.Event{
			ID:          id,
			Title:       "Jazz night",
			Description: "Live jazz",
			StartDate:   start,
			EndDate:     start.Add(3 * time.Hour),
			Location:    "Main hall",
			Category:    domain.CategoryConcert,
			IsPublished: true,
			CreatorID:   alice.UserID,
		},
		Creator: domain.UserSummary{ID: alice.UserID, Name: alice.Name, Email: alice.Email},
	}
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err    error
	detail *domain.EventDetail
	events []*domain.EventDetail
	total  int

	createCalled bool
	gotCreator   string
	gotCreate    domain.CreateEventInput
	gotFilter    domain.EventFilter
	gotParams    domain.PaginationParams
	gotCallerID  string
	gotUpdate    domain.UpdateEventInput
}

func (f *fakeEventService) CreateEvent(_ context.Context, creator domain.Identity, in domain.CreateEventInput) (*domain.EventDetail, error) {
	f.createCalled = true
	f.gotCreator = creator.UserID
	f.gotCreate = in
	return f.detail, f.err
}

func (f *fakeEventService) ListPublishedEvents(_ context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventDetail, int, error) {
	f.gotFilter = filter
	f.gotParams = params
	return f.events, f.total, f.err
}

func (f *fakeEventService) ListMyEvents(_ context.Context, creatorID string) ([]*domain.EventDetail, error) {
	f.gotCreator = creatorID
	return f.events, f.err
}

func (f *fakeEventService) GetEvent(_ context.Context, _ string, callerID string) (*domain.EventDetail, error) {
	f.gotCallerID = callerID
	return f.detail, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, _ string, callerID string, in domain.UpdateEventInput) (*domain.EventDetail, error) {
	f.gotCallerID = callerID
	f.gotUpdate = in
	return f.detail, f.err
}

func (f *fakeEventService) DeleteEvent(_ context.Context, _ string, callerID string) error {
	f.gotCallerID = callerID
	return f.err
}

// fakeRSVPService implements domain.RSVPService for handler tests.
type fakeRSVPService struct {
	err       error
	rsvp      *domain.RSVP
	created   bool
	rsvps     []*domain.RSVPDetail
	gotStatus domain.RSVPStatus
	gotCaller domain.Identity
	called    bool
}

func (f *fakeRSVPService) Respond(_ context.Context, _ string, caller domain.Identity, status domain.RSVPStatus) (*domain.RSVP, bool, error) {
	f.called = true
	f.gotCaller = caller
	f.gotStatus = status
	return f.rsvp, f.created, f.err
}

func (f *fakeRSVPService) Cancel(_ context.Context, _, _ string) error {
	f.called = true
	return f.err
}

func (f *fakeRSVPService) ListMyRSVPs(_ context.Context, _ string) ([]*domain.RSVPDetail, error) {
	f.called = true
	return f.rsvps, f.err
}

// fakeInvitationService implements domain.InvitationService for handler tests.
type fakeInvitationService struct {
	err         error
	sent        int
	failed      []string
	invitations []*domain.EventInvitation
	total       int
	gotEmails   []string
	gotSearch   string
	gotParams   domain.PaginationParams
}

func (f *fakeInvitationService) SendEventInvitations(_ context.Context, _, _ string, emails []string) (int, []string, error) {
	f.gotEmails = emails
	return f.sent, f.failed, f.err
}

func (f *fakeInvitationService) ListEventInvitations(_ context.Context, _, _, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	f.gotSearch = search
	f.gotParams = params
	return f.invitations, f.total, f.err
}
