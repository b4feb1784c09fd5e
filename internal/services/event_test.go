package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcatalog/internal/clock"
	"eventcatalog/internal/domain"
)

const timeout = 5 * time.Second

func validCreateInput() domain.CreateEventInput {
	return domain.CreateEventInput{
		Title:       "Go Meetup",
		Description: "Talks and pizza",
		StartDate:   fixedNow.Add(24 * time.Hour),
		EndDate:     fixedNow.Add(26 * time.Hour),
		Location:    "Berlin",
		Category:    domain.CategoryConference,
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	negative := -1
	zero := 0

	tests := []struct {
		name       string
		creatorID  string
		mutate     func(in *domain.CreateEventInput)
		repoErr    error
		upsertErr  error
		wantErrIs  error
		wantReason string
		assert     func(t *testing.T, got *domain.EventDetail)
	}{
		{
			name:      "success",
			creatorID: "user-1",
			assert: func(t *testing.T, got *domain.EventDetail) {
				assert.Equal(t, "ev-1", got.ID)
				assert.Equal(t, "user-1", got.CreatorID)
				assert.Equal(t, "user-1", got.Creator.ID)
				assert.Equal(t, fixedNow, got.CreatedAt)
				assert.False(t, got.IsPublished)
			},
		},
		{
			name:      "zero capacity is unlimited",
			creatorID: "user-1",
			mutate:    func(in *domain.CreateEventInput) { in.MaxAttendees = &zero },
			assert: func(t *testing.T, got *domain.EventDetail) {
				assert.Nil(t, got.MaxAttendees)
			},
		},
		{
			name:      "no identity",
			wantErrIs: domain.ErrUnauthorized,
		},
		{
			name:       "end before start",
			creatorID:  "user-1",
			mutate:     func(in *domain.CreateEventInput) { in.EndDate = in.StartDate.Add(-time.Minute) },
			wantErrIs:  domain.ErrInvalidInput,
			wantReason: domain.MsgEndBeforeStart,
		},
		{
			name:      "start in past",
			creatorID: "user-1",
			mutate: func(in *domain.CreateEventInput) {
				in.StartDate = fixedNow.Add(-time.Hour)
				in.EndDate = fixedNow.Add(time.Hour)
			},
			wantErrIs:  domain.ErrInvalidInput,
			wantReason: domain.MsgStartInPast,
		},
		{
			name:       "unknown category",
			creatorID:  "user-1",
			mutate:     func(in *domain.CreateEventInput) { in.Category = "PARTY" },
			wantErrIs:  domain.ErrInvalidInput,
			wantReason: domain.MsgInvalidCategory,
		},
		{
			name:      "schedule is checked before category",
			creatorID: "user-1",
			mutate: func(in *domain.CreateEventInput) {
				in.Category = "PICNIC"
				in.EndDate = in.StartDate
			},
			wantErrIs:  domain.ErrInvalidInput,
			wantReason: domain.MsgEndBeforeStart,
		},
		{
			name:       "negative capacity",
			creatorID:  "user-1",
			mutate:     func(in *domain.CreateEventInput) { in.MaxAttendees = &negative },
			wantErrIs:  domain.ErrInvalidInput,
			wantReason: domain.MsgInvalidMaxAttendees,
		},
		{
			name:      "repo error",
			creatorID: "user-1",
			repoErr:   errors.New("db down"),
		},
		{
			name:      "creator upsert error",
			creatorID: "user-1",
			upsertErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			repo.createErr = tt.repoErr
			users := &fakeUserRepo{upsertErr: tt.upsertErr}
			svc := NewEventService(repo, users, clock.NewFixed(fixedNow), timeout)

			in := validCreateInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			caller := domain.Identity{}
			if tt.creatorID != "" {
				caller = identity(tt.creatorID)
			}
			got, err := svc.CreateEvent(ctx, caller, in)
			if tt.upsertErr != nil {
				require.ErrorIs(t, err, tt.upsertErr)
				assert.Empty(t, repo.byID, "event not written without its creator row")
				return
			}
			if tt.repoErr != nil {
				require.ErrorIs(t, err, tt.repoErr)
				return
			}
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				if tt.wantReason != "" {
					var vErr *domain.ValidationError
					require.ErrorAs(t, err, &vErr)
					assert.Equal(t, tt.wantReason, vErr.Reason)
				}
				assert.Empty(t, repo.byID, "nothing persisted on failure")
				assert.Empty(t, users.upserted)
				return
			}
			require.NoError(t, err)
			require.Len(t, users.upserted, 1)
			assert.Equal(t, caller, users.upserted[0])
			tt.assert(t, got)
		})
	}
}

func TestEventService_ListPublishedEvents(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	for i, pub := range []bool{true, true, false, true} {
		repo.add(&domain.Event{
			ID:          string(rune('a' + i)),
			StartDate:   fixedNow.Add(time.Duration(i) * time.Hour),
			Category:    domain.CategoryConcert,
			IsPublished: pub,
		})
	}
	svc := NewEventService(repo, &fakeUserRepo{}, clock.NewFixed(fixedNow), timeout)

	got, total, err := svc.ListPublishedEvents(ctx, domain.EventFilter{}, domain.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)

	got, _, err = svc.ListPublishedEvents(ctx, domain.EventFilter{}, domain.PaginationParams{Page: 5, PageSize: 2})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	repo.listErr = errors.New("db down")
	_, _, err = svc.ListPublishedEvents(ctx, domain.EventFilter{}, domain.PaginationParams{Page: 1, PageSize: 2})
	require.ErrorIs(t, err, repo.listErr)
}

func TestEventService_ListMyEvents(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.add(&domain.Event{ID: "ev-1", CreatorID: "user-1"})
	repo.add(&domain.Event{ID: "ev-2", CreatorID: "user-2"})
	svc := NewEventService(repo, &fakeUserRepo{}, clock.NewFixed(fixedNow), timeout)

	got, err := svc.ListMyEvents(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ev-1", got[0].ID)

	got, err = svc.ListMyEvents(ctx, "user-3")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = svc.ListMyEvents(ctx, "")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEventService_GetEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.add(&domain.Event{ID: "pub", CreatorID: "owner", IsPublished: true})
	repo.add(&domain.Event{ID: "draft", CreatorID: "owner"})
	svc := NewEventService(repo, &fakeUserRepo{}, clock.NewFixed(fixedNow), timeout)

	tests := []struct {
		name      string
		eventID   string
		callerID  string
		wantErrIs error
	}{
		{name: "published anonymous", eventID: "pub"},
		{name: "draft owner", eventID: "draft", callerID: "owner"},
		{name: "draft other", eventID: "draft", callerID: "other", wantErrIs: domain.ErrNotFound},
		{name: "draft anonymous", eventID: "draft", wantErrIs: domain.ErrNotFound},
		{name: "missing", eventID: "nope", wantErrIs: domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetEvent(ctx, tt.eventID, tt.callerID)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.eventID, got.ID)
		})
	}
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()
	later := fixedNow.Add(48 * time.Hour)
	past := fixedNow.Add(-time.Hour)
	early := fixedNow.Add(24*time.Hour + 30*time.Minute)
	title := "Renamed"
	empty := ""
	publish := true
	ten := 10
	zero := 0
	badCategory := domain.Category("PARTY")

	base := func() *domain.Event {
		capacity := 5
		return &domain.Event{
			ID:           "ev-1",
			Title:        "Go Meetup",
			StartDate:    fixedNow.Add(24 * time.Hour),
			EndDate:      fixedNow.Add(26 * time.Hour),
			Category:     domain.CategoryConference,
			MaxAttendees: &capacity,
			CreatorID:    "owner",
		}
	}

	tests := []struct {
		name       string
		callerID   string
		in         domain.UpdateEventInput
		setup      func(e *domain.Event)
		wantErrIs  error
		wantReason string
		assert     func(t *testing.T, got *domain.EventDetail)
	}{
		{
			name:     "partial update publishes",
			callerID: "owner",
			in:       domain.UpdateEventInput{Title: &title, IsPublished: &publish, MaxAttendees: &ten},
			assert: func(t *testing.T, got *domain.EventDetail) {
				assert.Equal(t, "Renamed", got.Title)
				assert.True(t, got.IsPublished)
				assert.Equal(t, 10, *got.MaxAttendees)
				assert.Equal(t, fixedNow, got.UpdatedAt)
			},
		},
		{
			name:     "zero capacity clears limit",
			callerID: "owner",
			in:       domain.UpdateEventInput{MaxAttendees: &zero},
			assert: func(t *testing.T, got *domain.EventDetail) {
				assert.Nil(t, got.MaxAttendees)
			},
		},
		{
			name:     "moving end keeps window valid",
			callerID: "owner",
			in:       domain.UpdateEventInput{EndDate: &later},
			assert: func(t *testing.T, got *domain.EventDetail) {
				assert.Equal(t, later, got.EndDate)
			},
		},
		{
			name:     "unchanged past start is accepted",
			callerID: "owner",
			setup: func(e *domain.Event) {
				e.StartDate = past
			},
			in: domain.UpdateEventInput{Title: &title},
			assert: func(t *testing.T, got *domain.EventDetail) {
				assert.Equal(t, past, got.StartDate)
			},
		},
		{
			name:       "end before merged start",
			callerID:   "owner",
			in:         domain.UpdateEventInput{StartDate: &later},
			wantErrIs:  domain.ErrInvalidInput,
			wantReason: domain.MsgEndBeforeStart,
		},
		{
			name:       "changed start in past",
			callerID:   "owner",
			in:         domain.UpdateEventInput{StartDate: &past},
			wantErrIs:  domain.ErrInvalidInput,
			wantReason: domain.MsgStartInPast,
		},
		{
			name:       "blank title",
			callerID:   "owner",
			in:         domain.UpdateEventInput{Title: &empty},
			wantErrIs:  domain.ErrInvalidInput,
			wantReason: domain.MsgMissingRequiredFields,
		},
		{
			name:       "bad category",
			callerID:   "owner",
			in:         domain.UpdateEventInput{Category: &badCategory},
			wantErrIs:  domain.ErrInvalidInput,
			wantReason: domain.MsgInvalidCategory,
		},
		{
			name:      "not the owner",
			callerID:  "other",
			in:        domain.UpdateEventInput{StartDate: &early},
			wantErrIs: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			e := base()
			if tt.setup != nil {
				tt.setup(e)
			}
			repo.add(e)
			svc := NewEventService(repo, &fakeUserRepo{}, clock.NewFixed(fixedNow), timeout)

			got, err := svc.UpdateEvent(ctx, "ev-1", tt.callerID, tt.in)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				if tt.wantReason != "" {
					var vErr *domain.ValidationError
					require.ErrorAs(t, err, &vErr)
					assert.Equal(t, tt.wantReason, vErr.Reason)
				}
				assert.Equal(t, "Go Meetup", repo.byID["ev-1"].Title, "stored event untouched")
				return
			}
			require.NoError(t, err)
			tt.assert(t, got)
		})
	}
}

func TestEventService_UpdateEvent_NotFound(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), &fakeUserRepo{}, clock.NewFixed(fixedNow), timeout)
	_, err := svc.UpdateEvent(context.Background(), "missing", "owner", domain.UpdateEventInput{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		eventID   string
		callerID  string
		wantErrIs error
	}{
		{name: "owner deletes", eventID: "ev-1", callerID: "owner"},
		{name: "not owner", eventID: "ev-1", callerID: "other", wantErrIs: domain.ErrForbidden},
		{name: "missing", eventID: "ev-9", callerID: "owner", wantErrIs: domain.ErrNotFound},
		{name: "anonymous", eventID: "ev-1", wantErrIs: domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			repo.add(&domain.Event{ID: "ev-1", CreatorID: "owner"})
			svc := NewEventService(repo, &fakeUserRepo{}, clock.NewFixed(fixedNow), timeout)

			err := svc.DeleteEvent(ctx, tt.eventID, tt.callerID)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				assert.Contains(t, repo.byID, "ev-1")
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, repo.byID, "ev-1")
		})
	}
}
