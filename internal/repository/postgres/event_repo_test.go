package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventcatalog/internal/domain"
)

var detailColumns = []string{
	"id", "title", "description", "start_date", "end_date", "location", "category",
	"image", "max_attendees", "is_private", "is_published", "creator_id", "created_at", "updated_at",
	"creator_name", "creator_email", "rsvp_count",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, DriverName), mock
}

func addDetailRow(rows *sqlmock.Rows, id, title string, start time.Time, count int64) *sqlmock.Rows {
	return rows.AddRow(
		id, title, "desc", start, start.Add(2*time.Hour), "Berlin", "CONFERENCE",
		nil, int64(50), false, true, "user-1", start.Add(-48*time.Hour), start.Add(-48*time.Hour),
		"Alice", "alice@example.com", count,
	)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	capacity := 40

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(title, description, start_date, end_date, location, category, image,`).
					WithArgs("Go Meetup", "Talks", now.Add(24*time.Hour), now.Add(26*time.Hour), "Berlin", "CONFERENCE",
						nil, int64(40), false, true, "user-1", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
			},
			wantID: "ev-1",
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.mock(mock)

			e := &domain.Event{
				Title:        "Go Meetup",
				Description:  "Talks",
				StartDate:    now.Add(24 * time.Hour),
				EndDate:      now.Add(26 * time.Hour),
				Location:     "Berlin",
				Category:     domain.CategoryConference,
				MaxAttendees: &capacity,
				IsPublished:  true,
				CreatorID:    "user-1",
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			err := NewEventRepository(db).Create(ctx, e)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, e.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetDetailByID(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		errIs   error
		wantErr bool
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events e\s+LEFT JOIN users u ON u.id = e.creator_id\s+WHERE e.id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(addDetailRow(sqlmock.NewRows(detailColumns), "ev-1", "Go Meetup", start, 3))
			},
		},
		{
			name: "no rows",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events e`).WithArgs("ev-1").WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name: "malformed id",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events e`).WithArgs("ev-1").WillReturnError(&pq.Error{Code: "22P02"})
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.mock(mock)

			got, err := NewEventRepository(db).GetDetailByID(ctx, "ev-1")
			if tt.wantErr {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "ev-1", got.ID)
			require.Equal(t, "Alice", got.Creator.Name)
			require.Equal(t, "user-1", got.Creator.ID)
			require.Equal(t, 3, got.Count.RSVPs)
			require.NotNil(t, got.MaxAttendees)
			require.Equal(t, 50, *got.MaxAttendees)
			require.Nil(t, got.Image)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListPublished(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	concert := domain.CategoryConcert

	tests := []struct {
		name      string
		filter    domain.EventFilter
		params    domain.PaginationParams
		mock      func(mock sqlmock.Sqlmock)
		wantTotal int
		wantLen   int
	}{
		{
			name:   "no filter",
			params: domain.PaginationParams{Page: 1, PageSize: 12},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events e WHERE e.is_published = TRUE$`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
				rows := sqlmock.NewRows(detailColumns)
				addDetailRow(rows, "ev-1", "First", start, 0)
				addDetailRow(rows, "ev-2", "Second", start.Add(time.Hour), 1)
				mock.ExpectQuery(`WHERE e.is_published = TRUE\s+ORDER BY e.start_date ASC, e.seq ASC\s+LIMIT \$1 OFFSET \$2`).
					WithArgs(12, 0).
					WillReturnRows(rows)
			},
			wantTotal: 2,
			wantLen:   2,
		},
		{
			name:   "category and escaped search",
			filter: domain.EventFilter{Category: &concert, Search: "50%_off"},
			params: domain.PaginationParams{Page: 3, PageSize: 5},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events e WHERE e.is_published = TRUE AND e.category = \$1 AND \(e.title ILIKE \$2`).
					WithArgs("CONCERT", `%50\%\_off%`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
				rows := sqlmock.NewRows(detailColumns)
				addDetailRow(rows, "ev-9", "Sale", start, 0)
				mock.ExpectQuery(`e.location ILIKE \$2 ESCAPE '\\'\)\s+ORDER BY e.start_date ASC, e.seq ASC\s+LIMIT \$3 OFFSET \$4`).
					WithArgs("CONCERT", `%50\%\_off%`, 5, 10).
					WillReturnRows(rows)
			},
			wantTotal: 11,
			wantLen:   1,
		},
		{
			name:   "page past the end",
			params: domain.PaginationParams{Page: 4, PageSize: 12},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\)`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
				mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
					WithArgs(12, 36).
					WillReturnRows(sqlmock.NewRows(detailColumns))
			},
			wantTotal: 3,
			wantLen:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.mock(mock)

			got, total, err := NewEventRepository(db).ListPublished(ctx, tt.filter, tt.params)
			require.NoError(t, err)
			require.Equal(t, tt.wantTotal, total)
			require.Len(t, got, tt.wantLen)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListPublished_CountError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).WillReturnError(sql.ErrConnDone)

	_, _, err := NewEventRepository(db).ListPublished(context.Background(), domain.EventFilter{}, domain.PaginationParams{Page: 1, PageSize: 12})
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.Contains(t, err.Error(), "count events")
}

func TestEventRepository_ListByCreatorID(t *testing.T) {
	db, mock := newMockDB(t)
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(detailColumns)
	addDetailRow(rows, "ev-1", "Draft", start, 0)
	mock.ExpectQuery(`WHERE e.creator_id = \$1\s+ORDER BY e.start_date ASC, e.seq ASC`).
		WithArgs("user-1").
		WillReturnRows(rows)

	got, err := NewEventRepository(db).ListByCreatorID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Draft", got[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := &domain.Event{
		ID:        "ev-1",
		Title:     "Renamed",
		StartDate: now.Add(time.Hour),
		EndDate:   now.Add(2 * time.Hour),
		Category:  domain.CategoryWorkshop,
		CreatorID: "user-1",
		UpdatedAt: now,
	}

	tests := []struct {
		name     string
		affected int64
		errIs    error
	}{
		{name: "updated", affected: 1},
		{name: "missing row", affected: 0, errIs: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec(`UPDATE events SET`).
				WithArgs("Renamed", "", now.Add(time.Hour), now.Add(2*time.Hour), "", "WORKSHOP",
					nil, nil, false, false, now, "ev-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := NewEventRepository(db).Update(context.Background(), e)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Delete(t *testing.T) {
	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "deleted",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events`).WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			errIs: domain.ErrNotFound,
		},
		{
			name: "malformed id",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events`).WithArgs("ev-1").
					WillReturnError(&pq.Error{Code: "22P02"})
			},
			errIs: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.mock(mock)

			err := NewEventRepository(db).Delete(context.Background(), "ev-1")
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
