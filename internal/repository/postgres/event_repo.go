package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"eventcatalog/internal/domain"
)

const eventColumns = `e.id, e.title, e.description, e.start_date, e.end_date, e.location, e.category,
		e.image, e.max_attendees, e.is_private, e.is_published, e.creator_id, e.created_at, e.updated_at`

// eventDetailColumns adds the creator summary and RSVP count to eventColumns.
// Queries using it must select FROM events e LEFT JOIN users u ON u.id = e.creator_id.
const eventDetailColumns = eventColumns + `,
		COALESCE(u.name, '') AS creator_name,
		COALESCE(u.email, '') AS creator_email,
		(SELECT COUNT(*) FROM rsvps c WHERE c.event_id = e.id) AS rsvp_count`

const eventDetailFrom = `
		FROM events e
		LEFT JOIN users u ON u.id = e.creator_id`

type eventRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	StartDate    time.Time      `db:"start_date"`
	EndDate      time.Time      `db:"end_date"`
	Location     string         `db:"location"`
	Category     string         `db:"category"`
	Image        sql.NullString `db:"image"`
	MaxAttendees sql.NullInt64  `db:"max_attendees"`
	IsPrivate    bool           `db:"is_private"`
	IsPublished  bool           `db:"is_published"`
	CreatorID    string         `db:"creator_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type eventDetailRow struct {
	eventRow
	CreatorName  string `db:"creator_name"`
	CreatorEmail string `db:"creator_email"`
	RSVPCount    int    `db:"rsvp_count"`
}

func newEventRow(e *domain.Event) eventRow {
	row := eventRow{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Location:    e.Location,
		Category:    string(e.Category),
		IsPrivate:   e.IsPrivate,
		IsPublished: e.IsPublished,
		CreatorID:   e.CreatorID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Image != nil {
		row.Image = sql.NullString{String: *e.Image, Valid: true}
	}
	if e.MaxAttendees != nil {
		row.MaxAttendees = sql.NullInt64{Int64: int64(*e.MaxAttendees), Valid: true}
	}
	return row
}

func (r eventRow) toDomain() *domain.Event {
	e := &domain.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Location:    r.Location,
		Category:    domain.Category(r.Category),
		IsPrivate:   r.IsPrivate,
		IsPublished: r.IsPublished,
		CreatorID:   r.CreatorID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Image.Valid {
		img := r.Image.String
		e.Image = &img
	}
	if r.MaxAttendees.Valid {
		n := int(r.MaxAttendees.Int64)
		e.MaxAttendees = &n
	}
	return e
}

func (r eventDetailRow) toDomain() *domain.EventDetail {
	return &domain.EventDetail{
		Event: *r.eventRow.toDomain(),
		Creator: domain.UserSummary{
			ID:    r.CreatorID,
			Name:  r.CreatorName,
			Email: r.CreatorEmail,
		},
		Count: domain.RSVPCount{RSVPs: r.RSVPCount},
	}
}

func eventDetails(rows []eventDetailRow) []*domain.EventDetail {
	out := make([]*domain.EventDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

type eventRepository struct {
	DB *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, start_date, end_date, location, category, image,
			max_attendees, is_private, is_published, creator_id, created_at, updated_at)
		VALUES (:title, :description, :start_date, :end_date, :location, :category, :image,
			:max_attendees, :is_private, :is_published, :creator_id, :created_at, :updated_at)
		RETURNING id
	`
	rows, err := sqlx.NamedQueryContext(ctx, conn(ctx, r.DB), query, newEventRow(e))
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return errors.New("insert event: no id returned")
	}
	return rows.Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.getEvent(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)
}

func (r *eventRepository) GetForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.getEvent(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1 FOR UPDATE`, id)
}

func (r *eventRepository) getEvent(ctx context.Context, query, id string) (*domain.Event, error) {
	var row eventRow
	if err := sqlx.GetContext(ctx, conn(ctx, r.DB), &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *eventRepository) GetDetailByID(ctx context.Context, id string) (*domain.EventDetail, error) {
	query := `SELECT ` + eventDetailColumns + eventDetailFrom + `
		WHERE e.id = $1`
	var row eventDetailRow
	if err := sqlx.GetContext(ctx, conn(ctx, r.DB), &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// ListPublished returns one page of published events matching filter, ordered by
// start date then insertion order, together with the total match count.
func (r *eventRepository) ListPublished(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventDetail, int, error) {
	where := []string{"e.is_published = TRUE"}
	var args []any
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		where = append(where, fmt.Sprintf("e.category = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		n := len(args)
		where = append(where, fmt.Sprintf(
			`(e.title ILIKE $%d ESCAPE '\' OR e.description ILIKE $%d ESCAPE '\' OR e.location ILIKE $%d ESCAPE '\')`,
			n, n, n,
		))
	}
	whereSQL := strings.Join(where, " AND ")
	db := conn(ctx, r.DB)

	var total int
	countQuery := `SELECT COUNT(*) FROM events e WHERE ` + whereSQL
	if err := sqlx.GetContext(ctx, db, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s %s
		WHERE %s
		ORDER BY e.start_date ASC, e.seq ASC
		LIMIT $%d OFFSET $%d`, eventDetailColumns, eventDetailFrom, whereSQL, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var rows []eventDetailRow
	if err := sqlx.SelectContext(ctx, db, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return eventDetails(rows), total, nil
}

func (r *eventRepository) ListByCreatorID(ctx context.Context, creatorID string) ([]*domain.EventDetail, error) {
	query := `SELECT ` + eventDetailColumns + eventDetailFrom + `
		WHERE e.creator_id = $1
		ORDER BY e.start_date ASC, e.seq ASC`
	var rows []eventDetailRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.DB), &rows, query, creatorID); err != nil {
		return nil, err
	}
	return eventDetails(rows), nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET
			title = :title,
			description = :description,
			start_date = :start_date,
			end_date = :end_date,
			location = :location,
			category = :category,
			image = :image,
			max_attendees = :max_attendees,
			is_private = :is_private,
			is_published = :is_published,
			updated_at = :updated_at
		WHERE id = :id
	`
	result, err := sqlx.NamedExecContext(ctx, conn(ctx, r.DB), query, newEventRow(e))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
