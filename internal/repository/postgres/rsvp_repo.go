package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"eventcatalog/internal/domain"
)

type rsvpDetailRow struct {
	RSVPID        string    `db:"rsvp_id"`
	RSVPUserID    string    `db:"rsvp_user_id"`
	RSVPStatus    string    `db:"rsvp_status"`
	RSVPCreatedAt time.Time `db:"rsvp_created_at"`
	RSVPUpdatedAt time.Time `db:"rsvp_updated_at"`
	UserName      string    `db:"user_name"`
	UserEmail     string    `db:"user_email"`
	eventDetailRow
}

func (r rsvpDetailRow) toDomain() *domain.RSVPDetail {
	return &domain.RSVPDetail{
		RSVP: domain.RSVP{
			ID:        r.RSVPID,
			EventID:   r.ID,
			UserID:    r.RSVPUserID,
			Status:    domain.RSVPStatus(r.RSVPStatus),
			CreatedAt: r.RSVPCreatedAt,
			UpdatedAt: r.RSVPUpdatedAt,
		},
		Event: *r.eventDetailRow.toDomain(),
		User: domain.UserSummary{
			ID:    r.RSVPUserID,
			Name:  r.UserName,
			Email: r.UserEmail,
		},
	}
}

type rsvpRepository struct {
	DB *sqlx.DB
}

func NewRSVPRepository(db *sqlx.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

func (r *rsvpRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.DB, fn)
}

func (r *rsvpRepository) CountGoing(ctx context.Context, eventID, excludeUserID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM rsvps
		WHERE event_id = $1 AND status = $2 AND user_id <> $3
	`
	var n int
	if err := sqlx.GetContext(ctx, conn(ctx, r.DB), &n, query, eventID, string(domain.RSVPGoing), excludeUserID); err != nil {
		return 0, err
	}
	return n, nil
}

// Upsert relies on the (event_id, user_id) unique index; xmax = 0 only for a
// freshly inserted row.
func (r *rsvpRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) (bool, error) {
	query := `
		INSERT INTO rsvps (event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted
	`
	var inserted bool
	err := conn(ctx, r.DB).QueryRowxContext(ctx, query,
		rsvp.EventID, rsvp.UserID, string(rsvp.Status), rsvp.CreatedAt, rsvp.UpdatedAt,
	).Scan(&rsvp.ID, &rsvp.CreatedAt, &inserted)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (r *rsvpRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM rsvps WHERE event_id = $1 AND user_id = $2`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, eventID, userID)
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

func (r *rsvpRepository) ListByUserIDWithEvent(ctx context.Context, userID string) ([]*domain.RSVPDetail, error) {
	query := `
		SELECT r.id AS rsvp_id, r.user_id AS rsvp_user_id, r.status AS rsvp_status,
			r.created_at AS rsvp_created_at, r.updated_at AS rsvp_updated_at,
			COALESCE(ru.name, '') AS user_name, COALESCE(ru.email, '') AS user_email,
		` + eventDetailColumns + `
		FROM rsvps r
		JOIN events e ON e.id = r.event_id
		LEFT JOIN users u ON u.id = e.creator_id
		LEFT JOIN users ru ON ru.id = r.user_id
		WHERE r.user_id = $1
		ORDER BY e.start_date ASC, e.seq ASC
	`
	var rows []rsvpDetailRow
	if err := sqlx.SelectContext(ctx, conn(ctx, r.DB), &rows, query, userID); err != nil {
		return nil, err
	}
	out := make([]*domain.RSVPDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
