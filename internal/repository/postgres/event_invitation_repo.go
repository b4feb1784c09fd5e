package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"eventcatalog/internal/domain"
)

type invitationRow struct {
	ID      string `db:"id"`
	EventID string `db:"event_id"`
	Email   string `db:"email"`
	SentAt  time.Time `db:"sent_at"`
}

type eventInvitationRepository struct {
	DB *sqlx.DB
}

func NewEventInvitationRepository(db *sqlx.DB) domain.EventInvitationRepository {
	return &eventInvitationRepository{
		DB: db,
	}
}

func (r *eventInvitationRepository) Create(ctx context.Context, inv *domain.EventInvitation) error {
	query := `
		INSERT INTO event_invitations (event_id, email, sent_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowxContext(ctx, query, inv.EventID, inv.Email, inv.SentAt).Scan(&inv.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *eventInvitationRepository) Exists(ctx context.Context, eventID, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM event_invitations WHERE event_id = $1 AND email = $2)`
	var exists bool
	if err := sqlx.GetContext(ctx, conn(ctx, r.DB), &exists, query, eventID, email); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *eventInvitationRepository) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	where := "event_id = $1"
	args := []any{eventID}
	if search != "" {
		args = append(args, containsPattern(search))
		where += ` AND email ILIKE $2 ESCAPE '\'`
	}
	db := conn(ctx, r.DB)

	var total int
	if err := sqlx.GetContext(ctx, db, &total, `SELECT COUNT(*) FROM event_invitations WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count invitations: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, event_id, email, sent_at
		FROM event_invitations
		WHERE %s
		ORDER BY sent_at DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var rows []invitationRow
	if err := sqlx.SelectContext(ctx, db, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	invs := make([]*domain.EventInvitation, 0, len(rows))
	for _, row := range rows {
		invs = append(invs, &domain.EventInvitation{
			ID:      row.ID,
			EventID: row.EventID,
			Email:   row.Email,
			SentAt:  row.SentAt,
		})
	}
	return invs, total, nil
}
