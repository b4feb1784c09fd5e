package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"eventcatalog/internal/domain"
)

type userRepository struct {
	DB *sqlx.DB
}

// NewUserRepository returns a UserRepository over the users table. Rows are
// keyed by the identity provider's subject and filled from token claims.
func NewUserRepository(db *sqlx.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetSummaryByID(ctx context.Context, id string) (*domain.UserSummary, error) {
	query := `
		SELECT id, COALESCE(name, '') AS name, COALESCE(email, '') AS email
		FROM users
		WHERE id = $1
	`
	u := &domain.UserSummary{}
	err := conn(ctx, r.DB).QueryRowxContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Upsert inserts or refreshes the identity's row. An email already held by a
// different user is stored as NULL rather than failing the caller's write.
func (r *userRepository) Upsert(ctx context.Context, id domain.Identity) error {
	query := `
		INSERT INTO users (id, name, email)
		SELECT $1, NULLIF($2, ''),
			CASE WHEN EXISTS (SELECT 1 FROM users WHERE email = $3 AND id <> $1)
				THEN NULL ELSE NULLIF($3, '') END
		ON CONFLICT (id) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, users.name),
			email = COALESCE(EXCLUDED.email, users.email)
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, id.UserID, strings.TrimSpace(id.Name), id.NormalizedEmail())
	return err
}
