// Package repo contains thin sqlx-backed repositories, one per table.
package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tasabot/internal/domain"
)

type Users struct{ db *sqlx.DB }

func NewUsers(db *sqlx.DB) *Users { return &Users{db: db} }

// Upsert inserts the Telegram user or refreshes the stored name if the tg_id
// already exists. The role is never touched on conflict so admin promotions
// done by hand survive.
func (r *Users) Upsert(ctx context.Context, tgID int64, name string) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `
		INSERT INTO users (tg_id, name, role)
		VALUES ($1, $2, 'client')
		ON CONFLICT (tg_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, tg_id, name, role, created_at
	`, tgID, name)
	return u, err
}

// ByTgID returns the user with the given Telegram ID, sql.ErrNoRows if absent.
func (r *Users) ByTgID(ctx context.Context, tgID int64) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, tg_id, name, role, created_at
		FROM users
		WHERE tg_id = $1
	`, tgID)
	return u, err
}
