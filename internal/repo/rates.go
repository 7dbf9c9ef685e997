package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"tasabot/internal/domain"
)

type Rates struct{ db *sqlx.DB }

func NewRates(db *sqlx.DB) *Rates { return &Rates{db: db} }

// Current returns the open rate regime (valid_to IS NULL), newest first in
// case historic data ever contains more than one open row.
// Returns sql.ErrNoRows when no rate was ever set.
func (r *Rates) Current(ctx context.Context) (domain.Rate, error) {
	var rate domain.Rate
	err := r.db.GetContext(ctx, &rate, `
		SELECT id, buy_rate, sell_rate, valid_from, valid_to
		FROM rates
		WHERE valid_to IS NULL
		ORDER BY valid_from DESC
		LIMIT 1
	`)
	return rate, err
}

// CloseOpen stamps valid_to on every open regime.
func (r *Rates) CloseOpen(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE rates SET valid_to = $1 WHERE valid_to IS NULL
	`, at)
	return err
}

// Insert opens a new rate regime.
func (r *Rates) Insert(ctx context.Context, buy, sell decimal.Decimal) (domain.Rate, error) {
	var rate domain.Rate
	err := r.db.GetContext(ctx, &rate, `
		INSERT INTO rates (buy_rate, sell_rate)
		VALUES ($1, $2)
		RETURNING id, buy_rate, sell_rate, valid_from, valid_to
	`, buy, sell)
	return rate, err
}
