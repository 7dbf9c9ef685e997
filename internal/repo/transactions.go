package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"tasabot/internal/domain"
)

type Transactions struct{ db *sqlx.DB }

func NewTransactions(db *sqlx.DB) *Transactions { return &Transactions{db: db} }

// Insert creates a pending order with the rate frozen at creation time.
func (r *Transactions) Insert(ctx context.Context, o domain.Order) (domain.Order, error) {
	var out domain.Order
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO transactions
			(user_id, type, amount_currency, amount_value, rate_snapshot, method, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, user_id, type, amount_currency, amount_value,
		          rate_snapshot, method, target_receive_account, status, created_at
	`, o.UserID, o.Type, o.AmountCurrency, o.AmountValue, o.RateSnapshot, o.Method)
	return out, err
}

// ByID fetches one order.
func (r *Transactions) ByID(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, `
		SELECT id, user_id, type, amount_currency, amount_value,
		       rate_snapshot, method, target_receive_account, status, created_at
		FROM transactions
		WHERE id = $1
	`, id)
	return o, err
}

// ListPending returns the user's pending orders, newest first.
func (r *Transactions) ListPending(ctx context.Context, userID int64, unassignedOnly bool, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `
		SELECT id, user_id, type, amount_currency, amount_value,
		       rate_snapshot, method, target_receive_account, status, created_at
		FROM transactions
		WHERE user_id = $1 AND status = 'pending'`
	if unassignedOnly {
		// the precondition lives in the query so an old unassigned order is
		// never crowded out of the page by newer assigned ones
		q += `
		  AND target_receive_account IS NULL`
	}
	q += `
		ORDER BY created_at DESC
		LIMIT $2`
	orders := make([]domain.Order, 0, 4)
	err := r.db.SelectContext(ctx, &orders, q, userID, limit)
	return orders, err
}

// AssignSettlement records the chosen method and receiving account on a
// pending order.
func (r *Transactions) AssignSettlement(ctx context.Context, orderID int64, method domain.Method, accountID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET method = $2, target_receive_account = $3
		WHERE id = $1 AND status = 'pending'
	`, orderID, method, accountID)
	return err
}

// ListWindow returns all orders created inside [from, to), oldest first.
// Used by the daily closing report.
func (r *Transactions) ListWindow(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	orders := make([]domain.Order, 0, 32)
	err := r.db.SelectContext(ctx, &orders, `
		SELECT id, user_id, type, amount_currency, amount_value,
		       rate_snapshot, method, target_receive_account, status, created_at
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`, from, to)
	return orders, err
}
