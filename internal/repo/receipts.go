package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tasabot/internal/domain"
)

type Receipts struct{ db *sqlx.DB }

func NewReceipts(db *sqlx.DB) *Receipts { return &Receipts{db: db} }

// Insert records an uploaded receipt pointing at its object-store key.
func (r *Receipts) Insert(ctx context.Context, transactionID int64, fileURL string) (domain.Receipt, error) {
	var rec domain.Receipt
	err := r.db.GetContext(ctx, &rec, `
		INSERT INTO receipts (transaction_id, file_url)
		VALUES ($1, $2)
		RETURNING id, transaction_id, file_url, created_at
	`, transactionID, fileURL)
	return rec, err
}
