package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tasabot/internal/domain"
)

type Accounts struct{ db *sqlx.DB }

func NewAccounts(db *sqlx.DB) *Accounts { return &Accounts{db: db} }

// Active lists enabled receiving accounts in stable order.
func (r *Accounts) Active(ctx context.Context) ([]domain.ReceiveAccount, error) {
	accs := make([]domain.ReceiveAccount, 0, 4)
	err := r.db.SelectContext(ctx, &accs, `
		SELECT id, label, bank_name, account_number, zelle_user, zelle_holder, currency, active
		FROM receive_accounts
		WHERE active
		ORDER BY id
	`)
	return accs, err
}

// ByID fetches one receiving account regardless of its active flag.
func (r *Accounts) ByID(ctx context.Context, id int64) (domain.ReceiveAccount, error) {
	var acc domain.ReceiveAccount
	err := r.db.GetContext(ctx, &acc, `
		SELECT id, label, bank_name, account_number, zelle_user, zelle_holder, currency, active
		FROM receive_accounts
		WHERE id = $1
	`, id)
	return acc, err
}
