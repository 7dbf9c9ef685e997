package app

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/jmoiron/sqlx"

	"tasabot/core/logger"
)

// seedReceiveAccounts provisions configured receiving accounts. Existing
// labels are left untouched, so reruns and manual edits are safe.
func seedReceiveAccounts(accounts []SeedAccount) func(ctx context.Context, db *sqlx.DB) error {
	return func(ctx context.Context, db *sqlx.DB) error {
		inserted := 0
		for _, a := range accounts {
			if a.Label == "" {
				return fmt.Errorf("app: receive account seed without label")
			}
			res, err := db.ExecContext(ctx, `
				INSERT INTO receive_accounts
					(label, bank_name, account_number, zelle_user, zelle_holder, currency, active)
				SELECT $1, $2, $3, $4, $5, COALESCE(NULLIF($6, ''), 'USD'), TRUE
				WHERE NOT EXISTS (SELECT 1 FROM receive_accounts WHERE label = $1)
			`, a.Label, a.BankName, a.AccountNumber, a.ZelleUser, a.ZelleHolder, a.Currency)
			if err != nil {
				return fmt.Errorf("app: seed account %q: %w", a.Label, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		if len(accounts) > 0 {
			logger.DB.Info("receive accounts seeded",
				slog.String("event", "seed"),
				slog.Int("configured", len(accounts)),
				slog.Int("inserted", inserted),
			)
		}
		return nil
	}
}
