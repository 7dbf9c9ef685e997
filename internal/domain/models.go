// Package domain holds the data model shared by repositories, services and
// bot handlers.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is a user's access level.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// OrderType says which side of the desk an order sits on: BUY means the desk
// buys USD from the client, SELL means the desk sells USD to the client.
type OrderType string

const (
	OrderBuy  OrderType = "BUY"
	OrderSell OrderType = "SELL"
)

// Method is how the client settles the local-currency leg.
type Method string

const (
	MethodBank  Method = "bank"
	MethodZelle Method = "zelle"
)

// ValidMethod reports whether s is a known settlement method.
func ValidMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodBank, MethodZelle:
		return Method(s), true
	}
	return "", false
}

// Order lifecycle states. The bot only ever produces pending orders;
// confirmation happens through an out-of-band admin action.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// User is a Telegram user known to the bot.
type User struct {
	ID        int64     `db:"id"`
	TgID      int64     `db:"tg_id"`
	Name      string    `db:"name"`
	Role      Role      `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Rate is one exchange-rate regime. The open regime has a NULL ValidTo;
// setting a new rate closes the previous regime and inserts a fresh row, so
// history is never rewritten.
type Rate struct {
	ID        int64           `db:"id"`
	Buy       decimal.Decimal `db:"buy_rate"`
	Sell      decimal.Decimal `db:"sell_rate"`
	ValidFrom time.Time       `db:"valid_from"`
	ValidTo   *time.Time      `db:"valid_to"`
}

// Order is a client exchange request. RateSnapshot freezes the applicable
// per-side rate at creation time; later rate changes never reprice it.
type Order struct {
	ID             int64           `db:"id"`
	UserID         int64           `db:"user_id"`
	Type           OrderType       `db:"type"`
	AmountCurrency string          `db:"amount_currency"`
	AmountValue    decimal.Decimal `db:"amount_value"`
	RateSnapshot   decimal.Decimal `db:"rate_snapshot"`
	Method         Method          `db:"method"`
	AccountID      *int64          `db:"target_receive_account"`
	Status         string          `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
}

// Total is the local-currency leg: amount times the frozen rate.
func (o Order) Total() decimal.Decimal {
	return o.AmountValue.Mul(o.RateSnapshot)
}

// ReceiveAccount is a settlement destination shown to clients after they
// pick a payment method.
type ReceiveAccount struct {
	ID            int64  `db:"id"`
	Label         string `db:"label"`
	BankName      string `db:"bank_name"`
	AccountNumber string `db:"account_number"`
	ZelleUser     string `db:"zelle_user"`
	ZelleHolder   string `db:"zelle_holder"`
	Currency      string `db:"currency"`
	Active        bool   `db:"active"`
}

// Receipt records an uploaded payment proof stored in the object store.
type Receipt struct {
	ID            int64     `db:"id"`
	TransactionID int64     `db:"transaction_id"`
	FileURL       string    `db:"file_url"`
	CreatedAt     time.Time `db:"created_at"`
}
