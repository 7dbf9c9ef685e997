package service

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/shopspring/decimal"

	"tasabot/core/logger"
	"tasabot/internal/domain"
)

var (
	// ErrNoPendingOrder is returned when a flow step expects a pending
	// order and the user has none matching.
	ErrNoPendingOrder = errors.New("no pending order")
	// ErrNoActiveAccounts is returned when no receiving account is enabled.
	ErrNoActiveAccounts = errors.New("no active receive accounts")
)

// OrderStore is the persistence surface the order service needs.
type OrderStore interface {
	Insert(ctx context.Context, o domain.Order) (domain.Order, error)
	ByID(ctx context.Context, id int64) (domain.Order, error)
	ListPending(ctx context.Context, userID int64, unassignedOnly bool, limit int) ([]domain.Order, error)
	AssignSettlement(ctx context.Context, orderID int64, method domain.Method, accountID int64) error
}

// AccountStore reads receiving accounts.
type AccountStore interface {
	Active(ctx context.Context) ([]domain.ReceiveAccount, error)
	ByID(ctx context.Context, id int64) (domain.ReceiveAccount, error)
}

// Quote is a priced order plus its local-currency total.
type Quote struct {
	Order domain.Order
	Total decimal.Decimal
}

// Orders creates and advances client exchange orders.
type Orders struct {
	store    OrderStore
	accounts AccountStore
	rates    *Rates
	currency string
}

func NewOrders(store OrderStore, accounts AccountStore, rates *Rates, currency string) *Orders {
	if currency == "" {
		currency = "USD"
	}
	return &Orders{store: store, accounts: accounts, rates: rates, currency: currency}
}

// CreateQuote prices an order at the open regime and persists it as pending.
// A SELL order (desk sells USD to the client) uses the sell rate, a BUY
// order uses the buy rate. The applicable rate is frozen on the order.
func (s *Orders) CreateQuote(ctx context.Context, userID int64, typ domain.OrderType, amount decimal.Decimal) (Quote, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Quote{}, fmt.Errorf("orders: amount must be positive, got %s", amount)
	}

	rate, err := s.rates.Current(ctx)
	if err != nil {
		return Quote{}, err
	}

	snapshot := rate.Buy
	if typ == domain.OrderSell {
		snapshot = rate.Sell
	}

	order, err := s.store.Insert(ctx, domain.Order{
		UserID:         userID,
		Type:           typ,
		AmountCurrency: s.currency,
		AmountValue:    amount,
		RateSnapshot:   snapshot,
		Method:         domain.MethodBank,
	})
	if err != nil {
		return Quote{}, fmt.Errorf("orders: insert: %w", err)
	}

	logger.SVCOrders.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.String("event", "order.create"),
		slog.String("order_type", string(typ)),
		slog.String("amount", amount.String()),
		slog.String("currency", s.currency),
		slog.String("rate_snapshot", snapshot.String()),
	)

	return Quote{Order: order, Total: order.Total()}, nil
}

// LocatePending finds the user's most recent pending order. With
// unassignedOnly set, orders that already carry a receiving account are
// skipped, so a method/account callback never retargets a settled order.
// The precondition is part of the store query, not an in-memory filter.
func (s *Orders) LocatePending(ctx context.Context, userID int64, unassignedOnly bool) (domain.Order, error) {
	pending, err := s.store.ListPending(ctx, userID, unassignedOnly, 1)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders: list pending: %w", err)
	}
	if len(pending) == 0 {
		return domain.Order{}, ErrNoPendingOrder
	}
	return pending[0], nil
}

// AssignableByID returns the order when it is still pending and has no
// receiving account yet, ErrNoPendingOrder otherwise. Used to validate
// order references carried in conversation sessions.
func (s *Orders) AssignableByID(ctx context.Context, orderID int64) (domain.Order, error) {
	o, err := s.store.ByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, ErrNoPendingOrder
	}
	if o.Status != domain.StatusPending || o.AccountID != nil {
		return domain.Order{}, ErrNoPendingOrder
	}
	return o, nil
}

// AssignSettlement validates the account and records method plus account on
// the order. Inactive accounts are rejected.
func (s *Orders) AssignSettlement(ctx context.Context, orderID int64, method domain.Method, accountID int64) (domain.ReceiveAccount, error) {
	acc, err := s.accounts.ByID(ctx, accountID)
	if err != nil {
		return domain.ReceiveAccount{}, fmt.Errorf("orders: account %d: %w", accountID, err)
	}
	if !acc.Active {
		return domain.ReceiveAccount{}, fmt.Errorf("orders: account %d is inactive", accountID)
	}
	if err := s.store.AssignSettlement(ctx, orderID, method, accountID); err != nil {
		return domain.ReceiveAccount{}, fmt.Errorf("orders: assign settlement: %w", err)
	}

	logger.SVCOrders.Info("settlement assigned",
		slog.Int64("order_id", orderID),
		slog.String("event", "order.assign"),
		slog.String("method", string(method)),
		slog.Int64("account_id", accountID),
	)
	return acc, nil
}

// ActiveAccounts lists the receiving accounts offered to clients.
func (s *Orders) ActiveAccounts(ctx context.Context) ([]domain.ReceiveAccount, error) {
	accs, err := s.accounts.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("orders: list accounts: %w", err)
	}
	if len(accs) == 0 {
		return nil, ErrNoActiveAccounts
	}
	return accs, nil
}
