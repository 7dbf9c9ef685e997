// Package service implements the exchange desk's business rules on top of
// the repositories. Services hold no Telegram types so they are testable
// with plain fakes.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/shopspring/decimal"

	"tasabot/core/logger"
	"tasabot/internal/domain"
)

// ErrNoActiveRate is returned when no rate regime has ever been opened.
var ErrNoActiveRate = errors.New("no active exchange rate")

// RateStore is the persistence surface the rate service needs.
type RateStore interface {
	Current(ctx context.Context) (domain.Rate, error)
	CloseOpen(ctx context.Context, at time.Time) error
	Insert(ctx context.Context, buy, sell decimal.Decimal) (domain.Rate, error)
}

// Rates rotates and reads exchange-rate regimes. Setting one side of the
// pair keeps the other side from the open regime, or derives it from the
// configured spread when no regime exists yet.
type Rates struct {
	store  RateStore
	spread decimal.Decimal
	now    func() time.Time
}

// NewRates builds the rate service. spread is the default buy/sell distance
// used when only one side of a fresh pair is known.
func NewRates(store RateStore, spread decimal.Decimal) *Rates {
	return &Rates{store: store, spread: spread, now: time.Now}
}

// Current returns the open rate regime.
func (s *Rates) Current(ctx context.Context) (domain.Rate, error) {
	rate, err := s.store.Current(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Rate{}, ErrNoActiveRate
		}
		return domain.Rate{}, fmt.Errorf("rates: read current: %w", err)
	}
	return rate, nil
}

// SetBuy opens a new regime with the given buy rate. The sell side carries
// over from the open regime; with no prior regime it defaults to buy+spread.
func (s *Rates) SetBuy(ctx context.Context, buy decimal.Decimal) (domain.Rate, error) {
	if buy.LessThanOrEqual(decimal.Zero) {
		return domain.Rate{}, fmt.Errorf("rates: buy rate must be positive, got %s", buy)
	}
	sell := buy.Add(s.spread)
	if cur, err := s.store.Current(ctx); err == nil {
		sell = cur.Sell
	} else if !errors.Is(err, sql.ErrNoRows) {
		return domain.Rate{}, fmt.Errorf("rates: read current: %w", err)
	}
	return s.rotate(ctx, buy, sell)
}

// SetSell opens a new regime with the given sell rate. The buy side carries
// over from the open regime; with no prior regime it defaults to sell-spread.
func (s *Rates) SetSell(ctx context.Context, sell decimal.Decimal) (domain.Rate, error) {
	if sell.LessThanOrEqual(decimal.Zero) {
		return domain.Rate{}, fmt.Errorf("rates: sell rate must be positive, got %s", sell)
	}
	buy := sell.Sub(s.spread)
	if cur, err := s.store.Current(ctx); err == nil {
		buy = cur.Buy
	} else if !errors.Is(err, sql.ErrNoRows) {
		return domain.Rate{}, fmt.Errorf("rates: read current: %w", err)
	}
	return s.rotate(ctx, buy, sell)
}

func (s *Rates) rotate(ctx context.Context, buy, sell decimal.Decimal) (domain.Rate, error) {
	if err := s.store.CloseOpen(ctx, s.now()); err != nil {
		return domain.Rate{}, fmt.Errorf("rates: close open regime: %w", err)
	}
	rate, err := s.store.Insert(ctx, buy, sell)
	if err != nil {
		return domain.Rate{}, fmt.Errorf("rates: insert regime: %w", err)
	}
	logger.SVCRates.Info("rate regime rotated",
		slog.String("event", "rate.set"),
		slog.String("rate_buy", buy.String()),
		slog.String("rate_sell", sell.String()),
	)
	return rate, nil
}
