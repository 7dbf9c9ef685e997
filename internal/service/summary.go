package service

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/shopspring/decimal"

	"tasabot/core/logger"
	"tasabot/internal/domain"
)

// SummaryStore reads orders for the closing window.
type SummaryStore interface {
	ListWindow(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}

// Summary aggregates one business day of orders. Compras is the USD volume
// the desk bought, Ventas the USD volume it sold; Ganancia is their
// difference.
type Summary struct {
	Date     time.Time
	Count    int
	Compras  decimal.Decimal
	Ventas   decimal.Decimal
	Ganancia decimal.Decimal
}

// DailySummary computes the desk's daily closing in its local timezone.
type DailySummary struct {
	store SummaryStore
	loc   *time.Location
	now   func() time.Time
}

// NewDailySummary builds the closing service. tz must be an IANA zone name,
// e.g. "America/Bogota".
func NewDailySummary(store SummaryStore, tz string) (*DailySummary, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("summary: load timezone %q: %w", tz, err)
	}
	return &DailySummary{store: store, loc: loc, now: time.Now}, nil
}

// Window returns the UTC bounds [from, to) of the local business day
// containing at.
func (s *DailySummary) Window(at time.Time) (time.Time, time.Time) {
	local := at.In(s.loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return from.UTC(), from.AddDate(0, 0, 1).UTC()
}

// Compute aggregates today's orders.
func (s *DailySummary) Compute(ctx context.Context) (Summary, error) {
	now := s.now()
	from, to := s.Window(now)

	orders, err := s.store.ListWindow(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("summary: list window: %w", err)
	}

	sum := Summary{Date: now.In(s.loc)}
	for _, o := range orders {
		sum.Count++
		switch o.Type {
		case domain.OrderBuy:
			sum.Compras = sum.Compras.Add(o.AmountValue)
		case domain.OrderSell:
			sum.Ventas = sum.Ventas.Add(o.AmountValue)
		}
	}
	sum.Ganancia = sum.Ventas.Sub(sum.Compras)

	logger.SVCSummary.Info("daily closing computed",
		slog.String("event", "summary.compute"),
		slog.Int("tx_count", sum.Count),
		slog.String("compras", sum.Compras.String()),
		slog.String("ventas", sum.Ventas.String()),
	)
	return sum, nil
}

// Format renders the closing message sent to the admin chat.
func (s Summary) Format() string {
	return fmt.Sprintf(
		"🧾 *Cierre diario* (hora Bogotá)\nTransacciones: %d\nInversión: %s\nVentas: %s\nGanancia aprox.: %s",
		s.Count, s.Compras.String(), s.Ventas.String(), s.Ganancia.String(),
	)
}
