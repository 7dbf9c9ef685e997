package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"tasabot/internal/domain"
)

type fakeSummaryStore struct {
	orders []domain.Order
}

func (f *fakeSummaryStore) ListWindow(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(f.orders))
	for _, o := range f.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func TestSummaryWindowBogota(t *testing.T) {
	svc, err := NewDailySummary(&fakeSummaryStore{}, "America/Bogota")
	if err != nil {
		t.Fatal(err)
	}

	// Bogota is UTC-5 year-round: local midnight is 05:00 UTC.
	at := time.Date(2025, 6, 15, 20, 30, 0, 0, time.UTC) // 15:30 local
	from, to := svc.Window(at)

	wantFrom := time.Date(2025, 6, 15, 5, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, 6, 16, 5, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) || !to.Equal(wantTo) {
		t.Errorf("window = [%v, %v), want [%v, %v)", from, to, wantFrom, wantTo)
	}

	// 03:00 UTC is still the previous local day
	at = time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	from, _ = svc.Window(at)
	if !from.Equal(time.Date(2025, 6, 14, 5, 0, 0, 0, time.UTC)) {
		t.Errorf("early-UTC window starts at %v", from)
	}
}

func TestSummaryCompute(t *testing.T) {
	base := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	store := &fakeSummaryStore{orders: []domain.Order{
		{Type: domain.OrderBuy, AmountValue: dec("50"), CreatedAt: base},
		{Type: domain.OrderSell, AmountValue: dec("80"), CreatedAt: base.Add(time.Hour)},
		{Type: domain.OrderBuy, AmountValue: dec("0"), CreatedAt: base.Add(-30 * time.Hour)}, // previous day
	}}

	svc, err := NewDailySummary(store, "America/Bogota")
	if err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return base }

	sum, err := svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if sum.Count != 2 {
		t.Errorf("count = %d, want 2", sum.Count)
	}
	if !sum.Compras.Equal(dec("50")) || !sum.Ventas.Equal(dec("80")) {
		t.Errorf("compras/ventas = %s/%s", sum.Compras, sum.Ventas)
	}
	if !sum.Ganancia.Equal(dec("30")) {
		t.Errorf("ganancia = %s, want 30", sum.Ganancia)
	}
}

func TestSummaryFormat(t *testing.T) {
	sum := Summary{
		Count:    2,
		Compras:  dec("50"),
		Ventas:   dec("80"),
		Ganancia: dec("30"),
	}
	text := sum.Format()
	for _, want := range []string{"Cierre diario", "Transacciones: 2", "Inversión: 50", "Ventas: 80", "Ganancia aprox.: 30"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary text missing %q:\n%s", want, text)
		}
	}
}

func TestSummaryBadTimezone(t *testing.T) {
	if _, err := NewDailySummary(&fakeSummaryStore{}, "Not/AZone"); err == nil {
		t.Error("invalid timezone must fail")
	}
}
