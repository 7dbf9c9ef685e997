package bot

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tasabot/core/telegram/session"
	"tasabot/internal/domain"
	"tasabot/internal/service"
)

// --- fakes -----------------------------------------------------------------

type fakeUsers struct {
	byTg   map[int64]domain.User
	nextID int64
}

func (f *fakeUsers) Upsert(ctx context.Context, tgID int64, name string) (domain.User, error) {
	if u, ok := f.byTg[tgID]; ok {
		u.Name = name
		f.byTg[tgID] = u
		return u, nil
	}
	f.nextID++
	u := domain.User{ID: f.nextID, TgID: tgID, Name: name, Role: domain.RoleClient}
	if f.byTg == nil {
		f.byTg = make(map[int64]domain.User)
	}
	f.byTg[tgID] = u
	return u, nil
}

func (f *fakeUsers) ByTgID(ctx context.Context, tgID int64) (domain.User, error) {
	if u, ok := f.byTg[tgID]; ok {
		return u, nil
	}
	return domain.User{}, sql.ErrNoRows
}

type fakeRateStore struct {
	regimes []domain.Rate
	nextID  int64
}

func (f *fakeRateStore) Current(ctx context.Context) (domain.Rate, error) {
	for i := len(f.regimes) - 1; i >= 0; i-- {
		if f.regimes[i].ValidTo == nil {
			return f.regimes[i], nil
		}
	}
	return domain.Rate{}, sql.ErrNoRows
}

func (f *fakeRateStore) CloseOpen(ctx context.Context, at time.Time) error {
	for i := range f.regimes {
		if f.regimes[i].ValidTo == nil {
			t := at
			f.regimes[i].ValidTo = &t
		}
	}
	return nil
}

func (f *fakeRateStore) Insert(ctx context.Context, buy, sell decimal.Decimal) (domain.Rate, error) {
	f.nextID++
	r := domain.Rate{ID: f.nextID, Buy: buy, Sell: sell, ValidFrom: time.Now()}
	f.regimes = append(f.regimes, r)
	return r, nil
}

type fakeOrderStore struct {
	orders    []domain.Order
	nextID    int64
	windowErr error
}

func (f *fakeOrderStore) Insert(ctx context.Context, o domain.Order) (domain.Order, error) {
	f.nextID++
	o.ID = f.nextID
	o.Status = domain.StatusPending
	o.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Second)
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeOrderStore) ByID(ctx context.Context, id int64) (domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, sql.ErrNoRows
}

func (f *fakeOrderStore) ListPending(ctx context.Context, userID int64, unassignedOnly bool, limit int) ([]domain.Order, error) {
	out := make([]domain.Order, 0, 4)
	for i := len(f.orders) - 1; i >= 0; i-- {
		o := f.orders[i]
		if o.UserID != userID || o.Status != domain.StatusPending {
			continue
		}
		if unassignedOnly && o.AccountID != nil {
			continue
		}
		out = append(out, o)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeOrderStore) AssignSettlement(ctx context.Context, orderID int64, method domain.Method, accountID int64) error {
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			f.orders[i].Method = method
			id := accountID
			f.orders[i].AccountID = &id
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeAccountStore struct {
	accounts []domain.ReceiveAccount
}

func (f *fakeAccountStore) Active(ctx context.Context) ([]domain.ReceiveAccount, error) {
	out := make([]domain.ReceiveAccount, 0, len(f.accounts))
	for _, a := range f.accounts {
		if a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccountStore) ByID(ctx context.Context, id int64) (domain.ReceiveAccount, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.ReceiveAccount{}, sql.ErrNoRows
}

type fakeReceiptStore struct {
	receipts []domain.Receipt
	nextID   int64
}

func (f *fakeReceiptStore) Insert(ctx context.Context, txID int64, fileURL string) (domain.Receipt, error) {
	f.nextID++
	r := domain.Receipt{ID: f.nextID, TransactionID: txID, FileURL: fileURL}
	f.receipts = append(f.receipts, r)
	return r, nil
}

type fakeObjects struct{ uploads []string }

func (f *fakeObjects) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	f.uploads = append(f.uploads, key)
	return nil
}

// --- fixture ---------------------------------------------------------------

type fixture struct {
	h        *Handlers
	users    *fakeUsers
	orders   *fakeOrderStore
	receipts *fakeReceiptStore
	objects  *fakeObjects
	rates    *service.Rates
	clock    time.Time
	sessions *session.Manager
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    &fakeUsers{},
		orders:   &fakeOrderStore{},
		receipts: &fakeReceiptStore{},
		objects:  &fakeObjects{},
		clock:    time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}
	accounts := &fakeAccountStore{accounts: []domain.ReceiveAccount{
		{ID: 1, Label: "Banco Uno", BankName: "Banco Uno", AccountNumber: "0102-3456", Currency: "VES", Active: true},
		{ID: 2, Label: "Zelle Principal", ZelleUser: "pagos@desk.com", ZelleHolder: "Desk LLC", Currency: "USD", Active: true},
	}}
	f.rates = service.NewRates(&fakeRateStore{}, dec("0.50"))
	orderSvc := service.NewOrders(f.orders, accounts, f.rates, "USD")
	receiptSvc := service.NewReceipts(f.receipts, f.objects, orderSvc)
	summarySvc, err := service.NewDailySummary(summaryStore{f.orders}, "America/Bogota")
	if err != nil {
		t.Fatal(err)
	}
	f.sessions = session.NewManager(30*time.Minute, session.WithClock(func() time.Time { return f.clock }))
	f.h = NewHandlers(f.users, f.rates, orderSvc, receiptSvc, summarySvc, f.sessions)
	return f
}

type summaryStore struct{ store *fakeOrderStore }

func (s summaryStore) ListWindow(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	if s.store.windowErr != nil {
		return nil, s.store.windowErr
	}
	out := make([]domain.Order, 0, len(s.store.orders))
	for _, o := range s.store.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fixture) setRates(t *testing.T, buy, sell string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.rates.SetBuy(ctx, dec(buy)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.rates.SetSell(ctx, dec(sell)); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) makeAdmin(tgID int64) {
	u, _ := f.users.Upsert(context.Background(), tgID, "Admin")
	u.Role = domain.RoleAdmin
	f.users.byTg[tgID] = u
}

// --- tests -----------------------------------------------------------------

func TestFlowStart(t *testing.T) {
	f := newFixture(t)
	text, err := f.h.flowStart(context.Background(), 7, "Ana Pérez")
	if err != nil {
		t.Fatal(err)
	}
	if text != msgWelcome {
		t.Errorf("text = %q", text)
	}
	if u, _ := f.users.ByTgID(context.Background(), 7); u.Name != "Ana Pérez" {
		t.Errorf("user not registered: %+v", u)
	}
}

func TestFlowTasas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	text, err := f.h.flowTasas(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if text != msgNoRates {
		t.Errorf("without rates text = %q", text)
	}

	f.setRates(t, "36", "36.5")
	text, err = f.h.flowTasas(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Compra: *36*") || !strings.Contains(text, "Venta: *36.5*") {
		t.Errorf("rates text = %q", text)
	}
}

func TestFlowSetRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// non-admin rejected before parsing
	text, err := f.h.flowSetRate(ctx, 7, domain.OrderBuy, "/set_compra 36")
	if err != nil || text != msgAdminOnly {
		t.Fatalf("text = %q, err = %v", text, err)
	}

	f.makeAdmin(1)

	text, _ = f.h.flowSetRate(ctx, 1, domain.OrderBuy, "/set_compra")
	if text != msgUsageSetCompra {
		t.Errorf("missing arg text = %q", text)
	}

	text, err = f.h.flowSetRate(ctx, 1, domain.OrderBuy, "/set_compra 36.15")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "36.15") {
		t.Errorf("confirm text = %q", text)
	}

	text, err = f.h.flowSetRate(ctx, 1, domain.OrderSell, "/set_venta 37.10")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "37.1") {
		t.Errorf("confirm text = %q", text)
	}

	rate, err := f.rates.Current(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !rate.Buy.Equal(dec("36.15")) || !rate.Sell.Equal(dec("37.10")) {
		t.Errorf("pair = %s/%s", rate.Buy, rate.Sell)
	}
}

func TestFlowQuoteComprar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setRates(t, "36", "37.10")

	text, markup, err := f.h.flowQuote(ctx, 7, "Ana", domain.OrderSell, "/comprar 100")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "*3710.00*") {
		t.Errorf("quote text = %q, want total 3710.00", text)
	}
	if markup == nil || len(markup.InlineKeyboard) != 2 {
		t.Fatalf("method keyboard rows = %v", markup)
	}

	s, ok := f.sessions.Get(7)
	if !ok || s.Step != session.StepAwaitMethod {
		t.Errorf("session = %+v ok=%v", s, ok)
	}
}

func TestFlowQuoteUsageAndNoRates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	text, markup, err := f.h.flowQuote(ctx, 7, "Ana", domain.OrderSell, "/comprar")
	if err != nil || markup != nil || text != msgUsageComprar {
		t.Errorf("usage: text=%q markup=%v err=%v", text, markup, err)
	}

	text, _, err = f.h.flowQuote(ctx, 7, "Ana", domain.OrderSell, "/comprar 100")
	if err != nil || text != msgUsageComprar {
		t.Errorf("no rates: text=%q err=%v", text, err)
	}

	f.setRates(t, "36", "36.5")
	text, _, _ = f.h.flowQuote(ctx, 7, "Ana", domain.OrderBuy, "/vender abc")
	if text != msgUsageVender {
		t.Errorf("bad amount text = %q", text)
	}
}

func TestFlowMethodAndAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setRates(t, "36", "36.5")

	if _, _, err := f.h.flowQuote(ctx, 7, "Ana", domain.OrderSell, "/comprar 100"); err != nil {
		t.Fatal(err)
	}

	text, markup, err := f.h.flowMethod(ctx, 7, domain.MethodZelle)
	if err != nil {
		t.Fatal(err)
	}
	if text != msgChooseAccount {
		t.Errorf("text = %q", text)
	}
	if markup == nil || len(markup.InlineKeyboard) != 2 {
		t.Fatalf("one button per active account, got %v", markup)
	}

	text, err = f.h.flowAccount(ctx, 7, 2, domain.MethodZelle)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "pagos@desk.com") || !strings.Contains(text, "Sube tu captura") {
		t.Errorf("detail text = %q", text)
	}

	order := f.orders.orders[0]
	if order.Method != domain.MethodZelle || order.AccountID == nil || *order.AccountID != 2 {
		t.Errorf("order not assigned: %+v", order)
	}
	if s, _ := f.sessions.Get(7); s.Step != session.StepAwaitReceipt {
		t.Errorf("session step = %q", s.Step)
	}
}

func TestFlowMethodWithoutOrder(t *testing.T) {
	f := newFixture(t)
	text, markup, err := f.h.flowMethod(context.Background(), 7, domain.MethodBank)
	if err != nil || markup != nil || text != msgNoPendingOrder {
		t.Errorf("text=%q markup=%v err=%v", text, markup, err)
	}
}

func TestFlowSurvivesSessionExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setRates(t, "36", "36.5")

	if _, _, err := f.h.flowQuote(ctx, 7, "Ana", domain.OrderSell, "/comprar 100"); err != nil {
		t.Fatal(err)
	}

	// session expires, the pending-order locator takes over
	f.clock = f.clock.Add(time.Hour)

	text, markup, err := f.h.flowMethod(ctx, 7, domain.MethodBank)
	if err != nil {
		t.Fatal(err)
	}
	if text != msgChooseAccount || markup == nil {
		t.Errorf("expired-session flow broke: text=%q", text)
	}
}

func TestFlowReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setRates(t, "36", "36.5")

	// no order yet
	text, err := f.h.flowReceipt(ctx, 7, "foto.jpg", strings.NewReader("x"))
	if err != nil || text != msgNoPendingTx {
		t.Errorf("text=%q err=%v", text, err)
	}
	if len(f.objects.uploads) != 0 {
		t.Error("nothing should be uploaded without an order")
	}

	if _, _, err := f.h.flowQuote(ctx, 7, "Ana", domain.OrderSell, "/comprar 100"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.h.flowMethod(ctx, 7, domain.MethodBank); err != nil {
		t.Fatal(err)
	}
	if _, err := f.h.flowAccount(ctx, 7, 1, domain.MethodBank); err != nil {
		t.Fatal(err)
	}

	text, err = f.h.flowReceipt(ctx, 7, "comprobante.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatal(err)
	}
	if text != msgReceiptOK {
		t.Errorf("text = %q", text)
	}
	if len(f.receipts.receipts) != 1 || len(f.objects.uploads) != 1 {
		t.Errorf("receipt rows=%d uploads=%d", len(f.receipts.receipts), len(f.objects.uploads))
	}
	if _, ok := f.sessions.Get(7); ok {
		t.Error("session should be cleared after the receipt")
	}
}

func TestFlowCierre(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setRates(t, "36", "36.5")

	if _, _, err := f.h.flowQuote(ctx, 7, "Ana", domain.OrderSell, "/comprar 80"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.h.flowQuote(ctx, 8, "Luis", domain.OrderBuy, "/vender 50"); err != nil {
		t.Fatal(err)
	}

	text, err := f.h.flowCierre(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Cierre diario", "Transacciones: 2", "Inversión: 50", "Ventas: 80", "Ganancia aprox.: 30"} {
		if !strings.Contains(text, want) {
			t.Errorf("cierre missing %q in %q", want, text)
		}
	}
}

func TestFlowCierreStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.orders.windowErr = errors.New("record store unavailable")

	text, err := f.h.flowCierre(context.Background())
	if err != nil {
		t.Fatalf("flowCierre must not propagate: %v", err)
	}
	if text != msgCierreFail {
		t.Errorf("text = %q, want the retry message", text)
	}
}

func TestParsePositiveDecimal(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"100", true},
		{"36.15", true},
		{"36,15", true},
		{"0", false},
		{"-5", false},
		{"abc", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := parsePositiveDecimal(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("parsePositiveDecimal(%q) err = %v, want ok=%v", tc.in, err, tc.ok)
		}
	}
}
