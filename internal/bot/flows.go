package bot

import (
	"context"
	"errors"
	"fmt"
	"io"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"tasabot/core/logger"
	"tasabot/core/telegram/session"
	"tasabot/internal/domain"
	"tasabot/internal/service"
)

// UserStore is the user persistence surface the handlers need.
type UserStore interface {
	Upsert(ctx context.Context, tgID int64, name string) (domain.User, error)
	ByTgID(ctx context.Context, tgID int64) (domain.User, error)
}

// Handlers owns the conversation logic. The flow* methods are plain Go so
// tests can drive them without a Telegram connection; the exported methods
// in handlers.go are thin telebot adapters.
type Handlers struct {
	users    UserStore
	rates    *service.Rates
	orders   *service.Orders
	receipts *service.Receipts
	summary  *service.DailySummary
	sessions *session.Manager
}

func NewHandlers(users UserStore, rates *service.Rates, orders *service.Orders, receipts *service.Receipts, summary *service.DailySummary, sessions *session.Manager) *Handlers {
	return &Handlers{
		users:    users,
		rates:    rates,
		orders:   orders,
		receipts: receipts,
		summary:  summary,
		sessions: sessions,
	}
}

func (h *Handlers) flowStart(ctx context.Context, tgID int64, name string) (string, error) {
	if _, err := h.users.Upsert(ctx, tgID, name); err != nil {
		return "", err
	}
	return msgWelcome, nil
}

func (h *Handlers) flowTasas(ctx context.Context) (string, error) {
	rate, err := h.rates.Current(ctx)
	if errors.Is(err, service.ErrNoActiveRate) {
		return msgNoRates, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(msgRatesFmt, rate.Buy.String(), rate.Sell.String()), nil
}

// flowSetRate handles /set_compra and /set_venta. Authorization is by the
// stored role, so promoted admins work from any chat.
func (h *Handlers) flowSetRate(ctx context.Context, tgID int64, side domain.OrderType, text string) (string, error) {
	user, err := h.users.ByTgID(ctx, tgID)
	if err != nil || !user.IsAdmin() {
		return msgAdminOnly, nil
	}

	value, perr := parseAmountArg(text)
	if side == domain.OrderBuy {
		if perr != nil {
			return msgUsageSetCompra, nil
		}
		rate, err := h.rates.SetBuy(ctx, value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(msgRateBuySet, rate.Buy.String()), nil
	}

	if perr != nil {
		return msgUsageSetVenta, nil
	}
	rate, err := h.rates.SetSell(ctx, value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(msgRateSellSet, rate.Sell.String()), nil
}

// flowQuote handles /comprar and /vender. typ is the desk's side: /comprar
// makes the desk sell USD, /vender makes it buy.
func (h *Handlers) flowQuote(ctx context.Context, tgID int64, name string, typ domain.OrderType, text string) (string, *tele.ReplyMarkup, error) {
	usage := msgUsageComprar
	quoteFmt := msgQuoteBuyFmt
	if typ == domain.OrderBuy {
		usage = msgUsageVender
		quoteFmt = msgQuoteSellFmt
	}

	amount, err := parseAmountArg(text)
	if err != nil {
		return usage, nil, nil
	}

	user, err := h.users.Upsert(ctx, tgID, name)
	if err != nil {
		return "", nil, err
	}

	quote, err := h.orders.CreateQuote(ctx, user.ID, typ, amount)
	if errors.Is(err, service.ErrNoActiveRate) {
		// no open rate reads like a failed precondition: same usage hint
		// as a bad amount
		return usage, nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	h.sessions.Begin(tgID, quote.Order.ID, session.StepAwaitMethod)
	return fmt.Sprintf(quoteFmt, quote.Total.StringFixed(2)), methodKeyboard(), nil
}

// flowMethod handles the method button: lists receiving accounts for the
// chosen method.
func (h *Handlers) flowMethod(ctx context.Context, tgID int64, method domain.Method) (string, *tele.ReplyMarkup, error) {
	if _, err := h.locateOrder(ctx, tgID); err != nil {
		if errors.Is(err, service.ErrNoPendingOrder) {
			return msgNoPendingOrder, nil, nil
		}
		return "", nil, err
	}

	accs, err := h.orders.ActiveAccounts(ctx)
	if errors.Is(err, service.ErrNoActiveAccounts) {
		return msgNoAccounts, nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	h.sessions.Advance(tgID, session.StepAwaitAccount)
	return msgChooseAccount, accountsKeyboard(accs, method), nil
}

// flowAccount handles the account button: records method plus account on
// the pending order and shows payment instructions.
func (h *Handlers) flowAccount(ctx context.Context, tgID int64, accountID int64, method domain.Method) (string, error) {
	order, err := h.locateOrder(ctx, tgID)
	if errors.Is(err, service.ErrNoPendingOrder) {
		return msgNoPendingOrder, nil
	}
	if err != nil {
		return "", err
	}

	acc, err := h.orders.AssignSettlement(ctx, order.ID, method, accountID)
	if err != nil {
		return "", err
	}

	h.sessions.Advance(tgID, session.StepAwaitReceipt)
	return accountDetail(acc, method) + "\n\n" + msgUploadReceipt, nil
}

// flowReceipt attaches an uploaded file to the user's pending order.
func (h *Handlers) flowReceipt(ctx context.Context, tgID int64, fileName string, body io.Reader) (string, error) {
	user, err := h.users.ByTgID(ctx, tgID)
	if err != nil {
		return msgNoPendingTx, nil
	}

	if _, err := h.receipts.Attach(ctx, user.ID, fileName, body); err != nil {
		if errors.Is(err, service.ErrNoPendingOrder) {
			return msgNoPendingTx, nil
		}
		return msgReceiptFail, err
	}

	h.sessions.Clear(tgID)
	return msgReceiptOK, nil
}

// flowCierre computes the day's closing. A storage failure degrades to a
// retry message so the admin always gets a reply.
func (h *Handlers) flowCierre(ctx context.Context) (string, error) {
	sum, err := h.summary.Compute(ctx)
	if err != nil {
		logger.SVCSummary.Warn("closing unavailable",
			slog.String("event", "summary.compute_failed"),
			slog.String("err", err.Error()),
		)
		return msgCierreFail, nil
	}
	return sum.Format(), nil
}

// locateOrder prefers the live session's order and falls back to the
// newest unassigned pending order, so flows survive restarts and expiry.
func (h *Handlers) locateOrder(ctx context.Context, tgID int64) (domain.Order, error) {
	if s, ok := h.sessions.Get(tgID); ok && s.OrderID > 0 {
		if order, err := h.orders.AssignableByID(ctx, s.OrderID); err == nil {
			return order, nil
		}
		// session points at a stale order, fall through to the locator
		h.sessions.Clear(tgID)
	}

	user, err := h.users.ByTgID(ctx, tgID)
	if err != nil {
		return domain.Order{}, service.ErrNoPendingOrder
	}
	return h.orders.LocatePending(ctx, user.ID, true)
}
