package bot

import (
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	"tasabot/core/telegram/callbacks"
	tghelpers "tasabot/core/telegram/helpers"
	"tasabot/internal/domain"
)

// Start greets the user and registers them.
func (h *Handlers) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text, err := h.flowStart(ctx, c.Sender().ID, senderName(c.Sender()))
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, text)
}

// Tasas shows the open buy/sell pair.
func (h *Handlers) Tasas(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text, err := h.flowTasas(ctx)
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, text)
}

// SetCompra updates the buy side of the pair.
func (h *Handlers) SetCompra(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text, err := h.flowSetRate(ctx, c.Sender().ID, domain.OrderBuy, c.Text())
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, text)
}

// SetVenta updates the sell side of the pair.
func (h *Handlers) SetVenta(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text, err := h.flowSetRate(ctx, c.Sender().ID, domain.OrderSell, c.Text())
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, text)
}

// Comprar quotes a client purchase of USD (the desk sells).
func (h *Handlers) Comprar(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text, markup, err := h.flowQuote(ctx, c.Sender().ID, senderName(c.Sender()), domain.OrderSell, c.Text())
	if err != nil {
		return err
	}
	return sendWithOptionalMarkup(c, text, markup)
}

// Vender quotes a client sale of USD (the desk buys).
func (h *Handlers) Vender(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text, markup, err := h.flowQuote(ctx, c.Sender().ID, senderName(c.Sender()), domain.OrderBuy, c.Text())
	if err != nil {
		return err
	}
	return sendWithOptionalMarkup(c, text, markup)
}

// Cierre computes the current day's closing on demand.
func (h *Handlers) Cierre(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text, err := h.flowCierre(ctx)
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, text)
}

// OnMethod handles the settlement-method button.
func (h *Handlers) OnMethod(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	method, ok := domain.ValidMethod(strings.TrimSpace(callbacks.CallbackPayload(c)))
	if !ok {
		return tghelpers.SendMD(c, msgBadButton)
	}

	text, markup, err := h.flowMethod(ctx, c.Sender().ID, method)
	if err != nil {
		return err
	}
	return sendWithOptionalMarkup(c, text, markup)
}

// OnAccount handles the receiving-account button. Its payload carries
// "<accountID>:<method>".
func (h *Handlers) OnAccount(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	accountID, tag, err := callbacks.PayloadIDAndTag(c, ":")
	if err != nil {
		if errors.Is(err, callbacks.ErrMalformedPayload) {
			return tghelpers.SendMD(c, msgBadButton)
		}
		return err
	}
	method, ok := domain.ValidMethod(tag)
	if !ok {
		return tghelpers.SendMD(c, msgBadButton)
	}

	text, err := h.flowAccount(ctx, c.Sender().ID, accountID, method)
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, text)
}

// Receipt handles uploaded photos and documents.
func (h *Handlers) Receipt(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	file, name := receiptFile(c.Message())
	if file == nil {
		return tghelpers.SendMD(c, msgNoPendingTx)
	}

	body, err := c.Bot().File(file)
	if err != nil {
		return tghelpers.SendMD(c, msgReceiptFail)
	}
	defer body.Close()

	text, err := h.flowReceipt(ctx, c.Sender().ID, name, body)
	if err != nil {
		// the user already got feedback, surface the cause to the router log
		_ = tghelpers.SendMD(c, text)
		return err
	}
	return tghelpers.SendMD(c, text)
}

// AdminReject answers admin-only commands invoked by anyone else. Silence
// here would leave the sender without any reply.
func (h *Handlers) AdminReject(c tele.Context) error {
	return tghelpers.SendMD(c, msgAdminOnly)
}

// UnknownText nudges the user towards the known commands.
func (h *Handlers) UnknownText(c tele.Context) error {
	return tghelpers.SendMD(c, msgUnknown)
}

// UnknownCallback covers buttons from retired keyboards.
func (h *Handlers) UnknownCallback(c tele.Context) error {
	return tghelpers.SendMD(c, msgBadButton)
}

// receiptFile picks the uploaded file reference: the photo (Telegram sends
// only one size reference at message level via telebot) or the document.
func receiptFile(m *tele.Message) (*tele.File, string) {
	if m == nil {
		return nil, ""
	}
	if m.Photo != nil {
		return &m.Photo.File, "captura.jpg"
	}
	if m.Document != nil {
		name := m.Document.FileName
		if name == "" {
			name = "comprobante.pdf"
		}
		return &m.Document.File, name
	}
	return nil, ""
}

func sendWithOptionalMarkup(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if markup != nil {
		return tghelpers.SendMD(c, text, markup)
	}
	return tghelpers.SendMD(c, text)
}

// senderName mirrors how the user's display name is stored: full name,
// falling back to the username, then a generic placeholder.
func senderName(u *tele.User) string {
	if u == nil {
		return "Usuario"
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return "Usuario"
}
