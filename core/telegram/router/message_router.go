package router

import (
	"time"

	tele "gopkg.in/telebot.v4"

	tg "tasabot/core/telegram"
	"tasabot/core/telegram/middleware"
)

// TextOptions controls fallback behaviour for plain text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoute builds the handler for free-form text. Slash commands typed as
// text (including ones with an argument tail, e.g. "/comprar 100") are
// resolved through the registry; anything else goes to the registered
// fallback.
func TextRoute(reg *tg.Registry, opts TextOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

// MediaRoutes wires incoming photos and documents to a single receipt
// handler. Both update kinds carry payment receipts in this bot.
func MediaRoutes(receipt tele.HandlerFunc) []tg.Route {
	wrap := func(name string) tele.HandlerFunc {
		h := func(c tele.Context) error {
			start := time.Now()
			if receipt == nil {
				logHandlerSummary(c, name, start, "skip", "ok", nil)
				return nil
			}
			return handleWithSummary(c, name, start, "", "", func() error {
				return receipt(c)
			})
		}
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}

	return []tg.Route{
		{Endpoint: tele.OnPhoto, Handler: wrap("receipt_photo")},
		{Endpoint: tele.OnDocument, Handler: wrap("receipt_document")},
	}
}
