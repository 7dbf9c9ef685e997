package bot

import (
	tg "tasabot/core/telegram"
	"tasabot/core/telegram/commands"
	"tasabot/core/telegram/ui"
)

// Register wires the command set, callback handlers and fallbacks into the
// registry.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Iniciar el bot",
	})
	reg.RegisterCommand("/tasas", commands.Command{
		Handler:     h.Tasas,
		Description: "Ver tasas actuales",
	})
	reg.RegisterCommand("/comprar", commands.Command{
		Handler:     h.Comprar,
		Description: "Cotizar compra de USD",
	})
	reg.RegisterCommand("/vender", commands.Command{
		Handler:     h.Vender,
		Description: "Cotizar venta de USD",
	})
	reg.RegisterCommand("/set_compra", commands.Command{
		Handler:     h.SetCompra,
		Description: "Fijar tasa de compra",
		Hidden:      true,
	})
	reg.RegisterCommand("/set_venta", commands.Command{
		Handler:     h.SetVenta,
		Description: "Fijar tasa de venta",
		Hidden:      true,
	})
	reg.RegisterCommand("/cierre", commands.Command{
		Handler:     h.Cierre,
		Description: "Cierre diario",
		AdminOnly:   true,
		Hidden:      true,
	})

	if err := reg.RegisterCallback(cbMethod, h.OnMethod); err != nil {
		return err
	}
	if err := reg.RegisterCallback(cbAccount, h.OnAccount); err != nil {
		return err
	}

	var fb ui.FallbackProvider = h
	reg.SetTextFallback(fb.UnknownText)
	reg.SetCallbackNotFound(fb.UnknownCallback)
	return nil
}
