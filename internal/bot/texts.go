package bot

// User-facing strings. The bot speaks Spanish; identifiers stay English.
const (
	msgWelcome = "¡Bienvenido! Usa:\n/tasas – Ver tasas\n/comprar 100 – Cotiza para comprar USD\n/vender 120 – Cotiza para vender USD"

	msgNoRates     = "Aún no hay tasas activas. (Admin: usa /set_compra y /set_venta)"
	msgRatesFmt    = "Tasas actuales:\nCompra: *%s*\nVenta: *%s*"
	msgRateBuySet  = "OK. Tasa de *compra* actualizada a %s."
	msgRateSellSet = "OK. Tasa de *venta* actualizada a %s."

	msgUsageComprar   = "Uso: /comprar 100"
	msgUsageVender    = "Uso: /vender 120"
	msgUsageSetCompra = "Uso: /set_compra 36.15"
	msgUsageSetVenta  = "Uso: /set_venta 37.10"

	msgAdminOnly = "Solo admin."

	msgQuoteBuyFmt  = "Total a pagar en moneda local: *%s*.\nElige método:"
	msgQuoteSellFmt = "Te pagaremos *%s* en moneda local.\nElige método:"

	msgNoAccounts     = "No hay cuentas disponibles. Contacta soporte."
	msgChooseAccount  = "Elige la cuenta destino para tu pago:"
	msgNoPendingOrder = "No encontré una transacción pendiente. Inicia con /comprar o /vender."
	msgNoPendingTx    = "No encontré una transacción pendiente. Usa /comprar o /vender."

	msgUploadReceipt = "*Sube tu captura de pago* (foto o PDF) en este chat."

	msgReceiptOK   = "✅ Recibimos tu captura. Pronto te confirmamos."
	msgReceiptFail = "❌ Hubo un problema subiendo tu captura. Intenta de nuevo."

	msgCierreFail = "❌ No pude calcular el cierre. Intenta de nuevo."

	msgBadButton = "No pude leer ese botón. Intenta de nuevo desde /comprar o /vender."
	msgUnknown   = "No entendí. Usa /tasas, /comprar o /vender."

	msgBankDetailFmt  = "Transferencia bancaria\nBanco: *%s*\nCuenta: `%s`\nMoneda: %s"
	msgZelleDetailFmt = "Paga por *Zelle*\nUsuario: `%s`\nTitular: *%s*\nMoneda: %s"
)
