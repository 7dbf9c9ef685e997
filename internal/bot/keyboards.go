package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"tasabot/core/telegram/keyboard"
	"tasabot/internal/domain"
)

// Callback uniques. The account payload carries "<accountID>:<method>" so
// the final step knows both the destination and how the client pays.
const (
	cbMethod  = "method"
	cbAccount = "rcv"
)

// methodKeyboard offers the two settlement methods, one per row.
func methodKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Transferencia bancaria", Unique: cbMethod, Data: string(domain.MethodBank)},
		{Text: "Zelle", Unique: cbMethod, Data: string(domain.MethodZelle)},
	})
}

// accountsKeyboard lists one button per active receiving account.
func accountsKeyboard(accs []domain.ReceiveAccount, method domain.Method) *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(accs))
	for _, a := range accs {
		label := a.Label
		if label == "" {
			label = a.BankName
		}
		if label == "" {
			label = "Cuenta"
		}
		btns = append(btns, keyboard.InlineBtn{
			Text:   label,
			Unique: cbAccount,
			Data:   fmt.Sprintf("%d:%s", a.ID, method),
		})
	}
	return keyboard.InlineButtons(btns)
}

// accountDetail renders the payment instructions for the chosen account.
func accountDetail(acc domain.ReceiveAccount, method domain.Method) string {
	if method == domain.MethodZelle {
		return fmt.Sprintf(msgZelleDetailFmt, orDash(acc.ZelleUser), orDash(acc.ZelleHolder), acc.Currency)
	}
	return fmt.Sprintf(msgBankDetailFmt, orDash(acc.BankName), orDash(acc.AccountNumber), acc.Currency)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
