package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"tasabot/core/telegram/commands"
)

func noop(c tele.Context) error { return nil }

func TestLookupCommandStripsArguments(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/comprar", commands.Command{Handler: noop, Description: "quote"})

	key, _, ok := reg.LookupCommand("/comprar 100")
	if !ok || key != "/comprar" {
		t.Fatalf("lookup = %q ok=%v", key, ok)
	}

	if _, _, ok := reg.LookupCommand("/desconocido"); ok {
		t.Fatal("unknown command must not resolve")
	}
}

func TestLookupCommandAliases(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/tasas", commands.Command{
		Handler:     noop,
		Description: "rates",
		Aliases:     []string{"rates"},
	})

	key, _, ok := reg.LookupCommand("rates")
	if !ok || key != "/tasas" {
		t.Fatalf("alias lookup = %q ok=%v", key, ok)
	}
}

func TestRegisterCommandValidation(t *testing.T) {
	reg := NewRegistry()

	reg.RegisterCommand("start", commands.Command{Handler: noop, Description: "x"}) // no slash
	reg.RegisterCommand("/nohandler", commands.Command{Description: "x"})
	reg.RegisterCommand("/nodesc", commands.Command{Handler: noop})

	if len(reg.Commands()) != 0 {
		t.Fatalf("invalid registrations accepted: %v", reg.Commands())
	}

	reg.RegisterCommand("/ok", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("/ok", commands.Command{Handler: noop, Description: "duplicate"})
	if got := reg.Commands()["/ok"].Description; got != "x" {
		t.Fatalf("duplicate must not replace: %q", got)
	}
}

func TestListCommandsHidesAdminAndHidden(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/tasas", commands.Command{Handler: noop, Description: "rates"})
	reg.RegisterCommand("/cierre", commands.Command{Handler: noop, Description: "closing", AdminOnly: true, Hidden: true})

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "/tasas" {
		t.Fatalf("visible = %v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 2 {
		t.Fatalf("all = %v", all)
	}
}

func TestCallbackRegistration(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("method", noop); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterCallback("method", noop); err == nil {
		t.Fatal("duplicate callback key must fail")
	}
	if _, ok := reg.GetCallback("method"); !ok {
		t.Fatal("registered callback not found")
	}
	if _, ok := reg.GetCallback("missing"); ok {
		t.Fatal("unknown callback must not resolve")
	}
}
