package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command describes a registered bot command. Rate-setting and closing
// commands are admin-facing and stay out of the public command menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// MenuVisible reports whether the command belongs in the public command
// menu pushed to Telegram.
func (c Command) MenuVisible() bool {
	return !c.Hidden && !c.AdminOnly
}
