// Package session provides an in-memory conversational session store with
// explicit expiry. Each Telegram user has at most one active session, which
// tracks where in a multi-step flow they are and which order the flow is
// operating on. Sessions are advisory: handlers fall back to persistent
// storage when no live session exists (process restart, expiry).
package session

import "time"

// Step identifies a position in a multi-step conversation flow.
type Step string

const (
	// StepNone means no flow is in progress.
	StepNone Step = ""
	// StepAwaitMethod means an order was created and the user must pick a
	// payment method.
	StepAwaitMethod Step = "await_method"
	// StepAwaitAccount means a method was chosen and the user must pick a
	// receiving account.
	StepAwaitAccount Step = "await_account"
	// StepAwaitReceipt means an account was assigned and the user must send
	// a payment receipt file.
	StepAwaitReceipt Step = "await_receipt"
)

// Session is a snapshot of one user's flow position.
type Session struct {
	Step     Step
	OrderID  int64
	Deadline time.Time
}

// Expired reports whether the session deadline has passed at the given time.
func (s Session) Expired(now time.Time) bool {
	return !s.Deadline.IsZero() && now.After(s.Deadline)
}
