package middleware

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

type senderContext struct {
	tele.Context
	user *tele.User
}

func (c senderContext) Sender() *tele.User { return c.user }

func TestAdminOnlyMiddlewareRejectsWithReply(t *testing.T) {
	var nextCalled, rejected bool
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID: 99,
		OnReject: func(c tele.Context) error {
			rejected = true
			return nil
		},
	})
	h := mw(func(c tele.Context) error {
		nextCalled = true
		return nil
	})

	if err := h(senderContext{user: &tele.User{ID: 7}}); err != nil {
		t.Fatal(err)
	}
	if nextCalled {
		t.Error("handler ran for a non-admin sender")
	}
	if !rejected {
		t.Error("non-admin sender got no rejection reply")
	}

	nextCalled, rejected = false, false
	if err := h(senderContext{user: &tele.User{ID: 99}}); err != nil {
		t.Fatal(err)
	}
	if !nextCalled || rejected {
		t.Errorf("admin path: next=%v rejected=%v", nextCalled, rejected)
	}
}

func TestAdminOnlyMiddlewareDisabledWithoutID(t *testing.T) {
	var nextCalled bool
	mw := AdminOnlyMiddleware(AdminOptions{})
	h := mw(func(c tele.Context) error {
		nextCalled = true
		return nil
	})
	if err := h(senderContext{user: &tele.User{ID: 7}}); err != nil {
		t.Fatal(err)
	}
	if !nextCalled {
		t.Error("zero AdminID must not gate handlers")
	}
}
