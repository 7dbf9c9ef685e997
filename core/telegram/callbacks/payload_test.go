package callbacks

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type cbContext struct {
	tele.Context
	cb *tele.Callback
}

func (c cbContext) Callback() *tele.Callback { return c.cb }

func ctxWithData(data string) tele.Context {
	return cbContext{cb: &tele.Callback{Data: data}}
}

func TestParseCallbackData(t *testing.T) {
	unique, payload := ParseCallbackData(&tele.Callback{Data: "\frcv|2:zelle"})
	if unique != "rcv" || payload != "2:zelle" {
		t.Errorf("parsed %q/%q", unique, payload)
	}

	// escaped prefix from JSON re-encoding
	unique, payload = ParseCallbackData(&tele.Callback{Data: "\\fmethod|zelle"})
	if unique != "method" || payload != "zelle" {
		t.Errorf("parsed %q/%q", unique, payload)
	}

	unique, payload = ParseCallbackData(&tele.Callback{Data: "method|bank"})
	if unique != "method" || payload != "bank" {
		t.Errorf("parsed %q/%q", unique, payload)
	}

	if u, p := ParseCallbackData(nil); u != "" || p != "" {
		t.Errorf("nil callback parsed %q/%q", u, p)
	}
}

func TestPayloadIDAndTag(t *testing.T) {
	id, tag, err := PayloadIDAndTag(ctxWithData("\frcv|2:zelle"), ":")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if id != 2 || tag != "zelle" {
		t.Errorf("got %d/%q", id, tag)
	}
}

func TestPayloadIDAndTagMalformed(t *testing.T) {
	cases := []string{
		"\frcv|",          // empty payload
		"\frcv|2",         // missing tag
		"\frcv|2:a:b",     // extra field
		"\frcv|abc:zelle", // non-numeric id
		"\frcv|0:zelle",   // id must be positive
		"\frcv|-3:zelle",  // negative id
		"\frcv|2: ",       // blank tag
	}
	for _, data := range cases {
		if _, _, err := PayloadIDAndTag(ctxWithData(data), ":"); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("data %q: err = %v, want ErrMalformedPayload", data, err)
		}
	}
}

func TestPayloadInt64(t *testing.T) {
	v, err := PayloadInt64(ctxWithData("\fpick|42"))
	if err != nil || v != 42 {
		t.Errorf("got %d err %v", v, err)
	}
	if _, err := PayloadInt64(ctxWithData("\fpick|x")); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("err = %v", err)
	}
}

func TestPayloadFields(t *testing.T) {
	fields, err := PayloadFields(ctxWithData("\fk|a:b:c"), ":", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 3 || fields[2] != "c" {
		t.Errorf("fields = %v", fields)
	}
	if _, err := PayloadFields(ctxWithData("\fk|a:b"), ":", 3); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("short payload err = %v", err)
	}
}
