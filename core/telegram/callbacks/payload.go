package callbacks

import (
	"errors"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ErrMalformedPayload marks callback data that fails strict decoding.
// Handlers treat it as user guidance, never as a crash.
var ErrMalformedPayload = errors.New("callbacks: malformed payload")

// PayloadInt64 parses callback payload as int64.
func PayloadInt64(c tele.Context) (int64, error) {
	v, err := strconv.ParseInt(CallbackPayload(c), 10, 64)
	if err != nil {
		return 0, ErrMalformedPayload
	}
	return v, nil
}

// PayloadFields splits the payload on sep and validates the exact field
// count, rejecting empty fields. This is the strict decode used by typed
// payload variants.
func PayloadFields(c tele.Context, sep string, n int) ([]string, error) {
	p := CallbackPayload(c)
	if p == "" {
		return nil, ErrMalformedPayload
	}
	parts := strings.Split(p, sep)
	if len(parts) != n {
		return nil, ErrMalformedPayload
	}
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return nil, ErrMalformedPayload
		}
	}
	return parts, nil
}

// PayloadIDAndTag parses a "<int64><sep><string>" payload, the common shape
// for selection buttons that carry a record id plus a discriminator.
func PayloadIDAndTag(c tele.Context, sep string) (int64, string, error) {
	parts, err := PayloadFields(c, sep, 2)
	if err != nil {
		return 0, "", err
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", ErrMalformedPayload
	}
	return id, strings.TrimSpace(parts[1]), nil
}
