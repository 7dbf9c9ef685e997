package bot

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errBadAmount = errors.New("bot: invalid amount")

// parseAmountArg extracts the numeric argument from a command message like
// "/comprar 100". Rejects missing, non-numeric and non-positive values.
func parseAmountArg(text string) (decimal.Decimal, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return decimal.Decimal{}, errBadAmount
	}
	return parsePositiveDecimal(fields[1])
}

// parsePositiveDecimal parses a strictly positive decimal, accepting a comma
// as the decimal separator since amounts often arrive typed that way.
func parsePositiveDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errBadAmount
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, errBadAmount
	}
	return d, nil
}
