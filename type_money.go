package zenassist

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with its currency for human-facing report
// fields ("1 234,50 ₽", "$1,234.50"). Currencies the formatter does not know
// fall back to "<amount> <code>". Arithmetic stays in decimal form; this is
// presentation only.
func FormatAmount(amount decimal.Decimal, code string) string {
	currency := money.GetCurrency(code)
	if currency == nil {
		return fmt.Sprintf("%s %s", amount.StringFixed(2), code)
	}
	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// RoundAmount normalizes an amount to two decimal places for report output.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
