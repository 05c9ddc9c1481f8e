package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount the way Indonesian reports print it,
// e.g. "Rp 1.250.000,00". Negative amounts are wrapped in parentheses.
func FormatRupiah(d decimal.Decimal) string {
	f, _ := d.Round(2).Abs().Float64()
	s := idPrinter.Sprintf("Rp %.2f", f)
	if d.IsNegative() {
		return "(" + s + ")"
	}
	return s
}
