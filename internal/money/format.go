package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Position places the currency marker before (symbol) or after (code) the amount.
type Position string

const (
	Front Position = "front"
	Back  Position = "back"
)

// Format renders amount with the currency locale's grouping. decimals is capped
// at the currency's MaxDecimals.
func Format(amount decimal.Decimal, c Currency, decimals int, pos Position) string {
	if decimals > c.MaxDecimals {
		decimals = c.MaxDecimals
	}
	if decimals < 0 {
		decimals = 0
	}

	tag, err := language.Parse(c.Locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	p := message.NewPrinter(tag)
	rendered := p.Sprint(number.Decimal(
		amount.Round(int32(decimals)).InexactFloat64(),
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))

	if pos == Back {
		return fmt.Sprintf("%s %s", rendered, c.Code)
	}
	return fmt.Sprintf("%s %s", c.Symbol, rendered)
}
