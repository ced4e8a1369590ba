// Package currency converts and formats amounts for display. The workflow
// never calls it: requests keep the amount and currency of the selected quote.
package currency

import (
	"strings"

	"procurement/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ptBR groups thousands with "." the way the portal's locale does.
var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// Fixed reference rates; a live feed is out of scope.
var (
	rateUSDToBRL = decimal.RequireFromString("5.20")
	rateBRLToUSD = decimal.RequireFromString("0.19")
)

// Rate returns how many units of to one unit of from is worth.
func Rate(from, to model.Currency) decimal.Decimal {
	switch {
	case from == to:
		return decimal.NewFromInt(1)
	case from == model.CurrencyUSD && to == model.CurrencyBRL:
		return rateUSDToBRL
	case from == model.CurrencyBRL && to == model.CurrencyUSD:
		return rateBRLToUSD
	}
	return decimal.NewFromInt(1)
}

func Convert(amount decimal.Decimal, from, to model.Currency) decimal.Decimal {
	return amount.Mul(Rate(from, to))
}

func Symbol(c model.Currency) string {
	if c == model.CurrencyBRL {
		return "R$"
	}
	return "$"
}

// Format renders amount the way the portal displays money (pt-BR grouping,
// two decimals rounded half-up). A null amount renders as "-".
func Format(amount decimal.NullDecimal, c model.Currency) string {
	if !amount.Valid {
		return "-"
	}

	prefix := "R$"
	if c == model.CurrencyUSD {
		prefix = "US$"
	}

	rounded := amount.Decimal.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	abs := rounded.Abs()
	_, frac, _ := strings.Cut(abs.StringFixed(2), ".")

	return sign + prefix + " " + ptBR.Sprintf("%d", abs.IntPart()) + "," + frac
}
