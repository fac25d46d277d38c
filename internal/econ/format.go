package econ

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// suffixes for Abbreviate, largest first.
var suffixes = []struct {
	value  float64
	symbol string
}{
	{1e33, "Dc"}, {1e30, "No"}, {1e27, "Oc"}, {1e24, "Sp"}, {1e21, "Sx"},
	{1e18, "Qi"}, {1e15, "Qa"}, {1e12, "T"}, {1e9, "B"}, {1e6, "M"}, {1e3, "K"},
}

// Abbreviate writes large amounts with a short-scale suffix and two
// decimals ("1.50M"), smaller ones with thousands separators ("999.00").
// Amounts beyond 1e36 and infinities print as "∞".
func Abbreviate(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 0) || math.Abs(v) >= 1e36:
		if v < 0 {
			return "-∞"
		}
		return "∞"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	for _, s := range suffixes {
		if v >= s.value {
			return sign + printer.Sprintf("%.2f%s", v/s.value, s.symbol)
		}
	}
	return sign + printer.Sprintf("%.2f", v)
}

// Money formats an amount as dollars with thousands separators.
func Money(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

// Percent formats a fraction as a percentage with two decimals.
func Percent(fraction float64) string {
	return printer.Sprintf("%.2f%%", fraction*100)
}
