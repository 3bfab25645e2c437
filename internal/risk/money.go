package risk

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as a signed dollar figure with cents and thousands separators.
func FormatMoney(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	text := d.StringFixed(2)
	whole, cents, _ := strings.Cut(text, ".")

	var grouped strings.Builder

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}

		grouped.WriteRune(r)
	}

	return sign + "$" + grouped.String() + "." + cents
}

// FormatSignedMoney is FormatMoney with an explicit plus sign for gains.
func FormatSignedMoney(amount float64) string {
	if amount >= 0 {
		return "+" + FormatMoney(amount)
	}

	return FormatMoney(amount)
}
