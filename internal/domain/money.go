package domain

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal string entered in a form.
// Empty, non-numeric, zero and negative values return ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	return amount, nil
}

// FormatRupiah renders an amount the way the dashboard shows money, e.g. "Rp 150.000".
func FormatRupiah(amount decimal.Decimal) string {
	return "Rp " + FormatThousands(amount)
}

// FormatThousands renders an amount with '.' thousands separators. Fractions
// are kept after a ',' so a short balance never prints as equal to the amount.
func FormatThousands(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	whole := amount.Truncate(0)
	out := strings.ReplaceAll(humanize.BigComma(whole.BigInt()), ",", ".")

	if frac := amount.Sub(whole); !frac.IsZero() {
		out += "," + strings.TrimPrefix(frac.String(), "0.")
	}

	return sign + out
}
