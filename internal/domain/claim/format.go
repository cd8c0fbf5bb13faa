package claim

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatAmount renders a raw base-unit amount for display. The rendering is
// a pure function of (raw, decimals):
//   - zero is "0"
//   - below 0.0001 uses scientific notation with 4 significant digits
//   - below 1 uses 6 fixed decimals
//   - below 1000 uses 4 fixed decimals
//   - everything else is grouped with at most 2 decimals
func FormatAmount(raw *big.Int, decimals uint8) string {
	if raw == nil || raw.Sign() == 0 {
		return "0"
	}

	value := new(big.Rat).SetFrac(raw, pow10(int(decimals)))

	if value.Cmp(big.NewRat(1, 10000)) < 0 {
		return formatScientific(value)
	}

	// The tier is re-checked after rounding: 0.9999999 carries to 1 at six
	// decimals and 999.99999 carries to 1000 at four, so both render in the
	// next tier up instead of overflowing their own.
	if value.Cmp(big.NewRat(1, 1)) < 0 {
		if fixed := value.FloatString(6); strings.HasPrefix(fixed, "0.") {
			return fixed
		}
	}

	if value.Cmp(big.NewRat(1000, 1)) < 0 {
		fixed := value.FloatString(4)
		if intPart, _, _ := strings.Cut(fixed, "."); len(intPart) <= 3 {
			return fixed
		}
	}

	return formatGrouped(value)
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// formatScientific renders 0 < value < 0.0001 as m.mmme-x with 4 significant
// digits in the mantissa.
func formatScientific(value *big.Rat) string {
	one := big.NewRat(1, 1)
	ten := big.NewRat(10, 1)

	exponent := 0
	scaled := new(big.Rat).Set(value)
	for scaled.Cmp(one) < 0 {
		scaled.Mul(scaled, ten)
		exponent++
	}

	mantissa := scaled.FloatString(3)
	// Rounding can push the mantissa from 9.999... to 10.000, which bumps
	// the exponent down by one.
	if strings.HasPrefix(mantissa, "10") {
		mantissa = "1.000"
		exponent--
	}

	mantissa = strings.TrimRight(mantissa, "0")
	mantissa = strings.TrimRight(mantissa, ".")

	return fmt.Sprintf("%se-%d", mantissa, exponent)
}

func formatGrouped(value *big.Rat) string {
	fixed := value.FloatString(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	fracPart = strings.TrimRight(fracPart, "0")
	if fracPart == "" {
		return grouped.String()
	}

	return grouped.String() + "." + fracPart
}
