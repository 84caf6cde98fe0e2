// Package format turns amounts, timestamps and swap values into display strings.
package format

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Placeholder is shown in place of a number that could not be formatted.
const Placeholder = "–"

// NumberConfig bounds how many decimals a formatted number keeps.
// Digits and MaxDecimals both cap the fraction; MinDecimals is padded back after
// trailing zeros are trimmed.
type NumberConfig struct {
	Digits      int
	MinDecimals int
	MaxDecimals int
}

// AmountConfig is used for every token amount shown in a swap row.
var AmountConfig = NumberConfig{Digits: 6, MinDecimals: 0, MaxDecimals: 6}

// Number parses num and renders it with cfg.
func Number(num string, cfg NumberConfig) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(num))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, num)
	}
	return Decimal(d, cfg), nil
}

// Decimal renders d with cfg; rounding is half away from zero.
func Decimal(d decimal.Decimal, cfg NumberConfig) string {
	places := cfg.MaxDecimals
	if cfg.Digits < places {
		places = cfg.Digits
	}
	if places < 0 {
		places = 0
	}
	minDecimals := cfg.MinDecimals
	if minDecimals > places {
		minDecimals = places
	}

	rounded := d.Round(int32(places))
	s := rounded.String()
	if fractionDigits(s) < minDecimals {
		s = rounded.StringFixed(int32(minDecimals))
	}
	return s
}

// DisplayAmountFormatted is the rounded "<amount> <symbol>" shown in a cell.
func DisplayAmountFormatted(amount, symbol string) (string, error) {
	n, err := Number(amount, AmountConfig)
	if err != nil {
		return Placeholder + " " + symbol, err
	}
	return n + " " + symbol, nil
}

// DisplayAmount is the unrounded "<amount> <symbol>" used for tooltips.
func DisplayAmount(amount, symbol string) string {
	return amount + " " + symbol
}

// ScaleRaw converts a raw integer amount to its human form using decimals.
func ScaleRaw(raw string, decimals int) (string, error) {
	r, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if decimals < 0 {
		return "", fmt.Errorf("%w: negative decimals %d", ErrInvalidAmount, decimals)
	}
	return decimal.NewFromBigInt(r, int32(-decimals)).String(), nil
}

func fractionDigits(s string) int {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}

// groupThousands inserts commas into the integer part of a plain decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
