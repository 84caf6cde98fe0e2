package format

import (
	"errors"

	"swapboard/internal/model"

	"github.com/shopspring/decimal"
)

var ErrRateUnavailable = errors.New("rate unavailable")

// ReferenceAsset is the asset EthAmount is denominated in.
const ReferenceAsset = "ETH"

// RateSource prices a symbol in the reference currency (USD).
type RateSource interface {
	Rate(symbol string) (decimal.Decimal, bool)
}

// SwapValue is the notional value of s in the reference currency. The base
// token side is priced when a rate exists for it, otherwise EthAmount is used.
func SwapValue(s model.SwapEvent, rates RateSource) (decimal.Decimal, error) {
	if rates == nil {
		return decimal.Zero, ErrRateUnavailable
	}
	if s.BaseTokenSymbol != "" && s.BaseTokenAmount != 0 {
		if rate, ok := rates.Rate(s.BaseTokenSymbol); ok {
			return decimal.NewFromFloat(s.BaseTokenAmount).Mul(rate), nil
		}
	}
	rate, ok := rates.Rate(ReferenceAsset)
	if !ok {
		return decimal.Zero, ErrRateUnavailable
	}
	return decimal.NewFromFloat(s.EthAmount).Mul(rate), nil
}

// FormattedSwapValue is the rounded value shown in the Value column, e.g. "$1,234.57".
func FormattedSwapValue(s model.SwapEvent, rates RateSource) string {
	v, err := SwapValue(s, rates)
	if err != nil {
		return Placeholder
	}
	return "$" + groupThousands(v.StringFixed(2))
}

// FullSwapValue is the unrounded value shown in the Value tooltip.
func FullSwapValue(s model.SwapEvent, rates RateSource) string {
	v, err := SwapValue(s, rates)
	if err != nil {
		return Placeholder
	}
	return "$" + v.String()
}
