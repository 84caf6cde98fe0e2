package widget

import (
	"errors"

	"swapboard/internal/format"
	"swapboard/internal/metrics"
	"swapboard/internal/model"

	"go.uber.org/zap"
)

// Row is everything a template needs to draw one swap.
type Row struct {
	Index int
	Top   int
	Key   string

	SignerToken  string
	SignerSymbol string
	SenderToken  string
	SenderSymbol string

	MakerDisplay string
	MakerFull    string
	TakerDisplay string
	TakerFull    string
	Value        string
	ValueFull    string
	TimeAgo      string
	ExplorerURL  string
}

func (r *Renderer) row(i int, s model.SwapEvent, p Props) Row {
	row := Row{
		Index:        i,
		Top:          i * RowHeight,
		Key:          "swap-list-item-" + s.TransactionHash,
		SignerToken:  s.MakerToken,
		SignerSymbol: s.MakerSymbol,
		SenderToken:  s.TakerToken,
		SenderSymbol: s.TakerSymbol,
		MakerFull:    format.DisplayAmount(s.MakerAmountFormatted, s.MakerSymbol),
		TakerFull:    format.DisplayAmount(s.TakerAmountFormatted, s.TakerSymbol),
		Value:        format.FormattedSwapValue(s, p.Rates),
		ValueFull:    format.FullSwapValue(s, p.Rates),
		TimeAgo:      format.TimeAgo(s.TimestampMillis(), p.Now),
		ExplorerURL:  r.linker.TxURL(s.TransactionHash),
	}

	var err error
	if row.MakerDisplay, err = format.DisplayAmountFormatted(s.MakerAmountFormatted, s.MakerSymbol); err != nil {
		r.formatFailed(s, "maker", err)
	}
	if row.TakerDisplay, err = format.DisplayAmountFormatted(s.TakerAmountFormatted, s.TakerSymbol); err != nil {
		r.formatFailed(s, "taker", err)
	}
	return row
}

func (r *Renderer) formatFailed(s model.SwapEvent, side string, err error) {
	if !errors.Is(err, format.ErrInvalidAmount) {
		return
	}
	metrics.FormatErrors.Inc()
	r.log.Warn("unformattable amount",
		zap.String("tx", s.TransactionHash),
		zap.String("side", side),
		zap.Error(err),
	)
}
