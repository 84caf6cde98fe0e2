package httpApi

import (
	"time"

	"swapboard/internal/selector"
	"swapboard/internal/webSocket"
	"swapboard/internal/widget"

	"go.uber.org/zap"
)

// LiveProps are the props of a pushed fragment. Pushes go to every
// subscriber of a variant, so they carry no per-instance view state.
func LiveProps(state selector.State, now time.Time) widget.Props {
	return widget.Props{
		Trades: selector.RecentSwaps(state),
		Rates:  state,
		Now:    now,
		Layout: widget.MediumUp,
	}
}

// Broadcaster returns a change listener that re-renders each variant with
// subscribers and pushes it through hub.
func Broadcaster(state selector.State, renderer *widget.Renderer, hub *webSocket.Hub, logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func() {
		for _, v := range widget.Variants {
			if hub.Count(string(v)) == 0 {
				continue
			}
			frag, err := renderer.Fragment(v, LiveProps(state, time.Now()))
			if err != nil {
				logger.Error("live render failed", zap.String("variant", string(v)), zap.Error(err))
				continue
			}
			hub.Broadcast(string(v), frag)
		}
	}
}
