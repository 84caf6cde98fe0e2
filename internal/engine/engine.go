package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"swapboard/internal/format"
	"swapboard/internal/metrics"
	"swapboard/internal/model"
	"swapboard/internal/selector"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultLimit = 500

var ErrMissingHash = errors.New("swap has no transaction hash")

// Storage is the durable side of the snapshot. redisStorage.Store implements it.
type Storage interface {
	ApplySwap(ctx context.Context, ev model.SwapEvent) (bool, error)
	LoadRecentSwaps(ctx context.Context, limit int) ([]model.SwapEvent, error)
	SaveTokens(ctx context.Context, tokens []model.TokenMetadata) error
	LoadTokens(ctx context.Context) ([]model.TokenMetadata, error)
	SaveRate(ctx context.Context, symbol string, rate decimal.Decimal) error
	LoadRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Engine is the in-memory application state: recent swaps (most recent
// first), the token registry and reference rates. Readers get copies.
// True values live in Storage.
type Engine struct {
	mu     sync.RWMutex
	trades []model.SwapEvent
	tokens map[string]model.TokenMetadata // keyed by normalized address
	rates  map[string]decimal.Decimal
	limit  int

	store Storage
	log   *zap.Logger

	lmu       sync.Mutex
	listeners []func()
}

var (
	_ selector.State    = (*Engine)(nil)
	_ format.RateSource = (*Engine)(nil)
)

func NewEngine(store Storage, limit int, logger *zap.Logger) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		tokens: make(map[string]model.TokenMetadata),
		rates:  make(map[string]decimal.Decimal),
		limit:  limit,
		store:  store,
		log:    logger,
	}
}

// OnChange registers fn to run after every change to the snapshot.
func (e *Engine) OnChange(fn func()) {
	e.lmu.Lock()
	e.listeners = append(e.listeners, fn)
	e.lmu.Unlock()
}

func (e *Engine) notify() {
	e.lmu.Lock()
	fns := append([]func(){}, e.listeners...)
	e.lmu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Load restores the snapshot from storage after a restart.
func (e *Engine) Load(ctx context.Context) error {
	trades, err := e.store.LoadRecentSwaps(ctx, e.limit)
	if err != nil {
		return fmt.Errorf("load swaps: %w", err)
	}
	tokens, err := e.store.LoadTokens(ctx)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	rates, err := e.store.LoadRates(ctx)
	if err != nil {
		return fmt.Errorf("load rates: %w", err)
	}

	e.mu.Lock()
	e.trades = trades
	if len(e.trades) > e.limit {
		e.trades = e.trades[:e.limit]
	}
	e.tokens = make(map[string]model.TokenMetadata, len(tokens))
	for _, tok := range tokens {
		e.tokens[model.NormalizeAddress(tok.Address)] = tok
	}
	e.rates = rates
	if e.rates == nil {
		e.rates = make(map[string]decimal.Decimal)
	}
	n := len(e.trades)
	e.mu.Unlock()

	metrics.SnapshotSize.Set(float64(n))
	e.log.Info("snapshot loaded", zap.Int("swaps", n), zap.Int("tokens", len(tokens)), zap.Int("rates", len(rates)))
	e.notify()
	return nil
}

// Apply records ev in storage and in memory.
// Returns true if the swap was new and not a duplicate.
func (e *Engine) Apply(ctx context.Context, ev model.SwapEvent) (bool, error) {
	if ev.TransactionHash == "" {
		return false, ErrMissingHash
	}
	applied, err := e.store.ApplySwap(ctx, ev) // dedupe + persist atomically
	if err != nil {
		return false, err
	}
	if !applied {
		metrics.SwapsDuplicate.Inc()
		return false, nil
	}

	e.mu.Lock()
	trades := make([]model.SwapEvent, 0, min(len(e.trades)+1, e.limit))
	trades = append(trades, ev)
	trades = append(trades, e.trades...)
	if len(trades) > e.limit {
		trades = trades[:e.limit]
	}
	e.trades = trades
	n := len(trades)
	e.mu.Unlock()

	for _, side := range e.mismatchedSides(ev) {
		metrics.AmountMismatches.WithLabelValues(side).Inc()
		e.log.Warn("raw and formatted amounts disagree",
			zap.String("tx", ev.TransactionHash),
			zap.String("side", side),
		)
	}
	metrics.SwapsApplied.Inc()
	metrics.SnapshotSize.Set(float64(n))
	e.notify()
	return true, nil
}

// mismatchedSides lists the sides of ev whose formatted amount is not the raw
// amount scaled by the registry decimals. Unknown tokens and missing raw
// amounts are not checked.
func (e *Engine) mismatchedSides(ev model.SwapEvent) []string {
	e.mu.RLock()
	maker, makerOK := e.tokens[model.NormalizeAddress(ev.MakerToken)]
	taker, takerOK := e.tokens[model.NormalizeAddress(ev.TakerToken)]
	e.mu.RUnlock()

	var sides []string
	if makerOK && ev.MakerAmount != "" && !model.ConsistentAmounts(ev.MakerAmount, ev.MakerAmountFormatted, maker.Decimals) {
		sides = append(sides, "maker")
	}
	if takerOK && ev.TakerAmount != "" && !model.ConsistentAmounts(ev.TakerAmount, ev.TakerAmountFormatted, taker.Decimals) {
		sides = append(sides, "taker")
	}
	return sides
}

// SetTokens replaces the token registry.
func (e *Engine) SetTokens(ctx context.Context, tokens []model.TokenMetadata) error {
	if err := e.store.SaveTokens(ctx, tokens); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	next := make(map[string]model.TokenMetadata, len(tokens))
	for _, tok := range tokens {
		next[model.NormalizeAddress(tok.Address)] = tok
	}
	e.mu.Lock()
	e.tokens = next
	e.mu.Unlock()
	e.notify()
	return nil
}

// SetRate stores the reference-currency rate for symbol.
func (e *Engine) SetRate(ctx context.Context, symbol string, rate decimal.Decimal) error {
	if err := e.store.SaveRate(ctx, symbol, rate); err != nil {
		return fmt.Errorf("save rate %s: %w", symbol, err)
	}
	e.mu.Lock()
	e.rates[symbol] = rate
	e.mu.Unlock()
	e.notify()
	return nil
}

func (e *Engine) Trades() []model.SwapEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.SwapEvent, len(e.trades))
	copy(out, e.trades)
	return out
}

func (e *Engine) TokensByAddress() map[string]model.TokenMetadata {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]model.TokenMetadata, len(e.tokens))
	for k, v := range e.tokens {
		out[k] = v
	}
	return out
}

func (e *Engine) ApprovedTokens() map[string]model.TokenMetadata {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]model.TokenMetadata)
	for k, v := range e.tokens {
		if v.Approved {
			out[k] = v
		}
	}
	return out
}

func (e *Engine) Rate(symbol string) (decimal.Decimal, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rates[symbol]
	return r, ok
}
