package redisStorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"swapboard/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "embed"
)

// get embed package to include Lua script for atomic swap apply
//
//go:embed lua/applySwap.lua
var LuaScript string

var ErrUnexpectedResult = errors.New("unexpected result from redis")

const (
	recentKey = "swaps:recent"
	tokensKey = "tokens"
	ratesKey  = "rates"
)

type Store struct {
	cli       *redis.Client
	script    *redis.Script
	dedupeTTL int64
	maxLen    int
	log       *zap.Logger
}

func NewStore(cli *redis.Client, dedupeTTL time.Duration, maxLen int, logger *zap.Logger) *Store {
	ttl := int64(dedupeTTL.Seconds())
	if ttl < 1 {
		ttl = 1
	}
	if maxLen < 1 {
		maxLen = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		cli:       cli,
		script:    redis.NewScript(LuaScript),
		dedupeTTL: ttl,
		maxLen:    maxLen,
		log:       logger,
	}
}

func dedupeKey(hash string) string { return "dedupe:" + hash }

// ApplySwap pushes ev onto the recent list unless its transaction hash was
// seen within the dedupe TTL. Returns true if applied and not duplicated.
func (s *Store) ApplySwap(ctx context.Context, ev model.SwapEvent) (bool, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return false, fmt.Errorf("marshal swap %s: %w", ev.TransactionHash, err)
	}

	res, err := s.script.Run(ctx, s.cli, []string{dedupeKey(ev.TransactionHash), recentKey},
		payload, s.dedupeTTL, s.maxLen).Result()
	if err != nil {
		return false, err
	}
	return parseApplied(res)
}

func parseApplied(res any) (bool, error) {
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		// some Redis libs return string
		return v == "1", nil
	default:
		return false, fmt.Errorf("%w: %v", ErrUnexpectedResult, res)
	}
}

// LoadRecentSwaps returns up to limit swaps, most recent first.
// Entries that fail to decode are logged and skipped.
func (s *Store) LoadRecentSwaps(ctx context.Context, limit int) ([]model.SwapEvent, error) {
	if limit < 1 {
		return nil, nil
	}
	raw, err := s.cli.LRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	return decodeSwaps(raw, s.log), nil
}

func decodeSwaps(raw []string, log *zap.Logger) []model.SwapEvent {
	out := make([]model.SwapEvent, 0, len(raw))
	for _, item := range raw {
		var ev model.SwapEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			log.Warn("skip undecodable swap", zap.Error(err))
			continue
		}
		out = append(out, ev)
	}
	return out
}

// SaveTokens replaces the whole token registry.
func (s *Store) SaveTokens(ctx context.Context, tokens []model.TokenMetadata) error {
	fields := make([]any, 0, 2*len(tokens))
	for _, tok := range tokens {
		b, err := json.Marshal(tok)
		if err != nil {
			return fmt.Errorf("marshal token %s: %w", tok.Address, err)
		}
		fields = append(fields, model.NormalizeAddress(tok.Address), string(b))
	}

	_, err := s.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, tokensKey)
		if len(fields) > 0 {
			p.HSet(ctx, tokensKey, fields...)
		}
		return nil
	})
	return err
}

func (s *Store) LoadTokens(ctx context.Context) ([]model.TokenMetadata, error) {
	fields, err := s.cli.HGetAll(ctx, tokensKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.TokenMetadata, 0, len(fields))
	for addr, val := range fields {
		var tok model.TokenMetadata
		if err := json.Unmarshal([]byte(val), &tok); err != nil {
			s.log.Warn("skip undecodable token", zap.String("address", addr), zap.Error(err))
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}

func (s *Store) SaveRate(ctx context.Context, symbol string, rate decimal.Decimal) error {
	return s.cli.HSet(ctx, ratesKey, symbol, rate.String()).Err()
}

func (s *Store) LoadRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	fields, err := s.cli.HGetAll(ctx, ratesKey).Result()
	if err != nil {
		return nil, err
	}
	return decodeRates(fields, s.log), nil
}

func decodeRates(fields map[string]string, log *zap.Logger) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(fields))
	for sym, val := range fields {
		d, err := decimal.NewFromString(val)
		if err != nil {
			log.Warn("skip bad rate", zap.String("symbol", sym), zap.String("value", val))
			continue
		}
		out[sym] = d
	}
	return out
}
