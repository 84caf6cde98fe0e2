// Package selector projects the slices each widget needs out of a read-only
// state snapshot. Nothing here mutates the state or caches a result.
package selector

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"swapboard/internal/format"
	"swapboard/internal/model"

	"github.com/shopspring/decimal"
)

var ErrTokenNotFound = errors.New("token not found")

// State is the read-only view of the application store.
type State interface {
	Trades() []model.SwapEvent
	ApprovedTokens() map[string]model.TokenMetadata
	TokensByAddress() map[string]model.TokenMetadata
	Rate(symbol string) (decimal.Decimal, bool)
}

// RecentSwaps returns the trades in the order the store supplies them.
func RecentSwaps(st State) []model.SwapEvent {
	return st.Trades()
}

type SearchInputProps struct {
	StablecoinTokens []model.TokenMetadata `json:"stablecoinTokens"`
	AllOtherTokens   []model.TokenMetadata `json:"allOtherTokens"`
}

// SearchTokens splits the approved tokens into stablecoins and everything else.
// Every approved token lands in exactly one group.
func SearchTokens(st State, stablecoins []string) SearchInputProps {
	allow := make(map[string]struct{}, len(stablecoins))
	for _, s := range stablecoins {
		allow[s] = struct{}{}
	}

	props := SearchInputProps{
		StablecoinTokens: []model.TokenMetadata{},
		AllOtherTokens:   []model.TokenMetadata{},
	}
	for _, tok := range st.ApprovedTokens() {
		if _, ok := allow[tok.Symbol]; ok {
			tok.Kind = model.Stablecoin
			props.StablecoinTokens = append(props.StablecoinTokens, tok)
		} else {
			tok.Kind = model.Other
			props.AllOtherTokens = append(props.AllOtherTokens, tok)
		}
	}
	sortTokens(props.StablecoinTokens)
	sortTokens(props.AllOtherTokens)
	return props
}

func sortTokens(tokens []model.TokenMetadata) {
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].Symbol != tokens[j].Symbol {
			return tokens[i].Symbol < tokens[j].Symbol
		}
		return tokens[i].Address < tokens[j].Address
	})
}

// LookupToken resolves q by address first, then by symbol.
func LookupToken(st State, q model.TokenQuery) (model.TokenMetadata, error) {
	byAddr := st.TokensByAddress()
	if q.Address != "" {
		if tok, ok := byAddr[model.NormalizeAddress(q.Address)]; ok {
			return tok, nil
		}
	}
	if q.Symbol != "" {
		var found []model.TokenMetadata
		for _, tok := range byAddr {
			if strings.EqualFold(tok.Symbol, q.Symbol) {
				found = append(found, tok)
			}
		}
		if len(found) > 0 {
			sortTokens(found)
			return found[0], nil
		}
	}
	return model.TokenMetadata{}, fmt.Errorf("%w: %+v", ErrTokenNotFound, q)
}

// DisplayByToken scales a raw amount by the token's decimals and renders it
// as "<amount> <symbol>".
func DisplayByToken(st State, q model.TokenQuery, rawAmount string) (string, error) {
	tok, err := LookupToken(st, q)
	if err != nil {
		return "", err
	}
	human, err := format.ScaleRaw(rawAmount, tok.Decimals)
	if err != nil {
		return "", err
	}
	return format.DisplayAmountFormatted(human, tok.Symbol)
}
