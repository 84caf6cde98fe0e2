package model

type TokenKind string

const (
	Stablecoin TokenKind = "stablecoin"
	Other      TokenKind = "other"
)

// TokenMetadata describes a tradeable asset from the token registry.
type TokenMetadata struct {
	Address  string    `json:"address"`
	Symbol   string    `json:"symbol"`
	Name     string    `json:"name,omitempty"`
	Decimals int       `json:"decimals"`
	Kind     TokenKind `json:"kind,omitempty"`
	Approved bool      `json:"airswapApproved"`
}

// TokenQuery looks a token up by address, falling back to symbol.
type TokenQuery struct {
	Address string `json:"address,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
}
