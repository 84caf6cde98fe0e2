package model

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// SwapEvent is a completed swap as handed over by the ingestion side.
// Values are copied in and out of the engine, never shared.
type SwapEvent struct {
	MakerAddress         string  `json:"makerAddress"`
	TakerAddress         string  `json:"takerAddress"`
	MakerToken           string  `json:"makerToken"`
	TakerToken           string  `json:"takerToken"`
	MakerSymbol          string  `json:"makerSymbol"`
	TakerSymbol          string  `json:"takerSymbol"`
	MakerAmount          string  `json:"makerAmount"` // raw integer units
	TakerAmount          string  `json:"takerAmount"` // raw integer units
	MakerAmountFormatted string  `json:"makerAmountFormatted"`
	TakerAmountFormatted string  `json:"takerAmountFormatted"`
	EthAmount            float64 `json:"ethAmount"`
	Price                float64 `json:"price"`
	BaseTokenAmount      float64 `json:"baseTokenAmount"`
	BaseTokenSymbol      string  `json:"baseTokenSymbol"`
	TokenAddress         string  `json:"tokenAddress"`
	TokenAmount          float64 `json:"tokenAmount"`
	TokenSymbol          string  `json:"tokenSymbol"`
	Nonce                string  `json:"nonce"`
	Expiration           string  `json:"expiration"`
	Timestamp            int64   `json:"timestamp"` // unix seconds
	TransactionHash      string  `json:"transactionHash"`
}

// TimestampMillis is the execution time in milliseconds since epoch.
func (s SwapEvent) TimestampMillis() int64 { return s.Timestamp * 1000 }

// ConsistentAmounts reports whether formatted is raw scaled down by decimals.
func ConsistentAmounts(raw, formatted string, decimals int) bool {
	r, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return false
	}
	f, err := decimal.NewFromString(formatted)
	if err != nil {
		return false
	}
	return decimal.NewFromBigInt(r, int32(-decimals)).Equal(f)
}

// NormalizeAddress lowercases a hex address so it can be used as a map key.
// Anything that is not a hex address comes back trimmed but otherwise untouched.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return addr
	}
	return strings.ToLower(common.HexToAddress(addr).Hex())
}

// ChecksumAddress returns the EIP-55 form of addr, or addr itself when it is
// not a hex address.
func ChecksumAddress(addr string) string {
	if !common.IsHexAddress(addr) {
		return addr
	}
	return common.HexToAddress(addr).Hex()
}
