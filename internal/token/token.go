// Package token holds the statically enumerated token registry and
// conversions between display amounts and smallest-unit amounts.
package token

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Token describes a swappable asset as the UI presents it.
type Token struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	LogoURI  string `json:"logoURI"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

var registry = []Token{
	{Symbol: "SOL", Name: "Solana", LogoURI: "/tokens/sol.png", Address: "So11111111111111111111111111111111111111112", Decimals: 9},
	{Symbol: "USDC", Name: "USD Coin", LogoURI: "/tokens/usdc.png", Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
	{Symbol: "USDT", Name: "Tether USD", LogoURI: "/tokens/usdt.png", Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
	{Symbol: "JUP", Name: "Jupiter", LogoURI: "/tokens/jup.png", Address: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Decimals: 6},
}

// All returns a copy of the registry.
func All() []Token {
	out := make([]Token, len(registry))
	copy(out, registry)
	return out
}

// BySymbol looks a token up by its display symbol.
func BySymbol(symbol string) (Token, bool) {
	for _, t := range registry {
		if t.Symbol == symbol {
			return t, true
		}
	}
	return Token{}, false
}

// ByMint looks a token up by its mint address.
func ByMint(address string) (Token, bool) {
	for _, t := range registry {
		if t.Address == address {
			return t, true
		}
	}
	return Token{}, false
}

// ToTokenAmount converts a display amount to the smallest unit, flooring
// any fraction below the token's precision.
func ToTokenAmount(amount decimal.Decimal, decimals int) uint64 {
	shifted := amount.Shift(int32(decimals)).Floor()
	if shifted.Sign() <= 0 {
		return 0
	}
	return shifted.BigInt().Uint64()
}

// FromTokenAmount converts a smallest-unit amount string back to a display
// amount. Inverse of ToTokenAmount for integer-aligned inputs.
func FromTokenAmount(raw string, decimals int) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse token amount %q: %w", raw, err)
	}
	return d.Shift(int32(-decimals)), nil
}
