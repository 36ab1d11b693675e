package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	wsol = "So11111111111111111111111111111111111111112"
	usdc = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

func TestParse(t *testing.T) {
	assert.Equal(t, Solana, Parse("Solana"))
	assert.Equal(t, Ethereum, Parse(" eth "))
	assert.Equal(t, BSC, Parse("bnb"))
	assert.Equal(t, Unknown, Parse("tron"))
}

func TestClassifyAddress(t *testing.T) {
	tests := []struct {
		addr string
		want Chain
	}{
		{wsol, Solana},
		{usdc, Ethereum},
		{"a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Unknown},
		{"0x123", Unknown},
		{"not an address", Unknown},
		{"0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyAddress(tt.addr), tt.addr)
	}
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress(Solana, wsol))
	assert.False(t, ValidAddress(Solana, usdc))
	assert.True(t, ValidAddress(Base, usdc))
	assert.False(t, ValidAddress(Ethereum, wsol))
	assert.False(t, ValidAddress(Unknown, wsol))
}

func TestExplorerURL(t *testing.T) {
	assert.Equal(t, "https://dexscreener.com/solana/"+wsol, ExplorerURL("solana", wsol))
	assert.Equal(t, "https://dexscreener.com/ethereum/0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", ExplorerURL("ethereum", usdc))
	assert.Equal(t, "https://dexscreener.com/solana/"+wsol, ExplorerURL("", wsol), "chain guessed from address")
	assert.Equal(t, "", ExplorerURL("solana", usdc))
	assert.Equal(t, "", ExplorerURL("tron", "TXYZ"))
}
