// Package chain classifies token addresses and builds explorer links for them.
package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

type Chain string

const (
	Solana   Chain = "solana"
	Ethereum Chain = "ethereum"
	BSC      Chain = "bsc"
	Base     Chain = "base"
	Arbitrum Chain = "arbitrum"
	Polygon  Chain = "polygon"
	Unknown  Chain = ""
)

const explorerBase = "https://dexscreener.com/"

var aliases = map[string]Chain{
	"solana": Solana, "sol": Solana,
	"ethereum": Ethereum, "eth": Ethereum,
	"bsc": BSC, "bnb": BSC,
	"base":     Base,
	"arbitrum": Arbitrum, "arb": Arbitrum,
	"polygon": Polygon, "matic": Polygon,
}

// Parse maps a backend chain label onto a known chain, case-insensitively.
func Parse(s string) Chain {
	return aliases[strings.ToLower(strings.TrimSpace(s))]
}

// IsEVM reports whether addresses on c are 20-byte hex.
func (c Chain) IsEVM() bool {
	switch c {
	case Ethereum, BSC, Base, Arbitrum, Polygon:
		return true
	}
	return false
}

// ClassifyAddress guesses the chain of a bare address. Hex addresses default
// to Ethereum; callers that know better should use the backend label.
func ClassifyAddress(addr string) Chain {
	switch {
	case common.IsHexAddress(addr) && strings.HasPrefix(addr, "0x"):
		return Ethereum
	case IsSolanaAddress(addr):
		return Solana
	}
	return Unknown
}

// IsSolanaAddress reports whether addr decodes to a 32-byte base58 public key.
func IsSolanaAddress(addr string) bool {
	if len(addr) < 32 || len(addr) > 44 {
		return false
	}
	_, err := solana.PublicKeyFromBase58(addr)
	return err == nil
}

// ValidAddress checks addr against the address format of c.
func ValidAddress(c Chain, addr string) bool {
	switch {
	case c == Solana:
		return IsSolanaAddress(addr)
	case c.IsEVM():
		return strings.HasPrefix(addr, "0x") && common.IsHexAddress(addr)
	}
	return false
}

// ExplorerURL returns the DexScreener page of a token, or "" when the chain is
// unknown or the address does not fit it. EVM addresses are checksummed.
func ExplorerURL(label, addr string) string {
	c := Parse(label)
	if c == Unknown {
		c = ClassifyAddress(addr)
	}
	if !ValidAddress(c, addr) {
		return ""
	}
	if c.IsEVM() {
		addr = common.HexToAddress(addr).Hex()
	}
	return explorerBase + string(c) + "/" + addr
}
