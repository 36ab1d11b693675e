package filters

import (
	"strings"
)

// DefaultScreenURL is the trending Solana new-pairs screen the backend starts every user on.
const DefaultScreenURL = "https://dexscreener.com/new-pairs?rankBy=trendingScoreH1&order=desc&chainIds=solana"

// dexscreener query parameter per filter key
var screenParams = map[string]string{
	MinLiquidity:             "minLiq",
	MaxLiquidity:             "maxLiq",
	MinMarketCap:             "minMarketCap",
	MaxMarketCap:             "maxMarketCap",
	MinFullyDilutedValuation: "minFdv",
	MaxFullyDilutedValuation: "maxFdv",
	MinAge:                   "minAge",
	MaxAge:                   "maxAge",
	MinTransactions:          "min24HTxns",
	MaxTransactions:          "max24HTxns",
}

// DexScreenerURL previews the screen the backend derives from f. Blank and
// non-numeric values are skipped.
func DexScreenerURL(f Filters) string {
	var params []string
	for _, k := range keys {
		v := strings.TrimSpace(f.Get(k))
		if v == "" || !isNumeric(v) {
			continue
		}
		params = append(params, screenParams[k]+"="+v)
	}
	if len(params) == 0 {
		return DefaultScreenURL
	}
	return DefaultScreenURL + "&" + strings.Join(params, "&")
}

// isNumeric requires at least one digit and at most one decimal point.
func isNumeric(v string) bool {
	digits := 0
	dots := 0
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}
