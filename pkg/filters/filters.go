// Package filters holds the token filter thresholds a user edits in the app
// and the pure helpers used to validate and label them.
package filters

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Field keys, in rendering order.
const (
	MinLiquidity             = "minLiquidity"
	MaxLiquidity             = "maxLiquidity"
	MinMarketCap             = "minMarketCap"
	MaxMarketCap             = "maxMarketCap"
	MinFullyDilutedValuation = "minFullyDilutedValuation"
	MaxFullyDilutedValuation = "maxFullyDilutedValuation"
	MinAge                   = "minAge"
	MaxAge                   = "maxAge"
	MinTransactions          = "minTransactions"
	MaxTransactions          = "maxTransactions"
)

var keys = []string{
	MinLiquidity, MaxLiquidity,
	MinMarketCap, MaxMarketCap,
	MinFullyDilutedValuation, MaxFullyDilutedValuation,
	MinAge, MaxAge,
	MinTransactions, MaxTransactions,
}

// Keys returns the ten field keys in rendering order.
func Keys() []string {
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// IsKey reports whether key names one of the ten filter fields.
func IsKey(key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// Filters is the flat threshold object sent to the backend. Values are kept as
// strings so partial input such as "12." survives editing.
type Filters struct {
	MinLiquidity             string `json:"minLiquidity"`
	MaxLiquidity             string `json:"maxLiquidity"`
	MinMarketCap             string `json:"minMarketCap"`
	MaxMarketCap             string `json:"maxMarketCap"`
	MinFullyDilutedValuation string `json:"minFullyDilutedValuation"`
	MaxFullyDilutedValuation string `json:"maxFullyDilutedValuation"`
	MinAge                   string `json:"minAge"`
	MaxAge                   string `json:"maxAge"`
	MinTransactions          string `json:"minTransactions"`
	MaxTransactions          string `json:"maxTransactions"`
}

func (f *Filters) field(key string) *string {
	switch key {
	case MinLiquidity:
		return &f.MinLiquidity
	case MaxLiquidity:
		return &f.MaxLiquidity
	case MinMarketCap:
		return &f.MinMarketCap
	case MaxMarketCap:
		return &f.MaxMarketCap
	case MinFullyDilutedValuation:
		return &f.MinFullyDilutedValuation
	case MaxFullyDilutedValuation:
		return &f.MaxFullyDilutedValuation
	case MinAge:
		return &f.MinAge
	case MaxAge:
		return &f.MaxAge
	case MinTransactions:
		return &f.MinTransactions
	case MaxTransactions:
		return &f.MaxTransactions
	}
	return nil
}

// Get returns the value of key, or "" for unknown keys.
func (f Filters) Get(key string) string {
	if p := f.field(key); p != nil {
		return *p
	}
	return ""
}

// Set stores value under key without validation. It reports false for unknown keys.
func (f *Filters) Set(key, value string) bool {
	p := f.field(key)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Map returns all ten fields, empty ones included.
func (f Filters) Map() map[string]string {
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[k] = f.Get(k)
	}
	return m
}

func (f Filters) String() string {
	b, _ := json.Marshal(f)
	return string(b)
}

var decimalRe = regexp.MustCompile(`^\d*\.?\d*$`)

// ValidateField accepts digits with at most one decimal point, partial input
// ("12.", ".5") and the empty string.
func ValidateField(value string) bool {
	return value == "" || decimalRe.MatchString(value)
}

// ---- Labels ----

type Icon string

const (
	IconNone     Icon = ""
	IconCurrency Icon = "currency"
	IconCalendar Icon = "calendar"
	IconCount    Icon = "count"
)

// IconFor picks the field icon by substring match on the key.
func IconFor(key string) Icon {
	switch {
	case strings.Contains(key, "Liquidity"), strings.Contains(key, "MarketCap"), strings.Contains(key, "FullyDilutedValuation"):
		return IconCurrency
	case strings.Contains(key, "Age"):
		return IconCalendar
	case strings.Contains(key, "Transactions"):
		return IconCount
	}
	return IconNone
}

var minMaxRe = regexp.MustCompile(`^(min|max)`)

// LabelText turns a camelCase key into a human label, e.g. "minFullyDilutedValuation"
// becomes "Min Fully Diluted Valuation". Age fields get an "(hours)" suffix.
func LabelText(key string) string {
	prefix := "Max "
	if strings.HasPrefix(key, "min") {
		prefix = "Min "
	}
	label := prefix + strings.Join(splitUpper(minMaxRe.ReplaceAllString(key, "")), " ")
	if strings.Contains(key, "Age") {
		label += " (hours)"
	}
	return label
}

// splitUpper splits before every uppercase letter except the first rune.
func splitUpper(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			parts = append(parts, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}
