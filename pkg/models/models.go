package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// ---- Backend Models ----

type Token struct {
	ID           string    `json:"_id"`
	Address      string    `json:"address"`
	Chain        string    `json:"chain"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	ImageURL     string    `json:"image_url"`
	PriceUSD     *float64  `json:"price_usd"`
	LiquidityUSD *float64  `json:"liquidity_usd"`
	Volume24h    *float64  `json:"volume_24h"`
	UpdatedAt    Timestamp `json:"updated_at"`
}

type TokenSet struct {
	UserID     string    `json:"user_id"`
	TelegramID string    `json:"telegram_id"`
	Tokens     []Token   `json:"tokens"`
	CreatedAt  Timestamp `json:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at"`
}

// IsEmpty is true for a missing set and for a set without tokens.
func (s *TokenSet) IsEmpty() bool {
	return s == nil || len(s.Tokens) == 0
}

// FilterUpdate is the optional body returned by PUT /users/{id}/filters.
type FilterUpdate struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// ---- Timestamps ----

// Timestamp accepts the naive ISO-8601 datetimes the backend emits as well as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			t.Time = ts.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
