package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidInitData = errors.New("invalid telegram init data")
	ErrInitDataExpired = errors.New("telegram init data expired")
)

// ParseInitData decodes and verifies a Mini App initData query string.
//
// The signature check follows Telegram's scheme: every field except hash is
// sorted and joined as "key=value" lines, then signed with
// HMAC-SHA256(HMAC-SHA256("WebAppData", botToken), lines). An empty botToken
// skips verification and is meant for development only. maxAge <= 0 disables
// the auth_date freshness check.
func ParseInitData(raw, botToken string, maxAge time.Duration) (*InitData, error) {
	return parseInitData(raw, botToken, maxAge, time.Now())
}

func parseInitData(raw, botToken string, maxAge time.Duration, now time.Time) (*InitData, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidInitData)
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	hash := values.Get("hash")
	if botToken != "" {
		if hash == "" {
			return nil, fmt.Errorf("%w: missing hash", ErrInvalidInitData)
		}
		if !hmac.Equal([]byte(SignInitData(values, botToken)), []byte(strings.ToLower(hash))) {
			return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidInitData)
		}
	}

	d := &InitData{
		QueryID:      values.Get("query_id"),
		ChatType:     values.Get("chat_type"),
		ChatInstance: values.Get("chat_instance"),
		StartParam:   values.Get("start_param"),
		Hash:         hash,
		Raw:          raw,
	}

	if v := values.Get("auth_date"); v != "" {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: auth_date %q", ErrInvalidInitData, v)
		}
		d.AuthDate = time.Unix(sec, 0).UTC()
	}
	if maxAge > 0 && (d.AuthDate.IsZero() || now.Sub(d.AuthDate) > maxAge) {
		return nil, ErrInitDataExpired
	}

	if v := values.Get("user"); v != "" {
		var u WebAppUser
		if err := json.Unmarshal([]byte(v), &u); err != nil {
			return nil, fmt.Errorf("%w: user: %v", ErrInvalidInitData, err)
		}
		d.User = &u
	}

	return d, nil
}

// SignInitData computes the hex signature Telegram attaches as "hash".
func SignInitData(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}

	secret := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	return hex.EncodeToString(hmacSHA256(secret, []byte(strings.Join(lines, "\n"))))
}

func hmacSHA256(key, data []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(data)
	return m.Sum(nil)
}
