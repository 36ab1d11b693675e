package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profit-sniffer/pkg/api"
	"github.com/profit-sniffer/pkg/config"
	"github.com/profit-sniffer/pkg/metrics"
	"github.com/profit-sniffer/pkg/telegram"
)

const botToken = "123456:TEST-TOKEN"

type backend struct {
	mu        sync.Mutex
	filters   map[string]map[string]string
	tokenSets map[string]string
	status    int
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.status)
		_, _ = w.Write([]byte(`{"detail":"backend unavailable"}`))
		return
	}
	switch {
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/users/"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/users/"), "/filters")
		var f map[string]string
		_ = json.NewDecoder(r.Body).Decode(&f)
		b.filters[id] = f
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Filters updated successfully","url":"https://dexscreener.com/new-pairs?minLiq=1000"}`))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/token_sets/"):
		id := strings.TrimPrefix(r.URL.Path, "/token_sets/")
		body, ok := b.tokenSets[id]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Token set not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	default:
		http.NotFound(w, r)
	}
}

func setup(t *testing.T, env string) (*backend, http.Handler, *metrics.Metrics) {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.Disabled)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	b := &backend{filters: map[string]map[string]string{}, tokenSets: map[string]string{}}
	bs := httptest.NewServer(b)
	t.Cleanup(bs.Close)

	cfg := &config.Config{
		BackendURL:          bs.URL,
		Env:                 env,
		Port:                3000,
		PlaceholderImageURL: "https://ph.example/40",
		BotToken:            botToken,
		InitDataMaxAge:      time.Hour,
	}
	m := metrics.New(prometheus.NewRegistry())
	client := api.New(bs.URL, api.WithHTTPClient(resty.NewWithClient(bs.Client())), api.WithMetrics(m), api.WithLogger(zerolog.Nop()))
	srv, err := New(cfg, client, m)
	require.NoError(t, err)
	return b, srv.Handler(), m
}

func initData(userID int64, queryID string) string {
	v := url.Values{}
	if queryID != "" {
		v.Set("query_id", queryID)
	}
	v.Set("user", `{"id":`+strconv.FormatInt(userID, 10)+`,"first_name":"Ann","username":"ann","language_code":"de"}`)
	v.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	v.Set("hash", telegram.SignInitData(v, botToken))
	return v.Encode()
}

func do(t *testing.T, h http.Handler, r *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec, string(body)
}

func TestLandingOutsideTelegram(t *testing.T) {
	_, h, _ := setup(t, config.EnvDevelopment)

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Contains(t, body, "Welcome to ProfitSniffer!")
	assert.Contains(t, body, `href="/filters"`)
	assert.Contains(t, body, "Set Filters")
	assert.Contains(t, body, `href="/tokens"`)
	assert.Contains(t, body, "View Tokens")
	assert.NotContains(t, body, "Hi, ")
}

func TestLandingInsideTelegram(t *testing.T) {
	_, h, _ := setup(t, config.EnvProduction)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(telegram.InitDataHeader, initData(42, "q1"))
	_, body := do(t, h, r)
	assert.Contains(t, body, "Hi, Ann!")
}

func TestUnknownPathIs404(t *testing.T) {
	_, h, _ := setup(t, config.EnvDevelopment)
	rec, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFiltersForm(t *testing.T) {
	_, h, _ := setup(t, config.EnvDevelopment)

	_, body := do(t, h, httptest.NewRequest(http.MethodGet, "/filters", nil))
	assert.Contains(t, body, `id="filter-form"`)
	assert.Equal(t, 10, strings.Count(body, "data-decimal"))
	assert.Contains(t, body, "Min Fully Diluted Valuation")
	assert.Contains(t, body, "Max Age (hours)")
	assert.Contains(t, body, `placeholder="Enter Min Liquidity"`)
}

func TestSubmitFiltersEndToEnd(t *testing.T) {
	b, h, _ := setup(t, config.EnvProduction)

	form := url.Values{}
	form.Set("minLiquidity", "1000")
	form.Set("maxAge", "2h")
	r := httptest.NewRequest(http.MethodPost, "/filters", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: telegram.InitDataCookie, Value: url.QueryEscape(initData(42, ""))})

	rec, body := do(t, h, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "nt-success")
	assert.Contains(t, body, "Filters updated successfully.")
	assert.Contains(t, body, "https://dexscreener.com/new-pairs?minLiq=1000")
	assert.Contains(t, body, "tg.sendData(", "keyboard-launched app forwards the saved filters")

	b.mu.Lock()
	defer b.mu.Unlock()
	got := b.filters["42"]
	require.Len(t, got, 10)
	assert.Equal(t, "1000", got["minLiquidity"])
	assert.Equal(t, "", got["maxAge"], "invalid value is rejected server-side")
	assert.Equal(t, "", got["maxTransactions"])
}

func TestSubmitFiltersWithInitDataField(t *testing.T) {
	b, h, _ := setup(t, config.EnvProduction)

	form := url.Values{}
	form.Set("minLiquidity", "750")
	form.Set(telegram.InitDataField, initData(42, "q1"))
	r := httptest.NewRequest(http.MethodPost, "/filters", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, body := do(t, h, r)
	assert.Contains(t, body, "Filters updated successfully.")
	assert.Contains(t, body, `data-init="ok"`)

	b.mu.Lock()
	defer b.mu.Unlock()
	got := b.filters["42"]
	require.Len(t, got, 10, "init data field is not a filter")
	assert.Equal(t, "750", got["minLiquidity"])
}

func TestInitStateMarker(t *testing.T) {
	_, h, _ := setup(t, config.EnvProduction)

	_, body := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, body, `<body data-init="">`)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(telegram.InitDataHeader, initData(42, "q1"))
	_, body = do(t, h, r)
	assert.Contains(t, body, `<body data-init="ok">`)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(telegram.InitDataHeader, strings.Replace(initData(42, "q1"), "Ann", "Eve", 1))
	_, body = do(t, h, r)
	assert.Contains(t, body, `<body data-init="rejected">`)
}

func TestSubmitFiltersWithoutIdentityInProduction(t *testing.T) {
	b, h, _ := setup(t, config.EnvProduction)

	r := httptest.NewRequest(http.MethodPost, "/filters", strings.NewReader("minLiquidity=5"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, body := do(t, h, r)

	assert.Contains(t, body, "nt-failure")
	assert.Contains(t, body, "Error updating filters: Telegram user ID not available")
	assert.Empty(t, b.filters)
}

func TestSubmitFiltersBackendError(t *testing.T) {
	b, h, _ := setup(t, config.EnvDevelopment)
	b.status = http.StatusInternalServerError

	r := httptest.NewRequest(http.MethodPost, "/filters", strings.NewReader("minLiquidity=5"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, body := do(t, h, r)

	assert.Contains(t, body, "Error updating filters: API Error: backend unavailable")
}

func TestTokensPopulated(t *testing.T) {
	b, h, _ := setup(t, config.EnvProduction)
	b.tokenSets["42"] = `{"telegram_id":"42","updated_at":"2024-09-10T12:30:00","tokens":[
		{"_id":"t1","chain":"solana","address":"So11111111111111111111111111111111111111112",
		 "name":"Wrapped SOL","symbol":"SOL","image_url":"https://img.example/sol.png",
		 "price_usd":0.0000012,"liquidity_usd":1234567.8,"volume_24h":null}]}`

	r := httptest.NewRequest(http.MethodGet, "/tokens", nil)
	r.Header.Set(telegram.InitDataHeader, initData(42, "q1"))
	rec, body := do(t, h, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "Wrapped SOL")
	assert.Contains(t, body, "$0.000001")
	assert.Contains(t, body, "$1.234.568", "grouped in the user's language")
	assert.Contains(t, body, "$N/A")
	assert.Contains(t, body, "this.onerror=null")
	assert.Contains(t, body, "https://dexscreener.com/solana/So11111111111111111111111111111111111111112")
	assert.Contains(t, body, `"Refresh Tokens"`)
	assert.Contains(t, body, `offClick(onMain)`)
	assert.NotContains(t, body, "tg.sendData(")
}

func TestTokensEmptyAndError(t *testing.T) {
	b, h, _ := setup(t, config.EnvDevelopment)
	b.tokenSets[telegram.MockTelegramID] = `{"tokens":[]}`

	_, body := do(t, h, httptest.NewRequest(http.MethodGet, "/tokens", nil))
	assert.Contains(t, body, "No tokens found. Try adjusting your filters.")
	assert.NotContains(t, body, "Error loading tokens")

	delete(b.tokenSets, telegram.MockTelegramID)
	_, body = do(t, h, httptest.NewRequest(http.MethodGet, "/tokens", nil))
	assert.Contains(t, body, "Error loading tokens: API Error: Token set not found")
	assert.Contains(t, body, "Retry")
}

func TestTamperedInitDataIsIgnored(t *testing.T) {
	_, h, _ := setup(t, config.EnvProduction)

	r := httptest.NewRequest(http.MethodGet, "/tokens", nil)
	r.Header.Set(telegram.InitDataHeader, strings.Replace(initData(42, "q1"), "Ann", "Eve", 1))
	_, body := do(t, h, r)
	assert.Contains(t, body, "Error loading tokens: Telegram user ID not available")
}

func TestOpsEndpoints(t *testing.T) {
	_, h, _ := setup(t, config.EnvDevelopment)

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "ok", health["status"])

	rec, body = do(t, h, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "tg_init_data")
	assert.Contains(t, body, "sessionStorage", "cookie reload happens at most once")
	assert.Contains(t, body, "X-Telegram-Init-Data")

	do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	_, body = do(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, body, `profitsniffer_http_requests_total{code="200",route="/"}`)
}
