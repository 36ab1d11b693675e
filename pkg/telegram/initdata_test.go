package telegram

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123456:TEST-TOKEN"

var authDate = time.Unix(1662771648, 0)

func sampleValues() url.Values {
	v := url.Values{}
	v.Set("query_id", "AAHdF6IQAAAAAN0XohDhrOrc")
	v.Set("user", `{"id":279058397,"first_name":"Vlad","last_name":"","username":"vdkfrost","language_code":"ru","is_premium":true}`)
	v.Set("auth_date", "1662771648")
	return v
}

func signed(v url.Values, token string) string {
	v.Set("hash", SignInitData(v, token))
	return v.Encode()
}

func TestParseInitDataValid(t *testing.T) {
	raw := signed(sampleValues(), testToken)

	d, err := parseInitData(raw, testToken, time.Hour, authDate.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, d.User)
	assert.Equal(t, "279058397", d.UserID())
	assert.Equal(t, "vdkfrost", d.User.Username)
	assert.Equal(t, "Vlad", d.User.DisplayName())
	assert.True(t, d.User.IsPremium)
	assert.Equal(t, "AAHdF6IQAAAAAN0XohDhrOrc", d.QueryID)
	assert.Equal(t, authDate.UTC(), d.AuthDate)
	assert.Equal(t, raw, d.Raw)
}

func TestParseInitDataRejects(t *testing.T) {
	now := authDate.Add(time.Minute)

	tampered := sampleValues()
	tampered.Set("hash", SignInitData(tampered, testToken))
	tampered.Set("user", `{"id":1,"first_name":"Mallory"}`)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"missing hash", sampleValues().Encode()},
		{"tampered", tampered.Encode()},
		{"wrong token", signed(sampleValues(), "654321:OTHER")},
		{"bad auth_date", func() string {
			v := sampleValues()
			v.Set("auth_date", "yesterday")
			return signed(v, testToken)
		}()},
		{"bad user json", func() string {
			v := sampleValues()
			v.Set("user", "{")
			return signed(v, testToken)
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseInitData(tt.raw, testToken, time.Hour, now)
			assert.ErrorIs(t, err, ErrInvalidInitData)
		})
	}
}

func TestParseInitDataExpiry(t *testing.T) {
	raw := signed(sampleValues(), testToken)
	late := authDate.Add(2 * time.Hour)

	_, err := parseInitData(raw, testToken, time.Hour, late)
	assert.ErrorIs(t, err, ErrInitDataExpired)

	d, err := parseInitData(raw, testToken, 0, late)
	require.NoError(t, err)
	assert.Equal(t, "279058397", d.UserID())
}

func TestParseInitDataWithoutTokenSkipsSignature(t *testing.T) {
	d, err := parseInitData(sampleValues().Encode(), "", 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "279058397", d.UserID())
}

func TestSignInitDataIgnoresHash(t *testing.T) {
	v := sampleValues()
	sig := SignInitData(v, testToken)
	assert.Len(t, sig, 64)

	v.Set("hash", "ABC")
	assert.Equal(t, sig, SignInitData(v, testToken), "hash must not take part in the signature")
}

func TestRawInitData(t *testing.T) {
	raw := signed(sampleValues(), testToken)

	r := httptest.NewRequest(http.MethodGet, "/tokens", nil)
	assert.Equal(t, "", RawInitData(r))

	r.AddCookie(&http.Cookie{Name: InitDataCookie, Value: url.QueryEscape(raw)})
	assert.Equal(t, raw, RawInitData(r))

	r.Header.Set(InitDataHeader, "query_id=header")
	assert.Equal(t, "query_id=header", RawInitData(r))

	form := url.Values{InitDataField: {raw}, "minLiquidity": {"5"}}
	post := httptest.NewRequest(http.MethodPost, "/filters", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, raw, RawInitData(post))
	assert.Equal(t, "5", post.PostForm.Get("minLiquidity"), "form stays readable for the handler")

	get := httptest.NewRequest(http.MethodGet, "/tokens?"+InitDataField+"="+url.QueryEscape(raw), nil)
	assert.Equal(t, "", RawInitData(get), "init data never rides in the query string")
}

func TestHostFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	h, err := HostFromRequest(r, testToken, 0)
	require.NoError(t, err)
	assert.Nil(t, h)

	r.Header.Set(InitDataHeader, signed(sampleValues(), testToken))
	h, err = HostFromRequest(r, testToken, 0)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "279058397", h.InitData().UserID())

	r.Header.Set(InitDataHeader, "user=%7B%7D&hash=deadbeef")
	_, err = HostFromRequest(r, testToken, 0)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestRequestHostDirectives(t *testing.T) {
	h := NewRequestHost(nil)
	assert.Nil(t, h.InitData())

	h.SetMainButton("Save", true)
	h.SendData("hello")
	off := h.MainButton().SetText("Refresh Tokens").Show().OnClick(func() {})

	d := h.Directives()
	assert.Equal(t, "Refresh Tokens", d.MainButtonText)
	assert.True(t, d.MainButtonVisible)
	assert.True(t, d.MainButtonBound)
	assert.Equal(t, []string{"hello"}, d.SendData)

	off()
	h.MainButton().Hide()
	d = h.Directives()
	assert.False(t, d.MainButtonBound)
	assert.False(t, d.MainButtonVisible)
}
