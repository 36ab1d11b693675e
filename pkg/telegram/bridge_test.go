package telegram_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profit-sniffer/pkg/telegram"
	"github.com/profit-sniffer/pkg/telegram/telegramtest"
)

func newBridge(host telegram.Host, dev bool) (*telegram.Bridge, *bytes.Buffer) {
	var buf bytes.Buffer
	return telegram.NewBridge(host, dev, zerolog.New(&buf)), &buf
}

func TestGetTelegramID(t *testing.T) {
	tests := []struct {
		name    string
		host    telegram.Host
		dev     bool
		want    string
		wantErr error
	}{
		{"host user", telegramtest.WithUser(42, "Ann"), false, "42", nil},
		{"host user wins in dev", telegramtest.WithUser(42, "Ann"), true, "42", nil},
		{"no host dev", nil, true, telegram.MockTelegramID, nil},
		{"no host prod", nil, false, "", telegram.ErrIdentityUnavailable},
		{"host without user prod", &telegramtest.Host{Data: &telegram.InitData{}}, false, "", telegram.ErrIdentityUnavailable},
		{"host without data dev", &telegramtest.Host{}, true, telegram.MockTelegramID, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newBridge(tt.host, tt.dev)
			id, err := b.GetTelegramID()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Telegram user ID not available", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestBridgeWithoutHost(t *testing.T) {
	b, logs := newBridge(nil, false)

	assert.Nil(t, b.InitTelegramWebApp())
	assert.Nil(t, b.GetUserInfo())
	assert.False(t, b.IsTelegramWebAppAvailable())

	b.SendTelegramData("payload")
	b.SetMainButton("Go", true)
	mb, ok := b.WebApp()
	assert.False(t, ok)
	assert.Nil(t, mb)

	assert.Equal(t, telegram.DevTelegramID, b.DevTelegramID())
	assert.Contains(t, logs.String(), "sendTelegramData function not available")
	assert.Contains(t, logs.String(), "setMainButton function not available")
}

func TestBridgeWithHost(t *testing.T) {
	host := telegramtest.WithUser(7, "Bob")
	b, _ := newBridge(host, false)

	assert.True(t, b.IsTelegramWebAppAvailable())
	require.NotNil(t, b.GetUserInfo())
	assert.Equal(t, "Bob", b.GetUserInfo().FirstName)

	b.SendTelegramData("a")
	b.SendTelegramData("b")
	assert.Equal(t, []string{"a", "b"}, host.Sent())

	b.SetMainButton("Save", true)
	assert.Equal(t, telegramtest.Button{Text: "Save", Visible: true}, host.Button())

	mb, ok := b.WebApp()
	require.True(t, ok)
	clicks := 0
	off := mb.SetText("Refresh Tokens").Show().OnClick(func() { clicks++ })
	host.Click()
	assert.Equal(t, 1, clicks)

	off()
	mb.Hide()
	host.Click()
	assert.Equal(t, 1, clicks)
	assert.Equal(t, 0, host.Handlers())
	assert.False(t, host.Button().Visible)
}

func TestDisplayName(t *testing.T) {
	var u *telegram.WebAppUser
	assert.Equal(t, "", u.DisplayName())
	assert.Equal(t, "Ann Lee", (&telegram.WebAppUser{FirstName: "Ann", LastName: "Lee"}).DisplayName())
	assert.Equal(t, "@ann", (&telegram.WebAppUser{Username: "ann"}).DisplayName())
}
