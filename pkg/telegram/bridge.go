package telegram

import (
	"errors"

	"github.com/rs/zerolog"
)

const (
	// MockTelegramID stands in for the user id in development builds.
	MockTelegramID = "mock_user_id_123456789"
	// DevTelegramID is what the landing page reports when no host is present.
	DevTelegramID = "123456789"
)

var ErrIdentityUnavailable = errors.New("Telegram user ID not available")

// Host is whatever embeds the app and can hand it a launch payload: the
// Telegram WebView behind an HTTP request, a terminal session, a test fake.
// InitData returns nil when the host has nothing to offer.
//
// Chrome control is optional; hosts that support it also implement
// DataSender, MainButtonSetter or WebApp.
type Host interface {
	InitData() *InitData
}

type DataSender interface {
	SendData(data string)
}

type MainButtonSetter interface {
	SetMainButton(text string, visible bool)
}

type WebApp interface {
	MainButton() MainButton
}

// MainButton mirrors Telegram.WebApp.MainButton. OnClick returns the function
// that detaches the handler again (offClick).
type MainButton interface {
	SetText(text string) MainButton
	Show() MainButton
	Hide() MainButton
	OnClick(fn func()) (off func())
}

// Bridge wraps an optional Host. Every call degrades to a logged no-op when
// the host or the needed capability is missing, except GetTelegramID outside
// development.
type Bridge struct {
	host    Host
	devMode bool
	log     zerolog.Logger
}

func NewBridge(host Host, devMode bool, logger zerolog.Logger) *Bridge {
	return &Bridge{host: host, devMode: devMode, log: logger.With().Str("component", "telegram").Logger()}
}

func (b *Bridge) InitTelegramWebApp() *InitData {
	if b.host == nil {
		b.log.Warn().Msg("Telegram Web App initialization function not found")
		return nil
	}
	d := b.host.InitData()
	if d == nil {
		b.log.Warn().Msg("Telegram Web App returned no init data")
		return nil
	}
	b.log.Debug().Str("query_id", d.QueryID).Str("user_id", d.UserID()).Msg("telegram init data")
	return d
}

func (b *Bridge) GetTelegramID() (string, error) {
	if id := b.InitTelegramWebApp().UserID(); id != "" {
		return id, nil
	}
	if b.devMode {
		b.log.Warn().Msg("using mock Telegram ID for development")
		return MockTelegramID, nil
	}
	return "", ErrIdentityUnavailable
}

func (b *Bridge) GetUserInfo() *WebAppUser {
	d := b.InitTelegramWebApp()
	if d == nil || d.User == nil {
		b.log.Warn().Msg("Telegram WebApp not available, user info is nil")
		return nil
	}
	return d.User
}

func (b *Bridge) IsTelegramWebAppAvailable() bool {
	return b.InitTelegramWebApp() != nil
}

func (b *Bridge) SendTelegramData(data string) {
	if s, ok := b.host.(DataSender); ok {
		s.SendData(data)
		return
	}
	b.log.Warn().Msg("sendTelegramData function not available")
}

func (b *Bridge) SetMainButton(text string, visible bool) {
	if s, ok := b.host.(MainButtonSetter); ok {
		s.SetMainButton(text, visible)
		return
	}
	b.log.Warn().Msg("setMainButton function not available")
}

// WebApp returns the host main button when the host exposes one.
func (b *Bridge) WebApp() (MainButton, bool) {
	w, ok := b.host.(WebApp)
	if !ok {
		return nil, false
	}
	mb := w.MainButton()
	return mb, mb != nil
}

// DevTelegramID is the fallback id logged when running outside Telegram.
func (b *Bridge) DevTelegramID() string {
	b.log.Debug().Msg("using development Telegram ID")
	return DevTelegramID
}
