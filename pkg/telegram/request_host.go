package telegram

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	InitDataHeader = "X-Telegram-Init-Data"
	InitDataCookie = "tg_init_data"
	// InitDataField carries init data in a posted form when the WebView
	// refuses the cookie.
	InitDataField = "tg_init_data"
)

// RequestHost is the Host for a single page request coming from the Telegram
// WebView. It holds the verified init data and records the chrome calls a
// page makes; the web layer turns Directives into Telegram.WebApp calls in
// the rendered HTML.
type RequestHost struct {
	initData *InitData

	mu         sync.Mutex
	directives Directives
	handlers   map[int]func()
	nextID     int
}

// Directives are the chrome side effects collected while rendering a page.
type Directives struct {
	MainButtonText    string
	MainButtonVisible bool
	MainButtonBound   bool
	SendData          []string
}

func NewRequestHost(initData *InitData) *RequestHost {
	return &RequestHost{initData: initData, handlers: make(map[int]func())}
}

// HostFromRequest reads raw init data from the header or cookie and verifies
// it. It returns a nil Host, not an error, when the request carries none, so
// the page falls back the way a browser outside Telegram would.
func HostFromRequest(r *http.Request, botToken string, maxAge time.Duration) (Host, error) {
	raw := RawInitData(r)
	if raw == "" {
		return nil, nil
	}
	d, err := ParseInitData(raw, botToken, maxAge)
	if err != nil {
		return nil, err
	}
	return NewRequestHost(d), nil
}

// RawInitData returns the unverified init data string attached to r: the
// header first, then the cookie, then a posted form field.
func RawInitData(r *http.Request) string {
	if v := r.Header.Get(InitDataHeader); v != "" {
		return v
	}
	if c, err := r.Cookie(InitDataCookie); err == nil {
		if v, err := url.QueryUnescape(c.Value); err == nil && v != "" {
			return v
		}
	}
	if r.Method == http.MethodPost {
		return r.PostFormValue(InitDataField)
	}
	return ""
}

func (h *RequestHost) InitData() *InitData {
	if h == nil {
		return nil
	}
	return h.initData
}

func (h *RequestHost) SendData(data string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.directives.SendData = append(h.directives.SendData, data)
}

func (h *RequestHost) SetMainButton(text string, visible bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.directives.MainButtonText = text
	h.directives.MainButtonVisible = visible
}

func (h *RequestHost) MainButton() MainButton {
	return requestButton{h: h}
}

// Directives snapshots what the page asked of the host so far.
func (h *RequestHost) Directives() Directives {
	h.mu.Lock()
	defer h.mu.Unlock()
	d := h.directives
	d.SendData = append([]string(nil), h.directives.SendData...)
	d.MainButtonBound = len(h.handlers) > 0
	return d
}

// Click runs the bound handlers, the way a tap on the main button would.
func (h *RequestHost) Click() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.handlers))
	for _, fn := range h.handlers {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type requestButton struct {
	h *RequestHost
}

func (b requestButton) SetText(text string) MainButton {
	b.h.mu.Lock()
	b.h.directives.MainButtonText = text
	b.h.mu.Unlock()
	return b
}

func (b requestButton) Show() MainButton {
	b.h.mu.Lock()
	b.h.directives.MainButtonVisible = true
	b.h.mu.Unlock()
	return b
}

func (b requestButton) Hide() MainButton {
	b.h.mu.Lock()
	b.h.directives.MainButtonVisible = false
	b.h.mu.Unlock()
	return b
}

func (b requestButton) OnClick(fn func()) func() {
	b.h.mu.Lock()
	id := b.h.nextID
	b.h.nextID++
	b.h.handlers[id] = fn
	b.h.mu.Unlock()
	return func() {
		b.h.mu.Lock()
		delete(b.h.handlers, id)
		b.h.mu.Unlock()
	}
}
