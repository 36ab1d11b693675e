// Package telegramtest provides an in-memory Telegram host for tests.
package telegramtest

import (
	"sync"

	"github.com/profit-sniffer/pkg/telegram"
)

// Host is a fake Telegram WebView. The zero value has no init data; use
// WithUser to give it one.
type Host struct {
	Data *telegram.InitData

	mu       sync.Mutex
	sent     []string
	button   Button
	handlers map[int]func()
	nextID   int
}

// Button is the observable state of the fake main button.
type Button struct {
	Text    string
	Visible bool
}

// WithUser returns a host whose init data carries a user with the given id.
func WithUser(id int64, firstName string) *Host {
	return &Host{Data: &telegram.InitData{
		QueryID: "test-query",
		User:    &telegram.WebAppUser{ID: id, FirstName: firstName, Username: "tester"},
	}}
}

func (h *Host) InitData() *telegram.InitData { return h.Data }

func (h *Host) SendData(data string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, data)
}

func (h *Host) SetMainButton(text string, visible bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.button = Button{Text: text, Visible: visible}
}

func (h *Host) MainButton() telegram.MainButton { return &button{h: h} }

// Sent returns the payloads passed to SendData.
func (h *Host) Sent() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.sent...)
}

// Button returns the current main button state.
func (h *Host) Button() Button {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.button
}

// Handlers counts the click handlers still attached.
func (h *Host) Handlers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers)
}

// Click fires every attached handler synchronously.
func (h *Host) Click() {
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

type button struct{ h *Host }

func (b *button) SetText(text string) telegram.MainButton {
	b.h.mu.Lock()
	b.h.button.Text = text
	b.h.mu.Unlock()
	return b
}

func (b *button) Show() telegram.MainButton {
	b.h.mu.Lock()
	b.h.button.Visible = true
	b.h.mu.Unlock()
	return b
}

func (b *button) Hide() telegram.MainButton {
	b.h.mu.Lock()
	b.h.button.Visible = false
	b.h.mu.Unlock()
	return b
}

func (b *button) OnClick(fn func()) func() {
	b.h.mu.Lock()
	defer b.h.mu.Unlock()
	if b.h.handlers == nil {
		b.h.handlers = make(map[int]func())
	}
	id := b.h.nextID
	b.h.nextID++
	b.h.handlers[id] = fn
	return func() {
		b.h.mu.Lock()
		delete(b.h.handlers, id)
		b.h.mu.Unlock()
	}
}
