package pages

import (
	"context"
	"sync"
	"time"

	"github.com/profit-sniffer/pkg/models"
	"github.com/profit-sniffer/pkg/telegram"
)

const (
	// RefreshTokensLabel is the main button caption on the tokens page.
	RefreshTokensLabel = "Refresh Tokens"

	tokensErrorPrefix = "Error loading tokens: "
	EmptyTokensText   = "No tokens found. Try adjusting your filters."
)

type TokenState int

const (
	TokensLoading TokenState = iota
	TokensError
	TokensEmpty
	TokensPopulated
)

func (s TokenState) String() string {
	switch s {
	case TokensError:
		return "error"
	case TokensEmpty:
		return "empty"
	case TokensPopulated:
		return "populated"
	}
	return "loading"
}

// TokensView is a snapshot of the tokens page for rendering.
type TokensView struct {
	State     TokenState
	Error     string
	Cards     []CardView
	UpdatedAt time.Time
}

// ErrorText is the full line shown in the error state.
func (v TokensView) ErrorText() string {
	return tokensErrorPrefix + v.Error
}

// TokensPage fetches the user's token set on mount and whenever the host main
// button is tapped.
//
// Each load takes a generation number. A result is applied only while its
// generation is the latest and the page is still mounted, so a slow response
// can never overwrite a newer one or land on a page that was left.
type TokensPage struct {
	bridge *telegram.Bridge
	loader TokenSetGetter
	opts   options

	mu      sync.Mutex
	state   TokenState
	errText string
	set     *models.TokenSet
	gen     uint64
	mounted bool
	closed  bool
	ctx     context.Context
	button  telegram.MainButton
	off     func()
}

func NewTokensPage(bridge *telegram.Bridge, loader TokenSetGetter, opts ...Option) *TokensPage {
	return &TokensPage{bridge: bridge, loader: loader, opts: buildOptions("tokens", opts)}
}

// Mount binds the "Refresh Tokens" main button when the host has one and runs
// the first load. ctx bounds every load the page makes, including those
// triggered by the button.
func (p *TokensPage) Mount(ctx context.Context) {
	if p.Attach(ctx) {
		p.Load(ctx)
	}
}

// Attach is Mount without the first load. It reports false once the page has
// been unmounted; an unmounted page never binds the button again.
func (p *TokensPage) Attach(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.mounted = true
	p.ctx = ctx
	if mb, ok := p.bridge.WebApp(); ok && p.off == nil {
		p.button = mb
		p.off = mb.SetText(RefreshTokensLabel).Show().OnClick(p.refresh)
	}
	return true
}

func (p *TokensPage) refresh() {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	p.Load(ctx)
}

// Unmount detaches the click handler, hides the button and invalidates any
// load still in flight. Safe to call more than once, and before Mount.
func (p *TokensPage) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if !p.mounted {
		return
	}
	p.mounted = false
	p.gen++
	if p.off != nil {
		p.off()
		p.off = nil
	}
	if p.button != nil {
		p.button.Hide()
		p.button = nil
	}
}

// Load runs one fetch cycle: loading, then error, empty or populated. Retry
// is the same operation.
func (p *TokensPage) Load(ctx context.Context) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	gen := p.Begin()
	set, err := p.Fetch(ctx)
	if ctx.Err() != nil {
		p.discard(gen, "view context done")
		return
	}
	p.Apply(gen, set, err)
}

// Begin enters the loading state and returns the generation of the new load.
func (p *TokensPage) Begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.state = TokensLoading
	p.errText = ""
	return p.gen
}

// Fetch resolves the Telegram id and asks the backend for the token set. It
// does not touch page state.
func (p *TokensPage) Fetch(ctx context.Context) (*models.TokenSet, error) {
	telegramID, err := p.bridge.GetTelegramID()
	if err != nil {
		return nil, err
	}
	return p.loader.GetTokenSet(ctx, telegramID)
}

// Apply stores the outcome of load gen. It reports false when the result was
// stale and dropped.
func (p *TokensPage) Apply(gen uint64, set *models.TokenSet, err error) bool {
	p.mu.Lock()
	if gen != p.gen || !p.mounted {
		p.mu.Unlock()
		p.discard(gen, "superseded")
		return false
	}
	switch {
	case err != nil:
		p.state = TokensError
		p.errText = errorText(err)
		p.set = nil
	case set.IsEmpty():
		p.state = TokensEmpty
		p.set = set
	default:
		p.state = TokensPopulated
		p.set = set
	}
	state := p.state
	count := 0
	if set != nil {
		count = len(set.Tokens)
	}
	p.mu.Unlock()

	if err != nil {
		p.opts.log.Error().Err(err).Msg("❌ Error loading tokens")
	} else {
		p.opts.log.Debug().Str("state", state.String()).Int("tokens", count).Msg("token set applied")
	}
	p.opts.metrics.TokensLoaded(state.String())
	return true
}

func (p *TokensPage) discard(gen uint64, reason string) {
	p.opts.metrics.StaleDiscarded()
	p.opts.log.Debug().Uint64("generation", gen).Str("reason", reason).Msg("discarding token result")
}

// Mounted reports whether the page is between Mount and Unmount.
func (p *TokensPage) Mounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}

// View snapshots the page.
func (p *TokensPage) View() TokensView {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := TokensView{State: p.state, Error: p.errText}
	if p.state == TokensPopulated && p.set != nil {
		v.UpdatedAt = p.set.UpdatedAt.Time
		v.Cards = make([]CardView, 0, len(p.set.Tokens))
		for _, t := range p.set.Tokens {
			v.Cards = append(v.Cards, NewCard(t, p.opts.placeholder, p.opts.format))
		}
	}
	return v
}
