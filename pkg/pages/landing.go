package pages

import (
	"github.com/profit-sniffer/pkg/telegram"
)

const (
	FiltersPath = "/filters"
	TokensPath  = "/tokens"
)

type Link struct {
	Label string
	Href  string
}

// LandingView is the start screen: greeting, optional user and the two links.
type LandingView struct {
	Available bool
	User      *telegram.WebAppUser
	Links     []Link
}

// Greeting names the user when Telegram told us who they are.
func (v LandingView) Greeting() string {
	if name := v.User.DisplayName(); name != "" {
		return "Hi, " + name + "!"
	}
	return ""
}

type LandingPage struct {
	bridge *telegram.Bridge
	opts   options
}

func NewLandingPage(bridge *telegram.Bridge, opts ...Option) *LandingPage {
	return &LandingPage{bridge: bridge, opts: buildOptions("landing", opts)}
}

func (p *LandingPage) View() LandingView {
	v := LandingView{
		Available: p.bridge.IsTelegramWebAppAvailable(),
		Links: []Link{
			{Label: "Set Filters", Href: FiltersPath},
			{Label: "View Tokens", Href: TokensPath},
		},
	}
	if v.Available {
		v.User = p.bridge.GetUserInfo()
		p.opts.log.Debug().Str("user", v.User.DisplayName()).Msg("landing with Telegram user")
	} else {
		p.opts.log.Info().Str("telegram_id", p.bridge.DevTelegramID()).Msg("Using dev Telegram ID")
	}
	return v
}
