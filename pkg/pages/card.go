package pages

import (
	"math"
	"strconv"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/profit-sniffer/pkg/chain"
	"github.com/profit-sniffer/pkg/models"
)

const (
	DefaultPlaceholder = "https://via.placeholder.com/40"
	notAvailable       = "N/A"
)

// Formatter renders grouped integers for one locale.
type Formatter struct {
	tag language.Tag
	p   *message.Printer
}

var DefaultFormatter = NewFormatter(language.English)

var supported = language.NewMatcher([]language.Tag{
	language.English, language.German, language.French, language.Spanish,
	language.Russian, language.Italian, language.Portuguese,
})

func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{tag: tag, p: message.NewPrinter(tag)}
}

// FormatterFor picks the best supported locale for an Accept-Language header
// (or a Telegram language code), falling back to English.
func FormatterFor(accept string) *Formatter {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultFormatter
	}
	tag, _, _ := supported.Match(tags...)
	base, _ := tag.Base()
	return NewFormatter(language.Make(base.String()))
}

func (f *Formatter) Tag() language.Tag { return f.tag }

// Grouped rounds v to an integer with thousands separators, "N/A" when v is
// absent, zero or not finite.
func (f *Formatter) Grouped(v *float64) string {
	if v == nil || *v == 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return notAvailable
	}
	if math.Abs(*v) >= math.MaxInt64 {
		return f.p.Sprintf("%.0f", *v)
	}
	return f.p.Sprintf("%d", int64(math.Round(*v)))
}

// FormatPrice renders a USD price with six decimals, "N/A" when absent or zero.
func FormatPrice(v *float64) string {
	if v == nil || *v == 0 || math.IsNaN(*v) {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

// FormatGrouped is Grouped in the default locale.
func FormatGrouped(v *float64) string {
	return DefaultFormatter.Grouped(v)
}

// ImageSource is a token logo with a one-shot fallback: the first load error
// swaps in the placeholder, later errors leave it alone.
type ImageSource struct {
	mu          sync.Mutex
	primary     string
	placeholder string
	failed      bool
}

func NewImageSource(primary, placeholder string) *ImageSource {
	return &ImageSource{primary: primary, placeholder: placeholder}
}

// Src is the URL to load now.
func (s *ImageSource) Src() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return s.placeholder
	}
	return s.primary
}

func (s *ImageSource) Placeholder() string { return s.placeholder }

// OnError reports a load failure. It returns true only for the call that
// switched to the placeholder.
func (s *ImageSource) OnError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return false
	}
	s.failed = true
	return true
}

// CardView is the presentational state of one token card.
type CardView struct {
	ID          string
	Name        string
	Symbol      string
	Chain       string
	Address     string
	Price       string
	Liquidity   string
	Volume      string
	Image       *ImageSource // nil when the token has no logo
	ExplorerURL string
}

// PriceText etc. carry the "$" the card prints in front of every figure.
func (c CardView) PriceText() string     { return "$" + c.Price }
func (c CardView) LiquidityText() string { return "$" + c.Liquidity }
func (c CardView) VolumeText() string    { return "$" + c.Volume }

// NewCard formats t for display.
func NewCard(t models.Token, placeholder string, f *Formatter) CardView {
	if f == nil {
		f = DefaultFormatter
	}
	c := CardView{
		ID:          t.ID,
		Name:        t.Name,
		Symbol:      t.Symbol,
		Chain:       t.Chain,
		Address:     t.Address,
		Price:       FormatPrice(t.PriceUSD),
		Liquidity:   f.Grouped(t.LiquidityUSD),
		Volume:      f.Grouped(t.Volume24h),
		ExplorerURL: chain.ExplorerURL(t.Chain, t.Address),
	}
	if t.ImageURL != "" {
		c.Image = NewImageSource(t.ImageURL, placeholder)
	}
	return c
}
