// Package pages holds the page controllers of the Mini App. They own page
// state and talk to the backend and the Telegram host, but know nothing about
// how they are rendered; the web server and the terminal client both drive them.
package pages

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/profit-sniffer/pkg/api"
	"github.com/profit-sniffer/pkg/filters"
	"github.com/profit-sniffer/pkg/metrics"
	"github.com/profit-sniffer/pkg/models"
)

// FilterUpdater stores a user's filters. *api.Client implements it.
type FilterUpdater interface {
	UpdateFilters(ctx context.Context, telegramID string, f filters.Filters) (*models.FilterUpdate, error)
}

// TokenSetGetter fetches a user's token set. *api.Client and *SharedLoader implement it.
type TokenSetGetter interface {
	GetTokenSet(ctx context.Context, telegramID string) (*models.TokenSet, error)
}

type options struct {
	log         zerolog.Logger
	metrics     *metrics.Metrics
	placeholder string
	format      *Formatter
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithPlaceholder sets the image shown when a token logo fails to load.
func WithPlaceholder(url string) Option {
	return func(o *options) {
		if url != "" {
			o.placeholder = url
		}
	}
}

// WithFormatter sets the locale used for grouped numbers on token cards.
func WithFormatter(f *Formatter) Option {
	return func(o *options) {
		if f != nil {
			o.format = f
		}
	}
}

func buildOptions(component string, opts []Option) options {
	o := options{log: log.Logger, placeholder: DefaultPlaceholder, format: DefaultFormatter}
	for _, fn := range opts {
		fn(&o)
	}
	o.log = o.log.With().Str("page", component).Logger()
	return o
}

// errorText is the message a page shows for err. Backend failures carry their
// normalised text; other errors, such as a missing identity, show their own.
func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}
