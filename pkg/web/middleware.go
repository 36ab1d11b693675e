package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/profit-sniffer/pkg/pages"
	"github.com/profit-sniffer/pkg/telegram"
)

const requestIDHeader = "X-Request-ID"

// Init data states reported to the page script through <body data-init>.
const (
	initOK       = "ok"
	initRejected = "rejected"
)

type requestIDKey struct{}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// route records metrics and a log line for every request under label.
func (s *Server) route(label string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		s.metrics.ObserveHTTP(label, rec.code, elapsed)

		ev := log.Info()
		if label == "/static" || label == "/metrics" || label == "/healthz" {
			ev = log.Debug()
		}
		ev.Str("request_id", requestIDFrom(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.code).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}

// view is the per-request page context: the Telegram host behind the request
// and the options every page controller is built with.
type view struct {
	host   *telegram.RequestHost // nil outside Telegram
	init   string                // initOK, initRejected or "" when none was sent
	bridge *telegram.Bridge
	opts   []pages.Option
	log    zerolog.Logger
}

func (s *Server) page(label string, h func(http.ResponseWriter, *http.Request, *view)) http.Handler {
	return s.route(label, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(w, r, s.newView(r))
	}))
}

func (s *Server) newView(r *http.Request) *view {
	logger := log.With().Str("request_id", requestIDFrom(r.Context())).Logger()

	v := &view{log: logger}
	var host telegram.Host
	h, err := telegram.HostFromRequest(r, s.cfg.BotToken, s.cfg.InitDataMaxAge)
	if err != nil {
		logger.Warn().Err(err).Msg("⚠️ Rejected Telegram init data")
		v.init = initRejected
	} else if rh, ok := h.(*telegram.RequestHost); ok {
		v.host = rh
		v.init = initOK
		host = rh
	}
	v.bridge = telegram.NewBridge(host, s.cfg.IsDevelopment(), logger)

	lang := r.Header.Get("Accept-Language")
	if v.host != nil {
		if u := v.host.InitData().User; u != nil && u.LanguageCode != "" {
			lang = u.LanguageCode
		}
	}

	v.opts = []pages.Option{
		pages.WithLogger(logger),
		pages.WithMetrics(s.metrics),
		pages.WithPlaceholder(s.cfg.PlaceholderImageURL),
		pages.WithFormatter(pages.FormatterFor(lang)),
	}
	return v
}

// chrome turns the directives the page left on the host into the script
// parameters of the layout.
func (v *view) chrome(name string) chrome {
	if v.host == nil {
		return chrome{}
	}
	d := v.host.Directives()
	c := chrome{
		Button:     d.MainButtonVisible && d.MainButtonText != "",
		ButtonText: d.MainButtonText,
		Action:     "submit",
	}
	if d.MainButtonBound {
		c.Action = "reload"
	}
	// sendData is only delivered for apps opened from a keyboard button, which
	// is exactly when Telegram leaves query_id out.
	if id := v.host.InitData(); id != nil && id.QueryID == "" {
		c.SendData = d.SendData
	}
	v.log.Debug().Str("view", name).Bool("main_button", c.Button).Int("send_data", len(c.SendData)).Msg("page chrome")
	return c
}
