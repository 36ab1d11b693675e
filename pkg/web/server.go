package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/profit-sniffer/pkg/api"
	"github.com/profit-sniffer/pkg/config"
	"github.com/profit-sniffer/pkg/filters"
	"github.com/profit-sniffer/pkg/metrics"
	"github.com/profit-sniffer/pkg/pages"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Server renders the Mini App pages.
type Server struct {
	cfg     *config.Config
	client  pages.FilterUpdater
	loader  pages.TokenSetGetter
	metrics *metrics.Metrics
	views   map[string]*template.Template
	started time.Time
}

// Backend is what the pages need from the API; *api.Client satisfies it.
type Backend interface {
	pages.FilterUpdater
	pages.TokenSetGetter
}

func New(cfg *config.Config, backend Backend, m *metrics.Metrics) (*Server, error) {
	views, err := parseViews()
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Server{
		cfg:     cfg,
		client:  backend,
		loader:  pages.NewSharedLoader(backend),
		metrics: m,
		views:   views,
		started: time.Now(),
	}, nil
}

func parseViews() (map[string]*template.Template, error) {
	funcs := template.FuncMap{"icon": iconHTML}
	views := make(map[string]*template.Template)
	for _, name := range []string{"landing", "filters", "tokens"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		views[name] = t
	}
	return views, nil
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.Handle("GET /{$}", s.page("/", s.handleLanding))
	mux.Handle("GET /filters", s.page("/filters", s.handleFilters))
	mux.Handle("POST /filters", s.page("/filters", s.handleSubmitFilters))
	mux.Handle("GET /tokens", s.page("/tokens", s.handleTokens))

	// Ops
	mux.Handle("GET /healthz", s.route("/healthz", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /metrics", s.route("/metrics", s.metrics.Handler()))

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", s.route("/static", http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	return requestID(mux)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("🌐 Mini App server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("⚠️ Mini App server shutdown error")
		return err
	}
	log.Info().Msg("🛑 Mini App server stopped")
	return nil
}

// ---- Handlers ----

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request, v *view) {
	lv := pages.NewLandingPage(v.bridge, v.opts...).View()
	s.render(w, r, "landing", pageData{Title: "ProfitSniffer", Landing: &lv}, v)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request, v *view) {
	p := pages.NewFilterPage(v.bridge, s.client, v.opts...)
	p.Mount()
	defer p.Unmount()

	fv := p.View()
	s.render(w, r, "filters", pageData{Title: "Set Filters", Filters: &fv}, v)
}

func (s *Server) handleSubmitFilters(w http.ResponseWriter, r *http.Request, v *view) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	p := pages.NewFilterPage(v.bridge, s.client, v.opts...)
	p.Mount()
	defer p.Unmount()

	for _, k := range filters.Keys() {
		if !p.Change(k, r.PostForm.Get(k)) {
			v.log.Debug().Str("field", k).Msg("rejected filter value")
		}
	}
	p.Submit(r.Context())
	if r.Context().Err() != nil {
		return
	}

	fv := p.View()
	s.render(w, r, "filters", pageData{Title: "Set Filters", Filters: &fv}, v)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request, v *view) {
	p := pages.NewTokensPage(v.bridge, s.loader, v.opts...)
	p.Mount(r.Context())
	defer p.Unmount()

	// The client went away while we were fetching; nothing to render into.
	if r.Context().Err() != nil {
		return
	}
	tv := p.View()
	s.render(w, r, "tokens", pageData{Title: "Tokens", Tokens: &tv}, v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"backend": backendURL(s.client),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func backendURL(c pages.FilterUpdater) string {
	if ac, ok := c.(*api.Client); ok {
		return ac.BaseURL()
	}
	return ""
}

// ---- Rendering ----

type pageData struct {
	Title   string
	Init    string
	Chrome  chrome
	Landing *pages.LandingView
	Filters *pages.FilterView
	Tokens  *pages.TokensView
}

// chrome is what the page script does with Telegram.WebApp once loaded.
type chrome struct {
	Button     bool
	ButtonText string
	Action     string // "reload" or "submit"
	SendData   []string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData, v *view) {
	data.Chrome = v.chrome(name)
	data.Init = v.init
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.views[name].ExecuteTemplate(w, "layout", data); err != nil {
		v.log.Error().Err(err).Str("view", name).Msg("❌ Template render failed")
	}
}

var icons = map[filters.Icon]string{
	filters.IconCurrency: "$",
	filters.IconCalendar: "📅",
	filters.IconCount:    "#",
}

func iconHTML(i filters.Icon) template.HTML {
	sym, ok := icons[i]
	if !ok {
		return ""
	}
	return template.HTML(`<span class="ic-` + string(i) + `">` + template.HTMLEscapeString(sym) + `</span>`)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("write json")
	}
}
