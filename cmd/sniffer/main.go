// Command sniffer works with ProfitSniffer from a terminal: list tokens, save
// filters or open the interactive screens.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/profit-sniffer/pkg/api"
	"github.com/profit-sniffer/pkg/config"
	"github.com/profit-sniffer/pkg/filters"
	"github.com/profit-sniffer/pkg/pages"
	"github.com/profit-sniffer/pkg/telegram"
	"github.com/profit-sniffer/pkg/tui"
)

const usage = `usage: sniffer <command> [flags]

commands:
  tokens    print the token set matching your filters
  filters   save filter thresholds, e.g. --minLiquidity 1000 --maxAge 24
  tui       open the interactive screens
`

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runErr error
	switch os.Args[1] {
	case "tokens":
		runErr = runTokens(ctx, cfg, os.Args[2:], os.Stdout)
	case "filters":
		runErr = runFilters(ctx, cfg, os.Args[2:], os.Stdout)
	case "tui":
		runErr = runTUI(ctx, cfg, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "❌", runErr)
		os.Exit(1)
	}
}

type common struct {
	telegramID int64
	backend    string
	timeout    time.Duration
	verbose    bool
}

func commonFlags(fs *flag.FlagSet, cfg *config.Config) *common {
	c := &common{}
	fs.Int64Var(&c.telegramID, "telegram-id", 0, "Telegram user id (development builds fall back to a mock id)")
	fs.StringVar(&c.backend, "backend", cfg.BackendURL, "backend base url")
	fs.DurationVar(&c.timeout, "timeout", 15*time.Second, "request timeout")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
	return c
}

func (c *common) setup(cfg *config.Config) (*api.Client, *telegram.Bridge) {
	if c.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	client := api.New(c.backend)
	bridge := telegram.NewBridge(tui.NewHost(c.telegramID, ""), cfg.IsDevelopment(), log.Logger)
	return client, bridge
}

func runTokens(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	c := commonFlags(fs, cfg)
	lang := fs.String("lang", localeFromEnv(os.Getenv("LANG")), "locale for grouped numbers, e.g. de")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, bridge := c.setup(cfg)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	p := pages.NewTokensPage(bridge, client,
		pages.WithPlaceholder(cfg.PlaceholderImageURL),
		pages.WithFormatter(pages.FormatterFor(*lang)),
	)
	p.Mount(ctx)
	defer p.Unmount()

	return renderTokens(out, p.View())
}

func runFilters(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("filters", flag.ContinueOnError)
	c := commonFlags(fs, cfg)
	values := make(map[string]*string, len(filters.Keys()))
	for _, k := range filters.Keys() {
		values[k] = fs.String(k, "", filters.LabelText(k))
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, bridge := c.setup(cfg)

	p := pages.NewFilterPage(bridge, client)
	p.Mount()
	defer p.Unmount()
	for _, k := range filters.Keys() {
		if !p.Change(k, *values[k]) {
			return fmt.Errorf("invalid value %q for --%s, use digits with at most one decimal point", *values[k], k)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	notice := p.Submit(ctx)
	return renderNotice(out, notice, p.View().ScreenURL)
}

func runTUI(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	c := commonFlags(fs, cfg)
	name := fs.String("name", os.Getenv("USER"), "name shown in the greeting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, _ := c.setup(cfg)

	// Log lines would tear the alt screen.
	zerolog.SetGlobalLevel(zerolog.Disabled)
	return tui.Run(ctx, client, tui.Config{
		TelegramID: c.telegramID,
		Name:       *name,
		DevMode:    cfg.IsDevelopment(),
		Logger:     log.Logger,
		Options: []pages.Option{
			pages.WithPlaceholder(cfg.PlaceholderImageURL),
			pages.WithFormatter(pages.FormatterFor(localeFromEnv(os.Getenv("LANG")))),
		},
	})
}
