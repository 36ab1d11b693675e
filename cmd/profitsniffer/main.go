package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/profit-sniffer/pkg/api"
	"github.com/profit-sniffer/pkg/banner"
	"github.com/profit-sniffer/pkg/bot"
	"github.com/profit-sniffer/pkg/config"
	"github.com/profit-sniffer/pkg/metrics"
	"github.com/profit-sniffer/pkg/web"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	log.Info().Str("env", cfg.Env).Msg("🔍 ProfitSniffer starting...")

	m := metrics.New(nil)
	client := api.New(cfg.BackendURL, api.WithMetrics(m))

	srv, err := web.New(cfg, client, m)
	if err != nil {
		log.Fatal().Err(err).Msg("web server init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	if cfg.BotEnabled {
		b, err := bot.New(cfg.BotToken, cfg.WebAppURL, m)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram bot init failed")
		}
		g.Go(func() error { return b.Run(ctx) })
	}

	printSummary(cfg)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("error")
	}
	log.Info().Msg("goodbye 👋")
}

func printSummary(cfg *config.Config) {
	botStatus := banner.Status(false, "Disabled (set BOT_ENABLED=true)")
	if cfg.BotEnabled {
		botStatus = banner.Status(true, "Polling")
	}
	identity := banner.Status(cfg.BotToken != "", "Signed init data")
	if cfg.IsDevelopment() {
		identity = banner.Status(true, "Development (mock Telegram ID)")
	}
	banner.Print(os.Stdout, "🔍 PROFITSNIFFER - RUNNING", []banner.Line{
		{Label: "Backend", Value: cfg.BackendURL},
		{Label: "Mini App", Value: fmt.Sprintf("http://localhost:%d", cfg.Port)},
		{Label: "Public URL", Value: cfg.WebAppURL},
		{Label: "Identity", Value: identity},
		{Label: "Bot", Value: botStatus},
		{Label: "Metrics", Value: fmt.Sprintf("http://localhost:%d/metrics", cfg.Port)},
	})
}
