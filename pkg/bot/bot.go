// Package bot runs the ProfitSniffer Telegram bot: it greets users, opens the
// Mini App from a keyboard and confirms filters the app sends back.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/profit-sniffer/pkg/filters"
	"github.com/profit-sniffer/pkg/metrics"
	"github.com/profit-sniffer/pkg/pages"
)

const WelcomeMessage = "Welcome to ProfitSniffer! 🚀\n\n" +
	"We're here to help you spot profitable crypto opportunities with ease. Here's what you can do:\n\n" +
	"🔎 Set Filters – Customize alerts to match your trading strategy.\n" +
	"📊 View Tokens – Check out tokens that meet your criteria.\n" +
	"📱 App – Access the full ProfitSniffer experience through our app!\n\n" +
	"Ready to get started? Set your filters and let us sniff out profit opportunities for you!"

const (
	setFiltersButton = "🔎 Set Filters"
	viewTokensButton = "📊 View Tokens"
	appButton        = "📱 App"
	menuButtonText   = "App"
)

// API is the part of *tgbotapi.BotAPI the bot talks to.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api       API
	webAppURL string
	metrics   *metrics.Metrics
	timeout   int // long poll seconds
	offset    int
	log       zerolog.Logger
}

// New authorizes token against the Bot API.
func New(token, webAppURL string, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	log.Info().Str("username", api.Self.UserName).Msg("🤖 Telegram bot authorized")
	return NewWithAPI(api, webAppURL, m), nil
}

func NewWithAPI(api API, webAppURL string, m *metrics.Metrics) *Bot {
	return &Bot{
		api:       api,
		webAppURL: strings.TrimRight(webAppURL, "/"),
		metrics:   m,
		timeout:   25,
		log:       log.With().Str("component", "bot").Logger(),
	}
}

// Run long-polls getUpdates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.setup()
	b.log.Info().Str("webapp", b.webAppURL).Msg("🤖 Telegram bot started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn().Err(err).Msg("⚠️ getUpdates failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, raw := range updates {
			if err := b.HandleUpdate(raw); err != nil {
				b.log.Error().Err(err).Msg("❌ Update handling failed")
			}
		}
	}
}

// setup registers /start and, when the app is served over https, the chat
// menu button. Failures only cost convenience.
func (b *Bot) setup() {
	cmds := tgbotapi.NewSetMyCommands(tgbotapi.BotCommand{Command: "start", Description: "Welcome and app shortcuts"})
	if _, err := b.api.Request(cmds); err != nil {
		b.log.Warn().Err(err).Msg("⚠️ setMyCommands failed")
	}

	if !b.webAppEnabled() {
		b.log.Warn().Str("webapp", b.webAppURL).Msg("⚠️ Mini App needs an https url, keyboard disabled")
		return
	}
	params := tgbotapi.Params{}
	if err := params.AddInterface("menu_button", menuButton{Type: "web_app", Text: menuButtonText, WebApp: &webAppInfo{URL: b.webAppURL}}); err != nil {
		return
	}
	if _, err := b.api.MakeRequest("setChatMenuButton", params); err != nil {
		b.log.Warn().Err(err).Msg("⚠️ setChatMenuButton failed")
	}
}

func (b *Bot) poll(ctx context.Context) ([]json.RawMessage, error) {
	params := tgbotapi.Params{}
	params.AddNonZero("offset", b.offset)
	params.AddNonZero("timeout", b.timeout)
	if err := params.AddInterface("allowed_updates", []string{"message"}); err != nil {
		return nil, err
	}

	type result struct {
		resp *tgbotapi.APIResponse
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := b.api.MakeRequest("getUpdates", params)
		ch <- result{resp, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}
	if r.err != nil {
		return nil, r.err
	}

	var updates []json.RawMessage
	if err := json.Unmarshal(r.resp.Result, &updates); err != nil {
		return nil, fmt.Errorf("failed to decode updates: %w", err)
	}
	return updates, nil
}

// webAppMessage carries the field the Bot API library does not model.
type webAppMessage struct {
	Message *struct {
		WebAppData *struct {
			Data       string `json:"data"`
			ButtonText string `json:"button_text"`
		} `json:"web_app_data"`
	} `json:"message"`
}

// HandleUpdate dispatches one raw update and advances the poll offset past it.
// An update that fails to decode is still skipped, or getUpdates would return
// it forever.
func (b *Bot) HandleUpdate(raw json.RawMessage) error {
	var head struct {
		UpdateID int `json:"update_id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("failed to decode update id: %w", err)
	}
	if head.UpdateID >= b.offset {
		b.offset = head.UpdateID + 1
	}
	var u tgbotapi.Update
	if err := json.Unmarshal(raw, &u); err != nil {
		return fmt.Errorf("failed to decode update %d: %w", head.UpdateID, err)
	}
	var wa webAppMessage
	_ = json.Unmarshal(raw, &wa)

	m := u.Message
	switch {
	case m == nil:
		b.metrics.BotUpdate("other")
		return nil
	case wa.Message != nil && wa.Message.WebAppData != nil:
		b.metrics.BotUpdate("web_app_data")
		return b.handleWebAppData(m, wa.Message.WebAppData.Data)
	case m.IsCommand() && m.Command() == "start":
		b.metrics.BotUpdate("start")
		return b.handleStart(m)
	default:
		b.metrics.BotUpdate("other")
		b.log.Debug().Int64("chat_id", m.Chat.ID).Msg("ignored message")
		return nil
	}
}

func (b *Bot) handleStart(m *tgbotapi.Message) error {
	msg := tgbotapi.NewMessage(m.Chat.ID, WelcomeMessage)
	if b.webAppEnabled() {
		msg.ReplyMarkup = b.keyboard()
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send welcome: %w", err)
	}
	b.log.Info().Int64("chat_id", m.Chat.ID).Msg("👋 Sent welcome")
	return nil
}

func (b *Bot) handleWebAppData(m *tgbotapi.Message, data string) error {
	var ev pages.FiltersEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil || ev.Event != pages.EventFiltersUpdated {
		b.log.Warn().Int64("chat_id", m.Chat.ID).Str("data", data).Msg("⚠️ Unknown web app data")
		return nil
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, FiltersSavedText(ev.Filters))
	if ev.URL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("Open on DexScreener", ev.URL),
			),
		)
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to confirm filters: %w", err)
	}
	b.log.Info().Int64("chat_id", m.Chat.ID).Str("filters", ev.Filters.String()).Msg("🎯 Confirmed filters")
	return nil
}

// FiltersSavedText lists the thresholds that are set.
func FiltersSavedText(f filters.Filters) string {
	var sb strings.Builder
	sb.WriteString("✅ Filters saved.")
	set := 0
	for _, k := range filters.Keys() {
		v := f.Get(k)
		if v == "" {
			continue
		}
		if set == 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("\n• " + filters.LabelText(k) + ": " + v)
		set++
	}
	if set == 0 {
		sb.WriteString(" No thresholds set, every new pair matches.")
	}
	return sb.String()
}

func (b *Bot) webAppEnabled() bool {
	return strings.HasPrefix(b.webAppURL, "https://")
}

type webAppInfo struct {
	URL string `json:"url"`
}

type keyboardButton struct {
	Text   string      `json:"text"`
	WebApp *webAppInfo `json:"web_app,omitempty"`
}

type replyKeyboard struct {
	Keyboard       [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

type menuButton struct {
	Type   string      `json:"type"`
	Text   string      `json:"text,omitempty"`
	WebApp *webAppInfo `json:"web_app,omitempty"`
}

// keyboard opens the app from reply keyboard buttons, the only launch mode
// in which the app can send data back to the bot.
func (b *Bot) keyboard() replyKeyboard {
	open := func(text, path string) keyboardButton {
		return keyboardButton{Text: text, WebApp: &webAppInfo{URL: b.webAppURL + path}}
	}
	return replyKeyboard{
		Keyboard: [][]keyboardButton{
			{open(setFiltersButton, pages.FiltersPath), open(viewTokensButton, pages.TokensPath)},
			{open(appButton, "/")},
		},
		ResizeKeyboard: true,
	}
}
