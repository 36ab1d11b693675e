package pages

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/profit-sniffer/pkg/filters"
	"github.com/profit-sniffer/pkg/telegram"
)

const (
	filtersUpdatedText = "Filters updated successfully."
	filtersErrorPrefix = "Error updating filters: "

	// ApplyFiltersLabel is the main button caption while the filter form is open.
	ApplyFiltersLabel = "Apply Filters"
)

type FilterState int

const (
	FilterEditing FilterState = iota
	FilterSubmitting
)

func (s FilterState) String() string {
	if s == FilterSubmitting {
		return "submitting"
	}
	return "editing"
}

// FieldView is one input of the filter form.
type FieldView struct {
	Key         string
	Label       string
	Icon        filters.Icon
	Value       string
	Placeholder string
}

// FilterView is a snapshot of the filter page for rendering.
type FilterView struct {
	State     FilterState
	Fields    []FieldView
	Notice    Notice
	ScreenURL string
}

// FilterPage is the form of ten numeric thresholds. Every field starts empty;
// Change is the keystroke path and Submit sends the whole set.
type FilterPage struct {
	bridge *telegram.Bridge
	client FilterUpdater
	opts   options

	mu        sync.Mutex
	values    filters.Filters
	state     FilterState
	notice    Notice
	screenURL string
}

func NewFilterPage(bridge *telegram.Bridge, client FilterUpdater, opts ...Option) *FilterPage {
	return &FilterPage{bridge: bridge, client: client, opts: buildOptions("filters", opts)}
}

// Mount shows the host main button as a second submit control.
func (p *FilterPage) Mount() {
	p.bridge.SetMainButton(ApplyFiltersLabel, true)
}

func (p *FilterPage) Unmount() {
	p.bridge.SetMainButton(ApplyFiltersLabel, false)
}

// Change applies one edit. Values that are not a partial decimal are dropped
// and the previous value stays; unknown keys are dropped as well.
func (p *FilterPage) Change(key, value string) bool {
	if !filters.IsKey(key) || !filters.ValidateField(value) {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values.Set(key, value)
}

// Values returns the current filter set.
func (p *FilterPage) Values() filters.Filters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values
}

// Submit sends every field, empty ones included, and records the outcome as
// the page notice.
func (p *FilterPage) Submit(ctx context.Context) Notice {
	p.mu.Lock()
	p.state = FilterSubmitting
	values := p.values
	p.mu.Unlock()

	notice, screen := p.submit(ctx, values)
	p.opts.metrics.FilterSubmitted(!notice.IsFailure())

	p.mu.Lock()
	p.state = FilterEditing
	p.notice = notice
	p.screenURL = screen
	p.mu.Unlock()
	return notice
}

func (p *FilterPage) submit(ctx context.Context, values filters.Filters) (Notice, string) {
	telegramID, err := p.bridge.GetTelegramID()
	if err != nil {
		p.opts.log.Warn().Err(err).Msg("⚠️ Cannot submit filters without a Telegram identity")
		return Failure(filtersErrorPrefix + errorText(err)), ""
	}

	update, err := p.client.UpdateFilters(ctx, telegramID, values)
	if err != nil {
		p.opts.log.Error().Err(err).Str("telegram_id", telegramID).Msg("❌ Error updating filters")
		return Failure(filtersErrorPrefix + errorText(err)), ""
	}

	screen := update.URL
	if screen == "" {
		screen = filters.DexScreenerURL(values)
	}
	p.opts.log.Info().Str("telegram_id", telegramID).Str("filters", values.String()).Msg("🎯 Filters saved")
	p.notifyHost(values, screen)
	return Success(filtersUpdatedText), screen
}

// EventFiltersUpdated tags the payload sent to the bot after a save.
const EventFiltersUpdated = "filters_updated"

// FiltersEvent is what the filter page hands to the bot through sendData.
type FiltersEvent struct {
	Event   string          `json:"event"`
	Filters filters.Filters `json:"filters"`
	URL     string          `json:"url"`
}

// notifyHost hands the saved filters to the bot through Telegram.WebApp.sendData.
func (p *FilterPage) notifyHost(values filters.Filters, screen string) {
	payload, err := json.Marshal(FiltersEvent{Event: EventFiltersUpdated, Filters: values, URL: screen})
	if err != nil {
		return
	}
	p.bridge.SendTelegramData(string(payload))
}

// View snapshots the form.
func (p *FilterPage) View() FilterView {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := FilterView{State: p.state, Notice: p.notice, ScreenURL: p.screenURL}
	for _, k := range filters.Keys() {
		label := filters.LabelText(k)
		v.Fields = append(v.Fields, FieldView{
			Key:         k,
			Label:       label,
			Icon:        filters.IconFor(k),
			Value:       p.values.Get(k),
			Placeholder: "Enter " + label,
		})
	}
	return v
}
