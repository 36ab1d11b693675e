package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/profit-sniffer/pkg/pages"
)

func renderTokens(w io.Writer, v pages.TokensView) error {
	switch v.State {
	case pages.TokensError:
		return fmt.Errorf("%s", v.ErrorText())
	case pages.TokensEmpty:
		fmt.Fprintln(w, pages.EmptyTokensText)
		return nil
	case pages.TokensLoading:
		return fmt.Errorf("token set did not load")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Symbol", "Chain", "Price", "Liquidity", "24h Volume", "DexScreener"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})
	for _, c := range v.Cards {
		table.Append([]string{c.Name, c.Symbol, c.Chain, c.PriceText(), c.LiquidityText(), c.VolumeText(), c.ExplorerURL})
	}
	if !v.UpdatedAt.IsZero() {
		table.SetCaption(true, "Updated "+v.UpdatedAt.Format("2006-01-02 15:04 MST"))
	}
	table.Render()
	return nil
}

func renderNotice(w io.Writer, n pages.Notice, screenURL string) error {
	if n.IsFailure() {
		return fmt.Errorf("%s", n.Text)
	}
	fmt.Fprintln(w, "✅", n.Text)
	if screenURL != "" {
		fmt.Fprintln(w, "🔗", screenURL)
	}
	return nil
}

// localeFromEnv turns a POSIX locale such as "de_DE.UTF-8" into a language tag.
func localeFromEnv(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}
