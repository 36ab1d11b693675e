// Package banner prints the startup logo and run summary.
package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const logo = `
  ____            __ _ _   ____        _  __  __
 |  _ \ _ __ ___ / _(_) |_/ ___| _ __ (_)/ _|/ _| ___ _ __
 | |_) | '__/ _ \ |_| | __\___ \| '_ \| | |_| |_ / _ \ '__|
 |  __/| | | (_) |  _| | |_ ___) | | | | |  _|  _|  __/ |
 |_|   |_|  \___/|_| |_|\__|____/|_| |_|_|_| |_|  \___|_|
`

const tagline = "Sniffing out profit opportunities on new pairs"

const width = 60

// Line is one "label: value" row of the summary.
type Line struct {
	Label string
	Value string
}

// Logo returns the logo and tagline, colored unless color.NoColor is set.
func Logo() string {
	return color.New(color.FgBlue, color.Bold).Sprint(logo) + color.CyanString("  %s", tagline) + "\n"
}

// Print writes the logo followed by a framed summary of lines.
func Print(w io.Writer, title string, lines []Line) {
	rule := strings.Repeat("═", width)
	fmt.Fprint(w, Logo())
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "  "+color.New(color.Bold).Sprint(title))
	fmt.Fprintln(w, rule)

	pad := 0
	for _, l := range lines {
		if len(l.Label) > pad {
			pad = len(l.Label)
		}
	}
	for _, l := range lines {
		fmt.Fprintf(w, "  %-*s %s\n", pad+1, l.Label+":", l.Value)
	}
	fmt.Fprintln(w, rule+"\n")
}

// Status renders an enabled flag the way the summary shows it.
func Status(enabled bool, detail string) string {
	if enabled {
		return color.GreenString("✅ %s", detail)
	}
	return color.RedString("❌ %s", detail)
}
