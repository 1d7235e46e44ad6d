package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/drew/studydash/internal/model"
)

// UIMode represents the UI rendering mode
type UIMode string

// UI mode constants
const (
	UIModeBasic UIMode = "basic"
	UIModeFull  UIMode = "full"
)

// Renderer writes terminal reports
type Renderer struct {
	w      io.Writer
	mode   UIMode
	colors *Colors
	width  int
}

// NewRenderer creates a renderer on w. Full mode and colours fall back to
// plain output when w is not a terminal.
func NewRenderer(w io.Writer, mode UIMode, enableColors bool) *Renderer {
	isTTY := IsTerminalWriter(w)
	if !isTTY {
		mode = UIModeBasic
	}
	return &Renderer{
		w:      w,
		mode:   mode,
		colors: NewColors(enableColors),
		width:  TerminalWidth(w),
	}
}

// Colors returns the renderer's colour set
func (r *Renderer) Colors() *Colors {
	return r.colors
}

// Mode returns the effective mode
func (r *Renderer) Mode() UIMode {
	return r.mode
}

// Header renders a title with optional detail lines
func (r *Renderer) Header(title string, lines ...string) {
	if r.mode == UIModeFull {
		inner := r.width - 2
		bar := strings.Repeat("═", inner)
		fmt.Fprintf(r.w, "╔%s╗\n", bar)
		fmt.Fprintf(r.w, "║ %s%s║\n", r.colors.Bold(title), strings.Repeat(" ", max(0, inner-1-utf8.RuneCountInString(title))))
		for _, line := range lines {
			line = truncate(line, inner-1)
			fmt.Fprintf(r.w, "║ %s%s║\n", line, strings.Repeat(" ", max(0, inner-1-utf8.RuneCountInString(line))))
		}
		fmt.Fprintf(r.w, "╚%s╝\n\n", bar)
		return
	}

	fmt.Fprintln(r.w, r.colors.Bold(title))
	for _, line := range lines {
		fmt.Fprintln(r.w, line)
	}
	fmt.Fprintln(r.w)
}

// Section starts a titled block
func (r *Renderer) Section(title string) {
	fmt.Fprintln(r.w, r.colors.Orange(r.colors.Bold(title)))
}

// EndSection closes a block with a blank line
func (r *Renderer) EndSection() {
	fmt.Fprintln(r.w)
}

// Outcome renders the result of fetching one statistic
func (r *Renderer) Outcome(name, outcome string, records int, detail string) {
	symbol := r.colors.OutcomeSymbol(outcome)
	status := r.colors.OutcomeColor(outcome, fmt.Sprintf("%-6s", outcome))
	line := fmt.Sprintf("  %s %-40s %s %4d records", symbol, truncate(name, 40), status, records)
	if detail != "" {
		line += "  " + r.colors.Gray(detail)
	}
	fmt.Fprintln(r.w, line)
}

// Share renders label with a bar for part of total
func (r *Renderer) Share(label string, part, total int) {
	barWidth := 30
	if r.width > 100 {
		barWidth = 50
	}
	fmt.Fprintf(r.w, "  %-18s %s  (%d/%d)\n", truncate(label, 18), r.colors.ProgressBar(part, total, barWidth), part, total)
}

// Line renders one indented line
func (r *Renderer) Line(format string, args ...any) {
	fmt.Fprintf(r.w, "  "+format+"\n", args...)
}

// Table renders rows as aligned columns, truncating cells so a row fits
// the terminal width
func (r *Renderer) Table(headers []string, rows []model.Row) {
	if len(headers) == 0 {
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i := range headers {
			widths[i] = max(widths[i], utf8.RuneCountInString(row.Cell(i)))
		}
	}
	limit := max(8, (r.width-2)/len(headers)-2)
	for i := range widths {
		widths[i] = min(widths[i], limit)
	}

	cells := func(values func(i int) string) string {
		parts := make([]string, len(headers))
		for i := range headers {
			v := truncate(values(i), widths[i])
			parts[i] = v + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(v))
		}
		return "  " + strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	fmt.Fprintln(r.w, r.colors.Bold(cells(func(i int) string { return headers[i] })))
	rule := make([]string, len(headers))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	fmt.Fprintln(r.w, r.colors.Gray("  "+strings.Join(rule, "  ")))
	for _, row := range rows {
		fmt.Fprintln(r.w, cells(row.Cell))
	}
}

// Summary renders the closing tally of a snapshot
func (r *Renderer) Summary(ok, empty, failed int) {
	fmt.Fprintln(r.w, r.colors.Bold("Summary:"))
	fmt.Fprintf(r.w, "  %s %d ok  %s %d empty  %s %d failed\n",
		r.colors.OutcomeSymbol(OutcomeOK), ok,
		r.colors.OutcomeSymbol(OutcomeEmpty), empty,
		r.colors.OutcomeSymbol(OutcomeFailed), failed)
	fmt.Fprintln(r.w)
	if failed > 0 {
		fmt.Fprintln(r.w, r.colors.Red("studydash: one or more statistics could not be fetched"))
	} else {
		fmt.Fprintln(r.w, r.colors.Green("studydash: all statistics fetched"))
	}
}

// truncate shortens s to maxLen runes, ending in "..." when cut
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
