package ui

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[94m" // Bright blue - more readable on dark backgrounds
	ColorOrange = "\033[38;5;166m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

// Outcome of fetching one statistic
const (
	OutcomeOK     = "OK"
	OutcomeEmpty  = "EMPTY"
	OutcomeFailed = "FAILED"
)

// Colors wraps text in ANSI codes when enabled
type Colors struct {
	enabled bool
}

// NewColors creates a new Colors instance
func NewColors(enabled bool) *Colors {
	return &Colors{enabled: enabled}
}

// Enabled reports whether colours are emitted
func (c *Colors) Enabled() bool {
	return c.enabled
}

func (c *Colors) wrap(code, s string) string {
	if !c.enabled {
		return s
	}
	return code + s + ColorReset
}

// Red returns red colored text
func (c *Colors) Red(s string) string { return c.wrap(ColorRed, s) }

// Green returns green colored text
func (c *Colors) Green(s string) string { return c.wrap(ColorGreen, s) }

// Yellow returns yellow colored text
func (c *Colors) Yellow(s string) string { return c.wrap(ColorYellow, s) }

// Blue returns blue colored text
func (c *Colors) Blue(s string) string { return c.wrap(ColorBlue, s) }

// Orange returns text in the dashboard's brand colour
func (c *Colors) Orange(s string) string { return c.wrap(ColorOrange, s) }

// Gray returns gray colored text
func (c *Colors) Gray(s string) string { return c.wrap(ColorGray, s) }

// Bold returns bold text
func (c *Colors) Bold(s string) string { return c.wrap(ColorBold, s) }

// OutcomeColor colours text by fetch outcome
func (c *Colors) OutcomeColor(outcome, text string) string {
	switch outcome {
	case OutcomeOK:
		return c.Green(text)
	case OutcomeFailed:
		return c.Red(text)
	case OutcomeEmpty:
		return c.Yellow(text)
	default:
		return text
	}
}

// OutcomeSymbol returns a coloured symbol for the outcome
func (c *Colors) OutcomeSymbol(outcome string) string {
	switch outcome {
	case OutcomeOK:
		return c.Green("✓")
	case OutcomeFailed:
		return c.Red("✗")
	case OutcomeEmpty:
		return c.Yellow("⊘")
	default:
		return " "
	}
}

// ProgressBar draws part/total as a bar of width cells followed by the
// percentage with one decimal
func (c *Colors) ProgressBar(part, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}

	ratio := float64(part) / float64(total)
	filled := int(ratio * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	percentText := fmt.Sprintf(" %5.1f%%", ratio*100)

	switch {
	case ratio >= 0.5:
		return c.Green(bar) + percentText
	case ratio >= 0.25:
		return c.Orange(bar) + percentText
	default:
		return c.Gray(bar) + percentText
	}
}
