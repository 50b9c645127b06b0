// Package ui provides the visual styling for the MAIA terminal interface.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"maia/internal/types"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f5f6f8")
	LightForeground = lipgloss.Color("#1b2433")
	LightPrimary    = lipgloss.Color("#1f3a5f") // Navy
	LightAccent     = lipgloss.Color("#0f9d8a") // Teal
	LightMuted      = lipgloss.Color("#7a8494")
	LightBorder     = lipgloss.Color("#d5dae1")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#0f1724")
	DarkForeground = lipgloss.Color("#eef1f5")
	DarkPrimary    = lipgloss.Color("#4fd1c5") // Teal (flipped)
	DarkAccent     = lipgloss.Color("#5b8def")
	DarkMuted      = lipgloss.Color("#8792a2")
	DarkBorder     = lipgloss.Color("#2a3546")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#43a047")
	Warning     = lipgloss.Color("#fb8c00")
	Info        = lipgloss.Color("#1e88e5")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// DetectTheme picks a theme from COLORFGBG or MAIA_DARK_MODE, defaulting to
// light.
func DetectTheme() Theme {
	// Format is "foreground;background"; low indexes are dark backgrounds.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil && ((bg >= 0 && bg <= 6) || bg == 8) {
			return DarkTheme()
		}
	}
	if os.Getenv("MAIA_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header lipgloss.Style
	Footer lipgloss.Style

	// Text
	Title lipgloss.Style
	Muted lipgloss.Style
	Bold  lipgloss.Style

	// Mode tabs
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style

	// Transcript
	UserLabel     lipgloss.Style
	ModelLabel    lipgloss.Style
	UserInput     lipgloss.Style
	AgentResponse lipgloss.Style
	SystemNote    lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Tab: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		ActiveTab: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		UserLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		ModelLabel: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		UserInput: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2),

		AgentResponse: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		SystemNote: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true).
			PaddingLeft(2),

		Success: lipgloss.NewStyle().Foreground(Success).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(Warning).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(Info),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Risk renders a risk level with its traffic-light color.
func (s Styles) Risk(level types.RiskLevel) string {
	var c lipgloss.Color
	switch level {
	case types.RiskCritical:
		c = Destructive
	case types.RiskHigh:
		c = Warning
	case types.RiskMedium:
		c = Info
	default:
		c = Success
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(string(level))
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
