package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/marks/internal/model"
)

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	HeaderMeta   lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	URL          lipgloss.Style
	Description  lipgloss.Style
	Tag          lipgloss.Style
	Match        lipgloss.Style // fuzzy match highlight in filtered titles
	Empty        lipgloss.Style
	Modal        lipgloss.Style
	ModalTitle   lipgloss.Style
	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	HintKey      lipgloss.Style // Key portion of hints (e.g., "Enter", "j/k")
	HintDesc     lipgloss.Style // Description portion of hints (e.g., "confirm", "move")
	Info         lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
}

// palette is the set of colors a theme is built from.
type palette struct {
	primary  lipgloss.Color // main text
	subtle   lipgloss.Color // secondary text
	accent   lipgloss.Color // desaturated teal
	border   lipgloss.Color
	selected lipgloss.Color // text on accent background
	success  lipgloss.Color
	warning  lipgloss.Color
	errColor lipgloss.Color
}

var (
	lightPalette = palette{
		primary:  "#303030",
		subtle:   "#808080",
		accent:   "#4A7070",
		border:   "#A0A0A0",
		selected: "#F5F5F5",
		success:  "#338833",
		warning:  "#CC8800",
		errColor: "#CC3333",
	}
	darkPalette = palette{
		primary:  "#C0C0C0",
		subtle:   "#707070",
		accent:   "#5F8787",
		border:   "#505050",
		selected: "#1A1A1A",
		success:  "#66CC66",
		warning:  "#FFAA00",
		errColor: "#FF6666",
	}
)

// DefaultStyles returns the styles for the default theme.
func DefaultStyles() Styles {
	return ThemedStyles(model.DefaultTheme)
}

// ThemedStyles returns the style configuration for a theme.
// Industrial design: grayscale with single desaturated teal accent.
func ThemedStyles(theme model.Theme) Styles {
	p := lightPalette
	if theme == model.ThemeDark {
		p = darkPalette
	}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.border),

		HeaderTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),

		HeaderMeta: lipgloss.NewStyle().
			Foreground(p.subtle),

		Item: lipgloss.NewStyle().
			Foreground(p.primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(p.accent).
			Foreground(p.selected),

		URL: lipgloss.NewStyle().
			Foreground(p.subtle),

		Description: lipgloss.NewStyle().
			Foreground(p.primary).
			Italic(true),

		Tag: lipgloss.NewStyle().
			Foreground(p.accent),

		Match: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true).
			Underline(true),

		Empty: lipgloss.NewStyle().
			Foreground(p.subtle),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),

		ModalTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),

		Label: lipgloss.NewStyle().
			Foreground(p.subtle),

		LabelFocused: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),

		HintKey: lipgloss.NewStyle().
			Foreground(p.accent),

		HintDesc: lipgloss.NewStyle().
			Foreground(p.subtle),

		Info: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(p.warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(p.errColor).
			Bold(true),
	}
}
