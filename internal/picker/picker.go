// Package picker is a small chooser shown by `marks open` when a query
// matches more than one bookmark.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

type styles struct {
	selected lipgloss.Style
	normal   lipgloss.Style
	url      lipgloss.Style
	header   lipgloss.Style
	help     lipgloss.Style
}

func newStyles(theme model.Theme) styles {
	accent, text, subtle := lipgloss.Color("#4A7070"), lipgloss.Color("#303030"), lipgloss.Color("#808080")
	if theme == model.ThemeDark {
		accent, text, subtle = lipgloss.Color("#5F8787"), lipgloss.Color("#C0C0C0"), lipgloss.Color("#707070")
	}

	return styles{
		selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		normal:   lipgloss.NewStyle().Foreground(text),
		url:      lipgloss.NewStyle().Foreground(subtle).Italic(true),
		header:   lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1),
		help:     lipgloss.NewStyle().Foreground(subtle),
	}
}

// Picker is a simple TUI for selecting from search results.
type Picker struct {
	results   []search.SearchResult
	query     string
	styles    styles
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a new Picker with the given search results.
func New(results []search.SearchResult, query string, theme model.Theme) Picker {
	return Picker{
		results: results,
		query:   query,
		styles:  newStyles(theme),
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			p.cancelled = true
			return p, tea.Quit

		case "enter":
			p.selected = true
			return p, tea.Quit

		case "down", "j", "ctrl+n":
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}

		case "up", "k", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(p.styles.header.Render(fmt.Sprintf("Open: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	// Two lines per result plus header and footer
	visible := max((p.height-5)/2, 1)
	start, end := layout.CalculateVisibleRange(visible, p.cursor, len(p.results))
	ellipsis := layout.DefaultConfig().Text

	for i := start; i < end; i++ {
		result := p.results[i]
		cursor := "  "
		style := p.styles.normal
		if i == p.cursor {
			cursor = "> "
			style = p.styles.selected
		}

		title, _ := layout.TruncateText(result.Bookmark.Title, p.width-3, ellipsis)
		url, _ := layout.TruncateText(result.Bookmark.URL, p.width-4, ellipsis)

		b.WriteString(cursor + style.Render(title) + "\n")
		b.WriteString("   " + p.styles.url.Render(url) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(p.styles.help.Render("j/k: move  Enter: open  q/Esc: cancel"))

	return b.String()
}

// SelectedBookmark returns the chosen bookmark. ok is false when the picker
// was cancelled or nothing was chosen.
func (p Picker) SelectedBookmark() (b model.Bookmark, ok bool) {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return model.Bookmark{}, false
	}
	return p.results[p.cursor].Bookmark, true
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
