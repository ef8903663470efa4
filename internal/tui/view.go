package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

// renderView renders the full screen.
func (a App) renderView() string {
	if a.mode == ModeAdd || a.mode == ModeEdit || a.mode == ModeImport {
		return a.renderModal()
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderList(), a.renderHelpBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the app name, bookmark count and theme.
func (a App) renderHeader() string {
	count := a.svc.Len()
	noun := "bookmarks"
	if count == 1 {
		noun = "bookmark"
	}
	left := a.styles.HeaderTitle.Render("marks") + "  " +
		a.styles.HeaderMeta.Render(fmt.Sprintf("%d %s", count, noun))

	if a.filter.Active() || a.mode == ModeFilter {
		left += a.styles.HeaderMeta.Render(fmt.Sprintf("  (%d shown)", len(a.items)))
	}

	themeLabel := "☀ light"
	if a.svc.Theme() == model.ThemeDark {
		themeLabel = "☾ dark"
	}
	right := a.styles.HeaderMeta.Render(themeLabel)

	innerWidth := max(a.width-a.styles.App.GetHorizontalPadding(), 1)
	gap := max(innerWidth-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return a.styles.Header.Width(innerWidth).Render(left + strings.Repeat(" ", gap) + right)
}

// renderList renders the visible slice of the bookmark list.
func (a App) renderList() string {
	listHeight := layout.CalculateListHeight(a.height, a.layoutConfig.List)
	itemWidth := layout.CalculateItemWidth(a.width, a.layoutConfig.List)

	var lines []string

	if a.mode == ModeFilter {
		lines = append(lines, "/"+a.filter.Input.View())
		listHeight--
	} else if a.filter.Active() {
		lines = append(lines, a.styles.HeaderMeta.Render("filter: "+a.filter.Query))
		listHeight--
	}

	if len(a.items) == 0 {
		msg := "No bookmarks yet. Press a to add one or i to import a file."
		if a.filter.Active() {
			msg = "No bookmarks match the filter."
		}
		lines = append(lines, a.styles.Empty.Render(msg))
		return lipgloss.NewStyle().Height(listHeight).Render(strings.Join(lines, "\n"))
	}

	visible := layout.CalculateVisibleItems(listHeight, a.layoutConfig.List)
	start, end := layout.CalculateVisibleRange(visible, a.cursor, len(a.items))
	for i := start; i < end; i++ {
		lines = append(lines, a.renderItem(a.items[i], i == a.cursor, itemWidth))
	}

	return lipgloss.NewStyle().Height(listHeight).Render(strings.Join(lines, "\n"))
}

// renderItem renders one bookmark: title, URL, then description and tags.
func (a App) renderItem(b model.Bookmark, isCursor bool, maxWidth int) string {
	var title string
	if isCursor {
		text, _ := layout.TruncateText(b.Title, maxWidth-2, a.layoutConfig.Text)
		title = a.styles.ItemSelected.Render("▸ " + text)
	} else {
		styled := a.highlightMatches(b.Title, a.matches[b.ID])
		title = a.styles.Item.Render("  " + layout.TruncateANSIAware(styled, maxWidth-2, a.layoutConfig.Text))
	}

	url, _ := layout.TruncateText(b.URL, maxWidth-4, a.layoutConfig.Text)
	lines := []string{title, "    " + a.styles.URL.Render(url)}

	var details []string
	if b.Description != "" {
		details = append(details, a.styles.Description.Render(b.Description))
	}
	if len(b.Tags) > 0 {
		tags := make([]string, len(b.Tags))
		for i, t := range b.Tags {
			tags[i] = "#" + t
		}
		details = append(details, a.styles.Tag.Render(strings.Join(tags, " ")))
	}
	detail := ""
	if len(details) > 0 {
		detail = "    " + layout.TruncateANSIAware(strings.Join(details, "  "), maxWidth-4, a.layoutConfig.Text)
	}
	lines = append(lines, detail, "")

	return strings.Join(lines, "\n")
}

// highlightMatches styles the runes of s at the matched indexes.
func (a App) highlightMatches(s string, matched []int) string {
	if len(matched) == 0 {
		return s
	}

	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	// fuzzy reports byte offsets
	for i, r := range s {
		if hit[i] {
			b.WriteString(a.styles.Match.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// renderModal renders the add/edit form or the import prompt centered on screen.
func (a App) renderModal() string {
	var content strings.Builder

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal)
	modalStyle := a.styles.Modal.Width(modalWidth)

	switch a.mode {
	case ModeAdd, ModeEdit:
		title := "Add Bookmark"
		if a.mode == ModeEdit {
			title = "Edit Bookmark"
		}
		content.WriteString(a.styles.ModalTitle.Render(title))
		content.WriteString("\n\n")

		labels := [fieldCount]string{"Title", "URL", "Description", "Tags (comma-separated)"}
		for i, label := range labels {
			style := a.styles.Label
			if i == a.form.Focus {
				style = a.styles.LabelFocused
			}
			content.WriteString(style.Render(label) + "\n")
			content.WriteString(a.form.Inputs[i].View())
			if i < fieldCount-1 {
				content.WriteString("\n\n")
			}
		}

	case ModeImport:
		content.WriteString(a.styles.ModalTitle.Render("Import Bookmarks"))
		content.WriteString("\n\n")
		content.WriteString(a.styles.Label.Render("Path to an HTML bookmark file:") + "\n")
		content.WriteString(a.importPrompt.PathInput.View())
	}

	modal := lipgloss.Place(
		a.width,
		max(a.height-3, 1),
		lipgloss.Center,
		lipgloss.Center,
		modalStyle.Render(content.String()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderHelpBar())
}

// renderHelpBar renders the message line followed by contextual hints.
func (a App) renderHelpBar() string {
	var lines []string

	// Line 1: Empty spacer OR message (message replaces the gap)
	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}

	hintWidth := max(a.width-a.styles.App.GetHorizontalPadding(), 1)
	lines = append(lines, layout.TruncateANSIAware(a.renderHints(a.getContextualHints()), hintWidth, a.layoutConfig.Text))

	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	var msgStyle lipgloss.Style
	var prefix string

	switch a.messageType {
	case MessageError:
		msgStyle = a.styles.Error
		prefix = "✗ "
	case MessageWarning:
		msgStyle = a.styles.Warning
		prefix = "⚠ "
	case MessageSuccess:
		msgStyle = a.styles.Success
		prefix = "✓ "
	default:
		msgStyle = a.styles.Info
	}

	text := a.messageText
	if limit := a.width - 4 - utf8.RuneCountInString(prefix); limit > 0 {
		text, _ = layout.TruncateText(text, limit, a.layoutConfig.Text)
	}
	return msgStyle.Render(prefix + text)
}
