package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for the bottom bar: "j/k:move a:add"
func (a App) renderHints(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() []Hint {
	switch a.mode {
	case ModeAdd, ModeEdit:
		return []Hint{
			{Key: "Tab", Desc: "next"},
			{Key: "S-Tab", Desc: "prev"},
			{Key: "Enter", Desc: "save"},
			{Key: "Esc", Desc: "cancel"},
		}
	case ModeFilter:
		return []Hint{
			{Key: "Enter", Desc: "apply"},
			{Key: "Esc", Desc: "clear"},
		}
	case ModeImport:
		return []Hint{
			{Key: "Enter", Desc: "import"},
			{Key: "Esc", Desc: "cancel"},
		}
	}

	hints := []Hint{
		{Key: "j/k", Desc: "move"},
		{Key: "a", Desc: "add"},
	}
	if len(a.items) > 0 {
		hints = append(hints,
			Hint{Key: "e", Desc: "edit"},
			Hint{Key: "d", Desc: "delete"},
			Hint{Key: "o", Desc: "open"},
			Hint{Key: "Y", Desc: "yank"},
		)
	}
	hints = append(hints,
		Hint{Key: "/", Desc: "filter"},
		Hint{Key: "i", Desc: "import"},
		Hint{Key: "x", Desc: "export"},
		Hint{Key: "t", Desc: "theme"},
	)
	if a.filter.Active() {
		hints = append(hints, Hint{Key: "Esc", Desc: "clear filter"})
	}
	return append(hints, Hint{Key: "q", Desc: "quit"})
}
