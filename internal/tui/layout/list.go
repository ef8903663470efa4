package layout

// CalculateListHeight computes the number of lines available for the list.
// Returns at least MinHeight.
func CalculateListHeight(terminalHeight int, cfg ListConfig) int {
	height := terminalHeight - cfg.ChromeLines
	if height < cfg.MinHeight {
		return cfg.MinHeight
	}
	return height
}

// CalculateVisibleItems computes how many bookmarks fit in listHeight lines.
// Always at least one.
func CalculateVisibleItems(listHeight int, cfg ListConfig) int {
	if cfg.LinesPerItem <= 0 {
		return max(listHeight, 1)
	}
	return max(listHeight/cfg.LinesPerItem, 1)
}

// CalculateItemWidth computes the width available for item content.
func CalculateItemWidth(terminalWidth int, cfg ListConfig) int {
	return max(terminalWidth-cfg.ContentPadding, 1)
}

// CalculateVisibleRange computes the start and end indices for a scrollable
// list so the selected item stays in view. items[start:end] is displayed.
func CalculateVisibleRange(maxVisible, selectedIdx, totalItems int) (start, end int) {
	if totalItems <= maxVisible {
		return 0, totalItems
	}

	if selectedIdx >= maxVisible {
		start = selectedIdx - maxVisible + 1
	}

	end = start + maxVisible
	if end > totalItems {
		end = totalItems
	}

	return start, end
}
