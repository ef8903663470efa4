package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	List  ListConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// ListConfig holds bookmark list dimension configuration.
type ListConfig struct {
	// ChromeLines is subtracted from terminal height for list content.
	// Accounts for: app padding (1) + header (2) + status line (1) + help bar (2) = 6
	ChromeLines int

	// MinHeight is the minimum list height in lines.
	MinHeight int

	// LinesPerItem is how many lines one bookmark occupies (title, URL, details, gap).
	LinesPerItem int

	// ContentPadding is subtracted from terminal width for item rendering.
	ContentPadding int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Character limits
	TitleCharLimit       int
	URLCharLimit         int
	DescriptionCharLimit int
	TagsCharLimit        int
	FilterCharLimit      int
	PathCharLimit        int

	// Display widths
	StandardWidth int // title, URL, description, tags, path
	FilterWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		List: ListConfig{
			ChromeLines:    6,
			MinHeight:      4,
			LinesPerItem:   4,
			ContentPadding: 6,
		},
		Modal: ModalConfig{
			WidthPercent: 50,
			MinWidth:     50,
			MaxWidth:     80,
		},
		Input: InputConfig{
			TitleCharLimit:       200,
			URLCharLimit:         2000,
			DescriptionCharLimit: 500,
			TagsCharLimit:        200,
			FilterCharLimit:      50,
			PathCharLimit:        1024,
			StandardWidth:        44,
			FilterWidth:          30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
