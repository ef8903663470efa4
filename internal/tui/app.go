package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/browser"
	"github.com/nikbrunner/marks/internal/editor"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/service"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

// App is the main bubbletea model for the bookmark manager.
type App struct {
	svc          *service.BookmarkService
	editor       *editor.Editor
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig
	log          *slog.Logger

	openURL        func(url string) error
	copyText       func(text string) error
	exportPath     string
	skipDuplicates bool

	mode    Mode
	items   []model.Bookmark // visible list, filtered when a filter is applied
	matches map[string][]int // matched title byte offsets by bookmark ID
	cursor  int

	// For gg command
	lastKeyWasG bool

	form         FormState
	filter       FilterState
	importPrompt ImportState

	messageText string
	messageType MessageType

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Service        *service.BookmarkService
	Keys           *KeyMap              // optional, uses default if nil
	LayoutConfig   *layout.LayoutConfig // optional, uses default if nil
	Logger         *slog.Logger         // optional, discards if nil
	ExportPath     string               // where x writes bookmarks.html
	SkipDuplicates bool                 // import drops URLs already present

	// OpenURL and CopyText default to the system browser and clipboard.
	OpenURL  func(url string) error
	CopyText func(text string) error
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	openURL := params.OpenURL
	if openURL == nil {
		openURL = browser.OpenURL
	}
	copyText := params.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	app := App{
		svc:            params.Service,
		editor:         editor.New(),
		keys:           keys,
		styles:         ThemedStyles(params.Service.Theme()),
		layoutConfig:   layoutCfg,
		log:            logger,
		openURL:        openURL,
		copyText:       copyText,
		exportPath:     params.ExportPath,
		skipDuplicates: params.SkipDuplicates,
		mode:           ModeNormal,
		form:           NewFormState(layoutCfg),
		filter:         NewFilterState(layoutCfg),
		importPrompt:   NewImportState(layoutCfg),
		width:          80,
		height:         24,
	}

	if err := params.Service.LoadWarning(); err != nil {
		app.setMessage(MessageWarning, "Stored bookmarks were unreadable, starting empty (raw data kept as backup)")
	}

	app.refreshItems()
	return app
}

// refreshItems rebuilds the visible list from the service and the filter.
func (a *App) refreshItems() {
	all := a.svc.List()
	a.matches = nil

	if a.filter.Active() {
		results := search.FuzzySearchBookmarks(all, a.filter.Query)
		a.items = search.Bookmarks(results)
		a.matches = make(map[string][]int, len(results))
		for _, r := range results {
			a.matches[r.Bookmark.ID] = r.MatchedIndexes
		}
	} else {
		a.items = all
	}

	if a.cursor >= len(a.items) {
		a.cursor = max(len(a.items)-1, 0)
	}
}

// selectID moves the cursor to the bookmark with id, if visible.
func (a *App) selectID(id string) {
	for i, b := range a.items {
		if b.ID == id {
			a.cursor = i
			return
		}
	}
}

// current returns the bookmark under the cursor.
func (a App) current() (model.Bookmark, bool) {
	if a.cursor < 0 || a.cursor >= len(a.items) {
		return model.Bookmark{}, false
	}
	return a.items[a.cursor], true
}

func (a *App) setMessage(t MessageType, text string) {
	a.messageType = t
	a.messageText = text
}

func (a *App) clearMessage() {
	a.messageText = ""
	a.messageType = MessageInfo
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// Items returns the visible bookmarks.
func (a App) Items() []model.Bookmark {
	return a.items
}

// Message returns the current status message.
func (a App) Message() (MessageType, string) {
	return a.messageType, a.messageText
}

// FilterQuery returns the applied filter query.
func (a App) FilterQuery() string {
	return a.filter.Query
}

// FormDraft returns the form's current content.
func (a App) FormDraft() editor.Draft {
	return a.form.Draft()
}

// WithDimensions returns a copy of the app sized to width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeAdd, ModeEdit:
			return a.updateForm(msg)
		case ModeFilter:
			return a.updateFilter(msg)
		case ModeImport:
			return a.updateImport(msg)
		default:
			return a.updateNormal(msg)
		}
	}

	return a, nil
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	a.clearMessage()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if len(a.items) > 0 && a.cursor < len(a.items)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(a.items) > 0 {
			a.cursor = len(a.items) - 1
		}

	case key.Matches(msg, a.keys.Cancel):
		if a.filter.Active() {
			a.filter.Reset()
			a.refreshItems()
		}

	case key.Matches(msg, a.keys.Add):
		a.editor.Cancel()
		a.form.Reset()
		a.mode = ModeAdd

	case key.Matches(msg, a.keys.Edit):
		a.beginEdit()

	case key.Matches(msg, a.keys.Delete):
		a.deleteCurrent()

	case key.Matches(msg, a.keys.Open):
		a.openCurrent()

	case key.Matches(msg, a.keys.YankURL):
		a.yankCurrent()

	case key.Matches(msg, a.keys.Filter):
		a.filter.Input.SetValue(a.filter.Query)
		a.filter.Input.CursorEnd()
		a.filter.Input.Focus()
		a.mode = ModeFilter

	case key.Matches(msg, a.keys.Import):
		a.importPrompt.Reset()
		a.importPrompt.PathInput.Focus()
		a.mode = ModeImport

	case key.Matches(msg, a.keys.Export):
		a.export()

	case key.Matches(msg, a.keys.ToggleTheme):
		a.toggleTheme()
	}

	return a, nil
}

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.editor.Cancel()
		a.form.Reset()
		a.clearMessage()
		a.mode = ModeNormal
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		a.submitForm()
		return a, nil

	case key.Matches(msg, a.keys.NextField):
		a.form.Next()
		return a, nil

	case key.Matches(msg, a.keys.PrevField):
		a.form.Prev()
		return a, nil
	}

	var cmd tea.Cmd
	a.form.Inputs[a.form.Focus], cmd = a.form.Inputs[a.form.Focus].Update(msg)
	return a, cmd
}

func (a App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.filter.Reset()
		a.mode = ModeNormal
		a.refreshItems()
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		a.filter.Input.Blur()
		a.mode = ModeNormal
		return a, nil
	}

	var cmd tea.Cmd
	a.filter.Input, cmd = a.filter.Input.Update(msg)
	if q := strings.TrimSpace(a.filter.Input.Value()); q != a.filter.Query {
		a.filter.Query = q
		a.cursor = 0
		a.refreshItems()
	}
	return a, cmd
}

func (a App) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.importPrompt.Reset()
		a.mode = ModeNormal
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		path := strings.TrimSpace(a.importPrompt.PathInput.Value())
		if path == "" {
			a.setMessage(MessageError, "Enter the path of an HTML bookmark file")
			return a, nil
		}
		a.importPrompt.Reset()
		a.mode = ModeNormal
		a.importFile(path)
		return a, nil
	}

	var cmd tea.Cmd
	a.importPrompt.PathInput, cmd = a.importPrompt.PathInput.Update(msg)
	return a, cmd
}

func (a *App) beginEdit() {
	b, ok := a.current()
	if !ok {
		return
	}
	if err := a.editor.BeginEdit(b); err != nil {
		a.setMessage(MessageError, err.Error())
		return
	}
	a.form.Load(a.editor.Draft)
	a.mode = ModeEdit
}

func (a *App) submitForm() {
	a.editor.Draft = a.form.Draft()
	editing := a.editor.IsEditing()

	b, err := a.editor.Submit(a.svc)
	if err != nil {
		a.log.Warn("save bookmark failed", "error", err)
		a.setMessage(MessageError, err.Error())
		return
	}

	a.form.Reset()
	a.mode = ModeNormal
	a.refreshItems()
	a.selectID(b.ID)

	if editing {
		a.setMessage(MessageSuccess, "Updated "+b.Title)
	} else {
		a.setMessage(MessageSuccess, "Added "+b.Title)
	}
}

func (a *App) deleteCurrent() {
	b, ok := a.current()
	if !ok {
		return
	}
	if err := a.svc.Delete(b.ID); err != nil {
		a.setMessage(MessageError, err.Error())
		return
	}
	a.refreshItems()
	a.setMessage(MessageSuccess, "Deleted "+b.Title)
}

func (a *App) openCurrent() {
	b, ok := a.current()
	if !ok {
		return
	}
	if err := a.openURL(b.URL); err != nil {
		a.log.Warn("open url failed", "url", b.URL, "error", err)
		a.setMessage(MessageError, "Could not open URL: "+err.Error())
		return
	}
	a.setMessage(MessageInfo, "Opened "+b.URL)
}

func (a *App) yankCurrent() {
	b, ok := a.current()
	if !ok {
		return
	}
	if err := a.copyText(b.URL); err != nil {
		a.setMessage(MessageError, "Clipboard unavailable: "+err.Error())
		return
	}
	a.setMessage(MessageSuccess, "Copied "+b.URL)
}

func (a *App) importFile(path string) {
	path = expandHome(path)

	f, err := os.Open(path)
	if err != nil {
		a.log.Error("import failed", "path", path, "error", err)
		a.setMessage(MessageError, "Import failed: "+err.Error())
		return
	}
	defer f.Close()

	result, err := a.svc.Import(f, service.ImportOptions{SkipDuplicates: a.skipDuplicates})
	if err != nil {
		a.setMessage(MessageError, "Import failed: "+err.Error())
		return
	}

	a.refreshItems()
	text := fmt.Sprintf("Imported %d bookmarks", result.Added)
	if result.Skipped > 0 {
		text += fmt.Sprintf(" (%d duplicates skipped)", result.Skipped)
	}
	a.setMessage(MessageSuccess, text)
}

func (a *App) export() {
	if a.exportPath == "" {
		a.setMessage(MessageError, "No export path configured")
		return
	}
	if err := a.svc.ExportFile(a.exportPath); err != nil {
		a.log.Error("export failed", "path", a.exportPath, "error", err)
		a.setMessage(MessageError, "Export failed: "+err.Error())
		return
	}
	a.setMessage(MessageSuccess, fmt.Sprintf("Exported %d bookmarks to %s", a.svc.Len(), a.exportPath))
}

func (a *App) toggleTheme() {
	theme, err := a.svc.ToggleTheme()
	if err != nil {
		a.setMessage(MessageError, "Could not save theme: "+err.Error())
		return
	}
	a.styles = ThemedStyles(theme)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
