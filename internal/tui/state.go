package tui

import (
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/nikbrunner/marks/internal/editor"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

// Mode is the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeEdit
	ModeFilter
	ModeImport
)

// MessageType controls how the status message is styled.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// Form field order.
const (
	fieldTitle = iota
	fieldURL
	fieldDescription
	fieldTags
	fieldCount
)

// FormState holds the inputs of the add/edit form.
//
// The inputs are single-line, so a loaded value with newlines is displayed
// flattened. Fields the user does not touch report the loaded value, not the
// displayed one.
type FormState struct {
	Inputs [fieldCount]textinput.Model
	Focus  int

	limits [fieldCount]int
	loaded [fieldCount]string // values passed to Load
	shown  [fieldCount]string // input values right after Load
}

// NewFormState creates a FormState with initialized inputs.
func NewFormState(cfg layout.LayoutConfig) FormState {
	newInput := func(placeholder string, limit int) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = limit
		in.Width = cfg.Input.StandardWidth
		return in
	}

	var f FormState
	f.limits = [fieldCount]int{
		fieldTitle:       cfg.Input.TitleCharLimit,
		fieldURL:         cfg.Input.URLCharLimit,
		fieldDescription: cfg.Input.DescriptionCharLimit,
		fieldTags:        cfg.Input.TagsCharLimit,
	}
	f.Inputs[fieldTitle] = newInput("Title", f.limits[fieldTitle])
	f.Inputs[fieldURL] = newInput("https://...", f.limits[fieldURL])
	f.Inputs[fieldDescription] = newInput("Optional description", f.limits[fieldDescription])
	f.Inputs[fieldTags] = newInput("tag1, tag2, tag3", f.limits[fieldTags])
	return f
}

// Load fills the inputs from a draft and focuses the first field.
// A stored value longer than its field's limit lifts that limit.
func (f *FormState) Load(d editor.Draft) {
	values := [fieldCount]string{
		fieldTitle:       d.Title,
		fieldURL:         d.URL,
		fieldDescription: d.Description,
		fieldTags:        d.Tags,
	}
	for i, v := range values {
		f.Inputs[i].CharLimit = f.limits[i]
		if utf8.RuneCountInString(v) > f.limits[i] {
			f.Inputs[i].CharLimit = 0
		}
		f.Inputs[i].SetValue(v)
		f.Inputs[i].CursorEnd()
		f.loaded[i] = v
		f.shown[i] = f.Inputs[i].Value()
	}
	f.focus(fieldTitle)
}

// Draft returns the form content. Untouched fields keep their loaded value.
func (f *FormState) Draft() editor.Draft {
	return editor.Draft{
		Title:       f.value(fieldTitle),
		URL:         f.value(fieldURL),
		Description: f.value(fieldDescription),
		Tags:        f.value(fieldTags),
	}
}

func (f *FormState) value(i int) string {
	v := f.Inputs[i].Value()
	if v == f.shown[i] {
		return f.loaded[i]
	}
	return v
}

// Next moves focus to the next field, wrapping around.
func (f *FormState) Next() {
	f.focus((f.Focus + 1) % fieldCount)
}

// Prev moves focus to the previous field, wrapping around.
func (f *FormState) Prev() {
	f.focus((f.Focus + fieldCount - 1) % fieldCount)
}

// Reset clears all inputs for a new form session.
func (f *FormState) Reset() {
	for i := range f.Inputs {
		f.Inputs[i].Reset()
		f.Inputs[i].CharLimit = f.limits[i]
	}
	f.loaded = [fieldCount]string{}
	f.shown = [fieldCount]string{}
	f.focus(fieldTitle)
}

func (f *FormState) focus(i int) {
	for j := range f.Inputs {
		if j == i {
			f.Inputs[j].Focus()
		} else {
			f.Inputs[j].Blur()
		}
	}
	f.Focus = i
}

// FilterState holds state for the fuzzy list filter.
type FilterState struct {
	Input textinput.Model
	Query string // applied query; persists after the input closes
}

// NewFilterState creates a FilterState with an initialized input.
func NewFilterState(cfg layout.LayoutConfig) FilterState {
	input := textinput.New()
	input.Placeholder = "Filter..."
	input.CharLimit = cfg.Input.FilterCharLimit
	input.Width = cfg.Input.FilterWidth
	return FilterState{Input: input}
}

// Active reports whether a filter query is applied.
func (s *FilterState) Active() bool {
	return s.Query != ""
}

// Reset clears the filter.
func (s *FilterState) Reset() {
	s.Input.Reset()
	s.Input.Blur()
	s.Query = ""
}

// ImportState holds the import path prompt.
type ImportState struct {
	PathInput textinput.Model
}

// NewImportState creates an ImportState with an initialized input.
func NewImportState(cfg layout.LayoutConfig) ImportState {
	input := textinput.New()
	input.Placeholder = "~/Downloads/bookmarks.html"
	input.CharLimit = cfg.Input.PathCharLimit
	input.Width = cfg.Input.StandardWidth
	return ImportState{PathInput: input}
}

// Reset clears the prompt.
func (s *ImportState) Reset() {
	s.PathInput.Reset()
	s.PathInput.Blur()
}
