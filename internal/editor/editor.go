// Package editor holds the create-or-update form state shared by the
// terminal UI and the CLI edit form.
package editor

import (
	"errors"
	"strings"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/service"
)

// ErrEditInProgress is returned by BeginEdit while another bookmark is
// being edited.
var ErrEditInProgress = errors.New("another bookmark is being edited")

// Saver is the part of the service the editor submits to.
type Saver interface {
	Create(input service.BookmarkInput) (model.Bookmark, error)
	Update(id string, input service.BookmarkInput) (model.Bookmark, error)
}

// Draft is the raw form content. Tags is the comma-separated text as typed.
type Draft struct {
	Title       string
	URL         string
	Description string
	Tags        string
}

// Editor tracks the draft and which bookmark, if any, it edits.
type Editor struct {
	Draft     Draft
	editingID string
}

// New returns an editor with an empty draft in create mode.
func New() *Editor {
	return &Editor{}
}

// EditingID returns the ID of the bookmark being edited, or "" in create mode.
func (e *Editor) EditingID() string {
	return e.editingID
}

// IsEditing reports whether the editor targets an existing bookmark.
func (e *Editor) IsEditing() bool {
	return e.editingID != ""
}

// BeginEdit loads b into the draft. Beginning the same bookmark twice is fine.
func (e *Editor) BeginEdit(b model.Bookmark) error {
	if e.editingID != "" && e.editingID != b.ID {
		return ErrEditInProgress
	}
	e.editingID = b.ID
	e.Draft = Draft{
		Title:       b.Title,
		URL:         b.URL,
		Description: b.Description,
		Tags:        FormatTags(b.Tags),
	}
	return nil
}

// Cancel discards the draft and leaves edit mode.
func (e *Editor) Cancel() {
	e.Draft = Draft{}
	e.editingID = ""
}

// Input converts the draft into service input.
func (e *Editor) Input() service.BookmarkInput {
	return service.BookmarkInput{
		Title:       e.Draft.Title,
		URL:         e.Draft.URL,
		Description: e.Draft.Description,
		Tags:        ParseTags(e.Draft.Tags),
	}
}

// Submit creates or updates a bookmark from the draft. On success the editor
// is reset; on failure the draft is kept so the user can fix it.
func (e *Editor) Submit(s Saver) (model.Bookmark, error) {
	var (
		b   model.Bookmark
		err error
	)
	if e.editingID != "" {
		b, err = s.Update(e.editingID, e.Input())
	} else {
		b, err = s.Create(e.Input())
	}
	if err != nil {
		return model.Bookmark{}, err
	}
	e.Cancel()
	return b, nil
}

// ParseTags splits comma-separated input, dropping blank entries.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// FormatTags joins tags for display in a text field.
func FormatTags(tags []string) string {
	return strings.Join(tags, ", ")
}
