// Package service owns the in-memory bookmark collection. Every mutation is
// persisted immediately; if persisting fails the mutation is rolled back.
package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/nikbrunner/marks/internal/exporter"
	"github.com/nikbrunner/marks/internal/importer"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/storage"
)

// ErrNotFound is returned when an ID does not match any bookmark.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails required-field validation.
var ErrValidation = errors.New("validation error")

// ErrInvalidImport is returned when an import document cannot be read or parsed.
var ErrInvalidImport = errors.New("invalid import document")

// Repository is the persistence the service depends on.
// *storage.Repository satisfies it.
type Repository interface {
	Load() (*model.Store, error)
	Save(store *model.Store) error
	LoadTheme() (model.Theme, error)
	SaveTheme(theme model.Theme) error
}

// BookmarkInput carries the user-editable fields of a bookmark.
type BookmarkInput struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// ImportOptions controls Import.
type ImportOptions struct {
	// SkipDuplicates drops imported bookmarks whose URL is already present.
	SkipDuplicates bool
	// BaseURL resolves relative hrefs.
	BaseURL *url.URL
}

// ImportResult reports what an import did.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// BookmarkService implements the bookmark operations over a Repository.
type BookmarkService struct {
	mu          sync.Mutex
	repo        Repository
	store       *model.Store
	theme       model.Theme
	log         *slog.Logger
	loadWarning error
}

// Open loads the collection and theme from repo.
// Corrupt stored bookmarks are not fatal: the service starts empty and the
// problem is reported through LoadWarning.
func Open(repo Repository, logger *slog.Logger) (*BookmarkService, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &BookmarkService{repo: repo, log: logger}

	store, err := repo.Load()
	switch {
	case errors.Is(err, storage.ErrCorrupt):
		logger.Warn("stored bookmarks unreadable, starting empty", "error", err)
		s.loadWarning = err
	case err != nil:
		return nil, fmt.Errorf("open bookmarks: %w", err)
	}
	if store == nil {
		store = model.NewStore()
	}
	s.store = store

	theme, err := repo.LoadTheme()
	if err != nil {
		logger.Warn("theme unreadable, using default", "error", err)
	}
	s.theme = theme

	logger.Debug("bookmarks loaded", "count", store.Len(), "theme", theme)
	return s, nil
}

// LoadWarning returns the error that made Open fall back to an empty
// collection, or nil.
func (s *BookmarkService) LoadWarning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadWarning
}

// List returns a copy of all bookmarks in collection order.
func (s *BookmarkService) List() []model.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clone().Bookmarks
}

// Len returns the number of bookmarks.
func (s *BookmarkService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Get returns the bookmark with id.
func (s *BookmarkService) Get(id string) (model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.store.GetBookmarkByID(id)
	if b == nil {
		return model.Bookmark{}, fmt.Errorf("bookmark %s: %w", id, ErrNotFound)
	}
	return b.Clone(), nil
}

// Create validates input and appends a new bookmark with a fresh ID.
func (s *BookmarkService) Create(input BookmarkInput) (model.Bookmark, error) {
	input, err := normalize(input)
	if err != nil {
		return model.Bookmark{}, fmt.Errorf("create bookmark: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var created model.Bookmark
	err = s.mutate(func(store *model.Store) error {
		created = store.AddBookmark(model.NewBookmark(model.NewBookmarkParams{
			Title:       input.Title,
			URL:         input.URL,
			Description: input.Description,
			Tags:        input.Tags,
		}))
		return nil
	})
	if err != nil {
		return model.Bookmark{}, fmt.Errorf("create bookmark: %w", err)
	}

	s.log.Info("bookmark created", "id", created.ID, "url", created.URL)
	return created.Clone(), nil
}

// Update replaces the editable fields of bookmark id. The ID, position and
// creation time are preserved.
func (s *BookmarkService) Update(id string, input BookmarkInput) (model.Bookmark, error) {
	input, err := normalize(input)
	if err != nil {
		return model.Bookmark{}, fmt.Errorf("update bookmark: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated model.Bookmark
	err = s.mutate(func(store *model.Store) error {
		existing := store.GetBookmarkByID(id)
		if existing == nil {
			return fmt.Errorf("bookmark %s: %w", id, ErrNotFound)
		}
		updated = *existing
		updated.Title = input.Title
		updated.URL = input.URL
		updated.Description = input.Description
		updated.Tags = input.Tags
		return store.UpdateBookmark(updated)
	})
	if err != nil {
		return model.Bookmark{}, fmt.Errorf("update bookmark: %w", err)
	}

	s.log.Info("bookmark updated", "id", id)
	return updated.Clone(), nil
}

// Delete removes bookmark id. There is no confirmation and no undo.
func (s *BookmarkService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(store *model.Store) error {
		if err := store.DeleteBookmark(id); err != nil {
			return fmt.Errorf("bookmark %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}

	s.log.Info("bookmark deleted", "id", id)
	return nil
}

// Import parses an HTML bookmark file and appends one bookmark per link.
// On failure the collection is unchanged.
func (s *BookmarkService) Import(r io.Reader, opts ImportOptions) (ImportResult, error) {
	bookmarks, err := importer.ParseHTMLBookmarks(r, importer.Options{BaseURL: opts.BaseURL})
	if err != nil {
		s.log.Error("import failed", "error", err)
		return ImportResult{}, fmt.Errorf("import bookmarks: %w: %w", ErrInvalidImport, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result ImportResult
	err = s.mutate(func(store *model.Store) error {
		result.Added, result.Skipped = store.Append(bookmarks, opts.SkipDuplicates)
		return nil
	})
	if err != nil {
		s.log.Error("import failed", "error", err)
		return ImportResult{}, fmt.Errorf("import bookmarks: %w", err)
	}

	s.log.Info("bookmarks imported", "added", result.Added, "skipped", result.Skipped)
	return result, nil
}

// Export writes the collection as a Netscape bookmark document to w.
// The document is rendered under the lock and written after releasing it,
// so a slow writer does not hold up mutations.
func (s *BookmarkService) Export(w io.Writer) error {
	s.mu.Lock()
	doc := exporter.ExportHTML(s.store)
	s.mu.Unlock()

	_, err := io.WriteString(w, doc)
	return err
}

// ExportFile writes the export document to path.
func (s *BookmarkService) ExportFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := exporter.WriteFile(path, s.store); err != nil {
		return fmt.Errorf("export bookmarks: %w", err)
	}
	s.log.Info("bookmarks exported", "path", path, "count", s.store.Len())
	return nil
}

// Theme returns the current theme.
func (s *BookmarkService) Theme() model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme stores a new theme.
func (s *BookmarkService) SetTheme(theme model.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveTheme(theme); err != nil {
		return err
	}
	s.theme = theme
	return nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *BookmarkService) ToggleTheme() (model.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.theme.Toggle()
	if err := s.repo.SaveTheme(next); err != nil {
		return s.theme, err
	}
	s.theme = next
	return next, nil
}

// mutate applies fn to a copy of the store and persists it. The copy only
// replaces the live store once both fn and Save succeed. Callers hold s.mu.
func (s *BookmarkService) mutate(fn func(store *model.Store) error) error {
	next := s.store.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.repo.Save(next); err != nil {
		return err
	}
	s.store = next
	s.loadWarning = nil
	return nil
}

// normalize trims input and enforces the required fields.
func normalize(input BookmarkInput) (BookmarkInput, error) {
	input.Title = strings.TrimSpace(normalizeNewlines(input.Title))
	input.URL = strings.TrimSpace(input.URL)
	input.Description = strings.TrimSpace(normalizeNewlines(input.Description))

	var missing []string
	if input.Title == "" {
		missing = append(missing, "title")
	}
	if input.URL == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return input, fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, " and "))
	}

	tags := []string{}
	for _, t := range input.Tags {
		if t = strings.TrimSpace(normalizeNewlines(t)); t != "" {
			tags = append(tags, t)
		}
	}
	input.Tags = tags
	return input, nil
}

// normalizeNewlines turns CRLF and lone CR into LF, which is what HTML
// parsing yields on import.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}
