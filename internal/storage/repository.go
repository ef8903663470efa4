package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nikbrunner/marks/internal/model"
)

// Keys used in the KV store.
const (
	BookmarksKey = "bookmarks"
	CorruptKey   = "bookmarks.corrupt"
	ThemeKey     = "theme"
)

// ErrCorrupt is returned when stored data cannot be decoded, either the
// collection value or a FileKV's whole file.
var ErrCorrupt = errors.New("stored bookmarks are corrupt")

// Repository reads and writes the bookmark collection and theme through a KV.
type Repository struct {
	kv KV
}

// NewRepository creates a Repository backed by kv.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// Load reads the whole collection.
// Returns an empty store if nothing has been saved yet. If the stored value
// cannot be decoded it returns an empty store together with an error wrapping
// ErrCorrupt, after copying the raw value to CorruptKey. A KV that reports
// ErrCorrupt itself has already kept its own backup.
func (r *Repository) Load() (*model.Store, error) {
	raw, ok, err := r.kv.Get(BookmarksKey)
	if errors.Is(err, ErrCorrupt) {
		return model.NewStore(), fmt.Errorf("load bookmarks: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return model.NewStore(), nil
	}

	var bookmarks []model.Bookmark
	if err := json.Unmarshal([]byte(raw), &bookmarks); err != nil {
		corrupt := fmt.Errorf("%w: %v", ErrCorrupt, err)
		if backupErr := r.kv.Set(CorruptKey, raw); backupErr != nil {
			corrupt = errors.Join(corrupt, fmt.Errorf("backup corrupt bookmarks: %w", backupErr))
		}
		return model.NewStore(), corrupt
	}

	// Ensure slices are not nil
	store := &model.Store{Bookmarks: bookmarks}
	if store.Bookmarks == nil {
		store.Bookmarks = []model.Bookmark{}
	}
	for i := range store.Bookmarks {
		if store.Bookmarks[i].Tags == nil {
			store.Bookmarks[i].Tags = []string{}
		}
	}

	return store, nil
}

// Save writes the whole collection as a JSON array, replacing prior content.
func (r *Repository) Save(store *model.Store) error {
	bookmarks := store.Bookmarks
	if bookmarks == nil {
		bookmarks = []model.Bookmark{}
	}

	data, err := json.Marshal(bookmarks)
	if err != nil {
		return fmt.Errorf("save bookmarks: %w", err)
	}
	if err := r.kv.Set(BookmarksKey, string(data)); err != nil {
		return fmt.Errorf("save bookmarks: %w", err)
	}
	return nil
}

// LoadTheme returns the stored theme, or model.DefaultTheme when none is
// stored or the stored value is not a known theme.
func (r *Repository) LoadTheme() (model.Theme, error) {
	raw, ok, err := r.kv.Get(ThemeKey)
	if err != nil {
		return model.DefaultTheme, fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return model.DefaultTheme, nil
	}
	theme, err := model.ParseTheme(raw)
	if err != nil {
		return model.DefaultTheme, nil
	}
	return theme, nil
}

// SaveTheme stores the theme preference.
func (r *Repository) SaveTheme(theme model.Theme) error {
	if err := r.kv.Set(ThemeKey, theme.String()); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}
