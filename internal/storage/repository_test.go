package storage_test

import (
	"errors"
	"testing"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/storage"
)

func TestRepository_SaveAndLoad_PreservesOrder(t *testing.T) {
	repo := storage.NewRepository(storage.NewMemoryKV())

	store := &model.Store{
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "First", URL: "https://one.com"},
			{ID: "b2", Title: "Second", URL: "https://two.com", Tags: []string{"x"}},
			{ID: "b3", Title: "Third", URL: "https://three.com", Description: "third"},
		},
	}

	if err := repo.Save(store); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if loaded.Len() != store.Len() {
		t.Fatalf("expected %d bookmarks, got %d", store.Len(), loaded.Len())
	}
	for i, want := range store.Bookmarks {
		got := loaded.Bookmarks[i]
		if got.ID != want.ID || got.Title != want.Title || got.URL != want.URL || got.Description != want.Description {
			t.Errorf("order or fields not preserved at %d: expected %+v, got %+v", i, want, got)
		}
	}
}

func TestRepository_SavesJSONArray(t *testing.T) {
	kv := storage.NewMemoryKV()
	repo := storage.NewRepository(kv)

	if err := repo.Save(model.NewStore()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	raw, ok, _ := kv.Get(storage.BookmarksKey)
	if !ok || raw != "[]" {
		t.Errorf("expected empty JSON array under %q, got %q", storage.BookmarksKey, raw)
	}
}

func TestRepository_LoadEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(kv storage.KV)
	}{
		{name: "no prior state", setup: func(storage.KV) {}},
		{name: "blank value", setup: func(kv storage.KV) { kv.Set(storage.BookmarksKey, "  ") }},
		{name: "json null", setup: func(kv storage.KV) { kv.Set(storage.BookmarksKey, "null") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemoryKV()
			tt.setup(kv)

			store, err := storage.NewRepository(kv).Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store == nil || store.Bookmarks == nil || store.Len() != 0 {
				t.Errorf("expected empty store, got %+v", store)
			}
		})
	}
}

func TestRepository_LoadCorrupt_FailsSoft(t *testing.T) {
	kv := storage.NewMemoryKV()
	kv.Set(storage.BookmarksKey, `[{"id": "b1", "title": `)

	store, err := storage.NewRepository(kv).Load()
	if !errors.Is(err, storage.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if store == nil || store.Len() != 0 {
		t.Errorf("expected empty store on corrupt data, got %+v", store)
	}

	backup, ok, _ := kv.Get(storage.CorruptKey)
	if !ok || backup != `[{"id": "b1", "title": ` {
		t.Errorf("expected raw value backed up, got %q", backup)
	}
}

func TestRepository_Theme(t *testing.T) {
	kv := storage.NewMemoryKV()
	repo := storage.NewRepository(kv)

	theme, err := repo.LoadTheme()
	if err != nil || theme != model.DefaultTheme {
		t.Fatalf("expected default theme, got %v (%v)", theme, err)
	}

	if err := repo.SaveTheme(model.ThemeDark); err != nil {
		t.Fatalf("failed to save theme: %v", err)
	}
	if theme, _ := repo.LoadTheme(); theme != model.ThemeDark {
		t.Errorf("expected dark, got %v", theme)
	}

	kv.Set(storage.ThemeKey, "neon")
	if theme, _ := repo.LoadTheme(); theme != model.DefaultTheme {
		t.Errorf("expected unknown theme to fall back to default, got %v", theme)
	}
}
