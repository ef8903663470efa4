package storage_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/marks/internal/exporter"
	"github.com/nikbrunner/marks/internal/importer"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/storage"
)

func TestSQLiteKV_GetSetDelete(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "bookmarks.db")

	s, err := storage.NewSQLiteKV(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set("k", "v1"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := s.Set("k", "v2"); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}

	v, ok, err := s.Get("k")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("expected v2, got %q ok=%v err=%v", v, ok, err)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("expected key to be deleted")
	}
}

func TestSQLiteKV_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "dir", "bookmarks.db")

	s, err := storage.NewSQLiteKV(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage with nested dir: %v", err)
	}
	defer s.Close()

	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
}

func TestSQLiteKV_ReopenKeepsDataAndSchema(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "reopen.db")

	s, err := storage.NewSQLiteKV(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	s.Close()

	s2, err := storage.NewSQLiteKV(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer s2.Close()

	version, err := s2.SchemaVersion()
	if err != nil || version != 1 {
		t.Errorf("expected schema version 1, got %d (%v)", version, err)
	}
	if v, ok, _ := s2.Get("theme"); !ok || v != "dark" {
		t.Errorf("expected persisted value, got %q ok=%v", v, ok)
	}
}

func TestSQLiteKV_RepositoryRoundtrip(t *testing.T) {
	tmpDir := t.TempDir()

	s, err := storage.NewSQLiteKV(filepath.Join(tmpDir, "repo.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	repo := storage.NewRepository(s)
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &model.Store{
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Test", URL: "https://example.com", Tags: []string{"test", "example"}, CreatedAt: created},
			{ID: "b2", Title: "Docs", URL: "https://go.dev/doc", Description: "Go docs"},
		},
	}

	if err := repo.Save(store); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", loaded.Len())
	}
	if len(loaded.Bookmarks[0].Tags) != 2 {
		t.Errorf("expected 2 tags, got %d", len(loaded.Bookmarks[0].Tags))
	}
	if !loaded.Bookmarks[0].CreatedAt.Equal(created) {
		t.Errorf("expected CreatedAt %v, got %v", created, loaded.Bookmarks[0].CreatedAt)
	}
	if loaded.Bookmarks[1].Description != "Go docs" {
		t.Errorf("expected description to survive, got %q", loaded.Bookmarks[1].Description)
	}
}

func TestSQLiteKV_ImportExportRoundtrip(t *testing.T) {
	tmpDir := t.TempDir()

	s, err := storage.NewSQLiteKV(filepath.Join(tmpDir, "roundtrip.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()
	repo := storage.NewRepository(s)

	original := &model.Store{
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "TanStack", URL: "https://tanstack.com", Tags: []string{"react", "router"}},
			{ID: "b2", Title: "GitHub", URL: "https://github.com", Description: "Code & review"},
		},
	}
	if err := repo.Save(original); err != nil {
		t.Fatalf("failed to save original: %v", err)
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	html := exporter.ExportHTML(loaded)

	bookmarks, err := importer.ParseHTMLBookmarks(strings.NewReader(html), importer.Options{})
	if err != nil {
		t.Fatalf("failed to parse exported HTML: %v", err)
	}

	s2, err := storage.NewSQLiteKV(filepath.Join(tmpDir, "roundtrip2.db"))
	if err != nil {
		t.Fatalf("failed to create second storage: %v", err)
	}
	defer s2.Close()
	repo2 := storage.NewRepository(s2)

	newStore := model.NewStore()
	newStore.Append(bookmarks, false)
	if err := repo2.Save(newStore); err != nil {
		t.Fatalf("failed to save imported: %v", err)
	}

	reloaded, err := repo2.Load()
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if reloaded.Len() != original.Len() {
		t.Fatalf("bookmark count mismatch: expected %d, got %d", original.Len(), reloaded.Len())
	}
	for i, want := range original.Bookmarks {
		got := reloaded.Bookmarks[i]
		if got.Title != want.Title || got.URL != want.URL || got.Description != want.Description {
			t.Errorf("bookmark %d: expected %+v, got %+v", i, want, got)
		}
		if strings.Join(got.Tags, ",") != strings.Join(want.Tags, ",") {
			t.Errorf("bookmark %d tags: expected %v, got %v", i, want.Tags, got.Tags)
		}
	}
}
