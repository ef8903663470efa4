package exporter

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/marks/internal/model"
)

// Filename is the name an export is saved or downloaded as.
const Filename = "bookmarks.html"

// ContentType is the MIME type of an export.
const ContentType = "text/html; charset=utf-8"

// DefaultExportPath returns the default export file path: ~/Downloads/bookmarks.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads", Filename), nil
}

// ExportHTML exports the store to Netscape bookmark HTML format.
func ExportHTML(store *model.Store) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, bookmark := range store.Bookmarks {
		writeBookmark(&b, bookmark)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// WriteHTML writes the export document to w.
func WriteHTML(w io.Writer, store *model.Store) error {
	_, err := io.WriteString(w, ExportHTML(store))
	return err
}

// WriteFile writes the export document to path, creating parent directories.
func WriteFile(path string, store *model.Store) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(ExportHTML(store)), 0644)
}

// writeBookmark writes one <DT><A> line. Every interpolated value is escaped.
func writeBookmark(b *strings.Builder, bookmark model.Bookmark) {
	fmt.Fprintf(b, "    <DT><A HREF=\"%s\"", html.EscapeString(bookmark.URL))

	if !bookmark.CreatedAt.IsZero() {
		fmt.Fprintf(b, " ADD_DATE=\"%d\"", bookmark.CreatedAt.Unix())
	}
	if bookmark.Description != "" {
		fmt.Fprintf(b, " DESCRIPTION=\"%s\"", html.EscapeString(bookmark.Description))
	}
	if len(bookmark.Tags) > 0 {
		fmt.Fprintf(b, " TAGS=\"%s\"", html.EscapeString(strings.Join(bookmark.Tags, ",")))
	}

	fmt.Fprintf(b, ">%s</A>\n", html.EscapeString(bookmark.Title))
}
