package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/server"
	"github.com/nikbrunner/marks/internal/service"
	"github.com/nikbrunner/marks/internal/storage"
)

// ---- helpers ---------------------------------------------------------------

func newTestServer(t *testing.T, opts ...server.Option) (http.Handler, *service.BookmarkService) {
	t.Helper()
	svc, err := service.Open(storage.NewRepository(storage.NewMemoryKV()), nil)
	require.NoError(t, err)
	return server.New(svc, nil, opts...).Routes(), svc
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) server.ErrorDetail {
	t.Helper()
	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

const importDoc = `<a href="https://a.com">A</a><a href="https://b.com" tags="x,y">B</a>`

// ---- function-field mock ---------------------------------------------------

type mockServicer struct {
	server.BookmarkServicer
	list   func() []model.Bookmark
	export func(w io.Writer) error
}

func (m *mockServicer) List() []model.Bookmark  { return m.list() }
func (m *mockServicer) Export(w io.Writer) error { return m.export(w) }

var _ server.BookmarkServicer = (*service.BookmarkService)(nil)

// ---- tests -----------------------------------------------------------------

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestListBookmarks_Empty(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/bookmarks", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateBookmark(t *testing.T) {
	h, svc := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/bookmarks",
		strings.NewReader(`{"title":"Example","url":"https://example.com","tags":[]}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	var b model.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Example", b.Title)
	assert.Equal(t, "/api/bookmarks/"+b.ID, rec.Header().Get("Location"))
	assert.Equal(t, 1, svc.Len())

	rec = do(t, h, http.MethodGet, "/api/bookmarks/"+b.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateBookmark_Validation(t *testing.T) {
	h, svc := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/bookmarks", strings.NewReader(`{"title":"","url":"https://x.com"}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, server.CodeValidation, e.Code)
	assert.Contains(t, e.Message, "title required")
	assert.Equal(t, 0, svc.Len())
}

func TestCreateBookmark_MalformedJSON(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/bookmarks", strings.NewReader(`{nope`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, server.CodeBadRequest, decodeError(t, rec).Code)
}

func TestUpdateBookmark(t *testing.T) {
	h, svc := newTestServer(t)
	orig, err := svc.Create(service.BookmarkInput{Title: "Go", URL: "https://go.dev"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodPut, "/api/bookmarks/"+orig.ID,
		strings.NewReader(`{"title":"Go Dev","url":"https://go.dev","description":"home"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	got, err := svc.Get(orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Dev", got.Title)
	assert.Equal(t, "home", got.Description)
}

func TestUpdateBookmark_Errors(t *testing.T) {
	h, svc := newTestServer(t)
	orig, err := svc.Create(service.BookmarkInput{Title: "Go", URL: "https://go.dev"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"unknown id", "/api/bookmarks/missing", `{"title":"X","url":"https://x.com"}`, http.StatusNotFound, server.CodeNotFound},
		{"validation", "/api/bookmarks/" + orig.ID, `{"title":"X","url":""}`, http.StatusUnprocessableEntity, server.CodeValidation},
		{"malformed", "/api/bookmarks/" + orig.ID, `[`, http.StatusBadRequest, server.CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, tt.path, strings.NewReader(tt.body))
			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, rec).Code)
		})
	}
}

func TestDeleteBookmark(t *testing.T) {
	h, svc := newTestServer(t)
	b, err := svc.Create(service.BookmarkInput{Title: "Go", URL: "https://go.dev"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodDelete, "/api/bookmarks/"+b.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, svc.Len())

	rec = do(t, h, http.MethodDelete, "/api/bookmarks/"+b.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, server.CodeNotFound, decodeError(t, rec).Code)
}

func TestImport_RawBody(t *testing.T) {
	h, svc := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/import", strings.NewReader(importDoc))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"added":2,"skipped":0}`, rec.Body.String())

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, []string{}, list[0].Tags)
	assert.Equal(t, []string{"x", "y"}, list[1].Tags)
}

func TestImport_Multipart(t *testing.T) {
	h, svc := newTestServer(t)
	_, err := svc.Create(service.BookmarkInput{Title: "A", URL: "https://a.com"})
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "bookmarks.html")
	require.NoError(t, err)
	_, err = fw.Write([]byte(importDoc))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import?skipDuplicates=true", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"added":1,"skipped":1}`, rec.Body.String())
	assert.Equal(t, 2, svc.Len())
}

func TestImport_MultipartMissingField(t *testing.T) {
	h, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, `"file"`)
}

func TestImport_BadSkipDuplicates(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/import?skipDuplicates=maybe", strings.NewReader(importDoc))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, server.CodeBadRequest, decodeError(t, rec).Code)
}

func TestImport_TooLarge(t *testing.T) {
	h, svc := newTestServer(t, server.WithMaxBodyBytes(16))

	rec := do(t, h, http.MethodPost, "/api/import", strings.NewReader(importDoc))

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, server.CodeTooLarge, decodeError(t, rec).Code)
	assert.Equal(t, 0, svc.Len())
}

func TestExport(t *testing.T) {
	h, svc := newTestServer(t)
	_, err := svc.Create(service.BookmarkInput{Title: "Go", URL: "https://go.dev", Tags: []string{"go"}})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=bookmarks.html`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<!DOCTYPE NETSCAPE-Bookmark-file-1>"))
	assert.Contains(t, rec.Body.String(), `TAGS="go">Go</A>`)
}

func TestExportImportRoundTrip(t *testing.T) {
	src, srcSvc := newTestServer(t)
	_, err := srcSvc.Create(service.BookmarkInput{Title: "A & B", URL: "https://a.com/?q=1&r=2", Description: `"quoted"`, Tags: []string{"t1", "t2"}})
	require.NoError(t, err)

	exported := do(t, src, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, exported.Code)

	dst, dstSvc := newTestServer(t)
	rec := do(t, dst, http.MethodPost, "/api/import", exported.Body)
	require.Equal(t, http.StatusOK, rec.Code)

	want, got := srcSvc.List()[0], dstSvc.List()[0]
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.URL, got.URL)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Tags, got.Tags)
}

func TestTheme(t *testing.T) {
	h, svc := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/theme", strings.NewReader(`{"theme":"dark"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ThemeDark, svc.Theme())

	rec = do(t, h, http.MethodPut, "/api/theme", strings.NewReader(`{"theme":"sepia"}`))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, server.CodeValidation, decodeError(t, rec).Code)
	assert.Equal(t, model.ThemeDark, svc.Theme())
}

func TestListBookmarks_Mock(t *testing.T) {
	mock := &mockServicer{
		list: func() []model.Bookmark {
			return []model.Bookmark{{ID: "1", Title: "Go", URL: "https://go.dev", Tags: []string{}}}
		},
	}
	h := server.New(mock, nil).Routes()

	rec := do(t, h, http.MethodGet, "/api/bookmarks", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []model.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Go", got[0].Title)
}

func TestExport_FailureDoesNotLeakError(t *testing.T) {
	mock := &mockServicer{
		export: func(io.Writer) error {
			return errors.New("disk on fire")
		},
	}
	h := server.New(mock, nil).Routes()

	// Headers go out before the body, so a late failure is only logged.
	rec := do(t, h, http.MethodGet, "/api/export", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestCORS(t *testing.T) {
	const origin = "http://localhost:5173"
	h, _ := newTestServer(t, server.WithCORSOrigins([]string{origin}))

	req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	req.Header.Set("Origin", origin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisabledByDefault(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
