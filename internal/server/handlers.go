package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/marks/internal/exporter"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/service"
)

// importFormField is the multipart field carrying an uploaded bookmark file.
const importFormField = "file"

// health handles GET /healthz.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listBookmarks handles GET /api/bookmarks.
func (s *Server) listBookmarks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.List())
}

// getBookmark handles GET /api/bookmarks/{id}.
func (s *Server) getBookmark(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// createBookmark handles POST /api/bookmarks.
func (s *Server) createBookmark(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeInput(w, r)
	if !ok {
		return
	}
	b, err := s.svc.Create(input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/bookmarks/"+b.ID)
	writeJSON(w, http.StatusCreated, b)
}

// updateBookmark handles PUT /api/bookmarks/{id}.
func (s *Server) updateBookmark(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeInput(w, r)
	if !ok {
		return
	}
	b, err := s.svc.Update(chi.URLParam(r, "id"), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// deleteBookmark handles DELETE /api/bookmarks/{id}.
func (s *Server) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importBookmarks handles POST /api/import. The document is either the
// multipart field "file" or the raw request body.
func (s *Server) importBookmarks(w http.ResponseWriter, r *http.Request) {
	opts := service.ImportOptions{}
	if raw := r.URL.Query().Get("skipDuplicates"); raw != "" {
		skip, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("skipDuplicates: invalid boolean %q", raw))
			return
		}
		opts.SkipDuplicates = skip
	}

	body, closeBody, err := importSource(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeServiceError(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	defer closeBody()

	result, err := s.svc.Import(body, opts)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// importSource picks the uploaded file or the raw body.
func importSource(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile(importFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("multipart field %q: %w", importFormField, err)
	}
	return file, func() { _ = file.Close() }, nil
}

// exportBookmarks handles GET /api/export as a bookmarks.html download.
func (s *Server) exportBookmarks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", exporter.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exporter.Filename}))
	if err := s.svc.Export(w); err != nil {
		s.log.ErrorContext(r.Context(), "export failed", "error", err)
	}
}

type themeBody struct {
	Theme string `json:"theme"`
}

// getTheme handles GET /api/theme.
func (s *Server) getTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, themeBody{Theme: s.svc.Theme().String()})
}

// putTheme handles PUT /api/theme.
func (s *Server) putTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return
	}
	theme, err := model.ParseTheme(body.Theme)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, err.Error())
		return
	}
	if err := s.svc.SetTheme(theme); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme.String()})
}

// decodeInput reads a bookmark body, answering 400 itself when it is malformed.
func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (service.BookmarkInput, bool) {
	var input service.BookmarkInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeServiceError(w, r, err)
			return input, false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
		return input, false
	}
	return input, true
}
