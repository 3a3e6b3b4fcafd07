package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/VendorHub/internal/core"
)

// handleImport applies an uploaded spreadsheet to the vendor.
// Query: dryRun (default from config), overwrite (default false).
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	s.importUpload(w, r, parseBoolParam(r, "dryRun", s.opts.DryRunDefault))
}

// handleImportPreview reports what an import would change without saving.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	s.importUpload(w, r, true)
}

func (s *Server) importUpload(w http.ResponseWriter, r *http.Request, dryRun bool) {
	maxSize := s.opts.MaxUploadSize
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+64*1024)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, core.ErrFileTooLarge)
			return
		}
		s.fail(w, r, core.ErrNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp, err := s.service.ImportSpreadsheet(r.Context(), core.ImportRequest{
		VendorID:    chi.URLParam(r, "id"),
		UserID:      actor(r).UserID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		DryRun:      dryRun,
		Overwrite:   parseBoolParam(r, "overwrite", false),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if !resp.Result.Success {
		writeStatusJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"error":   resp.Result.Error,
			"data":    resp,
		})
		return
	}
	writeData(w, resp)
}
