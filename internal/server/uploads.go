package server

import (
	"io"
	"net/http"
	"strings"

	"travel-backoffice/internal/models"
	"travel-backoffice/internal/storage"
)

var uploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// uploadHandler stores a multipart "file" field and returns its public URL.
// An optional "folder" field groups uploads, e.g. hotels or activities.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.fail(w, r, storage.ErrDisabled)
		return
	}
	limit := int64(s.cfg.Storage.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid or oversized upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if int64(len(data)) > limit {
		respondError(w, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}
	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !uploadTypes[contentType] {
		respondError(w, http.StatusUnsupportedMediaType, "Only images and PDF files can be uploaded")
		return
	}

	prefix := "uploads"
	if folder := models.Slugify(r.FormValue("folder")); folder != "" {
		prefix += "/" + folder
	}
	key := storage.ObjectKey(prefix, header.Filename)
	url, err := s.storage.Put(r.Context(), key, contentType, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "File uploaded", map[string]interface{}{
		"url":          url,
		"key":          key,
		"content_type": contentType,
		"size":         len(data),
	})
}
