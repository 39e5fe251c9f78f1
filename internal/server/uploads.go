package server

import (
	"io"
	"log"
	"net/http"

	"chefboard/internal/uploads"
)

const maxUploadBytes = 20 << 20 // 20 MB

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	key, err := s.uploads.Save(file, header.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("Failed to store upload: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !s.uploads.Exists(key) {
		writeError(w, http.StatusNotFound, "upload not found")
		return
	}

	f, err := s.uploads.Open(key)
	if err != nil {
		log.Printf("Failed to open upload %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", uploads.ContentType(key))
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("Failed to serve upload %s: %v", key, err)
	}
}
