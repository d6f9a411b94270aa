package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/artifact"
	"browser-mcp/internal/infrastructure/metrics"

	"github.com/go-chi/chi/v5"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		provided := strings.TrimPrefix(header, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.Token)) != 1 {
			respondError(w, http.StatusForbidden, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	f, err := s.cfg.Screenshots.Open(name)
	if err != nil {
		http.Error(w, "Screenshot not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "Screenshot not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	f, err := s.cfg.Uploads.Open(name)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, hdr, err := r.FormFile("image")
	if err != nil {
		metrics.ObserveUpload("4xx")
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(hdr.Header.Get("Content-Type"), "image/") {
		metrics.ObserveUpload("4xx")
		respondError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	name := artifact.GenerateName(uploadExt(hdr.Filename))
	if err := s.cfg.Uploads.Save(name, file); err != nil {
		s.logger.Error("upload failed", "error", err)
		metrics.ObserveUpload("5xx")
		respondError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	metrics.ObserveUpload("2xx")
	s.logger.Info("image uploaded", "name", name, "size", hdr.Size)
	respondJSON(w, http.StatusOK, map[string]string{"url": s.cfg.BaseURL() + "/uploads/" + name})
}

func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	err := s.cfg.Uploads.Remove(name)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
	case errors.Is(err, entity.ErrNotFound):
		respondError(w, http.StatusNotFound, "File not found")
	default:
		s.logger.Error("delete failed", "name", name, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete file")
	}
}

func (s *Server) handleClearUploads(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Uploads.Clear(r.Context()); err != nil {
		s.logger.Error("clear failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to clear uploads")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "All files deleted successfully"})
}

// uploadExt keeps a short alphanumeric extension from the client file name.
func uploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
