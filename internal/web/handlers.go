package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/justinas/nosurf"

	"github.com/acgh213/fluentmd/internal/markdown"
	"github.com/acgh213/fluentmd/internal/metrics"
)

type PageData struct {
	Title               string
	CSRFToken           string
	Content             string
	EnableAccessibility bool
	Sanitize            bool
}

func (s *Server) render(w http.ResponseWriter, name string, data PageData) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template render error", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", PageData{
		Title:               "Fluent Markdown preview",
		CSRFToken:           nosurf.Token(r),
		Content:             "# Hello\n\nType some **Markdown** here.",
		EnableAccessibility: s.cfg.DefaultAccessibility,
		Sanitize:            s.cfg.DefaultSanitize,
	})
}

// handlePreview renders the form's content and returns the HTML fragment.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxContentBytes)
	if err := r.ParseForm(); err != nil {
		s.metrics.ObserveRender("preview", s.cfg.DefaultAccessibility, s.cfg.DefaultSanitize, 0, 0, metrics.ResultRejected)
		if isTooLarge(err) {
			http.Error(w, "Content too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	content := r.FormValue("content")
	accessibility := formFlag(r, "enableAccessibility", s.cfg.DefaultAccessibility)
	sanitize := formFlag(r, "sanitize", s.cfg.DefaultSanitize)

	rendered, err := s.renderMarkdown("preview", content, accessibility, sanitize)
	if err != nil {
		http.Error(w, "Failed to render markdown", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(rendered))
}

type renderRequest struct {
	Content             *string `json:"content"`
	EnableAccessibility *bool   `json:"enableAccessibility"`
	Sanitize            *bool   `json:"sanitize"`
}

type renderResponse struct {
	HTML string `json:"html"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAPIRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxContentBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.ObserveRender("api", s.cfg.DefaultAccessibility, s.cfg.DefaultSanitize, 0, 0, metrics.ResultRejected)
		if isTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "content too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	accessibility := boolOr(req.EnableAccessibility, s.cfg.DefaultAccessibility)
	sanitize := boolOr(req.Sanitize, s.cfg.DefaultSanitize)

	if req.Content == nil {
		s.metrics.ObserveRender("api", accessibility, sanitize, 0, 0, metrics.ResultRejected)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}

	rendered, err := s.renderMarkdown("api", *req.Content, accessibility, sanitize)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to render markdown"})
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{HTML: rendered})
}

func (s *Server) renderMarkdown(surface, content string, accessibility, sanitize bool) (string, error) {
	start := time.Now()
	rendered, err := markdown.Render(content,
		markdown.WithAccessibility(accessibility),
		markdown.WithSanitize(sanitize),
	)
	elapsed := time.Since(start)

	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
		slog.Error("failed to render markdown", "surface", surface, "error", err)
	}
	s.metrics.ObserveRender(surface, accessibility, sanitize, len(content), elapsed, result)
	slog.Debug("rendered markdown",
		"surface", surface,
		"bytes", len(content),
		"accessibility", accessibility,
		"sanitize", sanitize,
		"duration", elapsed,
	)
	return rendered, err
}

// formFlag reads a checkbox. A checkbox that is not submitted is false only
// when the form also sent "<name>_present"; otherwise the default applies.
func formFlag(r *http.Request, name string, fallback bool) bool {
	if v := r.Form.Get(name); v != "" {
		if v == "on" {
			return true
		}
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		return fallback
	}
	if r.Form.Has(name + "_present") {
		return false
	}
	return fallback
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
