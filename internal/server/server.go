// Package server exposes the task manager over a small JSON HTTP API.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sunnyzhifei/web-reader-ai/internal/config"
	"github.com/sunnyzhifei/web-reader-ai/internal/task"
	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

// CrawlRequest is the submit payload shared by crawl and preview.
type CrawlRequest struct {
	URL      string `json:"url"`
	MaxDepth *int   `json:"max_depth,omitempty"`
	MaxPages *int   `json:"max_pages,omitempty"`
	Format   string `json:"format,omitempty"`
}

// Server routes API requests to the task manager.
type Server struct {
	router  *http.ServeMux
	manager *task.Manager
	base    config.Config
	logger  *slog.Logger
}

// New builds the API server. base supplies the defaults a request may
// override.
func New(manager *task.Manager, base config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:  http.NewServeMux(),
		manager: manager,
		base:    base,
		logger:  logger,
	}
	s.router.HandleFunc("POST /api/crawl", s.handleCrawl)
	s.router.HandleFunc("POST /api/preview", s.handlePreview)
	s.router.HandleFunc("GET /api/status/{id}", s.handleStatus)
	s.router.HandleFunc("GET /api/download/{id}", s.handleDownload)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the server until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("api listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, types.ModeFull)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, types.ModePreview)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, mode types.Mode) {
	var req CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg := s.base
	cfg.SeedURL = req.URL
	if req.MaxDepth != nil {
		cfg.MaxDepth = *req.MaxDepth
	}
	if req.MaxPages != nil {
		cfg.MaxPages = *req.MaxPages
	}
	if req.Format != "" {
		cfg.OutputFormat = types.OutputFormat(req.Format)
	}

	id, err := s.manager.CreateTask(cfg, mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.GetStatus(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	snap, err := s.manager.GetStatus(id)
	if err != nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if snap.Status != task.StatusCompleted || snap.Mode != types.ModeFull {
		http.Error(w, "Task not ready or failed", http.StatusBadRequest)
		return
	}

	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "crawl_result_"+short+".zip"))

	if err := s.manager.WriteArchive(id, w); err != nil {
		// Headers are already out, nothing left but to log.
		s.logger.Error("archive stream failed", "task", id, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
