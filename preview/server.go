// Package preview serves the generated pages as HTML for local review,
// reloading open browsers after each regeneration.
package preview

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/render"
)

// Server renders pages from the output directory on each request.
type Server struct {
	outDir     string
	categories []config.Category
	converter  *Converter
	router     chi.Router
	hub        *hub
	logger     *zap.SugaredLogger
}

// New creates a preview server over the configured output directory.
func New(cfg *config.Config) *Server {
	s := &Server{
		outDir:     cfg.Path(cfg.Output.Dir),
		categories: cfg.Categories.Ordered(),
		converter:  NewConverter(),
		logger:     logger.ComponentLogger("preview"),
	}
	s.hub = newHub(s.logger)
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.hub.handle)
	r.Get("/{category}/{slug}", s.handlePage)

	s.router = r
}

// Reload tells every connected browser to refresh.
func (s *Server) Reload() {
	s.hub.broadcast(reloadMessage)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Preview server listening", logger.FieldAddress, "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.WithHintf(errors.Wrapf(err, "listen on %s", addr),
			"set preview.addr or pass --addr to use another address")
	case <-ctx.Done():
		s.hub.close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debugw("Request",
			"method", r.Method,
			logger.FieldPath, r.URL.Path,
			"status", ww.Status(),
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	})
}

type indexEntry struct {
	Title       string
	Description string
	URL         string
}

type indexSection struct {
	Group   string
	Entries []indexEntry
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var sections []indexSection
	for _, cat := range s.categories {
		section := indexSection{Group: cat.Group}
		files, _ := filepath.Glob(filepath.Join(s.outDir, cat.Dir, "*.mdx"))
		sort.Strings(files)
		for _, path := range files {
			slug := strings.TrimSuffix(filepath.Base(path), ".mdx")
			entry := indexEntry{Title: slug, URL: "/" + cat.Dir + "/" + slug}
			if data, err := os.ReadFile(path); err == nil {
				if fm, _, err := render.ParseFrontMatter(string(data)); err == nil {
					entry.Title = fm.Title
					entry.Description = fm.Description
				}
			}
			section.Entries = append(section.Entries, entry)
		}
		sections = append(sections, section)
	}

	s.write(w, indexTemplate, map[string]interface{}{
		"Title":    "Library Reference",
		"Sections": sections,
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	dir := chi.URLParam(r, "category")
	slug := chi.URLParam(r, "slug")

	known := false
	for _, cat := range s.categories {
		if cat.Dir == dir {
			known = true
			break
		}
	}
	if !known || slug == "" || strings.ContainsAny(slug, `/\`) || strings.HasPrefix(slug, ".") {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.outDir, dir, slug+".mdx"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	page, err := s.converter.Convert(data)
	if err != nil {
		s.logger.Warnw("Cannot convert page", logger.FieldFile, slug, logger.FieldError, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.write(w, pageTemplate, map[string]interface{}{
		"Title":       page.Title,
		"Description": page.Description,
		"Icon":        page.Icon,
		"Body":        template.HTML(page.Body),
	})
}

func (s *Server) write(w http.ResponseWriter, t *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		s.logger.Warnw("Template execution failed", logger.FieldError, err)
	}
}
