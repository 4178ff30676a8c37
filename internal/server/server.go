package server

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"sort"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/bkarpinos/linkvault/internal/config"
	"github.com/bkarpinos/linkvault/internal/library"
	"github.com/bkarpinos/linkvault/internal/link"
	"github.com/bkarpinos/linkvault/internal/storage"
	"github.com/bkarpinos/linkvault/internal/transfer"
)

// Server represents the HTTP server for the link library
type Server struct {
	library  *library.Service
	repo     *storage.Repository
	transfer *transfer.Service
	logger   zerolog.Logger
	server   *http.Server
	baseURL  string
	notFound string
	origins  []string
	backend  string
}

// NewServer creates a new link library HTTP server
func NewServer(lib *library.Service, xfer *transfer.Service, cfg config.ServerConfig, backend string, logger zerolog.Logger) *Server {
	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)

	s := &Server{
		library:  lib,
		repo:     lib.Repository(),
		transfer: xfer,
		logger:   logger,
		baseURL:  baseURL,
		notFound: cfg.NotFoundURL,
		origins:  cfg.CORSOrigins,
		backend:  backend,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
	s.server.Handler = s.Handler()
	return s
}

// Handler returns the routed handler with logging, recovery and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRootPage)
	mux.HandleFunc("GET /info", s.handleInfo)
	mux.HandleFunc("GET /go/{id}", s.handleRedirect)

	mux.HandleFunc("GET /api/links", s.handleListLinks)
	mux.HandleFunc("POST /api/links", s.handleCreateLink)
	mux.HandleFunc("POST /api/links/bulk", s.handleBulk)
	mux.HandleFunc("GET /api/links/{id}", s.handleGetLink)
	mux.HandleFunc("PUT /api/links/{id}", s.handleUpdateLink)
	mux.HandleFunc("DELETE /api/links/{id}", s.handlePurgeLink)
	mux.HandleFunc("POST /api/links/{id}/trash", s.handleTrashLink)
	mux.HandleFunc("POST /api/links/{id}/restore", s.handleRestoreLink)
	mux.HandleFunc("POST /api/links/{id}/favorite", s.handleToggleFavorite)
	mux.HandleFunc("POST /api/links/{id}/read-later", s.handleToggleReadLater)
	mux.HandleFunc("POST /api/trash/empty", s.handleEmptyTrash)

	mux.HandleFunc("GET /api/folders", s.handleListFolders)
	mux.HandleFunc("POST /api/folders", s.handleCreateFolder)
	mux.HandleFunc("PUT /api/folders", s.handleReorderFolders)
	mux.HandleFunc("PUT /api/folders/{name}", s.handleRenameFolder)
	mux.HandleFunc("DELETE /api/folders/{name}", s.handleDeleteFolder)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/info", s.handleAPIInfo)

	var h http.Handler = mux
	if len(s.origins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(h)
	}
	return s.logMiddleware(s.recoverMiddleware(h))
}

// Start begins serving the link library
func (s *Server) Start() error {
	s.logger.Info().Str("url", s.baseURL).Msg("linkvault server started")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleRedirect sends the browser to a saved link
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	l, err := s.library.Get(id)
	if err != nil || l.IsDeleted {
		if s.notFound != "" {
			// Redirect to the configured "not found" URL if specified
			http.Redirect(w, r, s.notFound, http.StatusFound)
			return
		}
		http.Error(w, fmt.Sprintf("Link not found: %s", id), http.StatusNotFound)
		return
	}

	http.Redirect(w, r, l.URL, http.StatusFound)
}

// handleRootPage shows the links grouped by folder
func (s *Server) handleRootPage(w http.ResponseWriter, r *http.Request) {
	links := s.library.List(link.View{Kind: link.KindAll}, "")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	fmt.Fprintf(w, `<!DOCTYPE html>
	<html>
	<head>
			<title>Linkvault</title>
			<style>
				body { font-family: monospace, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        h1 { color: #333; }
        pre { white-space: pre; line-height: 1.5; }
        a { text-decoration: none; color: #0066cc; }
        a:hover { text-decoration: underline; }
			</style>
	</head>
	<body>
			<h1>Linkvault</h1>
			<p>Open a saved link at <code>%s/go/&lt;id&gt;</code></p>
			<h2>Saved Links</h2>`, s.baseURL)

	if len(links) == 0 {
		fmt.Fprintf(w, "<p>No links saved. Add some using the CLI tool.</p>")
	} else {
		byFolder := make(map[string][]link.Link)
		for _, l := range links {
			byFolder[l.Folder] = append(byFolder[l.Folder], l)
		}

		var folders []string
		for _, f := range s.repo.ListFolders() {
			if len(byFolder[f]) > 0 {
				folders = append(folders, f)
			}
		}

		fmt.Fprintf(w, "<pre>")
		for i, folder := range folders {
			folderLinks := byFolder[folder]
			isLastFolder := i == len(folders)-1

			branch, indent := "├── ", "│   "
			if isLastFolder {
				branch, indent = "└── ", "    "
			}
			fmt.Fprintf(w, "%s%s\n", branch, html.EscapeString(folder))

			sort.SliceStable(folderLinks, func(i, j int) bool {
				return folderLinks[i].Title < folderLinks[j].Title
			})
			for j, l := range folderLinks {
				leaf := "├── "
				if j == len(folderLinks)-1 {
					leaf = "└── "
				}
				fmt.Fprintf(w, "%s%s%s → <a href=\"/go/%s\">%s</a>\n",
					indent, leaf, html.EscapeString(l.Title), html.EscapeString(l.ID), html.EscapeString(l.URL))
			}
		}
		fmt.Fprintf(w, "</pre>")
	}

	fmt.Fprintf(w, `
	</body>
	</html>`)
}

// handleInfo displays information about the library
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	stats := s.repo.Stats()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>Linkvault - Info</title>
    <style>
        body { font-family: monospace, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        h1, h2 { color: #333; }
        .stats { display: flex; gap: 20px; }
        .stat-box { flex: 1; padding: 15px; background: #f5f5f5; border-radius: 5px; text-align: center; }
        .stat-number { font-size: 24px; font-weight: bold; margin: 10px 0; }
    </style>
</head>
<body>
    <h1>Linkvault - Info</h1>
    <div class="stats">
        <div class="stat-box">
            <div>Links</div>
            <div class="stat-number">%d</div>
        </div>
        <div class="stat-box">
            <div>Favorites</div>
            <div class="stat-number">%d</div>
        </div>
        <div class="stat-box">
            <div>Trash</div>
            <div class="stat-number">%d</div>
        </div>
        <div class="stat-box">
            <div>Folders</div>
            <div class="stat-number">%d</div>
        </div>
    </div>
    <h2>Service Information</h2>
    <ul>
        <li>Base URL: %s</li>
        <li>Storage: %s (%d bytes)</li>
    </ul>
    <p><a href="/">Back to home</a></p>
</body>
</html>`, stats.ActiveLinks, stats.FavoriteLinks, stats.TrashedLinks, stats.TotalFolders,
		s.baseURL, html.EscapeString(s.backend), stats.StorageBytes)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// logMiddleware logs incoming requests
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// recoverMiddleware turns a panicking handler into a 500 response.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.Error().Interface("panic", v).Str("path", r.URL.Path).Msg("panic recovered")
				s.writeError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
