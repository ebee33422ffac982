// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hustlesynth/synthchat/internal/config"
	"github.com/hustlesynth/synthchat/internal/docs"
)

// ============================================================================
// REDIRECTS AND HEADERS
// ============================================================================

// redirects maps legacy documentation paths to their current anchors.
// Checked before clean-URL rewriting so extensionless entries match.
var redirects = map[string]string{
	"/docs":           "/index.html",
	"/api":            "/index.html#api-overview",
	"/quickstart":     "/index.html#quickstart",
	"/authentication": "/index.html#authentication",
}

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' 'unsafe-eval' https://cdnjs.cloudflare.com; " +
	"style-src 'self' 'unsafe-inline' https://cdnjs.cloudflare.com; " +
	"font-src 'self' https://cdnjs.cloudflare.com; " +
	"img-src 'self' data: https:; " +
	"connect-src 'self' https://api.hustlesynth.space https://panel.hustlesynth.space;"

// cacheControlFor returns the Cache-Control value for a file extension.
func cacheControlFor(ext string) string {
	switch ext {
	case ".css", ".js":
		return "public, max-age=86400"
	case ".png", ".jpg", ".jpeg", ".ico", ".svg":
		return "public, max-age=604800"
	default:
		// html, json and everything else
		return "public, max-age=3600"
	}
}

func setSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Content-Security-Policy", contentSecurityPolicy)
}

// notFoundPage is served for missing assets, styled to match the docs.
const notFoundPage = `<!DOCTYPE html>
<html>
<head>
    <title>404 - Page Not Found</title>
    <style>
        body { font-family: -apple-system, sans-serif; text-align: center; padding: 50px; }
        h1 { font-size: 48px; color: #333; }
        p { color: #666; }
        a { color: #6366f1; }
    </style>
</head>
<body>
    <h1>404</h1>
    <h2>Page not found</h2>
    <p>The page you're looking for doesn't exist.</p>
    <a href="/">Return to documentation home</a>
</body>
</html>`

// ============================================================================
// SERVER
// ============================================================================

// Server serves the documentation site and proxies chat completions to
// the upstream API.
type Server struct {
	cfg    config.ServerConfig
	logger *log.Logger
	proxy  *httputil.ReverseProxy
	docs   *docs.Index
	mux    *http.ServeMux
}

// NewServer builds a Server from configuration. upstream is the origin
// of the completion API, e.g. https://api.hustlesynth.space.
func NewServer(cfg config.ServerConfig, upstream string, logger *log.Logger) (*Server, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL %q: %w", upstream, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream URL %q must include scheme and host", upstream)
	}
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	// Negative FlushInterval flushes after every write, which keeps
	// SSE frames moving instead of buffering until the response ends.
	proxy.FlushInterval = -1
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Printf("proxy error for %s: %v", r.URL.Path, err)
		http.Error(w, `{"message":"upstream unavailable"}`, http.StatusBadGateway)
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		proxy:  proxy,
		docs:   docs.DefaultIndex(),
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/chat", s.handleChat)
	s.mux.HandleFunc("/api/docs/search", s.handleDocsSearch)
	s.mux.HandleFunc("/", s.handleStatic)
	return s, nil
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	chain := Chain(
		RecoveryMiddleware(s.logger),
		RequestIDMiddleware(),
		LoggingMiddleware(s.logger),
		RateLimitMiddleware(NewRateLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst)),
	)
	return chain(s.mux)
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Printf("listening on http://%s", addr)
	return srv.ListenAndServe()
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleChat forwards completion requests upstream. Only POST is
// accepted; the upstream sets its own response headers, including SSE
// framing for streamed replies.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, `{"message":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	s.proxy.ServeHTTP(w, r)
}

// handleDocsSearch answers documentation search queries with the same
// entries and limits the site's client-side search uses.
func (s *Server) handleDocsSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, `{"message":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	results := s.docs.Search(query)

	type hit struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
	}
	hits := make([]hit, 0, len(results))
	for _, e := range results {
		hits = append(hits, hit{ID: e.ID, Title: docs.Highlight(e.Title, query), Excerpt: e.Excerpt})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(map[string]any{"query": query, "results": hits}); err != nil {
		s.logger.Printf("encoding search results: %v", err)
	}
}

// handleStatic serves files from the configured static directory with
// clean URLs: "/" maps to index.html and extensionless paths get
// ".html" appended. Redirects are resolved before the rewrite so
// entries like "/docs" are still reachable.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reqPath := path.Clean("/" + r.URL.Path)

	if target, ok := redirects[reqPath]; ok {
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	if reqPath == "/" {
		reqPath = "/index.html"
	} else if path.Ext(reqPath) == "" {
		reqPath += ".html"
	}

	file := filepath.Join(s.cfg.StaticDir, filepath.FromSlash(strings.TrimPrefix(reqPath, "/")))

	// path.Clean above already collapses "..", but verify the result
	// stays inside the static root.
	root, err := filepath.Abs(s.cfg.StaticDir)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	abs, err := filepath.Abs(file)
	if err != nil || (abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator))) {
		s.serveNotFound(w)
		return
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		s.serveNotFound(w)
		return
	}

	setSecurityHeaders(w.Header())
	w.Header().Set("Cache-Control", cacheControlFor(strings.ToLower(filepath.Ext(abs))))
	http.ServeFile(w, r, abs)
}

func (s *Server) serveNotFound(w http.ResponseWriter) {
	setSecurityHeaders(w.Header())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, notFoundPage)
}
