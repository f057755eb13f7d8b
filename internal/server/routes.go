package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if limit := s.cfg.Server.RateLimit; limit > 0 {
		r.Use(httprate.Limit(limit, time.Minute))
	}
	r.Use(middleware.Heartbeat("/healthz"))
	r.Use(requestMetrics)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", s.siteHandler())

	return r
}

// siteHandler serves the publish directory. Directory URLs only resolve
// when an index.html exists. Responses carry no-cache headers so edits
// show up on reload; the current build ID doubles as the ETag, letting
// unchanged pages revalidate to 304 between rebuilds.
func (s *Server) siteHandler() http.Handler {
	fileServer := http.FileServer(http.Dir(s.publishDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			index := filepath.Join(s.publishDir, filepath.FromSlash(r.URL.Path), "index.html")
			if _, err := os.Stat(index); os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		if id, ok := s.buildID.Load().(string); ok {
			w.Header().Set("ETag", `"`+id+`"`)
		}
		fileServer.ServeHTTP(w, r)
	})
}
