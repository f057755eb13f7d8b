// Package server runs the development server: it serves the built site,
// watches the source directories and rebuilds on change.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/entjos/academic-kickstart/internal/build"
	"github.com/entjos/academic-kickstart/internal/config"
	aklog "github.com/entjos/academic-kickstart/internal/log"
)

const shutdownTimeout = 5 * time.Second

// RebuildFunc reloads the content and rebuilds the site. The server
// calls it once at startup and again whenever watched files change.
type RebuildFunc func(ctx context.Context) (build.Stats, error)

// Server is the development server.
type Server struct {
	cfg        *config.Config
	publishDir string
	rebuild    RebuildFunc
	httpServer *http.Server
	logger     zerolog.Logger

	// NoWatch disables the file watcher: the site is built once at
	// startup and served as-is. Set before Run.
	NoWatch bool

	// buildID holds the build ID of the last successful build. Served
	// as the ETag, so unchanged pages revalidate to 304.
	buildID atomic.Value

	// rebuildMu serialises rebuilds: a flood of change events must not
	// run two builds into the same output directory.
	rebuildMu sync.Mutex
}

// New builds a server for the site described by cfg. rebuild is invoked
// for the initial build and every watch-triggered one.
func New(cfg *config.Config, rebuild RebuildFunc) *Server {
	s := &Server{
		cfg:        cfg,
		publishDir: cfg.PublishDir(),
		rebuild:    rebuild,
		logger:     aklog.WithComponent("server"),
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Run performs the initial build, then serves and watches until ctx is
// cancelled. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.runBuild(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if !s.NoWatch {
		g.Go(func() error {
			return s.watch(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.logger.Info().
			Str("dir", s.publishDir).
			Msgf("serving site on http://%s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Info().Msg("server stopped")
	return nil
}

// runBuild runs one rebuild under the rebuild lock and records its
// metrics.
func (s *Server) runBuild(ctx context.Context) (build.Stats, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	stats, err := s.rebuild(ctx)
	recordBuild(stats, err)
	if err == nil && stats.BuildID != "" {
		s.buildID.Store(stats.BuildID)
	}
	return stats, err
}
