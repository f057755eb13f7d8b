package server

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 500 * time.Millisecond

// watch monitors the content, layouts and static directories and
// rebuilds the site once changes settle. fsnotify does not watch
// recursively, so every subdirectory is added, and directories created
// later are picked up from their create events.
func (s *Server) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	roots := []string{s.cfg.ContentDir(), s.cfg.LayoutsDir(), s.cfg.StaticDir()}
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			s.logger.Debug().Str("dir", root).Msg("directory not found, not watching")
			continue
		}
		if err := watchTree(watcher, root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		s.logger.Debug().Str("dir", root).Msg("watching")
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change detected")

			// A created directory's children are not covered by the
			// parent watch.
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := watchTree(watcher, event.Name); addErr != nil {
						s.logger.Warn().Err(addErr).Str("dir", event.Name).Msg("cannot watch new directory")
					}
				}
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				s.rebuildOnChange(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// rebuildOnChange rebuilds after a change. A failed rebuild is logged
// and the previous output stays up.
func (s *Server) rebuildOnChange(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Info().Msg("change detected, rebuilding")
	stats, err := s.runBuild(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("rebuild failed, serving previous output")
		return
	}
	s.logger.Info().Int("pages", stats.Pages).Dur("took", stats.Duration).Msg("site rebuilt")
}

func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
