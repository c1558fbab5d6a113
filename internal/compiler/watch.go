package compiler

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/sable-lang/sable/internal/cli"
)

// WatchFunc receives the outcome of every check run started by Watch
type WatchFunc func(result *Result, err error)

// Watch checks the crate once, then again whenever a source file or the
// manifest changes. Bursts of events within the debounce window trigger a
// single run. Watch returns when ctx is cancelled.
func (s *Session) Watch(ctx context.Context, onResult WatchFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer w.Close()

	dirs, err := watchDirs(s.config.SourcePaths())
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}

		s.logger.Debug("watching %s", dir)
	}

	onResult(s.Check(ctx))

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !relevant(ev) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						s.logger.Warn("cannot watch %s: %v", ev.Name, err)
					}
				}
			}

			s.logger.Debug("change: %s", ev)
			pending = time.After(s.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			s.logger.Warn("watcher: %v", err)
		case <-pending:
			pending = nil

			onResult(s.Check(ctx))
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	if filepath.Base(ev.Name) == cli.ManifestName || filepath.Ext(ev.Name) == SourceExt {
		return true
	}

	// new directories may hold sources
	return ev.Op&fsnotify.Create != 0 && filepath.Ext(ev.Name) == ""
}

// watchDirs returns every directory holding or containing the given sources
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]bool)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "source %s", path)
		}

		if !info.IsDir() {
			seen[filepath.Dir(filepath.Clean(path))] = true

			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				seen[filepath.Clean(p)] = true
			}

			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", path)
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}

	sort.Strings(dirs)

	return dirs, nil
}
