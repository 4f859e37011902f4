// Package library lists the reference documents (procedure manual,
// scheme guidance) shown on the References view and served as downloads.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// File is one downloadable reference document.
type File struct {
	Name string
	Size int64
}

// Library holds the current directory listing. Files() is safe for
// concurrent use with the watcher.
type Library struct {
	dir string

	mu    sync.RWMutex
	files []File
}

// New creates a library over dir, creating the directory if needed and
// performing an initial scan.
func New(dir string) (*Library, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("library: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("library: create dir: %w", err)
	}
	l := &Library{dir: abs}
	if err := l.rescan(); err != nil {
		return nil, err
	}
	return l, nil
}

// Files returns the current listing, sorted by name.
func (l *Library) Files() []File {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]File, len(l.files))
	copy(out, l.files)
	return out
}

// FilePath resolves a document name to its absolute path, rejecting
// anything that is not a plain name inside the library directory.
func (l *Library) FilePath(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("library: invalid document name %q", name)
	}
	abs := filepath.Join(l.dir, cleaned)
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("library: document %s: %w", cleaned, err)
	}
	return abs, nil
}

// Watch keeps the listing current as files are added or removed, until
// ctx is cancelled. Events are debounced so a batch copy triggers one
// rescan.
func (l *Library) Watch(ctx context.Context, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("library: watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(l.dir); err != nil {
		return fmt.Errorf("library: watch %s: %w", l.dir, err)
	}
	logger.Info("library: watching", slog.String("dir", l.dir))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(200 * time.Millisecond)
			timerCh = timer.C
		} else {
			timer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("library: stopped")
			return nil

		case <-timerCh:
			if err := l.rescan(); err != nil {
				logger.Warn("library: rescan failed", slog.String("error", err.Error()))
			}

		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("library: watcher error", slog.String("error", err.Error()))
		}
	}
}

func (l *Library) rescan() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("library: read dir: %w", err)
	}
	var files []File
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	l.mu.Lock()
	l.files = files
	l.mu.Unlock()
	return nil
}
