package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/wrapfix/internal/logging"
)

// DefaultDebounce is the quiet period Watch waits for before processing a
// file that was written.
const DefaultDebounce = 250 * time.Millisecond

// Watch processes candidate files again whenever they are created or
// written, until ctx is done. Directories under opts.Paths are watched
// recursively, including ones created later. Files are processed one at a
// time and every outcome is passed to onOutcome.
//
// A file Watch itself rewrites produces one more event; the second pass
// finds the sites already wrapped and leaves the file alone.
func (r *Runner) Watch(ctx context.Context, opts Options, onOutcome func(FileOutcome)) error {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	f, err := newFilter(workDir, opts)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	w := &watch{
		filter:   f,
		watcher:  watcher,
		explicit: make(map[string]bool),
		pending:  make(map[string]time.Time),
	}
	for _, inputPath := range opts.effectivePaths() {
		absPath := inputPath
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(workDir, absPath)
		}
		if err := w.add(ctx, filepath.Clean(absPath)); err != nil {
			return err
		}
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	logger := logging.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.FieldError, err)

		case now := <-ticker.C:
			for _, path := range w.due(now, debounce) {
				if ctx.Err() != nil {
					return nil
				}
				onOutcome(r.process(ctx, path, opts.Pipeline))
			}
		}
	}
}

type watch struct {
	filter  *filter
	watcher *fsnotify.Watcher

	// roots are the watched directory trees; explicit are files named
	// directly, which skip the suffix check.
	roots    []string
	explicit map[string]bool

	// pending maps a path to the time of its last event.
	pending map[string]time.Time
}

func (w *watch) add(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		w.explicit[path] = true
		if err := w.watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
		}
		return nil
	}
	w.roots = append(w.roots, path)
	return w.addTree(ctx, path)
}

// addTree watches root and every directory below it that discovery
// would descend into.
func (w *watch) addTree(ctx context.Context, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(entry.Name(), ".") || !w.filter.dir(path)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *watch) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	logger := logging.FromContext(ctx)
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) && w.inRoots(path) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(path), ".") && w.filter.dir(path) {
				if err := w.addTree(ctx, path); err != nil {
					logger.Warn("cannot watch directory", logging.FieldPath, path, logging.FieldError, err)
				}
			}
			return
		}
	}

	if w.candidate(path) {
		logger.Debug("file event", logging.FieldPath, path, logging.FieldEvent, event.Op.String())
		w.pending[path] = time.Now()
	}
}

func (w *watch) candidate(path string) bool {
	if w.explicit[path] {
		return w.filter.file(path, false)
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return w.inRoots(path) && w.filter.file(path, true)
}

func (w *watch) inRoots(path string) bool {
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// due removes and returns the pending paths that have been quiet for at
// least debounce.
func (w *watch) due(now time.Time, debounce time.Duration) []string {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	slices.Sort(ready)
	return ready
}
