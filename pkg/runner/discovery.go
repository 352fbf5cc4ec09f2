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

	"github.com/gobwas/glob"
)

// ErrBadGlob is returned for include or exclude patterns that do not compile.
var ErrBadGlob = errors.New("invalid glob")

// Discover finds candidate files under opts.Paths. Paths named explicitly
// are filtered by extension and globs but not by suffix. The result is
// sorted and free of duplicates.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	f, err := newFilter(workDir, opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if !info.IsDir() {
			if f.file(absPath, false) {
				add(absPath)
			}
			continue
		}

		discovered, err := f.walk(ctx, absPath)
		if err != nil {
			return nil, err
		}
		for _, path := range discovered {
			add(path)
		}
	}

	slices.Sort(files)
	return files, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// filter holds the compiled discovery criteria.
type filter struct {
	workDir        string
	extensions     []string
	suffixes       []string
	include        []matcher
	exclude        []matcher
	followSymlinks bool
}

type matcher struct {
	glob     glob.Glob
	baseName bool
}

func (m matcher) match(rel string) bool {
	if m.baseName {
		return m.glob.Match(filepath.Base(rel))
	}
	return m.glob.Match(rel)
}

func newFilter(workDir string, opts Options) (*filter, error) {
	f := &filter{
		workDir:        workDir,
		followSymlinks: opts.FollowSymlinks,
	}
	for _, ext := range opts.effectiveExtensions() {
		f.extensions = append(f.extensions, strings.ToLower(ext))
	}
	for _, s := range opts.Suffixes {
		f.suffixes = append(f.suffixes, strings.ToLower(s))
	}

	var err error
	if f.include, err = compileGlobs(opts.IncludeGlobs); err != nil {
		return nil, err
	}
	if f.exclude, err = compileGlobs(opts.ExcludeGlobs); err != nil {
		return nil, err
	}
	return f, nil
}

// ValidateGlobs reports the first pattern that does not compile.
func ValidateGlobs(patterns []string) error {
	_, err := compileGlobs(patterns)
	return err
}

func compileGlobs(patterns []string) ([]matcher, error) {
	out := make([]matcher, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrBadGlob, pattern, err)
		}
		out = append(out, matcher{glob: g, baseName: !strings.Contains(pattern, "/")})
	}
	return out, nil
}

func (f *filter) rel(path string) string {
	rel, err := filepath.Rel(f.workDir, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (f *filter) excluded(rel string) bool {
	return slices.ContainsFunc(f.exclude, func(m matcher) bool { return m.match(rel) })
}

// dir reports whether a directory should be descended into.
func (f *filter) dir(path string) bool {
	rel := f.rel(path)
	return !f.excluded(rel) && !f.excluded(rel+"/")
}

// file reports whether path is a candidate. walked files must also carry
// one of the suffixes.
func (f *filter) file(path string, walked bool) bool {
	name := strings.ToLower(filepath.Base(path))
	if !slices.Contains(f.extensions, filepath.Ext(name)) {
		return false
	}
	if walked && len(f.suffixes) > 0 &&
		!slices.ContainsFunc(f.suffixes, func(s string) bool { return strings.HasSuffix(name, s) }) {
		return false
	}

	rel := f.rel(path)
	if f.excluded(rel) {
		return false
	}
	return len(f.include) == 0 || slices.ContainsFunc(f.include, func(m matcher) bool { return m.match(rel) })
}

func (f *filter) walk(ctx context.Context, root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		if entry.IsDir() {
			if path != root && (strings.HasPrefix(entry.Name(), ".") || !f.dir(path)) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			info, err := os.Stat(realPath)
			if err != nil {
				return nil //nolint:nilerr // unreadable targets are skipped
			}
			if info.IsDir() {
				if !f.followSymlinks || !f.dir(path) {
					return nil
				}
				// Walk the target; WalkDir does not follow a symlinked root.
				sub, err := f.walk(ctx, realPath)
				if err != nil {
					return err
				}
				files = append(files, sub...)
				return nil
			}
		}

		if !strings.HasPrefix(entry.Name(), ".") && f.file(path, true) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}
