package configloader

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"runtime"

	"github.com/samber/lo"
)

// ConfigPaths lists the configuration files found for each layer. An empty
// field means the layer has no file.
type ConfigPaths struct {
	// System is the machine-wide file, e.g. /etc/wrapfix/config.yaml.
	System string

	// User is the per-user file, e.g. ~/.config/wrapfix/config.yaml.
	User string

	// Project is the nearest project file, e.g. ./.wrapfix.yml.
	Project string

	// Explicit is the file given with --config.
	Explicit string
}

// ProjectConfigName is the file written by "wrapfix init".
const ProjectConfigName = ".wrapfix.yml"

// Names searched for in each directory, most preferred first.
//
//nolint:gochecknoglobals // Read-only lookup tables.
var (
	projectConfigFiles = []string{ProjectConfigName, ".wrapfix.yaml", "wrapfix.yml", "wrapfix.yaml", ".wrapfix.json"}
	layerConfigFiles   = []string{"config.yaml", "config.yml"}

	// A .git file rather than a directory marks a worktree or submodule.
	vcsRootMarkers = []string{".git", ".hg", ".svn"}
)

// DiscoverPaths finds the system, user and project configuration files.
// The project file is the nearest one at or above workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}
	return &ConfigPaths{
		System:  firstFile(systemConfigDir(), layerConfigFiles),
		User:    firstFile(userConfigDir(), layerConfigFiles),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(lo.CoalesceOrEmpty(os.Getenv("ProgramData"), `C:\ProgramData`), "wrapfix")
	}
	return "/etc/wrapfix"
}

// userConfigDir follows XDG on every platform, so the same dotfiles work
// on macOS and Linux.
func userConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "wrapfix")
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	name, ok := lo.Find(names, func(n string) bool { return fileExists(filepath.Join(dir, n)) })
	if !ok {
		return ""
	}
	return filepath.Join(dir, name)
}

// FindProjectConfig returns the nearest project config at or above
// startDir, or "" when there is none. The search stops after a VCS root
// or the home directory.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	home, _ := os.UserHomeDir()

	for d := range ancestors(dir) {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}
		if path := firstFile(d, projectConfigFiles); path != "" {
			return path, nil
		}
		if isVCSRoot(d) || d == home {
			break
		}
	}
	return "", nil
}

// ancestors yields dir and each of its parents up to the filesystem root.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}

func isVCSRoot(dir string) bool {
	return lo.SomeBy(vcsRootMarkers, func(marker string) bool {
		_, err := os.Stat(filepath.Join(dir, marker))
		return err == nil
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
