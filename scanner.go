package cssmod

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// ScanStats tracks file discovery statistics
type ScanStats struct {
	FilesDiscovered int // Total files found by include patterns
	FilesScanned    int // Files kept after filtering
	FilesSkipped    int // Files skipped by excludes or .gitignore
}

var (
	// gitignore caching
	gitIgnoreCache *ignore.GitIgnore
	gitIgnoreOnce  sync.Once
)

// loadGitIgnore loads the .gitignore file once (thread-safe)
// Gracefully degrades if .gitignore doesn't exist
func loadGitIgnore() *ignore.GitIgnore {
	gitIgnoreOnce.Do(func() {
		gi, err := ignore.CompileIgnoreFile(".gitignore")
		if err != nil {
			gitIgnoreCache = nil
			return
		}
		gitIgnoreCache = gi
	})
	return gitIgnoreCache
}

// shouldSkipFile determines if a discovered file is left out of the build
//
// Two-layer filtering:
// 1. Exclude globs, matched against the path relative to sourceDir
// 2. Gitignore check (only for relative paths)
func shouldSkipFile(sourceDir, path string, excludes []string) bool {
	if rel, err := filepath.Rel(sourceDir, path); err == nil {
		rel = filepath.ToSlash(rel)
		for _, pattern := range excludes {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return true
			}
		}
	}

	// Absolute paths (like /tmp/...) should not be affected by project gitignore
	if !filepath.IsAbs(path) {
		gi := loadGitIgnore()
		if gi != nil && gi.MatchesPath(path) {
			return true
		}
	}

	return false
}

// scanCSSFiles finds all files under sourceDir matching includes
func scanCSSFiles(sourceDir string, includes, excludes []string) ([]string, ScanStats, error) {
	var files []string
	seen := make(map[string]bool)
	stats := ScanStats{}

	for _, pattern := range includes {
		// Use doublestar for ** glob support
		matches, err := doublestar.FilepathGlob(filepath.Join(sourceDir, pattern))
		if err != nil {
			return nil, stats, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true

			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			stats.FilesDiscovered++

			if shouldSkipFile(sourceDir, match, excludes) {
				stats.FilesSkipped++
				continue
			}
			files = append(files, match)
			stats.FilesScanned++
		}
	}

	return files, stats, nil
}

// matchesIncludes reports whether path would be picked up by a scan
func matchesIncludes(sourceDir, path string, includes, excludes []string) bool {
	rel, err := filepath.Rel(sourceDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range includes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return !shouldSkipFile(sourceDir, path, excludes)
		}
	}
	return false
}

// GetRelativePath returns a relative path from the current working directory
func GetRelativePath(absPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return absPath
	}

	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return absPath
	}

	return rel
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
