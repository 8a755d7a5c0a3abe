// Package scanner discovers IR documents under a set of paths.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/reachable/pkg/config"
)

// Scanner finds document files, honoring exclude patterns and .gitignore.
type Scanner struct {
	config  *config.Config
	matcher gitignore.Matcher
}

// NewScanner creates a new document scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot walks up from start to the directory holding .git, or "".
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadPatterns builds one matcher from config patterns and excluded dirs
// plus every .gitignore below the repository root. Gitignore patterns are
// expressed relative to the repository root, so matching uses paths
// relative to it too.
func (s *Scanner) loadPatterns(base string) {
	var patterns []gitignore.Pattern
	for _, p := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	for _, d := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(d+"/", nil))
	}

	if s.config.Exclude.Gitignore {
		if root := findGitRoot(base); root != "" {
			if gitPatterns, err := gitignore.ReadPatterns(osfs.New(root), nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}
	s.matcher = gitignore.NewMatcher(patterns)
}

// matchRoot is the directory match paths are made relative to.
func (s *Scanner) matchRoot(dir string) string {
	if s.config.Exclude.Gitignore {
		if root := findGitRoot(dir); root != "" {
			return root
		}
	}
	return dir
}

func (s *Scanner) matchRel(root, path string, isDir bool) bool {
	if s.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return s.matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}

// ScanDir recursively collects the documents below root. Symlinks that
// leave root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadPatterns(absRoot)
	matchRoot := s.matchRoot(absRoot)

	var files []string
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if path != absRoot && s.matchRel(matchRoot, path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.matchRel(matchRoot, path, false) {
			return nil
		}
		if s.config.IsDocument(path) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, walkErr
}

// ScanPaths expands each path: directories are scanned, files are taken as
// given when they look like documents. The result is sorted and deduplicated.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		var found []string
		if info.IsDir() {
			found, err = s.ScanDir(p)
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", p, err)
			}
		} else {
			ok, err := s.ScanFile(p)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%s: not a document (expected one of %s)", p, strings.Join(s.config.Input.Extensions, ", "))
			}
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, err
			}
			if resolved, err := filepath.EvalSymlinks(abs); err == nil {
				abs = resolved
			}
			found = []string{abs}
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// ScanFile checks whether a single path should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	dir := filepath.Dir(abs)
	if s.matcher == nil {
		s.loadPatterns(dir)
	}
	if s.matchRel(s.matchRoot(dir), abs, false) {
		return false, nil
	}
	return s.config.IsDocument(path), nil
}

// isWithinRoot reports whether path is root or below it.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// FilterBySize drops files larger than maxSize bytes and returns how many
// were skipped. A maxSize of 0 keeps everything.
func FilterBySize(files []string, maxSize int64) ([]string, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]string, 0, len(files))
	skipped := 0
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered, skipped
}
