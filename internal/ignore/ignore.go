// Package ignore provides gitignore-style matching for folder scans.
//
// A scan root may carry a .deckignore file using .gitignore syntax,
// including negation. DefaultPatterns are always applied first, so a
// .deckignore can re-include them with "!name/".
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// DefaultFile is the ignore file read from a scan root.
const DefaultFile = ".deckignore"

// DefaultPatterns keep scans out of dependency trees, which often contain
// vendored checkouts with their own .git.
var DefaultPatterns = []string{
	"node_modules/",
	"vendor/",
	"bower_components/",
}

// Matcher reports whether a path below the scan root is ignored.
type Matcher struct {
	patterns []string
	matcher  gitignore.Matcher
}

// New creates a matcher from DefaultPatterns followed by patterns.
func New(patterns ...string) *Matcher {
	all := append(append([]string{}, DefaultPatterns...), patterns...)
	all = deduplicate(all)

	parsed := make([]gitignore.Pattern, 0, len(all))
	for _, p := range all {
		parsed = append(parsed, gitignore.ParsePattern(p, nil))
	}
	return &Matcher{patterns: all, matcher: gitignore.NewMatcher(parsed)}
}

// Load reads the named ignore files from root and returns a matcher over
// their patterns. Missing files are skipped.
func Load(root string, files ...string) (*Matcher, error) {
	var patterns []string
	for _, name := range files {
		filePatterns, err := parseFile(filepath.Join(root, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		patterns = append(patterns, filePatterns...)
	}
	return New(patterns...), nil
}

// Match reports whether rel, a path relative to the scan root, is ignored.
func (m *Matcher) Match(rel string, isDir bool) bool {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == "" {
		return false
	}
	return m.matcher.Match(strings.Split(rel, "/"), isDir)
}

// Patterns returns the effective patterns in evaluation order.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// parseFile reads a single gitignore-style file and returns its patterns.
func parseFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if pattern := parseLine(scanner.Text()); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// parseLine returns the pattern on line, or "" for comments and blank lines.
func parseLine(line string) string {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	return line
}

// deduplicate removes duplicate patterns, keeping the last occurrence so
// that later files keep their precedence.
func deduplicate(patterns []string) []string {
	last := make(map[string]int, len(patterns))
	for i, p := range patterns {
		last[p] = i
	}
	result := make([]string, 0, len(last))
	for i, p := range patterns {
		if last[p] == i {
			result = append(result, p)
		}
	}
	return result
}
