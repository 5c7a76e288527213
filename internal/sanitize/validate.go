package sanitize

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validation errors for paths handed to external programs.
var (
	// ErrEmptyPath indicates an empty path was provided.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrPathTraversal indicates a path contains a ".." segment.
	ErrPathTraversal = errors.New("path contains directory traversal")

	// ErrRelativePath indicates a relative path where an absolute one is required.
	ErrRelativePath = errors.New("path must be absolute")

	// ErrUnsafePath indicates characters that an external program could
	// misinterpret, such as a NUL byte or a leading dash.
	ErrUnsafePath = errors.New("path contains unsafe characters")
)

// Path validates a stored project path before it is passed as an argument
// to a file browser or editor and returns the cleaned absolute path.
//
// Checks:
//   - not empty, no NUL or newline
//   - no ".." segment (before and after cleaning)
//   - absolute
//   - does not start with "-", so it cannot be read as a flag
func Path(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsAny(path, "\x00\n\r") {
		return "", fmt.Errorf("%w: control character", ErrUnsafePath)
	}
	if hasTraversal(path) {
		return "", fmt.Errorf("%w: contains '..'", ErrPathTraversal)
	}

	clean := filepath.Clean(path)
	if hasTraversal(clean) {
		return "", fmt.Errorf("%w: resolves to traversal", ErrPathTraversal)
	}
	if !filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q", ErrRelativePath, path)
	}
	if strings.HasPrefix(clean, "-") {
		return "", fmt.Errorf("%w: leading dash", ErrUnsafePath)
	}

	return clean, nil
}

// SafeBasename returns the final element of a validated path, for use as a
// default display name.
func SafeBasename(path string) (string, error) {
	clean, err := Path(path)
	if err != nil {
		return "", err
	}

	base := filepath.Base(clean)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: path has no base name", ErrUnsafePath)
	}
	return base, nil
}

// hasTraversal reports whether any slash- or backslash-separated segment is "..".
func hasTraversal(path string) bool {
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
