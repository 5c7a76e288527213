// Package sanitize cleans untrusted strings before they reach a shell
// command or generated markup.
//
// Project records are hand-editable, so every path handed to an external
// program and every id embedded in HTML passes through here first.
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// MaxIdentifierLength is the maximum length of an identifier.
	MaxIdentifierLength = 64

	// HashSuffixLength is the length of the hash suffix added to truncated identifiers.
	// Format: -<8-char-hash> = 9 characters total
	HashSuffixLength = 9

	// DefaultIdentifier is used when sanitization produces an empty result.
	DefaultIdentifier = "project"
)

// Identifier turns s into a token safe for HTML id and class attributes.
//
// Rules applied:
//   - Converts to lowercase
//   - Replaces characters outside [a-z0-9_-] with hyphens
//   - Collapses repeated hyphens and trims them at both ends
//   - Truncates to MaxIdentifierLength with hash suffix if too long
//   - Returns DefaultIdentifier if result would be empty
//
// Examples:
//
//	"My Project!"  -> "my-project"
//	"Xq3v_9Tf-Wk1" -> "xq3v_9tf-wk1"
//	"" or "!!!"    -> "project"
func Identifier(s string) string {
	s = strings.ToLower(s)

	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		} else {
			result.WriteRune('-')
		}
	}

	sanitized := result.String()
	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}
	sanitized = strings.Trim(sanitized, "-")

	if sanitized == "" {
		return DefaultIdentifier
	}

	if len(sanitized) > MaxIdentifierLength {
		sanitized = truncateWithHash(sanitized)
	}

	return sanitized
}

// truncateWithHash truncates a string to fit within MaxIdentifierLength,
// appending a hash suffix to preserve uniqueness.
func truncateWithHash(s string) string {
	hash := sha256.Sum256([]byte(s))
	hashSuffix := "-" + hex.EncodeToString(hash[:])[:8]

	truncated := s[:MaxIdentifierLength-HashSuffixLength]
	truncated = strings.TrimRight(truncated, "-")

	return truncated + hashSuffix
}
