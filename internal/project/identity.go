package project

import (
	"crypto/sha256"
	"encoding/base64"
	"path"
	"runtime"
	"strings"
)

// IDLength is the number of characters in a derived project ID.
const IDLength = 12

// foldCase reports whether the host filesystem treats paths that differ
// only in case as the same folder.
var foldCase = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

// Identify derives the stable ID for a project from its name and path.
//
// The path is normalized first so the same folder yields the same ID on
// every platform. The result is 12 characters of unpadded base64url over
// SHA-256, i.e. 72 bits. No collision handling is done here; for a personal
// list of at most a few hundred entries the risk is accepted, and callers
// adding a record reject an ID that is already taken.
//
// Identify is only used when a record is created or when a legacy record
// without an ID is loaded. An ID, once assigned, is never recomputed.
func Identify(name, p string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + NormalizePath(p)))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:IDLength]
}

// NormalizePath canonicalizes a path for hashing: backslashes become
// slashes, the path is cleaned, a trailing slash is dropped and the result
// is lower-cased. It does not depend on the running platform, so IDs match
// everywhere; comparisons use SamePath instead.
//
// Examples:
//
//	"/home/me/Work/"         -> "/home/me/work"
//	`C:\Users\Me\src\deck`   -> "c:/users/me/src/deck"
func NormalizePath(p string) string {
	return strings.ToLower(cleanPath(p))
}

// PathKey returns the form of p used to compare folders on this host. Case
// is folded only where the filesystem ignores it.
func PathKey(p string) string {
	return pathKey(p, foldCase)
}

func pathKey(p string, fold bool) string {
	p = cleanPath(p)
	if fold {
		return strings.ToLower(p)
	}
	return p
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, `\`, "/")
	p = path.Clean(p)
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// SamePath reports whether a and b name the same folder on this host.
func SamePath(a, b string) bool {
	return PathKey(a) == PathKey(b)
}
