package settings

import (
	"context"
	"encoding/json"
	"errors"
)

// Default settings keys.
const (
	DefaultProjectsKey = "projectDeck.projects"
	DefaultFaviconsKey = "projectDeck.fetchFavicons"
)

// Errors for settings operations.
var (
	ErrCorrupted  = errors.New("settings document corrupted")
	ErrInvalidKey = errors.New("settings key cannot be empty")
)

// Backend reads and writes individual settings keys.
type Backend interface {
	// Read returns the raw value stored at key, or nil when the key (or the
	// whole document) does not exist.
	Read(ctx context.Context, key string) (json.RawMessage, error)

	// Write stores raw at key, replacing the document atomically.
	Write(ctx context.Context, key string, raw json.RawMessage) error
}
