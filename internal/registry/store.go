package registry

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/settings"
)

// ErrPersistence wraps every failure to write the collection.
var ErrPersistence = errors.New("failed to persist projects")

// SnapshotCache is the cache the Store serves reads from.
type SnapshotCache interface {
	Get(ctx context.Context, load func(context.Context) (project.Collection, error)) (project.Collection, error)
	Invalidate(reason cache.Reason)
	Valid() bool
}

// PreferencesCache caches the favicon preference between redraws.
type PreferencesCache interface {
	Get(ctx context.Context, load func(context.Context) (bool, error)) (bool, error)
	Invalidate(reason cache.Reason)
	Valid() bool
}

// Digests fingerprints the stored values the deck caches.
type Digests struct {
	Projects string
	Favicons string
}

// Store manages the project collection in a settings backend.
type Store struct {
	backend     settings.Backend
	projectsKey string
	faviconsKey string
	snapshot    SnapshotCache
	preferences PreferencesCache
	logger      *logging.Logger

	mu      sync.Mutex
	digests Digests // values the caches reflect or this store last wrote
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeys overrides the settings keys.
func WithKeys(projectsKey, faviconsKey string) StoreOption {
	return func(s *Store) {
		if projectsKey != "" {
			s.projectsKey = projectsKey
		}
		if faviconsKey != "" {
			s.faviconsKey = faviconsKey
		}
	}
}

// WithSnapshot injects the snapshot cache, typically one built with the
// process metrics.
func WithSnapshot(snap SnapshotCache) StoreOption {
	return func(s *Store) {
		if snap != nil {
			s.snapshot = snap
		}
	}
}

// WithPreferences injects the cache for the favicon preference.
func WithPreferences(prefs PreferencesCache) StoreOption {
	return func(s *Store) {
		if prefs != nil {
			s.preferences = prefs
		}
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(l *logging.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store over backend.
func NewStore(backend settings.Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend:     backend,
		projectsKey: settings.DefaultProjectsKey,
		faviconsKey: settings.DefaultFaviconsKey,
		snapshot:    cache.NewSnapshot[project.Collection]("snapshot", nil),
		preferences: cache.NewSnapshot[bool]("preferences", nil),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProjectsKey returns the settings key holding the collection.
func (s *Store) ProjectsKey() string {
	return s.projectsKey
}

// Load reads the collection fresh from the backend, bypassing the snapshot.
//
// A missing or null value is an empty collection. Individual entries are
// decoded leniently: corrupt entries and entries without a usable path are
// skipped, a missing name defaults to the folder name, a missing ID is
// derived, and a duplicate ID is re-derived from the entry's content (and
// the entry skipped if that still collides). A value that is not a JSON
// array is settings.ErrCorrupted.
func (s *Store) Load(ctx context.Context) (project.Collection, error) {
	coll, _, err := s.read(ctx)
	return coll, err
}

func (s *Store) read(ctx context.Context) (project.Collection, string, error) {
	raw, err := s.backend.Read(ctx, s.projectsKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read projects: %w", err)
	}
	coll, err := s.decode(ctx, raw)
	if err != nil {
		return nil, "", err
	}
	return coll, DigestRaw(raw), nil
}

func (s *Store) decode(ctx context.Context, raw json.RawMessage) (project.Collection, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return project.Collection{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s is not a list: %v", settings.ErrCorrupted, s.projectsKey, err)
	}

	coll := make(project.Collection, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		var p project.Project
		if err := json.Unmarshal(entry, &p); err != nil {
			s.logger.Warn(ctx, "skipping corrupt project entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		if project.ValidatePath(p.Path) != nil {
			s.logger.Warn(ctx, "skipping project entry without usable path", zap.Int("index", i))
			continue
		}
		if strings.TrimSpace(p.Name) == "" {
			p.Name = path.Base(strings.ReplaceAll(p.Path, `\`, "/"))
		}
		if p.ID == "" {
			p.ID = project.Identify(p.Name, p.Path)
		}
		if _, dup := seen[p.ID]; dup {
			derived := project.Identify(p.Name, p.Path)
			if _, still := seen[derived]; still {
				s.logger.Warn(ctx, "skipping project entry with duplicate id",
					zap.Int("index", i), zap.String("project.id", p.ID))
				continue
			}
			s.logger.Warn(ctx, "re-derived duplicate project id",
				zap.Int("index", i), zap.String("old", p.ID), zap.String("new", derived))
			p.ID = derived
		}
		seen[p.ID] = struct{}{}
		coll = append(coll, p)
	}
	return coll, nil
}

// ReplaceAll validates coll and writes it as the whole collection. On
// failure the error wraps ErrPersistence and neither the backend value nor
// the snapshot is modified.
func (s *Store) ReplaceAll(ctx context.Context, coll project.Collection) error {
	if err := coll.CheckIntegrity(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if coll == nil {
		coll = project.Collection{}
	}
	raw, err := json.Marshal(coll)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	// Holding mu across the write keeps a watcher that already sees the new
	// value from reading the old digest.
	s.mu.Lock()
	if err := s.backend.Write(ctx, s.projectsKey, raw); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.digests.Projects = DigestRaw(raw)
	s.mu.Unlock()

	s.logger.Debug(ctx, "projects written", zap.Int("count", len(coll)))
	return nil
}

// Current returns the snapshot, loading it only when it is invalid.
func (s *Store) Current(ctx context.Context) (project.Collection, error) {
	return s.snapshot.Get(ctx, s.loadSnapshot)
}

func (s *Store) loadSnapshot(ctx context.Context) (project.Collection, error) {
	coll, digest, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.digests.Projects = digest
	s.mu.Unlock()
	s.logger.Trace(ctx, "snapshot loaded", zap.Int("count", len(coll)))
	return coll, nil
}

// FindByID looks id up in the snapshot.
func (s *Store) FindByID(ctx context.Context, id string) (project.Project, error) {
	coll, err := s.Current(ctx)
	if err != nil {
		return project.Project{}, err
	}
	p, ok := coll.ByID(id)
	if !ok {
		return project.Project{}, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	return p, nil
}

// FindByPath looks a project up by normalized path in the snapshot.
func (s *Store) FindByPath(ctx context.Context, p string) (project.Project, error) {
	coll, err := s.Current(ctx)
	if err != nil {
		return project.Project{}, err
	}
	found, ok := coll.ByPath(p)
	if !ok {
		return project.Project{}, fmt.Errorf("%w: %s", project.ErrProjectNotFound, p)
	}
	return found, nil
}

// Resolve looks a project up by id, then by path.
func (s *Store) Resolve(ctx context.Context, id, p string) (project.Project, error) {
	coll, err := s.Current(ctx)
	if err != nil {
		return project.Project{}, err
	}
	i := coll.Resolve(id, p)
	if i < 0 {
		return project.Project{}, project.ErrProjectNotFound
	}
	return coll[i], nil
}

// Invalidate discards the project snapshot. The favicon preference is
// cached separately; see InvalidatePreferences.
func (s *Store) Invalidate(reason cache.Reason) {
	s.snapshot.Invalidate(reason)
}

// InvalidatePreferences discards the cached favicon preference.
func (s *Store) InvalidatePreferences(reason cache.Reason) {
	s.preferences.Invalidate(reason)
}

// Digest returns the digest of the projects value last written by this
// store or last loaded into the snapshot.
func (s *Store) Digest() string {
	return s.Digests().Projects
}

// Digests returns the digests of the values last written by this store or
// last loaded into its caches.
func (s *Store) Digests() Digests {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.digests
}

// ReadDigest reads the projects value from the backend and returns its
// digest without decoding it.
func (s *Store) ReadDigest(ctx context.Context) (string, error) {
	raw, err := s.backend.Read(ctx, s.projectsKey)
	if err != nil {
		return "", err
	}
	return DigestRaw(raw), nil
}

// ReadDigests reads every cached value from the backend and returns their
// digests.
func (s *Store) ReadDigests(ctx context.Context) (Digests, error) {
	projects, err := s.ReadDigest(ctx)
	if err != nil {
		return Digests{}, err
	}
	raw, err := s.backend.Read(ctx, s.faviconsKey)
	if err != nil {
		return Digests{}, err
	}
	return Digests{Projects: projects, Favicons: DigestRaw(raw)}, nil
}

// FetchFavicons reports the favicon preference, reading the backend only
// when the cached value is invalid. Unset or unreadable values count as off.
func (s *Store) FetchFavicons(ctx context.Context) bool {
	on, err := s.preferences.Get(ctx, s.loadFavicons)
	if err != nil {
		s.logger.Warn(ctx, "failed to read favicon preference", zap.Error(err))
		return false
	}
	return on
}

func (s *Store) loadFavicons(ctx context.Context) (bool, error) {
	raw, err := s.backend.Read(ctx, s.faviconsKey)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	s.digests.Favicons = DigestRaw(raw)
	s.mu.Unlock()

	if len(bytes.TrimSpace(raw)) == 0 {
		return false, nil
	}
	var on bool
	if err := json.Unmarshal(raw, &on); err != nil {
		s.logger.Warn(ctx, "ignoring non-boolean favicon preference", zap.Error(err))
		return false, nil
	}
	return on, nil
}

// SetFetchFavicons persists the favicon preference. The cached value is
// left alone; callers invalidate it with InvalidatePreferences.
func (s *Store) SetFetchFavicons(ctx context.Context, on bool) error {
	raw, _ := json.Marshal(on)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Write(ctx, s.faviconsKey, raw); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.digests.Favicons = DigestRaw(raw)
	return nil
}

// DigestRaw returns a stable digest of a JSON value. Formatting differences
// do not change the digest; a missing value digests to "".
func DigestRaw(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		buf.Reset()
		buf.Write(trimmed)
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
