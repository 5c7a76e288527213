package mutation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
	"github.com/fyrsmithlabs/projectdeck/internal/host"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/registry"
	"github.com/fyrsmithlabs/projectdeck/internal/scan"
	"github.com/fyrsmithlabs/projectdeck/internal/settings"
)

var errUnexpectedPrompt = errors.New("unexpected prompt")

// scripted is a Prompter driven by per-test hooks. A nil hook fails the
// call with errUnexpectedPrompt.
type scripted struct {
	mu    sync.Mutex
	calls []string

	pickFolder  func(title string) (string, error)
	input       func(prompt, def string) (string, error)
	confirm     func(question string) (bool, error)
	multiSelect func(choices []host.Choice) ([]int, error)
}

func (s *scripted) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *scripted) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *scripted) PickFolder(_ context.Context, title string) (string, error) {
	s.record("pickFolder")
	if s.pickFolder == nil {
		return "", errUnexpectedPrompt
	}
	return s.pickFolder(title)
}

func (s *scripted) Input(_ context.Context, prompt, def string) (string, error) {
	s.record("input")
	if s.input == nil {
		return "", errUnexpectedPrompt
	}
	return s.input(prompt, def)
}

func (s *scripted) Confirm(_ context.Context, question string) (bool, error) {
	s.record("confirm")
	if s.confirm == nil {
		return false, errUnexpectedPrompt
	}
	return s.confirm(question)
}

func (s *scripted) MultiSelect(_ context.Context, _ string, choices []host.Choice) ([]int, error) {
	s.record("multiSelect")
	if s.multiSelect == nil {
		return nil, errUnexpectedPrompt
	}
	return s.multiSelect(choices)
}

type notes struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (n *notes) Info(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, msg)
}

func (n *notes) Error(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

type redraws struct{ n atomic.Int32 }

func (r *redraws) RequestRedraw() { r.n.Add(1) }
func (r *redraws) Count() int     { return int(r.n.Load()) }

type launcher struct {
	paths []string
	err   error
}

func (l *launcher) Open(_ context.Context, path string) error {
	l.paths = append(l.paths, path)
	return l.err
}

func (l *launcher) Reveal(_ context.Context, path string) error {
	l.paths = append(l.paths, path)
	return l.err
}

type fixture struct {
	mem      *settings.Memory
	store    *registry.Store
	snap     *cache.Snapshot[project.Collection]
	prompter *scripted
	notes    *notes
	redraws  *redraws
	launcher *launcher
	metrics  *Metrics
	logger   *logging.TestLogger
	coord    *Coordinator
	found    []scan.Candidate
}

func newFixture(t *testing.T, seed ...project.Project) *fixture {
	t.Helper()
	f := &fixture{
		mem:      settings.NewMemory(),
		prompter: &scripted{},
		notes:    &notes{},
		redraws:  &redraws{},
		launcher: &launcher{},
		metrics:  NewMetrics(prometheus.NewRegistry()),
		logger:   logging.NewTestLogger(),
	}
	if len(seed) > 0 {
		raw, err := json.Marshal(seed)
		require.NoError(t, err)
		f.mem.Set(settings.DefaultProjectsKey, raw)
	}
	f.snap = cache.NewSnapshot[project.Collection]("snapshot", nil)
	f.store = registry.NewStore(f.mem, registry.WithSnapshot(f.snap), registry.WithLogger(f.logger.Logger))

	coord, err := New(Deps{
		Registry: f.store,
		Prompter: f.prompter,
		Notifier: f.notes,
		Redrawer: f.redraws,
		Opener:   f.launcher,
		Revealer: f.launcher,
		Discover: func(context.Context, string, scan.Options) ([]scan.Candidate, error) {
			return f.found, nil
		},
		Logger:    f.logger.Logger,
		Metrics:   f.metrics,
		ScanDepth: 3,
	})
	require.NoError(t, err)
	f.coord = coord
	return f
}

// stored decodes the raw persisted list into generic maps so tests can see
// absent versus null keys.
func (f *fixture) stored(t *testing.T) []map[string]any {
	t.Helper()
	raw := f.mem.Raw(settings.DefaultProjectsKey)
	if len(raw) == 0 {
		return nil
	}
	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func rec(id, name, path string) project.Project {
	return project.Project{ID: id, Name: name, Path: path}
}
