package mutation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
	"github.com/fyrsmithlabs/projectdeck/internal/host"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/sanitize"
	"github.com/fyrsmithlabs/projectdeck/internal/scan"
)

// Registry is the persisted collection the coordinator mutates.
type Registry interface {
	Load(ctx context.Context) (project.Collection, error)
	ReplaceAll(ctx context.Context, coll project.Collection) error
	Current(ctx context.Context) (project.Collection, error)
	Invalidate(reason cache.Reason)
	InvalidatePreferences(reason cache.Reason)
	SetFetchFavicons(ctx context.Context, on bool) error
}

// Redrawer is asked to re-render after a change. It must not block.
type Redrawer interface {
	RequestRedraw()
}

// RedrawFunc adapts a function to Redrawer.
type RedrawFunc func()

// RequestRedraw implements Redrawer.
func (f RedrawFunc) RequestRedraw() { f() }

// DiscoverFunc finds repository roots; scan.Discover in production.
type DiscoverFunc func(ctx context.Context, root string, opts scan.Options) ([]scan.Candidate, error)

// Deps are the coordinator's collaborators. Registry is required; a nil
// Prompter cancels every dialog, and nil Notifier or Redrawer do nothing.
type Deps struct {
	Registry Registry
	Prompter host.Prompter
	Notifier host.Notifier
	Redrawer Redrawer
	Opener   host.Opener
	Revealer host.Revealer
	Discover DiscoverFunc
	Logger   *logging.Logger
	Metrics  *Metrics

	// ScanDepth is used when a ScanRequest leaves MaxDepth at zero.
	ScanDepth int
}

// Coordinator runs deck commands.
type Coordinator struct {
	mu sync.Mutex // serializes commands

	registry  Registry
	prompter  host.Prompter
	notifier  host.Notifier
	redrawer  Redrawer
	opener    host.Opener
	revealer  host.Revealer
	discover  DiscoverFunc
	logger    *logging.Logger
	metrics   *Metrics
	scanDepth int
}

// New creates a coordinator.
func New(deps Deps) (*Coordinator, error) {
	if deps.Registry == nil {
		return nil, errors.New("mutation: registry is required")
	}
	c := &Coordinator{
		registry:  deps.Registry,
		prompter:  deps.Prompter,
		notifier:  deps.Notifier,
		redrawer:  deps.Redrawer,
		opener:    deps.Opener,
		revealer:  deps.Revealer,
		discover:  deps.Discover,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		scanDepth: deps.ScanDepth,
	}
	if c.prompter == nil {
		c.prompter = cancelAll{}
	}
	if c.notifier == nil {
		c.notifier = silent{}
	}
	if c.redrawer == nil {
		c.redrawer = RedrawFunc(func() {})
	}
	if c.discover == nil {
		c.discover = scan.Discover
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c, nil
}

// begin serializes the command and tags ctx with a fresh operation id.
func (c *Coordinator) begin(ctx context.Context, op string) (context.Context, func()) {
	c.mu.Lock()
	ctx = logging.WithCommand(ctx, op)
	ctx = logging.WithOperationID(ctx, uuid.NewString())
	return ctx, c.mu.Unlock
}

// commit writes coll and, only on success, invalidates the snapshot and
// requests one redraw.
func (c *Coordinator) commit(ctx context.Context, coll project.Collection) error {
	if err := c.registry.ReplaceAll(ctx, coll); err != nil {
		c.logger.Error(ctx, "failed to save projects", zap.Error(err))
		c.notifier.Error(ctx, fmt.Sprintf("Could not save projects: %v", err))
		return err
	}
	c.registry.Invalidate(cache.ReasonLocalWrite)
	c.redrawer.RequestRedraw()
	return nil
}

// AddRequest adds one folder. An empty Path opens the folder picker; an
// empty Name prompts with the folder name as default.
type AddRequest struct {
	Path string
	Name string
}

// AddResult reports an Add.
type AddResult struct {
	Outcome Outcome
	Project project.Project
}

// Add registers a new project. A path already in the deck is rejected,
// never overwritten.
func (c *Coordinator) Add(ctx context.Context, req AddRequest) (res AddResult, err error) {
	start := time.Now()
	ctx, done := c.begin(ctx, "add")
	defer done()
	defer func() { c.metrics.record("add", res.Outcome, err, start) }()

	path := strings.TrimSpace(req.Path)
	if path == "" {
		path, err = c.prompter.PickFolder(ctx, "Select a project folder")
		if errors.Is(err, host.ErrCancelled) {
			return AddResult{Outcome: OutcomeCancelled}, nil
		}
		if err != nil {
			return AddResult{Outcome: OutcomeFailed}, err
		}
	}
	if err := project.ValidatePath(path); err != nil {
		return AddResult{Outcome: OutcomeFailed}, err
	}
	path = filepath.Clean(path)

	coll, err := c.registry.Load(ctx)
	if err != nil {
		return AddResult{Outcome: OutcomeFailed}, err
	}
	if err := checkNewPath(coll, path); err != nil {
		return AddResult{Outcome: OutcomeFailed}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		def := filepath.Base(path)
		if base, err := sanitize.SafeBasename(path); err == nil {
			def = base
		}
		name, err = c.prompter.Input(ctx, "Project name", def)
		if errors.Is(err, host.ErrCancelled) {
			return AddResult{Outcome: OutcomeCancelled}, nil
		}
		if err != nil {
			return AddResult{Outcome: OutcomeFailed}, err
		}
		if name = strings.TrimSpace(name); name == "" {
			name = def
		}
	}

	p, err := project.NewProject(name, path)
	if err != nil {
		return AddResult{Outcome: OutcomeFailed}, err
	}

	// The prompt may have waited on the user; re-read before appending.
	coll, err = c.registry.Load(ctx)
	if err != nil {
		return AddResult{Outcome: OutcomeFailed}, err
	}
	if err := checkNewPath(coll, path); err != nil {
		return AddResult{Outcome: OutcomeFailed}, err
	}
	if coll.IndexByID(p.ID) >= 0 {
		return AddResult{Outcome: OutcomeFailed}, fmt.Errorf("%w: %w", project.ErrDuplicateID,
			&project.ValidationError{Field: "id", Reason: fmt.Sprintf("%s is already taken", p.ID)})
	}

	ctx = logging.WithProjectID(ctx, p.ID)
	if err := c.commit(ctx, append(coll, p)); err != nil {
		return AddResult{Outcome: OutcomeFailed}, err
	}

	c.logger.Info(ctx, "project added", zap.String("name", p.Name), zap.String("path", p.Path))
	c.notifier.Info(ctx, fmt.Sprintf("Added %q to the deck", p.Name))
	return AddResult{Outcome: OutcomeApplied, Project: p}, nil
}

func checkNewPath(coll project.Collection, path string) error {
	if existing, ok := coll.ByPath(path); ok {
		return fmt.Errorf("%w: %w", project.ErrDuplicatePath, &project.ValidationError{
			Field:  "path",
			Reason: fmt.Sprintf("%s is already in the deck as %q", path, existing.Name),
		})
	}
	return nil
}

// UpdateRequest changes fields of one project. The project is found by ID
// first, then by Path for records addressed before IDs existed.
type UpdateRequest struct {
	ID    string
	Path  string
	Patch project.Patch
}

// UpdateResult reports an Update.
type UpdateResult struct {
	Outcome Outcome
	Project project.Project

	// Changed names the fields whose value differed, e.g. "color".
	Changed []string
}

// Update applies a partial update. Only fields that differ from the stored
// record are written; a request that changes nothing writes nothing.
func (c *Coordinator) Update(ctx context.Context, req UpdateRequest) (res UpdateResult, err error) {
	start := time.Now()
	ctx, done := c.begin(ctx, "update")
	defer done()
	defer func() { c.metrics.record("update", res.Outcome, err, start) }()

	coll, err := c.registry.Load(ctx)
	if err != nil {
		return UpdateResult{Outcome: OutcomeFailed}, err
	}

	i := coll.Resolve(req.ID, req.Path)
	if i < 0 {
		c.logger.Debug(ctx, "update target not found", zap.String("project.id", req.ID), zap.String("path", req.Path))
		return UpdateResult{Outcome: OutcomeNotFound}, nil
	}
	cur := coll[i]
	ctx = logging.WithProjectID(ctx, cur.ID)

	next, changed, err := req.Patch.Apply(cur)
	if err != nil {
		return UpdateResult{Outcome: OutcomeFailed}, err
	}
	if len(changed) == 0 {
		return UpdateResult{Outcome: OutcomeUnchanged, Project: cur}, nil
	}
	if next.Path != cur.Path {
		for j, other := range coll {
			if j != i && project.SamePath(other.Path, next.Path) {
				return UpdateResult{Outcome: OutcomeFailed}, fmt.Errorf("%w: %w", project.ErrDuplicatePath, &project.ValidationError{
					Field:  "path",
					Reason: fmt.Sprintf("%s is already used by %q", next.Path, other.Name),
				})
			}
		}
	}

	out := coll.Clone()
	out[i] = next
	if err := c.commit(ctx, out); err != nil {
		return UpdateResult{Outcome: OutcomeFailed}, err
	}

	c.logger.Info(ctx, "project updated", zap.Strings("fields", changed))
	return UpdateResult{Outcome: OutcomeApplied, Project: next, Changed: changed}, nil
}

// Delete removes a project after confirmation. An unknown id returns
// OutcomeNotFound without prompting.
func (c *Coordinator) Delete(ctx context.Context, id string) (res Outcome, err error) {
	start := time.Now()
	ctx, done := c.begin(ctx, "delete")
	defer done()
	defer func() { c.metrics.record("delete", res, err, start) }()

	coll, err := c.registry.Load(ctx)
	if err != nil {
		return OutcomeFailed, err
	}
	target, ok := coll.ByID(id)
	if !ok {
		return OutcomeNotFound, nil
	}
	ctx = logging.WithProjectID(ctx, id)

	yes, err := c.prompter.Confirm(ctx, fmt.Sprintf("Remove %q (%s) from the deck?", target.Name, target.Path))
	if errors.Is(err, host.ErrCancelled) || (err == nil && !yes) {
		return OutcomeCancelled, nil
	}
	if err != nil {
		return OutcomeFailed, err
	}

	// Re-read: the record may have changed or vanished while we waited.
	coll, err = c.registry.Load(ctx)
	if err != nil {
		return OutcomeFailed, err
	}
	i := coll.IndexByID(id)
	if i < 0 {
		return OutcomeNotFound, nil
	}
	if err := c.commit(ctx, coll.Without(i)); err != nil {
		return OutcomeFailed, err
	}

	c.logger.Info(ctx, "project deleted", zap.String("name", target.Name))
	return OutcomeDeleted, nil
}

// Reorder arranges the deck in the order of ids, which must name every
// project exactly once.
func (c *Coordinator) Reorder(ctx context.Context, ids []string) (res Outcome, err error) {
	start := time.Now()
	ctx, done := c.begin(ctx, "reorder")
	defer done()
	defer func() { c.metrics.record("reorder", res, err, start) }()

	coll, err := c.registry.Load(ctx)
	if err != nil {
		return OutcomeFailed, err
	}
	return c.reorder(ctx, coll, ids)
}

func (c *Coordinator) reorder(ctx context.Context, coll project.Collection, ids []string) (Outcome, error) {
	next, err := coll.Reordered(ids)
	if err != nil {
		return OutcomeFailed, err
	}
	if next.Equal(coll) {
		return OutcomeUnchanged, nil
	}
	if err := c.commit(ctx, next); err != nil {
		return OutcomeFailed, err
	}
	c.logger.Info(ctx, "projects reordered", zap.Int("count", len(next)))
	return OutcomeApplied, nil
}

// Move shifts one project by delta positions, clamped to the ends of the
// deck.
func (c *Coordinator) Move(ctx context.Context, id string, delta int) (res Outcome, err error) {
	start := time.Now()
	ctx, done := c.begin(ctx, "move")
	defer done()
	defer func() { c.metrics.record("move", res, err, start) }()

	coll, err := c.registry.Load(ctx)
	if err != nil {
		return OutcomeFailed, err
	}
	from := coll.IndexByID(id)
	if from < 0 {
		return OutcomeNotFound, nil
	}
	to := max(0, min(len(coll)-1, from+delta))
	if to == from {
		return OutcomeUnchanged, nil
	}

	ids := coll.IDs()
	moved := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]string{moved}, ids[to:]...)...)
	return c.reorder(logging.WithProjectID(ctx, id), coll, ids)
}

// ScanRequest imports repositories found below Root. An empty Root opens
// the folder picker.
type ScanRequest struct {
	Root     string
	MaxDepth int
}

// ImportResult reports a ScanAndImport.
type ImportResult struct {
	Outcome Outcome
	Added   []project.Project

	// Found is the number of discovered repositories not yet in the deck.
	Found int
}

// ScanAndImport discovers repositories, lets the user pick some, and adds
// them with a single write.
func (c *Coordinator) ScanAndImport(ctx context.Context, req ScanRequest) (res ImportResult, err error) {
	start := time.Now()
	ctx, done := c.begin(ctx, "scan")
	defer done()
	defer func() { c.metrics.record("scan", res.Outcome, err, start) }()

	root := strings.TrimSpace(req.Root)
	if root == "" {
		root, err = c.prompter.PickFolder(ctx, "Select a folder to scan")
		if errors.Is(err, host.ErrCancelled) {
			return ImportResult{Outcome: OutcomeCancelled}, nil
		}
		if err != nil {
			return ImportResult{Outcome: OutcomeFailed}, err
		}
	}
	depth := req.MaxDepth
	if depth <= 0 {
		depth = c.scanDepth
	}

	found, err := c.discover(ctx, root, scan.Options{MaxDepth: depth, Logger: c.logger})
	if err != nil {
		return ImportResult{Outcome: OutcomeFailed}, fmt.Errorf("scan failed: %w", err)
	}

	coll, err := c.registry.Load(ctx)
	if err != nil {
		return ImportResult{Outcome: OutcomeFailed}, err
	}
	fresh := make([]scan.Candidate, 0, len(found))
	for _, cand := range found {
		if coll.IndexByPath(cand.Path) < 0 {
			fresh = append(fresh, cand)
		}
	}
	if len(fresh) == 0 {
		c.notifier.Info(ctx, "No new projects found")
		return ImportResult{Outcome: OutcomeUnchanged}, nil
	}

	choices := make([]host.Choice, len(fresh))
	for i, cand := range fresh {
		detail := cand.Path
		if cand.Branch != "" {
			detail += " @ " + cand.Branch
		}
		choices[i] = host.Choice{Label: cand.Name, Detail: detail}
	}
	picked, err := c.prompter.MultiSelect(ctx, fmt.Sprintf("Import projects (%d found)", len(fresh)), choices)
	if errors.Is(err, host.ErrCancelled) || (err == nil && len(picked) == 0) {
		return ImportResult{Outcome: OutcomeCancelled, Found: len(fresh)}, nil
	}
	if err != nil {
		return ImportResult{Outcome: OutcomeFailed}, err
	}

	// Re-read after the dialog, then append the whole batch.
	coll, err = c.registry.Load(ctx)
	if err != nil {
		return ImportResult{Outcome: OutcomeFailed}, err
	}
	next := coll.Clone()
	var added []project.Project
	for _, i := range picked {
		if i < 0 || i >= len(fresh) {
			continue
		}
		cand := fresh[i]
		if next.IndexByPath(cand.Path) >= 0 {
			continue
		}
		p, err := project.NewProject(cand.Name, cand.Path)
		if err != nil {
			c.logger.Warn(ctx, "skipping discovered folder", zap.String("path", cand.Path), zap.Error(err))
			continue
		}
		if next.IndexByID(p.ID) >= 0 {
			c.logger.Warn(ctx, "skipping discovered folder with colliding id", zap.String("path", cand.Path))
			continue
		}
		next = append(next, p)
		added = append(added, p)
	}
	if len(added) == 0 {
		return ImportResult{Outcome: OutcomeUnchanged, Found: len(fresh)}, nil
	}

	if err := c.commit(ctx, next); err != nil {
		return ImportResult{Outcome: OutcomeFailed}, err
	}

	c.logger.Info(ctx, "projects imported", zap.Int("count", len(added)), zap.String("root", root))
	c.notifier.Info(ctx, fmt.Sprintf("Imported %d project(s)", len(added)))
	return ImportResult{Outcome: OutcomeApplied, Added: added, Found: len(fresh)}, nil
}

// Open opens the project folder with the configured opener.
func (c *Coordinator) Open(ctx context.Context, id string) (Outcome, error) {
	return c.launch(ctx, "open", id, func(ctx context.Context, path string) error {
		if c.opener == nil {
			return fmt.Errorf("%w: no opener configured", host.ErrCollaborator)
		}
		return c.opener.Open(ctx, path)
	})
}

// Reveal shows the project folder in the file browser.
func (c *Coordinator) Reveal(ctx context.Context, id string) (Outcome, error) {
	return c.launch(ctx, "reveal", id, func(ctx context.Context, path string) error {
		if c.revealer == nil {
			return fmt.Errorf("%w: no file browser configured", host.ErrCollaborator)
		}
		return c.revealer.Reveal(ctx, path)
	})
}

// launch resolves id through the snapshot and runs fn on its path. Failures
// are logged and notified; the deck is not touched.
func (c *Coordinator) launch(ctx context.Context, op, id string, fn func(context.Context, string) error) (res Outcome, err error) {
	start := time.Now()
	defer func() { c.metrics.record(op, res, err, start) }()
	ctx = logging.WithCommand(ctx, op)
	ctx = logging.WithOperationID(ctx, uuid.NewString())

	coll, err := c.registry.Current(ctx)
	if err != nil {
		return OutcomeFailed, err
	}
	p, ok := coll.ByID(id)
	if !ok {
		return OutcomeNotFound, nil
	}
	ctx = logging.WithProjectID(ctx, id)

	if ferr := fn(ctx, p.Path); ferr != nil {
		if !errors.Is(ferr, host.ErrCollaborator) {
			ferr = fmt.Errorf("%w: %w", host.ErrCollaborator, ferr)
		}
		c.logger.Warn(ctx, "external command failed", zap.Error(ferr))
		c.notifier.Error(ctx, fmt.Sprintf("Could not %s %q: %v", op, p.Name, ferr))
		return OutcomeFailed, ferr
	}
	return OutcomeApplied, nil
}

// SetFetchFavicons stores the favicon preference, discards the cached
// preference and redraws. The project snapshot stays valid.
func (c *Coordinator) SetFetchFavicons(ctx context.Context, on bool) (res Outcome, err error) {
	start := time.Now()
	ctx, done := c.begin(ctx, "favicons")
	defer done()
	defer func() { c.metrics.record("favicons", res, err, start) }()

	if err := c.registry.SetFetchFavicons(ctx, on); err != nil {
		c.logger.Error(ctx, "failed to save favicon preference", zap.Error(err))
		c.notifier.Error(ctx, fmt.Sprintf("Could not save favicon preference: %v", err))
		return OutcomeFailed, err
	}
	c.registry.InvalidatePreferences(cache.ReasonLocalWrite)
	c.redrawer.RequestRedraw()
	return OutcomeApplied, nil
}

// Refresh discards both caches on user request and redraws.
func (c *Coordinator) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Invalidate(cache.ReasonManual)
	c.registry.InvalidatePreferences(cache.ReasonManual)
	c.redrawer.RequestRedraw()
}

type cancelAll struct{}

func (cancelAll) PickFolder(context.Context, string) (string, error) { return "", host.ErrCancelled }
func (cancelAll) Input(context.Context, string, string) (string, error) {
	return "", host.ErrCancelled
}
func (cancelAll) Confirm(context.Context, string) (bool, error) { return false, host.ErrCancelled }
func (cancelAll) MultiSelect(context.Context, string, []host.Choice) ([]int, error) {
	return nil, host.ErrCancelled
}

type silent struct{}

func (silent) Info(context.Context, string)  {}
func (silent) Error(context.Context, string) {}
