package project

import (
	"fmt"
	"slices"
)

// Collection is the ordered list of projects in the deck.
type Collection []Project

// Clone returns a copy that shares nothing with c.
func (c Collection) Clone() Collection {
	if c == nil {
		return Collection{}
	}
	return slices.Clone(c)
}

// IndexByID returns the position of the project with id, or -1.
func (c Collection) IndexByID(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(c, func(p Project) bool { return p.ID == id })
}

// IndexByPath returns the position of the project at path, or -1.
func (c Collection) IndexByPath(path string) int {
	if path == "" {
		return -1
	}
	return slices.IndexFunc(c, func(p Project) bool { return SamePath(p.Path, path) })
}

// ByID finds a project by ID.
func (c Collection) ByID(id string) (Project, bool) {
	if i := c.IndexByID(id); i >= 0 {
		return c[i], true
	}
	return Project{}, false
}

// ByPath finds a project by normalized path.
func (c Collection) ByPath(path string) (Project, bool) {
	if i := c.IndexByPath(path); i >= 0 {
		return c[i], true
	}
	return Project{}, false
}

// Resolve locates a project in two steps:
//  1. by id, when id is non-empty
//  2. by path, when path is non-empty (records addressed before IDs existed)
//
// It returns the index or -1.
func (c Collection) Resolve(id, path string) int {
	if i := c.IndexByID(id); i >= 0 {
		return i
	}
	return c.IndexByPath(path)
}

// IDs returns project IDs in order.
func (c Collection) IDs() []string {
	ids := make([]string, len(c))
	for i, p := range c {
		ids[i] = p.ID
	}
	return ids
}

// Without returns a copy of c with the project at index i removed.
func (c Collection) Without(i int) Collection {
	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:i]...)
	return append(out, c[i+1:]...)
}

// Validate checks every record and the uniqueness of IDs.
func (c Collection) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, p := range c {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("project %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// CheckIntegrity verifies required fields and ID uniqueness only. Optional
// field formats are not checked, so a hand-edited value in one record never
// blocks writing the others.
func (c Collection) CheckIntegrity() error {
	seen := make(map[string]struct{}, len(c))
	for i, p := range c {
		switch {
		case p.ID == "":
			return fmt.Errorf("project %d: %w", i, ErrEmptyProjectID)
		case p.Name == "":
			return fmt.Errorf("project %d: %w", i, ErrEmptyName)
		case p.Path == "":
			return fmt.Errorf("project %d: %w", i, ErrEmptyPath)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Reordered returns c arranged in the order of ids. ids must name every
// project exactly once.
func (c Collection) Reordered(ids []string) (Collection, error) {
	if len(ids) != len(c) {
		return nil, invalid("order", "got %d ids for %d projects", len(ids), len(c))
	}

	byID := make(map[string]Project, len(c))
	for _, p := range c {
		byID[p.ID] = p
	}

	out := make(Collection, 0, len(ids))
	used := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := used[id]; dup {
			return nil, invalid("order", "id %q listed more than once", id)
		}
		p, ok := byID[id]
		if !ok {
			return nil, invalid("order", "unknown id %q", id)
		}
		used[id] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// Equal reports whether both collections hold the same records in the same order.
func (c Collection) Equal(other Collection) bool {
	return slices.Equal(c, other)
}
