package project

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
)

// Common errors.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrDuplicatePath   = errors.New("project path already in the deck")
	ErrDuplicateID     = errors.New("project id already in the deck")
	ErrValidation      = errors.New("invalid project")
	ErrEmptyProjectID  = errors.New("project ID cannot be empty")
	ErrEmptyName       = errors.New("project name cannot be empty")
	ErrEmptyPath       = errors.New("project path cannot be empty")
)

// ValidationError describes a rejected field value. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// colorPattern accepts #rgb and #rrggbb.
var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Project is one entry in the deck.
type Project struct {
	// ID is assigned at creation and never changes.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Path is the absolute folder location.
	Path string `json:"path"`

	// Color is a hex color; Null means "use the theme default".
	Color Nullable `json:"color,omitzero"`

	ProductionURL Nullable `json:"productionUrl,omitzero"`
	StagingURL    Nullable `json:"stagingUrl,omitzero"`
	DevURL        Nullable `json:"devUrl,omitzero"`
	ManagementURL Nullable `json:"managementUrl,omitzero"`
}

// NewProject creates a project with a freshly derived ID.
func NewProject(name, path string) (Project, error) {
	if name == "" {
		return Project{}, ErrEmptyName
	}
	if path == "" {
		return Project{}, ErrEmptyPath
	}
	if err := ValidatePath(path); err != nil {
		return Project{}, err
	}

	return Project{
		ID:   Identify(name, path),
		Name: name,
		Path: path,
	}, nil
}

// Validate checks the required fields and the format of optional ones.
func (p Project) Validate() error {
	if p.ID == "" {
		return ErrEmptyProjectID
	}
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Path == "" {
		return ErrEmptyPath
	}
	if err := ValidateColor(p.Color); err != nil {
		return err
	}
	for _, u := range p.urls() {
		if err := ValidateURL(u.name, u.value); err != nil {
			return err
		}
	}
	return nil
}

type namedURL struct {
	name  string
	value Nullable
}

func (p Project) urls() []namedURL {
	return []namedURL{
		{"productionUrl", p.ProductionURL},
		{"stagingUrl", p.StagingURL},
		{"devUrl", p.DevURL},
		{"managementUrl", p.ManagementURL},
	}
}

// ValidatePath requires an absolute path.
func ValidatePath(path string) error {
	if path == "" {
		return invalid("path", "must not be empty")
	}
	if !filepath.IsAbs(path) && !isSlashAbs(path) {
		return invalid("path", "%q is not absolute", path)
	}
	return nil
}

// isSlashAbs accepts forward-slash absolute paths on every platform so that
// records written on one OS still validate on another.
func isSlashAbs(path string) bool {
	return len(path) > 0 && (path[0] == '/' || path[0] == '\\')
}

// ValidateColor accepts unset, null and #rgb / #rrggbb values.
func ValidateColor(c Nullable) error {
	v, ok := c.Get()
	if !ok {
		return nil
	}
	if !colorPattern.MatchString(v) {
		return invalid("color", "%q is not a hex color", v)
	}
	return nil
}

// ValidateURL accepts unset, null and absolute URLs with a scheme and host.
func ValidateURL(field string, n Nullable) error {
	v, ok := n.Get()
	if !ok {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil {
		return invalid(field, "%v", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return invalid(field, "%q is not an absolute URL", v)
	}
	return nil
}
