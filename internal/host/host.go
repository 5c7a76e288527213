// Package host contains the collaborators the deck needs from its
// environment: dialogs, notifications, and launching external programs.
//
// The registry logic only sees the interfaces. Terminal implements the
// dialogs over plain line-based I/O; the panel package provides a TUI
// confirmation.
package host

import (
	"context"
	"errors"
)

// Errors reported by collaborators.
var (
	// ErrCancelled means the user dismissed a dialog.
	ErrCancelled = errors.New("cancelled")

	// ErrCollaborator wraps failures of external programs. They are
	// reported to the user but never abort registry logic.
	ErrCollaborator = errors.New("external command failed")
)

// Choice is one option of a multi-select dialog.
type Choice struct {
	Label  string
	Detail string
}

// Prompter shows dialogs. Every method returns ErrCancelled when the user
// dismisses the dialog.
type Prompter interface {
	// PickFolder asks for a folder path.
	PickFolder(ctx context.Context, title string) (string, error)

	// Input asks for a line of text. An empty answer returns def.
	Input(ctx context.Context, prompt, def string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)

	// MultiSelect lets the user pick a subset of choices and returns their
	// indexes in ascending order.
	MultiSelect(ctx context.Context, title string, choices []Choice) ([]int, error)
}

// Notifier shows non-blocking messages.
type Notifier interface {
	Info(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// Opener opens a project folder, typically in an editor.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Revealer shows a folder in the platform file browser.
type Revealer interface {
	Reveal(ctx context.Context, path string) error
}
