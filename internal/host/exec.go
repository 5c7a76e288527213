package host

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fyrsmithlabs/projectdeck/internal/sanitize"
)

// starter launches a process without waiting for it to exit.
type starter func(name string, args ...string) error

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child in the background; its exit status does not matter.
	go func() { _ = cmd.Wait() }()
	return nil
}

// CommandOpener opens folders with a configured command, e.g. "code" or
// "zed --new-window". The command is split on whitespace; the folder path
// is appended as the last argument.
type CommandOpener struct {
	command []string
	start   starter
}

// NewCommandOpener creates an opener for command.
func NewCommandOpener(command string) (*CommandOpener, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty open command", ErrCollaborator)
	}
	return &CommandOpener{command: fields, start: startDetached}, nil
}

// Open implements Opener.
func (o *CommandOpener) Open(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := sanitize.Path(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCollaborator, err)
	}
	args := append(append([]string{}, o.command[1:]...), clean)
	if err := o.start(o.command[0], args...); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCollaborator, o.command[0], err)
	}
	return nil
}

// FileBrowser reveals folders with the platform file browser.
type FileBrowser struct {
	goos  string
	start starter
}

// NewFileBrowser creates a revealer for the running platform.
func NewFileBrowser() *FileBrowser {
	return &FileBrowser{goos: runtime.GOOS, start: startDetached}
}

// Reveal implements Revealer.
func (b *FileBrowser) Reveal(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := sanitize.Path(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCollaborator, err)
	}
	name := browserCommand(b.goos)
	if err := b.start(name, clean); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCollaborator, name, err)
	}
	return nil
}

func browserCommand(goos string) string {
	switch goos {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}
