package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Terminal implements Prompter and Notifier over line-based I/O.
//
// End of input cancels the dialog, as does answering "q" to a selection.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
	err io.Writer

	// AssumeYes answers every confirmation with yes without reading input.
	AssumeYes bool
}

// NewTerminal creates a terminal. Dialogs write to out, notifications to errOut.
func NewTerminal(in io.Reader, out, errOut io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, err: errOut}
}

// readLine returns the next trimmed line. io.EOF without data maps to ErrCancelled.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := t.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		if err == io.EOF {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// PickFolder implements Prompter.
func (t *Terminal) PickFolder(ctx context.Context, title string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "%s: ", title)
	path, err := t.readLine(ctx)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", ErrCancelled
	}
	return path, nil
}

// Input implements Prompter.
func (t *Terminal) Input(ctx context.Context, prompt, def string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if def != "" {
		fmt.Fprintf(t.out, "%s [%s]: ", prompt, def)
	} else {
		fmt.Fprintf(t.out, "%s: ", prompt)
	}
	answer, err := t.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm implements Prompter. Only "y" and "yes" confirm.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.AssumeYes {
		return true, nil
	}
	fmt.Fprintf(t.out, "%s [y/N]: ", question)
	answer, err := t.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// MultiSelect implements Prompter. The answer is a list of 1-based numbers
// separated by spaces or commas, "a" for all, or "q" (or nothing) to cancel.
func (t *Terminal) MultiSelect(ctx context.Context, title string, choices []Choice) ([]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(choices) == 0 {
		return nil, ErrCancelled
	}

	fmt.Fprintln(t.out, title)
	for i, c := range choices {
		if c.Detail != "" {
			fmt.Fprintf(t.out, "  %2d) %s  (%s)\n", i+1, c.Label, c.Detail)
		} else {
			fmt.Fprintf(t.out, "  %2d) %s\n", i+1, c.Label)
		}
	}

	for {
		fmt.Fprint(t.out, "Select (numbers, a = all, q = cancel): ")
		answer, err := t.readLine(ctx)
		if err != nil {
			return nil, err
		}
		picked, err := parseSelection(answer, len(choices))
		if err == nil {
			return picked, nil
		}
		if err == ErrCancelled {
			return nil, err
		}
		fmt.Fprintln(t.out, err)
	}
}

func parseSelection(answer string, n int) ([]int, error) {
	switch strings.ToLower(answer) {
	case "", "q":
		return nil, ErrCancelled
	case "a", "all":
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	seen := make(map[int]bool)
	for _, f := range strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == ' ' }) {
		i, err := strconv.Atoi(f)
		if err != nil || i < 1 || i > n {
			return nil, fmt.Errorf("invalid choice %q (1-%d)", f, n)
		}
		seen[i-1] = true
	}
	picked := make([]int, 0, len(seen))
	for i := range seen {
		picked = append(picked, i)
	}
	sort.Ints(picked)
	return picked, nil
}

// Info implements Notifier.
func (t *Terminal) Info(_ context.Context, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.err, msg)
}

// Error implements Notifier.
func (t *Terminal) Error(_ context.Context, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.err, "error: "+msg)
}
