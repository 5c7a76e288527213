package panel

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/projectdeck/internal/host"
)

// RedrawMsg asks the model to reload the deck.
type RedrawMsg struct{}

// ConfirmMsg asks the user a yes/no question. The answer is sent on Reply,
// which must be buffered.
type ConfirmMsg struct {
	Question string
	Reply    chan<- bool
}

// NotifyMsg is a message for the status line.
type NotifyMsg struct {
	Text  string
	Error bool
}

// Host connects the coordinator and the watch bridge to a running program.
// It implements mutation.Redrawer, host.Prompter and host.Notifier. Before
// Attach, redraws and notifications are dropped and dialogs are cancelled.
//
// Confirm blocks until the user answers, so it must only be called from a
// tea.Cmd goroutine, never from Update.
type Host struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewHost creates a detached host.
func NewHost() *Host {
	return &Host{}
}

// Attach routes messages to send, typically (*tea.Program).Send.
func (h *Host) Attach(send func(tea.Msg)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.send = send
}

// Detach drops further messages.
func (h *Host) Detach() {
	h.Attach(nil)
}

func (h *Host) post(msg tea.Msg) bool {
	h.mu.Lock()
	send := h.send
	h.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// RequestRedraw implements mutation.Redrawer.
func (h *Host) RequestRedraw() {
	h.post(RedrawMsg{})
}

// Confirm implements host.Prompter.
func (h *Host) Confirm(ctx context.Context, question string) (bool, error) {
	reply := make(chan bool, 1)
	if !h.post(ConfirmMsg{Question: question, Reply: reply}) {
		return false, host.ErrCancelled
	}
	select {
	case yes := <-reply:
		return yes, nil
	case <-ctx.Done():
		return false, host.ErrCancelled
	}
}

// PickFolder implements host.Prompter. The panel has no folder dialog.
func (h *Host) PickFolder(context.Context, string) (string, error) {
	return "", host.ErrCancelled
}

// Input implements host.Prompter. The panel has no text dialog.
func (h *Host) Input(context.Context, string, string) (string, error) {
	return "", host.ErrCancelled
}

// MultiSelect implements host.Prompter. The panel has no multi-select dialog.
func (h *Host) MultiSelect(context.Context, string, []host.Choice) ([]int, error) {
	return nil, host.ErrCancelled
}

// Info implements host.Notifier.
func (h *Host) Info(_ context.Context, msg string) {
	h.post(NotifyMsg{Text: msg})
}

// Error implements host.Notifier.
func (h *Host) Error(_ context.Context, msg string) {
	h.post(NotifyMsg{Text: msg, Error: true})
}
