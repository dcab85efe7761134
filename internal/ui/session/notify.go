package session

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/breathe/internal/breathing"
)

// Notifier carries events raised on other goroutines (controller ticks,
// playback failures, catalog reloads) into the bubbletea loop. Its methods
// never block; a pending state update is replaced by a newer one, and
// snapshots older than one already accepted are dropped.
type Notifier struct {
	mu     sync.Mutex
	latest breathing.State

	changes  chan breathing.State
	warnings chan error
	reloads  chan struct{}
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		changes:  make(chan breathing.State, 1),
		warnings: make(chan error, 8),
		reloads:  make(chan struct{}, 1),
	}
}

// OnChange is a breathing.ChangeCallback.
func (n *Notifier) OnChange(s breathing.State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if s.OlderThan(n.latest) {
		return
	}
	n.latest = s

	select {
	case n.changes <- s:
		return
	default:
	}
	select {
	case <-n.changes:
	default:
	}
	select {
	case n.changes <- s:
	default:
	}
}

// OnWarning queues a soft failure. Warnings beyond the buffer are dropped.
func (n *Notifier) OnWarning(err error) {
	select {
	case n.warnings <- err:
	default:
	}
}

// OnReload signals that the exercise catalog changed.
func (n *Notifier) OnReload() {
	select {
	case n.reloads <- struct{}{}:
	default:
	}
}

type (
	stateMsg   breathing.State
	warningMsg struct{ err error }
	reloadMsg  struct{}
)

// wait returns a command that blocks until the next event.
func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-n.changes:
			return stateMsg(s)
		case err := <-n.warnings:
			return warningMsg{err: err}
		case <-n.reloads:
			return reloadMsg{}
		}
	}
}
