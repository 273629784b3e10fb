package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/kaito/types"
)

// Sink carries session notifications into the program. It never blocks the
// notifier; a full buffer drops the notification.
type Sink struct {
	ch chan types.Notification
}

// NewSink returns a sink with a small buffer.
func NewSink() *Sink {
	return &Sink{ch: make(chan types.Notification, 32)}
}

func (s *Sink) Notify(_ context.Context, _ string, n types.Notification) error {
	select {
	case s.ch <- n:
	default:
	}
	return nil
}

// noticeMsg is a notification that arrived outside a command, for example
// from a world tick.
type noticeMsg types.Notification

// wait returns a command that delivers the next notification.
func (s *Sink) wait() tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		return noticeMsg(<-s.ch)
	}
}
