// Package notify fans player notifications out to sinks without ever
// blocking the game loop.
package notify

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/nathoo/kaito/types"
)

// Sink receives notifications for a player.
type Sink interface {
	Notify(ctx context.Context, wallet string, n types.Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, wallet string, n types.Notification) error

func (f SinkFunc) Notify(ctx context.Context, wallet string, n types.Notification) error {
	return f(ctx, wallet, n)
}

type delivery struct {
	wallet string
	note   types.Notification
}

// Dispatcher buffers notifications and forwards them from Run. Send drops a
// notification when the buffer is full.
type Dispatcher struct {
	queue   chan delivery
	sinks   []Sink
	logger  *slog.Logger
	dropped atomic.Int64
}

// NewDispatcher returns a dispatcher with the given buffer size.
func NewDispatcher(size int, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		queue:  make(chan delivery, size),
		sinks:  sinks,
		logger: logger,
	}
}

// Send enqueues notifications and returns how many were accepted.
func (d *Dispatcher) Send(wallet string, notes ...types.Notification) int {
	accepted := 0
	for _, n := range notes {
		select {
		case d.queue <- delivery{wallet: wallet, note: n}:
			accepted++
		default:
			d.dropped.Add(1)
		}
	}
	return accepted
}

// Dropped is the number of notifications lost to a full buffer.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Run delivers queued notifications until ctx ends. Sink errors are logged.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case del := <-d.queue:
			for _, s := range d.sinks {
				if err := s.Notify(ctx, del.wallet, del.note); err != nil {
					d.logger.WarnContext(ctx, "notification sink failed",
						"wallet", del.wallet, "kind", del.note.Kind, "error", err)
				}
			}
		}
	}
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Notify(ctx context.Context, wallet string, n types.Notification) error {
	s.Logger.InfoContext(ctx, "notification",
		"wallet", wallet, "kind", n.Kind, "title", n.Title, "body", n.Body, "at", n.At)
	return nil
}
