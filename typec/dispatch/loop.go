package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardnew/typecd/metrics"
	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec"
	"github.com/ardnew/typecd/typec/uevent"
)

// StopTimeout bounds how long [Loop.Stop] waits for the goroutine to exit.
const StopTimeout = 2 * time.Second

// Receive failure handling. Socket errors such as ENOBUFS are retried after
// ReceiveRetryDelay; the loop exits after MaxReceiveFailures in a row.
const (
	ReceiveRetryDelay  = 50 * time.Millisecond
	MaxReceiveFailures = 8
)

// Receiver delivers uevent datagrams. Receive blocks until a datagram
// arrives or Interrupt is called, in which case it returns
// [pkg.ErrInterrupted].
type Receiver interface {
	Receive() ([]byte, error)
	Interrupt() error
	Close() error
}

// Refresher rebuilds and publishes the port status.
type Refresher interface {
	Refresh() typec.Snapshot
}

// Resetter returns disconnected ports to dual-role when no switch is in
// flight.
type Resetter interface {
	ResetDisconnected(typec.Snapshot) bool
}

// OverheatReporter is told when the port cooling device changes state.
type OverheatReporter interface {
	Report()
}

// Handlers are the collaborators a [Loop] routes records to. Overheat and
// Metrics may be nil.
type Handlers struct {
	Sync      *typec.Sync
	Refresher Refresher
	Resetter  Resetter
	Overheat  OverheatReporter
	Metrics   *metrics.Metrics
}

// Loop runs the uevent dispatch goroutine.
type Loop struct {
	classifier *Classifier
	h          Handlers

	mu     sync.Mutex
	rx     Receiver
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop creates a stopped loop.
func NewLoop(c *Classifier, h Handlers) *Loop {
	return &Loop{classifier: c, h: h}
}

// Start takes ownership of rx and starts the dispatch goroutine. The
// receiver is closed when the goroutine exits. Start fails while a previous
// goroutine is still alive, including one that did not stop in time.
func (l *Loop) Start(ctx context.Context, rx Receiver) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != nil {
		select {
		case <-l.done:
			// exited on its own
			l.cancel()
		default:
			return pkg.ErrAlreadyRunning
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	l.rx = rx
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx, rx, l.done)

	pkg.LogInfo(pkg.ComponentDispatch, "dispatch loop started")
	return nil
}

// Running reports whether the goroutine is alive.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// Stop cancels the loop, wakes its receiver and waits up to [StopTimeout]
// for the goroutine to exit. After [pkg.ErrStopTimeout] the loop still
// counts as running and Stop may be called again.
func (l *Loop) Stop() error {
	l.mu.Lock()
	rx, cancel, done := l.rx, l.cancel, l.done
	l.mu.Unlock()

	if done == nil {
		return pkg.ErrNotRunning
	}

	cancel()
	if err := rx.Interrupt(); err != nil && !errors.Is(err, pkg.ErrClosed) {
		pkg.LogWarn(pkg.ComponentDispatch, "interrupt failed", "err", err)
	}

	t := time.NewTimer(StopTimeout)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		pkg.LogError(pkg.ComponentDispatch, "dispatch loop did not stop", "timeout", StopTimeout)
		return pkg.ErrStopTimeout
	}

	l.mu.Lock()
	if l.done == done {
		l.rx, l.cancel, l.done = nil, nil, nil
	}
	l.mu.Unlock()

	pkg.LogInfo(pkg.ComponentDispatch, "dispatch loop stopped")
	return nil
}

func (l *Loop) run(ctx context.Context, rx Receiver, done chan struct{}) {
	defer close(done)
	defer rx.Close()

	failures := 0
	for ctx.Err() == nil {
		data, err := rx.Receive()
		if ctx.Err() != nil {
			return
		}
		switch {
		case err == nil:
			failures = 0
			l.handle(ctx, data)
		case errors.Is(err, pkg.ErrInterrupted):
		case errors.Is(err, pkg.ErrOverflow), errors.Is(err, pkg.ErrForeignSender):
			pkg.LogDebug(pkg.ComponentDispatch, "datagram discarded", "err", err)
		case errors.Is(err, pkg.ErrClosed), errors.Is(err, pkg.ErrWaitFailed):
			pkg.LogError(pkg.ComponentDispatch, "receiver unusable, dispatch loop exiting", "err", err)
			return
		default:
			failures++
			if failures >= MaxReceiveFailures {
				pkg.LogError(pkg.ComponentDispatch, "receive keeps failing, dispatch loop exiting",
					"failures", failures, "err", err)
				return
			}
			pkg.LogWarn(pkg.ComponentDispatch, "receive failed", "err", err, "failures", failures)
			if !sleepCtx(ctx, ReceiveRetryDelay) {
				return
			}
		}
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// handle processes one datagram.
func (l *Loop) handle(ctx context.Context, data []byte) {
	for _, rec := range uevent.Parse(data) {
		if ctx.Err() != nil {
			return
		}

		action := l.classifier.Classify(rec)
		if action != ActionNone {
			l.h.Metrics.ObserveRecord(action.String())
		}

		switch action {
		case ActionPartnerAdded:
			pkg.LogInfo(pkg.ComponentDispatch, "partner added", "record", string(rec))
			l.h.Sync.SignalPartner()

		case ActionRefresh:
			key, value, _ := rec.KeyValue()
			pkg.LogDebug(pkg.ComponentDispatch, "status change", "key", key, "value", value)
			snap := l.h.Refresher.Refresh()
			if l.h.Resetter != nil {
				l.h.Resetter.ResetDisconnected(snap)
			}
			return

		case ActionOverheat:
			pkg.LogDebug(pkg.ComponentDispatch, "cooling device update")
			if l.h.Overheat != nil {
				l.h.Overheat.Report()
			}
		}
	}
}
