package simulation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner drives a Session from a single periodic ticker. Only one run loop
// exists at a time; Reset stops it before resetting the session.
type Runner struct {
	session  *Session
	interval time.Duration
	logger   *zap.SugaredLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a runner ticking the session at the configured interval.
func NewRunner(session *Session, logger *zap.SugaredLogger) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Runner{
		session:  session,
		interval: session.Config().TickInterval,
		logger:   logger,
	}
}

// Session returns the driven session.
func (r *Runner) Session() *Session {
	return r.session
}

// Start begins a run and schedules ticks until every mass has been revealed,
// the run is reset, or ctx is cancelled. It returns false if a run is already
// in progress. Cancelling ctx mid-run abandons the run and returns the session
// to Idle, so a later Start succeeds.
func (r *Runner) Start(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.State() == Running {
		return false
	}

	// A finished run's loop may still be revealing masses.
	r.stopLocked()

	if !r.session.Start() {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go r.loop(ctx, runCtx)

	return true
}

// Reset cancels any pending tick and returns the session to Idle.
func (r *Runner) Reset() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	return r.session.Reset()
}

// Latest returns the most recent frame.
func (r *Runner) Latest() Frame {
	return r.session.Frame()
}

// Wait blocks until the current run loop has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) stopLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.wg.Wait()
}

func (r *Runner) loop(parent, ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("run loop cancelled")
			// Reset and Start cancel only the run context and handle the
			// session themselves.
			if parent.Err() != nil && r.session.State() == Running {
				r.session.Reset()
				r.logger.Info("run abandoned after its context ended")
			}
			return
		case <-ticker.C:
			r.session.Step()
			if r.session.RevealComplete() {
				r.logger.Debug("run loop finished")
				return
			}
		}
	}
}
