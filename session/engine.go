// Package session drives the probe loop and owns the accumulated results.
//
// Two accumulators run side by side: one for the whole session, one for the
// current auto-save interval. Interval snapshots reset their own window
// without touching the session-wide totals needed for the final summary.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/netprobe/pingstats/config"
	"github.com/netprobe/pingstats/probe"
	"github.com/netprobe/pingstats/record"
	"github.com/netprobe/pingstats/statistics"
)

type Engine struct {
	cfg      *config.Config
	prober   probe.Prober
	recorder record.Recorder

	// mu guards the accumulators and the finalized flag. Critical sections
	// are short; only the probe call and the tick wait may block, and both
	// happen outside the lock.
	mu            sync.Mutex
	sessionSent   uint64
	sessionTimes  []float64
	intervalSent  uint64
	intervalTimes []float64
	finalized     bool
}

func New(cfg *config.Config, prober probe.Prober, recorder record.Recorder) *Engine {
	return &Engine{
		cfg:      cfg,
		prober:   prober,
		recorder: recorder,
	}
}

// Run probes once per tick until the configured count completes or ctx is
// cancelled, then computes and persists the session snapshot exactly once.
// The returned snapshot is nil when there is nothing to report.
func (e *Engine) Run(ctx context.Context) *statistics.SessionStats {
	tick := time.NewTicker(e.cfg.Interval)
	defer tick.Stop()

	lastSave := time.Now()

	for seq := uint64(0); e.cfg.Count == 0 || seq < e.cfg.Count; seq++ {
		if ctx.Err() != nil {
			return e.interrupt()
		}

		e.mu.Lock()
		e.sessionSent++
		e.intervalSent++
		e.mu.Unlock()

		rtt, err := e.prober.Probe(ctx, int(seq))
		switch {
		case err == nil:
			ms := float64(rtt) / float64(time.Millisecond)
			logrus.Infof("Reply from %v: icmp_seq=%v time=%.2fms", e.prober.Target(), seq, ms)

			e.mu.Lock()
			e.sessionTimes = append(e.sessionTimes, ms)
			e.intervalTimes = append(e.intervalTimes, ms)
			e.mu.Unlock()
		case ctx.Err() != nil:
			// Cancelled mid-probe, the in-flight reply is abandoned
			return e.interrupt()
		default:
			logrus.Warn("Request timed out or error: ", err)
		}

		// Auto-save runs on wall clock elapsed since the last flush, so it
		// can land up to one tick period late.
		if e.cfg.SaveEvery > 0 && time.Since(lastSave) >= e.cfg.SaveEvery {
			e.flushInterval()
			lastSave = time.Now()
		}

		select {
		case <-ctx.Done():
			return e.interrupt()
		case <-tick.C:
		}
	}

	return e.finalize()
}

// flushInterval persists a snapshot of the current interval window and
// resets it. The session-wide accumulators are left untouched.
func (e *Engine) flushInterval() {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := statistics.New(e.prober.Target())
	stats.Recompute(e.intervalSent, e.intervalTimes)

	e.intervalSent = 0
	e.intervalTimes = nil

	if err := e.recorder.Append(stats); err != nil {
		logrus.Error("Failed to auto-save results: ", err)
		return
	}
	logrus.Info("Auto-saved interval results to ", e.recorder.Path())
}

func (e *Engine) finalize() *statistics.SessionStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.sessionSnapshotLocked()
	if stats == nil || stats.Sent == 0 {
		return nil
	}

	if err := e.recorder.Append(stats); err != nil {
		logrus.Error("Failed to save final results: ", err)
	} else {
		logrus.Info("Final results saved to ", e.recorder.Path())
	}
	return stats
}

// interrupt handles asynchronous cancellation: one final recomputation and a
// best-effort save of whatever has been recorded so far.
func (e *Engine) interrupt() *statistics.SessionStats {
	logrus.Warn("Interrupted by user. Saving results...")

	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.sessionSnapshotLocked()
	if stats == nil {
		return nil
	}

	if err := e.recorder.Append(stats); err != nil {
		logrus.Error("Failed to save results on exit: ", err)
	} else {
		logrus.Info("Results saved to ", e.recorder.Path())
	}
	return stats
}

// sessionSnapshotLocked recomputes the whole-session stats, at most once.
func (e *Engine) sessionSnapshotLocked() *statistics.SessionStats {
	if e.finalized {
		return nil
	}
	e.finalized = true

	stats := statistics.New(e.prober.Target())
	stats.Recompute(e.sessionSent, e.sessionTimes)
	return stats
}
