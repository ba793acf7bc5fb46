// Package poller follows a single in-flight fill job by polling its status
// at a fixed interval until the backend reports a terminal state.
//
// The client-side state machine per job:
//
//	Idle    -> (job submitted)                  -> Polling
//	Polling -> (status pending/filling)         -> Polling
//	Polling -> (status completed/failed)        -> Idle   (one Done callback)
//	Polling -> (repeated transport errors)      -> Idle   (one Error callback)
//
// Only one job is polled per Poller; starting a new poll cancels the prior
// one (last submission wins). A request already on the wire when a poll is
// cancelled still completes server-side; its result is discarded.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"formpilot/internal/api"
)

const (
	// DefaultInterval matches the dashboard's 2-second refresh.
	DefaultInterval = 2 * time.Second
	// DefaultMaxFailures is how many consecutive transport errors are
	// retried at the next tick before the poll is declared stalled.
	DefaultMaxFailures = 3
)

// StatusFunc fetches a point-in-time job snapshot. *api.Client.JobStatus
// satisfies it.
type StatusFunc func(ctx context.Context, id string) (*api.JobSnapshot, error)

// Callbacks receive poll results. All callbacks run on the poller's
// goroutine; keep them fast or hand off.
type Callbacks struct {
	// OnUpdate fires for every snapshot, terminal ones included.
	OnUpdate func(*api.JobSnapshot)
	// OnDone fires exactly once, for the terminal snapshot.
	OnDone func(*api.JobSnapshot)
	// OnError fires exactly once if the poll stalls on transport errors.
	OnError func(error)
}

// Poller drives the fixed-interval status loop.
type Poller struct {
	fetch       StatusFunc
	interval    time.Duration
	maxFailures int
	logger      *zap.Logger

	// group coalesces concurrent status fetches for the same job id, so a
	// tick firing while the previous request is still in flight joins it
	// instead of stacking another HTTP call.
	group singleflight.Group

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the polling period.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithMaxFailures overrides the consecutive-transport-error budget.
func WithMaxFailures(n int) Option {
	return func(p *Poller) { p.maxFailures = n }
}

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// New creates a poller using fetch for status reads.
func New(fetch StatusFunc, opts ...Option) *Poller {
	p := &Poller{
		fetch:       fetch,
		interval:    DefaultInterval,
		maxFailures: DefaultMaxFailures,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling the given job. Any poll already running is cancelled
// first; its in-flight result, if one arrives, is discarded.
func (p *Poller) Start(ctx context.Context, jobID string, cb Callbacks) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		prev := p.done
		p.mu.Unlock()
		<-prev
		p.mu.Lock()
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go p.run(runCtx, jobID, cb, done)
}

// Stop cancels the active poll, if any, and waits for its loop to exit.
// Idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// fetchResult is one delivered status read.
type fetchResult struct {
	snap *api.JobSnapshot
	err  error
}

// run owns the ticker and the callback ordering. Each tick issues its fetch
// on its own goroutine, so a response slower than the interval overlaps the
// next tick; the singleflight group then joins the late tick onto the fetch
// already on the wire instead of stacking another HTTP call.
func (p *Poller) run(ctx context.Context, jobID string, cb Callbacks, done chan struct{}) {
	defer close(done)

	ctx, cancel := context.WithCancel(ctx)
	var inflight sync.WaitGroup
	defer inflight.Wait()
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	results := make(chan fetchResult, 1)
	failures := 0
	p.logger.Debug("polling started", zap.String("job", jobID))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("polling cancelled", zap.String("job", jobID))
			return
		case <-ticker.C:
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				snap, executed, err := p.fetchOnce(ctx, jobID)
				if !executed {
					// Joined a fetch already in flight; its executor
					// delivers the shared result.
					return
				}
				select {
				case results <- fetchResult{snap: snap, err: err}:
				case <-ctx.Done():
				}
			}()
		case res := <-results:
			if res.err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				p.logger.Warn("status poll failed",
					zap.String("job", jobID),
					zap.Int("consecutive", failures),
					zap.Error(res.err))
				if failures >= p.maxFailures {
					if cb.OnError != nil {
						cb.OnError(res.err)
					}
					return
				}
				continue
			}
			failures = 0

			if cb.OnUpdate != nil {
				cb.OnUpdate(res.snap)
			}
			if res.snap.Status.Terminal() {
				p.logger.Debug("polling finished",
					zap.String("job", jobID),
					zap.String("status", string(res.snap.Status)))
				if cb.OnDone != nil {
					cb.OnDone(res.snap)
				}
				return
			}
		}
	}
}

// fetchOnce performs one status read, coalescing with any fetch for the same
// job already in flight. executed reports whether this call ran the fetch
// itself or joined one started by an earlier tick.
func (p *Poller) fetchOnce(ctx context.Context, jobID string) (snap *api.JobSnapshot, executed bool, err error) {
	v, err, _ := p.group.Do(jobID, func() (interface{}, error) {
		executed = true
		return p.fetch(ctx, jobID)
	})
	if err != nil {
		return nil, executed, err
	}
	return v.(*api.JobSnapshot), executed, nil
}
