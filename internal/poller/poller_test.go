package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"formpilot/internal/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func snapshot(id string, status api.JobStatus) *api.JobSnapshot {
	return &api.JobSnapshot{ID: api.FlexID(id), Status: status}
}

// scriptedFetch returns the scripted snapshots in order, then keeps returning
// the last one.
func scriptedFetch(snaps ...*api.JobSnapshot) StatusFunc {
	var n atomic.Int64
	return func(ctx context.Context, id string) (*api.JobSnapshot, error) {
		i := int(n.Add(1)) - 1
		if i >= len(snaps) {
			i = len(snaps) - 1
		}
		return snaps[i], nil
	}
}

func TestPollerStopsOnTerminalStatus(t *testing.T) {
	fetch := scriptedFetch(
		snapshot("abc", api.StatusPending),
		snapshot("abc", api.StatusFilling),
		snapshot("abc", api.StatusCompleted),
	)
	p := New(fetch, WithInterval(5*time.Millisecond))

	var mu sync.Mutex
	var updates []api.JobStatus
	doneCount := 0
	done := make(chan struct{})

	p.Start(context.Background(), "abc", Callbacks{
		OnUpdate: func(s *api.JobSnapshot) {
			mu.Lock()
			updates = append(updates, s.Status)
			mu.Unlock()
		},
		OnDone: func(s *api.JobSnapshot) {
			mu.Lock()
			doneCount++
			mu.Unlock()
			close(done)
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poll never reached terminal state")
	}
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	if doneCount != 1 {
		t.Errorf("OnDone fired %d times, want 1", doneCount)
	}
	if len(updates) != 3 {
		t.Errorf("expected 3 updates, got %v", updates)
	}
	if updates[len(updates)-1] != api.StatusCompleted {
		t.Errorf("last update should be the terminal snapshot, got %v", updates)
	}
}

func TestPollerReportsErrorAfterConsecutiveFailures(t *testing.T) {
	transportErr := errors.New("connection refused")
	var calls atomic.Int64
	fetch := func(ctx context.Context, id string) (*api.JobSnapshot, error) {
		calls.Add(1)
		return nil, transportErr
	}

	p := New(fetch, WithInterval(5*time.Millisecond), WithMaxFailures(3))
	errCh := make(chan error, 1)
	p.Start(context.Background(), "abc", Callbacks{
		OnError: func(err error) { errCh <- err },
	})

	select {
	case err := <-errCh:
		if !errors.Is(err, transportErr) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnError never fired")
	}
	p.Stop()

	// A tick can have one more probe in flight when the loop shuts down.
	if got := calls.Load(); got < 3 {
		t.Errorf("expected at least 3 attempts before giving up, got %d", got)
	}
}

func TestPollerRecoversFromTransientFailure(t *testing.T) {
	var n atomic.Int64
	fetch := func(ctx context.Context, id string) (*api.JobSnapshot, error) {
		switch n.Add(1) {
		case 1:
			return snapshot("abc", api.StatusFilling), nil
		case 2:
			return nil, errors.New("blip")
		default:
			return snapshot("abc", api.StatusCompleted), nil
		}
	}

	p := New(fetch, WithInterval(5*time.Millisecond), WithMaxFailures(3))
	done := make(chan *api.JobSnapshot, 1)
	p.Start(context.Background(), "abc", Callbacks{
		OnDone:  func(s *api.JobSnapshot) { done <- s },
		OnError: func(err error) { t.Errorf("unexpected OnError: %v", err) },
	})

	select {
	case s := <-done:
		if s.Status != api.StatusCompleted {
			t.Errorf("unexpected terminal status %q", s.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poll never completed")
	}
	p.Stop()
}

func TestLastSubmissionWins(t *testing.T) {
	// The first job never terminates; starting the second must cancel it.
	firstPolled := make(chan struct{})
	var once sync.Once
	fetch := func(ctx context.Context, id string) (*api.JobSnapshot, error) {
		if id == "first" {
			once.Do(func() { close(firstPolled) })
			return snapshot("first", api.StatusFilling), nil
		}
		return snapshot("second", api.StatusCompleted), nil
	}

	p := New(fetch, WithInterval(5*time.Millisecond))

	var mu sync.Mutex
	var doneIDs []string
	done := make(chan struct{})
	cb := func(s *api.JobSnapshot) {
		mu.Lock()
		doneIDs = append(doneIDs, s.ID.String())
		mu.Unlock()
		close(done)
	}

	p.Start(context.Background(), "first", Callbacks{OnDone: cb})
	<-firstPolled
	p.Start(context.Background(), "second", Callbacks{OnDone: cb})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second poll never completed")
	}
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(doneIDs) != 1 || doneIDs[0] != "second" {
		t.Errorf("expected only the second job to finish, got %v", doneIDs)
	}
}

func TestConcurrentFetchesCoalesce(t *testing.T) {
	block := make(chan struct{})
	var executions atomic.Int64
	p := New(func(ctx context.Context, id string) (*api.JobSnapshot, error) {
		executions.Add(1)
		<-block
		return snapshot(id, api.StatusFilling), nil
	})

	const callers = 3
	var wg sync.WaitGroup
	snaps := make([]*api.JobSnapshot, callers)
	executed := make([]bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, ex, err := p.fetchOnce(context.Background(), "abc")
			if err != nil {
				t.Errorf("fetchOnce failed: %v", err)
				return
			}
			snaps[i] = snap
			executed[i] = ex
		}(i)
	}

	// Let all callers reach the group before releasing the fetch.
	time.Sleep(50 * time.Millisecond)
	close(block)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Errorf("expected 1 underlying fetch for %d concurrent callers, got %d", callers, got)
	}
	execCount := 0
	for i := 1; i < callers; i++ {
		if snaps[i] != snaps[0] {
			t.Error("coalesced callers should share one result")
		}
	}
	for _, ex := range executed {
		if ex {
			execCount++
		}
	}
	if execCount != 1 {
		t.Errorf("expected exactly one executor among callers, got %d", execCount)
	}
}

func TestSlowResponsesDoNotStackRequests(t *testing.T) {
	// Responses take three intervals, so ticks genuinely overlap the fetch
	// on the wire; the group must keep underlying concurrency at one.
	var cur, maxSeen, n atomic.Int64
	fetch := func(ctx context.Context, id string) (*api.JobSnapshot, error) {
		c := cur.Add(1)
		defer cur.Add(-1)
		for {
			m := maxSeen.Load()
			if c <= m || maxSeen.CompareAndSwap(m, c) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		if n.Add(1) >= 3 {
			return snapshot("abc", api.StatusCompleted), nil
		}
		return snapshot("abc", api.StatusFilling), nil
	}

	p := New(fetch, WithInterval(5*time.Millisecond))
	done := make(chan struct{})
	p.Start(context.Background(), "abc", Callbacks{
		OnDone: func(*api.JobSnapshot) { close(done) },
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poll never completed")
	}
	p.Stop()

	if got := maxSeen.Load(); got != 1 {
		t.Errorf("expected at most 1 status request on the wire, saw %d concurrent", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	fetch := scriptedFetch(snapshot("abc", api.StatusFilling))
	p := New(fetch, WithInterval(5*time.Millisecond))

	p.Start(context.Background(), "abc", Callbacks{})
	p.Stop()
	p.Stop()

	// Stop without Start is also fine.
	fresh := New(fetch)
	fresh.Stop()
}

func TestContextCancelStopsLoop(t *testing.T) {
	fetch := scriptedFetch(snapshot("abc", api.StatusFilling))
	p := New(fetch, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx, "abc", Callbacks{})
	cancel()
	// Stop waits for the loop to wind down; goleak verifies nothing is left.
	p.Stop()
}
