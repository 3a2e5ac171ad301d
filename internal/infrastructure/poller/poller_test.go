package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// blockingRefresher blocks every refresh until its context ends.
type blockingRefresher struct {
	started   chan struct{}
	cancelled atomic.Int32
}

func (r *blockingRefresher) RefreshService(ctx context.Context) error {
	r.started <- struct{}{}
	<-ctx.Done()
	r.cancelled.Add(1)
	return ctx.Err()
}

type countingRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRefresher) RefreshService(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *countingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestSubscribeRefreshesImmediately(t *testing.T) {
	r := &countingRefresher{}
	p := New(Config{Refresher: r, Interval: time.Hour, Logger: zerolog.Nop()})

	if err := p.Subscribe(context.Background()); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer p.Close()

	waitFor(t, func() bool { return r.count() == 1 })
}

func TestTriggerCancelsInFlightRefresh(t *testing.T) {
	r := &blockingRefresher{started: make(chan struct{}, 4)}
	p := New(Config{Refresher: r, Interval: time.Hour, Logger: zerolog.Nop()})

	if err := p.Subscribe(context.Background()); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	<-r.started
	p.Trigger()
	<-r.started

	waitFor(t, func() bool { return r.cancelled.Load() == 1 })

	p.Close()
	if got := r.cancelled.Load(); got != 2 {
		t.Fatalf("expected Close to cancel the second refresh, got %d cancellations", got)
	}
}

func TestErrorsKeepLoopRunning(t *testing.T) {
	r := &countingRefresher{err: errors.New("backend down")}
	p := New(Config{Refresher: r, Interval: 10 * time.Millisecond, Logger: zerolog.Nop()})

	if err := p.Subscribe(context.Background()); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer p.Close()

	waitFor(t, func() bool { return r.count() >= 3 })
}

func TestSubscribeTwice(t *testing.T) {
	p := New(Config{Refresher: &countingRefresher{}, Interval: time.Hour, Logger: zerolog.Nop()})

	if err := p.Subscribe(context.Background()); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer p.Close()

	if err := p.Subscribe(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestCloseStopsLoop(t *testing.T) {
	r := &countingRefresher{}
	p := New(Config{Refresher: r, Interval: 5 * time.Millisecond, Logger: zerolog.Nop()})

	if err := p.Subscribe(context.Background()); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	waitFor(t, func() bool { return r.count() >= 1 })
	p.Close()

	after := r.count()
	time.Sleep(30 * time.Millisecond)
	if r.count() != after {
		t.Fatalf("expected no refreshes after Close, got %d more", r.count()-after)
	}

	// Close is idempotent and Trigger after Close must not block.
	p.Close()
	p.Trigger()
}
