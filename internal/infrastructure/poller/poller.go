// Package poller keeps the cached account summary fresh in the background.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned by Subscribe on a poller that is running.
var ErrAlreadyRunning = errors.New("poller already running")

// Refresher performs one refresh. It must honor ctx cancellation.
type Refresher interface {
	RefreshService(ctx context.Context) error
}

// Config for Poller.
type Config struct {
	Refresher Refresher
	Interval  time.Duration
	Timeout   time.Duration // per refresh; zero means Interval
	Logger    zerolog.Logger
}

// Poller refreshes on a ticker and on demand. Starting a refresh cancels
// the one still in flight.
type Poller struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    zerolog.Logger

	trigger chan struct{}

	mu       sync.Mutex
	running  bool
	stop     context.CancelFunc
	inFlight context.CancelFunc
	loopDone chan struct{}
	workers  sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}

	return &Poller{
		refresher: cfg.Refresher,
		interval:  cfg.Interval,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger.With().Str("component", "summary-poller").Logger(),
		trigger:   make(chan struct{}, 1),
	}
}

// Subscribe starts the loop. It refreshes immediately, then on every tick
// and Trigger, until ctx is cancelled or Close is called.
func (p *Poller) Subscribe(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}

	ctx, stop := context.WithCancel(ctx)
	p.running = true
	p.stop = stop
	p.loopDone = make(chan struct{})

	go p.loop(ctx, p.loopDone)

	p.logger.Info().Dur("interval", p.interval).Msg("summary poller started")
	return nil
}

// Trigger requests an immediate refresh. It never blocks; triggers that
// arrive while one is pending are coalesced.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Close stops the loop, cancels any in-flight refresh and waits for both.
func (p *Poller) Close() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.stop()
	done := p.loopDone
	p.mu.Unlock()

	<-done
	p.workers.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info().Msg("summary poller stopped")
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.inFlight != nil {
				p.inFlight()
				p.inFlight = nil
			}
			p.mu.Unlock()
			return
		case <-ticker.C:
			p.refresh(ctx)
		case <-p.trigger:
			p.refresh(ctx)
		}
	}
}

// refresh cancels the previous refresh and starts a new one.
func (p *Poller) refresh(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, p.timeout)

	p.mu.Lock()
	if p.inFlight != nil {
		p.inFlight()
	}
	p.inFlight = cancel
	p.mu.Unlock()

	p.workers.Add(1)
	go func() {
		defer p.workers.Done()
		defer cancel()

		if err := p.refresher.RefreshService(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				p.logger.Debug().Msg("summary refresh superseded")
				return
			}
			p.logger.Warn().Err(err).Msg("summary refresh failed, keeping last snapshot")
		}
	}()
}
