package flow

import (
	"sync"
	"time"
)

// DefaultPollInterval bounds message delivery latency in place of a
// push channel.
const DefaultPollInterval = 10 * time.Second

// Poller runs a function at a fixed interval. It is owned by the view
// that created it and must be stopped on teardown; Stop is
// deterministic and waits for the loop to exit, so no orphaned timers
// accumulate across navigation.
type Poller struct {
	interval time.Duration
	tick     func()

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewPoller creates a stopped poller.
func NewPoller(interval time.Duration, tick func()) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, tick: tick}
}

// Start begins polling. The first tick fires immediately. Starting a
// running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go p.run(p.stop, p.done)
}

// Stop halts polling and waits for the loop to exit. Stopping a
// stopped poller is a no-op. The poller can be started again, so a
// view can suspend polling while it is not visible.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stop, done := p.stop, p.done
	p.mu.Unlock()

	close(stop)
	<-done
}

// Running reports whether the poller is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) run(stop, done chan struct{}) {
	defer close(done)

	p.tick()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tick()
		case <-stop:
			return
		}
	}
}
