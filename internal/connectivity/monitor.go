// Package connectivity tracks whether the remote backend is reachable.
package connectivity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/davialcantara/selah/internal/bus"
)

// Prober checks backend reachability. The remote client implements it with
// a call to the health endpoint.
type Prober interface {
	Probe(ctx context.Context) error
}

// Change is the payload of connectivity.online / connectivity.offline events.
type Change struct {
	Online bool
	Epoch  uint64
}

// Monitor probes the backend on an interval and publishes transitions on the
// bus. Every transition bumps a monotonically increasing epoch; consumers use
// it to fence work started under an older connectivity state.
type Monitor struct {
	mu     sync.Mutex
	online bool
	epoch  uint64

	prober   Prober
	interval time.Duration
	bus      *bus.Bus
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// NewMonitor creates a monitor. It starts offline; the first successful probe
// publishes the initial online transition.
func NewMonitor(prober Prober, b *bus.Bus, logger *zap.Logger, interval time.Duration) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		bus:      b,
		logger:   logger,
	}
}

// Start begins the probe loop. The first probe runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	go m.loop(ctx)
}

// Stop stops the probe loop.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// State returns the current state and the transition epoch that produced it.
func (m *Monitor) State() (online bool, epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online, m.epoch
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	online, _ := m.State()
	return online
}

// SetOnline forces the state, publishing a transition if it changed. Used
// when a platform signal (not the probe) reports the change, and by tests.
func (m *Monitor) SetOnline(online bool) {
	m.transition(online)
}

func (m *Monitor) loop(ctx context.Context) {
	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.prober.Probe(ctx)
	if ctx.Err() != nil {
		return
	}
	m.transition(err == nil)
}

func (m *Monitor) transition(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	m.epoch++
	change := Change{Online: online, Epoch: m.epoch}
	m.mu.Unlock()

	kind := "connectivity.offline"
	if online {
		kind = "connectivity.online"
	}
	if m.logger != nil {
		m.logger.Info("connectivity changed",
			zap.Bool("online", online),
			zap.Uint64("epoch", change.Epoch),
		)
	}
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      kind,
			Timestamp: time.Now(),
			Payload:   change,
		})
	}
}
