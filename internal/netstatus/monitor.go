package netstatus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe checks connectivity. A nil error means online.
type Probe func(ctx context.Context) error

// Monitor polls a connectivity probe and fans out online/offline
// transitions to registered listeners. It stands in for the browser
// online/offline events the pipeline was designed around.
type Monitor struct {
	probe    Probe
	interval time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	online    bool
	listeners map[int]func(bool)
	nextID    int

	stop chan struct{}
	done chan struct{}
}

// NewMonitor creates a Monitor. The initial state is online so the
// first sync attempt is not suppressed before the first probe.
func NewMonitor(probe Probe, interval time.Duration, logger *zap.Logger) *Monitor {
	return &Monitor{
		probe:     probe,
		interval:  interval,
		logger:    logger,
		online:    true,
		listeners: make(map[int]func(bool)),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins polling until Stop is called.
func (m *Monitor) Start() {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.check()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop halts polling and waits for the poll loop to exit.
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnChange registers a transition listener and returns its unsubscribe
// func. Listeners receive the new state.
func (m *Monitor) OnChange(fn func(bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Monitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	online := m.probe(ctx) == nil
	m.setOnline(online)
}

// setOnline records the state and notifies listeners on transitions.
func (m *Monitor) setOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]func(bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	if online {
		m.logger.Info("network connection restored")
	} else {
		m.logger.Warn("network connection lost")
	}

	for _, fn := range listeners {
		fn(online)
	}
}
