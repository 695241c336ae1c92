package reachability

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"capture-recall/pkg/log"
)

// ErrOffline reports that connectivity is known to be absent; remote calls
// are preempted without waiting for their timeouts.
var ErrOffline = errors.New("network unreachable")

const (
	DefaultProbeURL      = "https://www.google.com/generate_204"
	DefaultProbeInterval = 15 * time.Second
	probeTimeout         = 3 * time.Second
)

// Monitor tracks whether the network is reachable by probing a URL
// periodically. Consumers observe changes through Subscribe.
type Monitor struct {
	probeURL string
	interval time.Duration
	client   *http.Client
	l        log.Logger

	mu     sync.Mutex
	online bool
	subs   []func(online bool)
}

// NewMonitor creates a Monitor. It starts optimistic (online) until the first
// probe says otherwise.
func NewMonitor(probeURL string, interval time.Duration, l log.Logger) *Monitor {
	if probeURL == "" {
		probeURL = DefaultProbeURL
	}
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Monitor{
		probeURL: probeURL,
		interval: interval,
		client:   &http.Client{Timeout: probeTimeout},
		l:        l,
		online:   true,
	}
}

// Online reports the last known connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a callback invoked on every connectivity change.
// Callbacks run on the monitor's goroutine and must not block.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// SetOnline forces the connectivity state. Used by tests and by platforms
// that push reachability instead of being polled.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(online)
	}
}

// Start probes until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			online := m.probe(ctx)
			if online != m.Online() {
				m.l.Infof(ctx, "reachability: online=%v", online)
			}
			m.SetOnline(online)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
