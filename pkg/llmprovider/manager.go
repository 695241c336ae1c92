package llmprovider

import (
	"context"
	"fmt"

	"capture-recall/pkg/log"
)

// Manager selects among providers in priority order with fallback. Per-call
// retry and timeouts are the caller's concern (see pkg/retry); the manager
// only decides which backend answers.
type Manager struct {
	providers []Provider
	fallback  bool
	l         log.Logger
}

// NewManager creates a Manager. Providers are tried in the order given.
func NewManager(providers []Provider, fallbackEnabled bool, l log.Logger) *Manager {
	return &Manager{
		providers: providers,
		fallback:  fallbackEnabled,
		l:         l,
	}
}

// Generate asks the first provider that succeeds. With fallback disabled only
// the first provider is consulted.
func (m *Manager) Generate(ctx context.Context, req *Request) (*Response, error) {
	if len(m.providers) == 0 {
		return nil, ErrNoProvidersConfigured
	}

	var lastErr error
	for _, provider := range m.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := provider.Generate(ctx, req)
		if err == nil {
			m.l.Infof(ctx, "llmprovider: %s/%s generated %d tokens",
				provider.Name(), provider.Model(), resp.Usage.TotalTokens)
			return resp, nil
		}

		m.l.Warnf(ctx, "llmprovider: %s/%s failed: %v", provider.Name(), provider.Model(), err)
		lastErr = &ProviderError{Provider: provider.Name(), Err: err}

		if !m.fallback {
			break
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrAllProvidersFailed, lastErr)
}
