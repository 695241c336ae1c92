package llmprovider

import (
	"context"
	"errors"
	"testing"

	pkgLog "capture-recall/pkg/log"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &Response{Text: s.text, ProviderName: s.name}, nil
}
func (s *stubProvider) Name() string  { return s.name }
func (s *stubProvider) Model() string { return s.name + "-model" }

func TestManager_Generate(t *testing.T) {
	ctx := context.Background()
	req := &Request{Messages: []Message{{Role: "user", Content: "hi"}}}

	t.Run("first provider wins", func(t *testing.T) {
		first := &stubProvider{name: "first", text: "from first"}
		second := &stubProvider{name: "second", text: "from second"}
		m := NewManager([]Provider{first, second}, true, pkgLog.NewNoop())

		resp, err := m.Generate(ctx, req)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if resp.Text != "from first" {
			t.Errorf("Text = %q", resp.Text)
		}
		if second.calls != 0 {
			t.Errorf("second provider was consulted %d times", second.calls)
		}
	})

	t.Run("falls back on failure", func(t *testing.T) {
		first := &stubProvider{name: "first", err: errors.New("quota exceeded")}
		second := &stubProvider{name: "second", text: "from second"}
		m := NewManager([]Provider{first, second}, true, pkgLog.NewNoop())

		resp, err := m.Generate(ctx, req)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if resp.Text != "from second" {
			t.Errorf("Text = %q", resp.Text)
		}
	})

	t.Run("fallback disabled stops at first", func(t *testing.T) {
		first := &stubProvider{name: "first", err: errors.New("down")}
		second := &stubProvider{name: "second", text: "from second"}
		m := NewManager([]Provider{first, second}, false, pkgLog.NewNoop())

		_, err := m.Generate(ctx, req)
		if !errors.Is(err, ErrAllProvidersFailed) {
			t.Fatalf("Generate() error = %v, want ErrAllProvidersFailed", err)
		}
		if second.calls != 0 {
			t.Errorf("second provider was consulted despite disabled fallback")
		}
	})

	t.Run("all providers failing reports the chain", func(t *testing.T) {
		first := &stubProvider{name: "first", err: errors.New("down")}
		second := &stubProvider{name: "second", err: errors.New("also down")}
		m := NewManager([]Provider{first, second}, true, pkgLog.NewNoop())

		_, err := m.Generate(ctx, req)
		if !errors.Is(err, ErrAllProvidersFailed) {
			t.Errorf("Generate() error = %v, want ErrAllProvidersFailed", err)
		}
	})

	t.Run("no providers configured", func(t *testing.T) {
		m := NewManager(nil, true, pkgLog.NewNoop())
		_, err := m.Generate(ctx, req)
		if !errors.Is(err, ErrNoProvidersConfigured) {
			t.Errorf("Generate() error = %v, want ErrNoProvidersConfigured", err)
		}
	})

	t.Run("cancelled context stops the chain", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		first := &stubProvider{name: "first", text: "x"}
		m := NewManager([]Provider{first}, true, pkgLog.NewNoop())

		_, err := m.Generate(cancelled, req)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Generate() error = %v, want context.Canceled", err)
		}
		if first.calls != 0 {
			t.Errorf("provider consulted after cancellation")
		}
	})
}

func TestBuildProviders(t *testing.T) {
	providers := BuildProviders([]ProviderSpec{
		{Name: "gemini", Enabled: true, Priority: 2, APIKey: "k2", Model: "gemini-2.0-flash"},
		{Name: "deepseek", Enabled: true, Priority: 1, APIKey: "k1", Model: "deepseek-chat"},
		{Name: "deepseek", Enabled: false, Priority: 3, APIKey: "k3", Model: "deepseek-chat"},
		{Name: "unknown", Enabled: true, Priority: 4, APIKey: "k4", Model: "x"},
		{Name: "gemini", Enabled: true, Priority: 5, APIKey: "", Model: "no-key"},
	})

	if len(providers) != 2 {
		t.Fatalf("BuildProviders() returned %d providers, want 2", len(providers))
	}
	if providers[0].Name() != "deepseek" || providers[1].Name() != "gemini" {
		t.Errorf("priority order = %s, %s", providers[0].Name(), providers[1].Name())
	}
}
