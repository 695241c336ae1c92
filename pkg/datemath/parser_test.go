package datemath

import (
	"errors"
	"testing"
	"time"
)

func mustParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser("UTC")
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func TestParseAbsolute(t *testing.T) {
	p := mustParser(t)
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	got, err := p.Parse("2026-09-02T09:00:00Z", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseRelative(t *testing.T) {
	p := mustParser(t)
	// A Monday.
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		expr string
		want time.Time
	}{
		{"today", time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{"tomorrow at 10", time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)},
		{"tomorrow at 3pm", time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)},
		{"Tomorrow at 10:30", time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)},
		{"in 3 days", time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)},
		{"in 2 hours", base.Add(2 * time.Hour)},
		{"next friday", time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)},
		{"friday at 9", time.Date(2026, 9, 4, 9, 0, 0, 0, time.UTC)},
		// "next monday" from a Monday is a week out, not today.
		{"next monday", time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := p.Parse(tc.expr, base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseUnparseable(t *testing.T) {
	p := mustParser(t)
	base := time.Now()

	for _, expr := range []string{"", "whenever", "next blursday", "at some point", "tomorrow at 99"} {
		if _, err := p.Parse(expr, base); !errors.Is(err, ErrUnparseable) {
			t.Errorf("Parse(%q): expected ErrUnparseable, got %v", expr, err)
		}
	}
}

func TestNewParserInvalidTimezone(t *testing.T) {
	if _, err := NewParser("Not/AZone"); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}
