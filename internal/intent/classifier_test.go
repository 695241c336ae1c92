package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"capture-recall/pkg/datemath"
	"capture-recall/pkg/llmprovider"
	pkgLog "capture-recall/pkg/log"
)

type fakeProvider struct {
	text string
	err  error
}

func (f *fakeProvider) Generate(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llmprovider.Response{Text: f.text}, nil
}
func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func newTestClassifier(t *testing.T, responseText string) *Classifier {
	t.Helper()
	l := pkgLog.NewNoop()
	llm := llmprovider.NewManager([]llmprovider.Provider{&fakeProvider{text: responseText}}, true, l)
	dates, err := datemath.NewParser("UTC")
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	c := NewClassifier(llm, dates, l)
	c.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("question", func(t *testing.T) {
		c := newTestClassifier(t, `{"intent":"question","query":"what is my locker code?"}`)
		out, err := c.Classify(ctx, "what is my locker code?")
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if out.Type != TypeQuestion || out.Question == nil || out.Question.Query == "" {
			t.Errorf("Classify() = %+v", out)
		}
	})

	t.Run("save_info preserves original casing", func(t *testing.T) {
		c := newTestClassifier(t, `{"intent":"save_info","memory":"My license plate is AB123"}`)
		out, err := c.Classify(ctx, "My license plate is AB123")
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if out.SaveInfo == nil || out.SaveInfo.Memory != "My license plate is AB123" {
			t.Errorf("SaveInfo = %+v", out.SaveInfo)
		}
	})

	t.Run("reminder with RFC3339 date", func(t *testing.T) {
		c := newTestClassifier(t, `{"intent":"reminder","task":"call Alex","due_datetime":"2026-09-01T10:00:00Z"}`)
		out, err := c.Classify(ctx, "Remind me to call Alex tomorrow at 10")
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		want := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
		if out.Reminder == nil || !out.Reminder.DueAt.Equal(want) {
			t.Errorf("Reminder = %+v, want due %v", out.Reminder, want)
		}
	})

	t.Run("reminder with relative phrase", func(t *testing.T) {
		c := newTestClassifier(t, `{"intent":"reminder","task":"call Alex","due_datetime":"tomorrow at 10"}`)
		out, err := c.Classify(ctx, "Remind me to call Alex tomorrow at 10")
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		want := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
		if !out.Reminder.DueAt.Equal(want) {
			t.Errorf("DueAt = %v, want %v", out.Reminder.DueAt, want)
		}
	})

	t.Run("unparseable date fails, never defaults", func(t *testing.T) {
		c := newTestClassifier(t, `{"intent":"reminder","task":"call Alex","due_datetime":"whenever feels right"}`)
		_, err := c.Classify(ctx, "Remind me to call Alex whenever")
		if !errors.Is(err, ErrUnparseableDate) {
			t.Errorf("Classify() error = %v, want ErrUnparseableDate", err)
		}
	})

	t.Run("calendar end defaults to start plus one hour", func(t *testing.T) {
		c := newTestClassifier(t, `{"intent":"calendar","title":"dentist","start_datetime":"2026-09-02T09:00:00Z"}`)
		out, err := c.Classify(ctx, "dentist appointment on the 2nd at 9")
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		start := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
		if !out.Calendar.StartAt.Equal(start) || !out.Calendar.EndAt.Equal(start.Add(time.Hour)) {
			t.Errorf("Calendar = %+v", out.Calendar)
		}
	})

	t.Run("markdown fences are stripped", func(t *testing.T) {
		c := newTestClassifier(t, "```json\n{\"intent\":\"question\",\"query\":\"q\"}\n```")
		out, err := c.Classify(ctx, "q")
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if out.Type != TypeQuestion {
			t.Errorf("Type = %s", out.Type)
		}
	})

	t.Run("non-JSON response is unclassifiable", func(t *testing.T) {
		c := newTestClassifier(t, "I think the user wants to save a note.")
		_, err := c.Classify(ctx, "hmm")
		if !errors.Is(err, ErrUnclassifiable) {
			t.Errorf("Classify() error = %v, want ErrUnclassifiable", err)
		}
	})

	t.Run("unknown intent type is unclassifiable, not save_info", func(t *testing.T) {
		c := newTestClassifier(t, `{"intent":"smalltalk","memory":"hello"}`)
		_, err := c.Classify(ctx, "hello there")
		if !errors.Is(err, ErrUnclassifiable) {
			t.Errorf("Classify() error = %v, want ErrUnclassifiable", err)
		}
	})

	t.Run("empty input is rejected before any remote call", func(t *testing.T) {
		c := newTestClassifier(t, `{"intent":"question","query":"x"}`)
		_, err := c.Classify(ctx, "   ")
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Classify() error = %v, want ErrEmptyInput", err)
		}
	})
}
