package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"capture-recall/internal/intent"
	"capture-recall/internal/memory"
	"capture-recall/internal/model"
	"capture-recall/pkg/gcalendar"
	pkgLog "capture-recall/pkg/log"
	"capture-recall/pkg/retry"
	"capture-recall/pkg/transcribe"
)

type fakeClassifier struct {
	classifyFunc func(ctx context.Context, text string) (intent.Intent, error)
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (intent.Intent, error) {
	return f.classifyFunc(ctx, text)
}

type fakeMemories struct {
	saveFunc   func(ctx context.Context, sc model.Scope, input memory.SaveInput) (model.MemoryRecord, error)
	answerFunc func(ctx context.Context, sc model.Scope, input memory.AnswerInput) (memory.AnswerOutput, error)
}

func (f *fakeMemories) Save(ctx context.Context, sc model.Scope, input memory.SaveInput) (model.MemoryRecord, error) {
	if f.saveFunc != nil {
		return f.saveFunc(ctx, sc, input)
	}
	return model.MemoryRecord{ID: "r1", Description: input.Description}, nil
}

func (f *fakeMemories) Delete(ctx context.Context, sc model.Scope, id string) error { return nil }

func (f *fakeMemories) List(ctx context.Context, sc model.Scope) ([]model.MemoryRecord, error) {
	return nil, nil
}

func (f *fakeMemories) Answer(ctx context.Context, sc model.Scope, input memory.AnswerInput) (memory.AnswerOutput, error) {
	if f.answerFunc != nil {
		return f.answerFunc(ctx, sc, input)
	}
	return memory.AnswerOutput{Answer: "answer"}, nil
}

type fakeCalendar struct {
	requestAccessFunc  func(ctx context.Context) error
	createEventFunc    func(ctx context.Context, req gcalendar.CreateEventRequest) (*gcalendar.Event, error)
	createReminderFunc func(ctx context.Context, req gcalendar.CreateReminderRequest) (*gcalendar.Event, error)
}

func (f *fakeCalendar) RequestAccess(ctx context.Context) error {
	if f.requestAccessFunc != nil {
		return f.requestAccessFunc(ctx)
	}
	return nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, req gcalendar.CreateEventRequest) (*gcalendar.Event, error) {
	if f.createEventFunc != nil {
		return f.createEventFunc(ctx, req)
	}
	return &gcalendar.Event{ID: "e1"}, nil
}

func (f *fakeCalendar) CreateReminder(ctx context.Context, req gcalendar.CreateReminderRequest) (*gcalendar.Event, error) {
	if f.createReminderFunc != nil {
		return f.createReminderFunc(ctx, req)
	}
	return &gcalendar.Event{ID: "rem1"}, nil
}

func questionIntent(query string) intent.Intent {
	return intent.Intent{Type: intent.TypeQuestion, Question: &intent.QuestionPayload{Query: query}}
}

func saveIntent(text string) intent.Intent {
	return intent.Intent{Type: intent.TypeSaveInfo, SaveInfo: &intent.SaveInfoPayload{Memory: text}}
}

func reminderIntent(task string, due time.Time) intent.Intent {
	return intent.Intent{Type: intent.TypeReminder, Reminder: &intent.ReminderPayload{Task: task, DueAt: due}}
}

func newTestMachine(classifier intent.IClassifier, memories memory.UseCase, calendar gcalendar.Store) *Machine {
	return NewMachine(Config{
		SessionID:     "test-session",
		Classifier:    classifier,
		Memories:      memories,
		Calendar:      calendar,
		Policy:        retry.Policy{Attempts: 1, Delay: time.Millisecond},
		Timezone:      "UTC",
		SuccessLinger: 30 * time.Millisecond,
		Logger:        pkgLog.NewNoop(),
	})
}

func waitForPhase(t *testing.T, m *Machine, want Phase) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		st := m.State()
		if st.Phase == want {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for phase %s, current %s", want, st.Phase)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestQuestionFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("answers land in Response", func(t *testing.T) {
		classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
			return questionIntent(text), nil
		}}
		memories := &fakeMemories{answerFunc: func(ctx context.Context, sc model.Scope, input memory.AnswerInput) (memory.AnswerOutput, error) {
			return memory.AnswerOutput{Answer: "It is hunter2.", SourceCount: 1}, nil
		}}
		m := newTestMachine(classifier, memories, &fakeCalendar{})

		st := m.Submit(ctx, "what is the wifi password?")
		if st.Phase != PhaseApiCall {
			t.Fatalf("Submit() phase = %s, want api_call", st.Phase)
		}
		st = waitForPhase(t, m, PhaseResponse)
		if st.Answer != "It is hunter2." {
			t.Errorf("Answer = %q", st.Answer)
		}
	})

	t.Run("zero matches still produce Response", func(t *testing.T) {
		classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
			return questionIntent(text), nil
		}}
		memories := &fakeMemories{answerFunc: func(ctx context.Context, sc model.Scope, input memory.AnswerInput) (memory.AnswerOutput, error) {
			return memory.AnswerOutput{Answer: "I have nothing saved about that.", SourceCount: 0}, nil
		}}
		m := newTestMachine(classifier, memories, &fakeCalendar{})

		m.Submit(ctx, "what do I know?")
		st := waitForPhase(t, m, PhaseResponse)
		if st.SourceCount != 0 {
			t.Errorf("SourceCount = %d, want 0", st.SourceCount)
		}
	})
}

func TestSaveInfoFlow(t *testing.T) {
	ctx := context.Background()
	classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
		return saveIntent(text), nil
	}}
	m := newTestMachine(classifier, &fakeMemories{}, &fakeCalendar{})

	m.Submit(ctx, "My license plate is AB123")
	waitForPhase(t, m, PhaseSuccess)

	// Success auto-returns to Input after the linger delay.
	waitForPhase(t, m, PhaseInput)
}

func TestDismissCancelsInFlight(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
		return questionIntent(text), nil
	}}
	memories := &fakeMemories{answerFunc: func(ctx context.Context, sc model.Scope, input memory.AnswerInput) (memory.AnswerOutput, error) {
		<-release
		return memory.AnswerOutput{Answer: "too late"}, nil
	}}
	m := newTestMachine(classifier, memories, &fakeCalendar{})

	m.Submit(ctx, "slow question")
	waitForPhase(t, m, PhaseApiCall)
	m.Dismiss(ctx)

	if st := m.State(); st.Phase != PhaseInput {
		t.Fatalf("phase after Dismiss = %s, want input", st.Phase)
	}

	// Let the stale pipeline finish; its result must be dropped.
	close(release)
	time.Sleep(50 * time.Millisecond)
	if st := m.State(); st.Phase != PhaseInput {
		t.Errorf("stale result was applied: phase = %s", st.Phase)
	}
}

func TestResubmitSupersedes(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
		return questionIntent(text), nil
	}}
	memories := &fakeMemories{answerFunc: func(ctx context.Context, sc model.Scope, input memory.AnswerInput) (memory.AnswerOutput, error) {
		if input.Question == "first" {
			<-release
			return memory.AnswerOutput{Answer: "stale"}, nil
		}
		return memory.AnswerOutput{Answer: "fresh"}, nil
	}}
	m := newTestMachine(classifier, memories, &fakeCalendar{})

	m.Submit(ctx, "first")
	waitForPhase(t, m, PhaseApiCall)
	m.Submit(ctx, "second")

	st := waitForPhase(t, m, PhaseResponse)
	if st.Answer != "fresh" {
		t.Fatalf("Answer = %q, want fresh", st.Answer)
	}

	// The first pipeline's late answer must not overwrite the second's.
	close(release)
	time.Sleep(50 * time.Millisecond)
	if st := m.State(); st.Answer != "fresh" {
		t.Errorf("stale answer applied: %q", st.Answer)
	}
}

func TestReminderConfirmationFlow(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
		return reminderIntent("call Alex", due), nil
	}}

	t.Run("confirm commits and succeeds", func(t *testing.T) {
		var committed *gcalendar.CreateReminderRequest
		calendar := &fakeCalendar{createReminderFunc: func(ctx context.Context, req gcalendar.CreateReminderRequest) (*gcalendar.Event, error) {
			committed = &req
			return &gcalendar.Event{ID: "rem1"}, nil
		}}
		m := newTestMachine(classifier, &fakeMemories{}, calendar)

		m.Submit(ctx, "Remind me to call Alex tomorrow at 10")
		st := waitForPhase(t, m, PhaseConfirming)
		if st.Pending == nil || st.Pending.Kind != PendingReminder || st.Pending.Title != "call Alex" {
			t.Fatalf("Pending = %+v", st.Pending)
		}

		m.Confirm(ctx)
		waitForPhase(t, m, PhaseSuccess)
		if committed == nil || committed.Task != "call Alex" || !committed.DueTime.Equal(due) {
			t.Errorf("committed = %+v", committed)
		}
	})

	t.Run("permission denied clears pending and shows access error", func(t *testing.T) {
		calendar := &fakeCalendar{requestAccessFunc: func(ctx context.Context) error {
			return gcalendar.ErrPermissionDenied
		}}
		m := newTestMachine(classifier, &fakeMemories{}, calendar)

		m.Submit(ctx, "Remind me to call Alex tomorrow at 10")
		waitForPhase(t, m, PhaseConfirming)
		m.Confirm(ctx)

		st := waitForPhase(t, m, PhaseError)
		if st.Alert == nil || st.Alert.Title != "Access Needed" {
			t.Fatalf("Alert = %+v, want permission-specific message", st.Alert)
		}
		m.mu.Lock()
		pending := m.pending
		m.mu.Unlock()
		if pending != nil {
			t.Error("pending action survived permission denial")
		}
	})

	t.Run("cancel discards pending", func(t *testing.T) {
		m := newTestMachine(classifier, &fakeMemories{}, &fakeCalendar{})

		m.Submit(ctx, "Remind me to call Alex tomorrow at 10")
		waitForPhase(t, m, PhaseConfirming)

		st := m.CancelPending(ctx)
		if st.Phase != PhaseInput {
			t.Errorf("phase after cancel = %s, want input", st.Phase)
		}
	})

	t.Run("pending is editable before commit", func(t *testing.T) {
		var committed *gcalendar.CreateReminderRequest
		calendar := &fakeCalendar{createReminderFunc: func(ctx context.Context, req gcalendar.CreateReminderRequest) (*gcalendar.Event, error) {
			committed = &req
			return &gcalendar.Event{ID: "rem1"}, nil
		}}
		m := newTestMachine(classifier, &fakeMemories{}, calendar)

		m.Submit(ctx, "Remind me to call Alex tomorrow at 10")
		waitForPhase(t, m, PhaseConfirming)

		edited := "call Alex about the lease"
		m.EditPending(ctx, PendingEdit{Title: &edited})
		m.Confirm(ctx)
		waitForPhase(t, m, PhaseSuccess)

		if committed == nil || committed.Task != edited {
			t.Errorf("committed task = %+v, want edited title", committed)
		}
	})
}

func TestUnparseableDateNeverConfirms(t *testing.T) {
	ctx := context.Background()
	classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
		return intent.Intent{}, intent.ErrUnparseableDate
	}}
	m := newTestMachine(classifier, &fakeMemories{}, &fakeCalendar{})

	m.Submit(ctx, "remind me whenever")
	st := waitForPhase(t, m, PhaseError)
	if st.Alert == nil || st.Alert.Title != "Date Not Understood" {
		t.Errorf("Alert = %+v, want date error", st.Alert)
	}
	if st.Pending != nil {
		t.Error("pending present on parse failure")
	}
}

func TestRetryRerunsOriginalInput(t *testing.T) {
	ctx := context.Background()
	attempts := 0
	classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
		attempts++
		if attempts == 1 {
			return intent.Intent{}, errors.New("classification service down")
		}
		return questionIntent(text), nil
	}}
	memories := &fakeMemories{answerFunc: func(ctx context.Context, sc model.Scope, input memory.AnswerInput) (memory.AnswerOutput, error) {
		return memory.AnswerOutput{Answer: "recovered: " + input.Question}, nil
	}}
	m := newTestMachine(classifier, memories, &fakeCalendar{})

	m.Submit(ctx, "original question")
	waitForPhase(t, m, PhaseError)

	m.Retry(ctx)
	st := waitForPhase(t, m, PhaseResponse)
	if st.Answer != "recovered: original question" {
		t.Errorf("Answer = %q, want retry of original input", st.Answer)
	}
}

func TestConnectivity(t *testing.T) {
	ctx := context.Background()
	classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
		return questionIntent(text), nil
	}}

	t.Run("offline submit is refused", func(t *testing.T) {
		m := newTestMachine(classifier, &fakeMemories{}, &fakeCalendar{})
		m.SetOnline(false)

		st := m.Submit(ctx, "anything")
		if st.Phase != PhaseError || st.Alert == nil || st.Alert.Title != "No Connection" {
			t.Fatalf("state = %+v, want connectivity error", st)
		}
	})

	t.Run("recovery clears only the connectivity error", func(t *testing.T) {
		m := newTestMachine(classifier, &fakeMemories{}, &fakeCalendar{})
		m.SetOnline(false)
		m.Submit(ctx, "anything")

		m.SetOnline(true)
		if st := m.State(); st.Phase != PhaseInput {
			t.Errorf("phase after recovery = %s, want input", st.Phase)
		}
	})

	t.Run("recovery leaves other errors displayed", func(t *testing.T) {
		failing := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
			return intent.Intent{}, intent.ErrUnclassifiable
		}}
		m := newTestMachine(failing, &fakeMemories{}, &fakeCalendar{})

		m.Submit(ctx, "???")
		st := waitForPhase(t, m, PhaseError)

		m.SetOnline(true)
		if got := m.State(); got.Phase != PhaseError || got.Alert.ID != st.Alert.ID {
			t.Errorf("non-connectivity error was cleared: %+v", got)
		}
	})

	t.Run("going offline forces error over in-flight call", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		memories := &fakeMemories{answerFunc: func(ctx context.Context, sc model.Scope, input memory.AnswerInput) (memory.AnswerOutput, error) {
			<-release
			return memory.AnswerOutput{Answer: "late"}, nil
		}}
		m := newTestMachine(classifier, memories, &fakeCalendar{})

		m.Submit(ctx, "slow")
		waitForPhase(t, m, PhaseApiCall)
		m.SetOnline(false)

		st := m.State()
		if st.Phase != PhaseError || st.Alert == nil || st.Alert.Title != "No Connection" {
			t.Errorf("state = %+v, want connectivity error", st)
		}
	})
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return f.text, f.err
}

func TestSubmitAudio(t *testing.T) {
	ctx := context.Background()

	t.Run("transcript runs the normal pipeline", func(t *testing.T) {
		var saved string
		classifier := &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) {
			return saveIntent(text), nil
		}}
		memories := &fakeMemories{saveFunc: func(ctx context.Context, sc model.Scope, input memory.SaveInput) (model.MemoryRecord, error) {
			saved = input.Description
			return model.MemoryRecord{ID: "r1", Description: input.Description}, nil
		}}
		m := NewMachine(Config{
			SessionID:     "test-session",
			Classifier:    classifier,
			Memories:      memories,
			Calendar:      &fakeCalendar{},
			Transcriber:   &fakeTranscriber{text: "my locker code is 4417"},
			Policy:        retry.Policy{Attempts: 1, Delay: time.Millisecond},
			Timezone:      "UTC",
			SuccessLinger: 30 * time.Millisecond,
			Logger:        pkgLog.NewNoop(),
		})

		m.SubmitAudio(ctx, "/tmp/clip.m4a")
		waitForPhase(t, m, PhaseSuccess)
		if saved != "my locker code is 4417" {
			t.Errorf("saved %q, want the transcript", saved)
		}
	})

	t.Run("transcription failure surfaces an alert", func(t *testing.T) {
		m := NewMachine(Config{
			SessionID:     "test-session",
			Classifier:    &fakeClassifier{classifyFunc: func(ctx context.Context, text string) (intent.Intent, error) { return questionIntent(text), nil }},
			Memories:      &fakeMemories{},
			Calendar:      &fakeCalendar{},
			Transcriber:   &fakeTranscriber{err: fmt.Errorf("%w: upstream 503", transcribe.ErrTranscription)},
			Policy:        retry.Policy{Attempts: 1, Delay: time.Millisecond},
			Timezone:      "UTC",
			Logger:        pkgLog.NewNoop(),
		})

		m.SubmitAudio(ctx, "/tmp/clip.m4a")
		st := waitForPhase(t, m, PhaseError)
		if st.Alert == nil || st.Alert.Title != "Transcription Failed" {
			t.Errorf("alert = %+v", st.Alert)
		}
	})
}
