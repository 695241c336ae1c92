package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"capture-recall/internal/alert"
	"capture-recall/internal/intent"
	"capture-recall/internal/memory"
	"capture-recall/internal/model"
	"capture-recall/internal/reachability"
	"capture-recall/pkg/gcalendar"
	pkgLog "capture-recall/pkg/log"
	"capture-recall/pkg/retry"
	"capture-recall/pkg/transcribe"
)

const (
	defaultSuccessLinger = 2 * time.Second
	updatesBuffer        = 16
)

// Config wires the Machine's collaborators.
type Config struct {
	SessionID   string
	Classifier  intent.IClassifier
	Memories    memory.UseCase
	Calendar    gcalendar.Store
	Transcriber transcribe.ITranscriber
	Policy      retry.Policy
	Timezone    string // IANA name used for calendar commits

	// SuccessLinger is how long Success stays visible before auto-returning
	// to Input. Zero means the default.
	SuccessLinger time.Duration

	Logger pkgLog.Logger
}

// Machine is the single-session conversation state machine. It owns the
// current State, the PendingAction, and the lifecycle of in-flight pipelines.
// A new submission supersedes the previous one: its context is cancelled and
// any result it still produces is dropped by generation check, never merged.
type Machine struct {
	classifier  intent.IClassifier
	memories    memory.UseCase
	calendar    gcalendar.Store
	transcriber transcribe.ITranscriber
	policy      retry.Policy
	timezone    string
	linger      time.Duration
	scope       model.Scope
	l           pkgLog.Logger

	mu          sync.Mutex
	state       State
	pending     *PendingAction
	lastInput   string
	gen         uint64
	cancel      context.CancelFunc
	online      bool
	connAlertID string // id of the connectivity alert currently shown, if any

	updates chan State
}

// NewMachine creates a Machine in Idle.
func NewMachine(cfg Config) *Machine {
	linger := cfg.SuccessLinger
	if linger <= 0 {
		linger = defaultSuccessLinger
	}
	return &Machine{
		classifier:  cfg.Classifier,
		memories:    cfg.Memories,
		calendar:    cfg.Calendar,
		transcriber: cfg.Transcriber,
		policy:      cfg.Policy,
		timezone:    cfg.Timezone,
		linger:      linger,
		scope:       model.Scope{SessionID: cfg.SessionID},
		l:           cfg.Logger,
		state:       State{Phase: PhaseIdle},
		online:      true,
		updates:     make(chan State, updatesBuffer),
	}
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Updates returns a channel carrying state snapshots after each transition.
// Slow consumers miss intermediate states, never the ability to call State().
func (m *Machine) Updates() <-chan State {
	return m.updates
}

// Submit starts a new conversation turn. Any in-flight turn is superseded.
// While offline the submission is refused with a connectivity error without
// touching the network.
func (m *Machine) Submit(ctx context.Context, text string) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.online {
		return m.connectivityErrorLocked()
	}

	gen, runCtx := m.supersedeLocked(ctx)
	m.lastInput = text
	m.pending = nil
	m.setStateLocked(State{Phase: PhaseApiCall})

	go m.run(runCtx, gen, text)
	return m.state
}

// SubmitAudio transcribes a recording and feeds the text through Submit.
func (m *Machine) SubmitAudio(ctx context.Context, audioPath string) State {
	m.mu.Lock()
	if !m.online {
		defer m.mu.Unlock()
		return m.connectivityErrorLocked()
	}
	gen, runCtx := m.supersedeLocked(ctx)
	m.pending = nil
	m.setStateLocked(State{Phase: PhaseApiCall})
	m.mu.Unlock()

	go func() {
		text, err := retry.DoValue(runCtx, m.policy, func(ctx context.Context) (string, error) {
			return m.transcriber.Transcribe(ctx, audioPath)
		})
		if err != nil {
			m.fail(runCtx, gen, err)
			return
		}
		// Adopt the transcript as the turn's input, then run the same
		// pipeline a typed submission would.
		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			return
		}
		m.lastInput = text
		m.mu.Unlock()
		m.run(runCtx, gen, text)
	}()
	return m.State()
}

// Confirm commits the pending action. No-op outside Confirming.
func (m *Machine) Confirm(ctx context.Context) State {
	m.mu.Lock()
	if m.state.Phase != PhaseConfirming || m.pending == nil {
		defer m.mu.Unlock()
		return m.state
	}
	if !m.online {
		defer m.mu.Unlock()
		return m.connectivityErrorLocked()
	}

	pending := *m.pending
	gen, runCtx := m.supersedeLocked(ctx)
	m.setStateLocked(State{Phase: PhaseApiCall})
	m.mu.Unlock()

	go m.commit(runCtx, gen, pending)
	return m.State()
}

// CancelPending discards the pending action and returns to Input.
func (m *Machine) CancelPending(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseConfirming {
		return m.state
	}
	m.pending = nil
	m.setStateLocked(State{Phase: PhaseInput})
	return m.state
}

// EditPending applies user edits to the pending action before commit.
func (m *Machine) EditPending(ctx context.Context, edit PendingEdit) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseConfirming || m.pending == nil {
		return m.state
	}
	m.pending.applyEdit(edit)
	m.setStateLocked(State{Phase: PhaseConfirming, Pending: m.pending})
	return m.state
}

// Retry re-runs the last submitted input through the whole pipeline from the
// beginning. Only meaningful from Error.
func (m *Machine) Retry(ctx context.Context) State {
	m.mu.Lock()
	if m.state.Phase != PhaseError || m.lastInput == "" {
		defer m.mu.Unlock()
		return m.state
	}
	input := m.lastInput
	m.mu.Unlock()
	return m.Submit(ctx, input)
}

// Dismiss leaves a terminal display state back to Input. From ApiCall it also
// cancels the in-flight pipeline.
func (m *Machine) Dismiss(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state.Phase {
	case PhaseResponse, PhaseSuccess, PhaseError, PhaseApiCall, PhaseConfirming:
		m.gen++
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.pending = nil
		m.connAlertID = ""
		m.setStateLocked(State{Phase: PhaseInput})
	}
	return m.state
}

// SetOnline feeds the reachability signal. Going offline forces a
// connectivity error over any in-flight call or displayed error; coming back
// online clears only that connectivity error, with no automatic retry.
func (m *Machine) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.online = online
	if !online {
		if m.state.Phase == PhaseApiCall || m.state.Phase == PhaseError {
			m.connectivityErrorLocked()
		}
		return
	}

	if m.state.Phase == PhaseError && m.state.Alert != nil && m.state.Alert.ID == m.connAlertID {
		m.connAlertID = ""
		m.setStateLocked(State{Phase: PhaseInput})
	}
}

// run classifies the input and dispatches the matching handler. All failures
// normalize at this boundary; cancellation is discarded silently.
func (m *Machine) run(ctx context.Context, gen uint64, text string) {
	classified, err := retry.DoValue(ctx, m.policy, func(ctx context.Context) (intent.Intent, error) {
		out, err := m.classifier.Classify(ctx, text)
		if err != nil && !transientClassification(err) {
			return out, retry.Permanent(err)
		}
		return out, err
	})
	if err != nil {
		m.fail(ctx, gen, err)
		return
	}

	switch classified.Type {
	case intent.TypeQuestion:
		m.handleQuestion(ctx, gen, classified.Question.Query)
	case intent.TypeSaveInfo:
		m.handleSaveInfo(ctx, gen, classified.SaveInfo.Memory)
	case intent.TypeReminder, intent.TypeCalendar:
		m.handleConfirmable(ctx, gen, classified)
	default:
		m.fail(ctx, gen, intent.ErrUnclassifiable)
	}
}

func (m *Machine) handleQuestion(ctx context.Context, gen uint64, query string) {
	out, err := m.memories.Answer(ctx, m.scope, memory.AnswerInput{Question: query})
	if err != nil {
		m.fail(ctx, gen, err)
		return
	}
	m.apply(ctx, gen, State{Phase: PhaseResponse, Answer: out.Answer, SourceCount: out.SourceCount})
}

func (m *Machine) handleSaveInfo(ctx context.Context, gen uint64, text string) {
	if _, err := m.memories.Save(ctx, m.scope, memory.SaveInput{Description: text}); err != nil {
		m.fail(ctx, gen, err)
		return
	}
	m.succeed(ctx, gen)
}

// handleConfirmable pauses in Confirming until the user confirms or cancels.
// The classifier guarantees a parsed date here.
func (m *Machine) handleConfirmable(ctx context.Context, gen uint64, classified intent.Intent) {
	pending := pendingFromIntent(classified)
	if pending == nil {
		m.fail(ctx, gen, intent.ErrUnclassifiable)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.pending = pending
	m.setStateLocked(State{Phase: PhaseConfirming, Pending: pending})
}

// commit runs the confirmed action: access check first, then the store call.
// Permission problems are not transient, so they stop the retry loop
// immediately, and the pending action is discarded on any terminal failure
// (Retry rebuilds it from the original input).
func (m *Machine) commit(ctx context.Context, gen uint64, pending PendingAction) {
	if err := m.calendar.RequestAccess(ctx); err != nil {
		m.clearPending(gen)
		m.fail(ctx, gen, err)
		return
	}

	err := retry.Do(ctx, m.policy, func(ctx context.Context) error {
		var err error
		switch pending.Kind {
		case PendingReminder:
			_, err = m.calendar.CreateReminder(ctx, gcalendar.CreateReminderRequest{
				Task:     pending.Title,
				Notes:    pending.Notes,
				DueTime:  pending.StartAt,
				Timezone: m.timezone,
			})
		case PendingCalendar:
			_, err = m.calendar.CreateEvent(ctx, gcalendar.CreateEventRequest{
				Summary:     pending.Title,
				Description: pending.Notes,
				Location:    pending.Location,
				StartTime:   pending.StartAt,
				EndTime:     pending.EndAt,
				Timezone:    m.timezone,
			})
		}
		if errors.Is(err, gcalendar.ErrPermissionDenied) || errors.Is(err, gcalendar.ErrNoWritableCalendar) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		m.clearPending(gen)
		m.fail(ctx, gen, err)
		return
	}

	m.clearPending(gen)
	m.succeed(ctx, gen)
}

// succeed shows Success, then auto-returns to Input after the linger delay
// unless the state moved on meanwhile.
func (m *Machine) succeed(ctx context.Context, gen uint64) {
	m.apply(ctx, gen, State{Phase: PhaseSuccess})

	time.AfterFunc(m.linger, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.gen || m.state.Phase != PhaseSuccess {
			return
		}
		m.setStateLocked(State{Phase: PhaseInput})
	})
}

// fail normalizes and displays an error, unless the pipeline was superseded.
func (m *Machine) fail(ctx context.Context, gen uint64, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	d := alert.Normalize(err)
	m.l.Warnf(ctx, "conversation: turn failed: %v (alert %s)", err, d.ID)
	m.apply(ctx, gen, State{Phase: PhaseError, Alert: &d})
}

// apply installs a new state if the generation is still current. This is the
// single gate that keeps superseded pipelines from mutating shared state.
func (m *Machine) apply(ctx context.Context, gen uint64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		m.l.Debugf(ctx, "conversation: dropping stale result from generation %d", gen)
		return
	}
	m.setStateLocked(st)
}

func (m *Machine) clearPending(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.gen {
		m.pending = nil
	}
}

// supersedeLocked bumps the generation, cancels the previous pipeline, and
// returns a fresh context detached from the caller's (the pipeline outlives
// the HTTP request that started it).
func (m *Machine) supersedeLocked(ctx context.Context) (uint64, context.Context) {
	m.gen++
	if m.cancel != nil {
		m.cancel()
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	return m.gen, runCtx
}

func (m *Machine) connectivityErrorLocked() State {
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	d := alert.Normalize(reachability.ErrOffline)
	m.connAlertID = d.ID
	m.setStateLocked(State{Phase: PhaseError, Alert: &d})
	return m.state
}

// transientClassification reports whether a classification failure is worth
// another attempt. A well-formed but unusable answer (ambiguous intent, bad
// date, empty input) will not improve on retry; service failures might.
func transientClassification(err error) bool {
	return !errors.Is(err, intent.ErrUnclassifiable) &&
		!errors.Is(err, intent.ErrUnparseableDate) &&
		!errors.Is(err, intent.ErrEmptyInput)
}

func (m *Machine) setStateLocked(st State) {
	m.state = st
	select {
	case m.updates <- st:
	default:
	}
}
