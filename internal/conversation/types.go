package conversation

import (
	"time"

	"capture-recall/internal/alert"
	"capture-recall/internal/intent"
)

// Phase is the conversation's UI-visible phase.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInput      Phase = "input"
	PhaseApiCall    Phase = "api_call"
	PhaseConfirming Phase = "confirming"
	PhaseResponse   Phase = "response"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// State is a tagged value: the phase plus at most one payload. Invalid
// combinations (loading while showing an error, say) cannot be represented.
type State struct {
	Phase Phase `json:"phase"`

	// Answer and SourceCount are set in Response.
	Answer      string `json:"answer,omitempty"`
	SourceCount int    `json:"source_count,omitempty"`

	// Pending is set in Confirming.
	Pending *PendingAction `json:"pending,omitempty"`

	// Alert is set in Error.
	Alert *alert.DisplayableError `json:"alert,omitempty"`
}

// Equal compares states. Error states compare by alert identity, so two
// alerts from the same failure category are still distinct occurrences.
func (s State) Equal(other State) bool {
	if s.Phase != other.Phase {
		return false
	}
	switch s.Phase {
	case PhaseResponse:
		return s.Answer == other.Answer && s.SourceCount == other.SourceCount
	case PhaseError:
		return s.Alert != nil && other.Alert != nil && s.Alert.ID == other.Alert.ID
	case PhaseConfirming:
		return s.Pending == other.Pending
	default:
		return true
	}
}

// PendingKind distinguishes the two confirmable action types.
type PendingKind string

const (
	PendingReminder PendingKind = "reminder"
	PendingCalendar PendingKind = "calendar"
)

// PendingAction is a not-yet-committed reminder or calendar event awaiting
// user confirmation. Owned exclusively by the Machine; created from a
// classified intent, destroyed on confirm or cancel. Title, times, notes and
// location may be edited before commit.
type PendingAction struct {
	Kind     PendingKind `json:"kind"`
	Title    string      `json:"title"`
	StartAt  time.Time   `json:"start_at"`
	EndAt    time.Time   `json:"end_at,omitempty"`
	Location string      `json:"location,omitempty"`
	Notes    string      `json:"notes,omitempty"`
}

// PendingEdit carries user edits to a pending action. Nil fields are left
// unchanged.
type PendingEdit struct {
	Title    *string    `json:"title,omitempty"`
	StartAt  *time.Time `json:"start_at,omitempty"`
	EndAt    *time.Time `json:"end_at,omitempty"`
	Location *string    `json:"location,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
}

func pendingFromIntent(in intent.Intent) *PendingAction {
	switch in.Type {
	case intent.TypeReminder:
		return &PendingAction{
			Kind:    PendingReminder,
			Title:   in.Reminder.Task,
			StartAt: in.Reminder.DueAt,
		}
	case intent.TypeCalendar:
		return &PendingAction{
			Kind:     PendingCalendar,
			Title:    in.Calendar.Title,
			StartAt:  in.Calendar.StartAt,
			EndAt:    in.Calendar.EndAt,
			Location: in.Calendar.Location,
		}
	default:
		return nil
	}
}

func (p *PendingAction) applyEdit(edit PendingEdit) {
	if edit.Title != nil {
		p.Title = *edit.Title
	}
	if edit.StartAt != nil {
		p.StartAt = *edit.StartAt
	}
	if edit.EndAt != nil {
		p.EndAt = *edit.EndAt
	}
	if edit.Location != nil {
		p.Location = *edit.Location
	}
	if edit.Notes != nil {
		p.Notes = *edit.Notes
	}
}
