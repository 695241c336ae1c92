package intent

import (
	"fmt"
	"time"
)

// Type is the classified user goal.
type Type string

const (
	TypeQuestion Type = "question"
	TypeSaveInfo Type = "save_info"
	TypeReminder Type = "reminder"
	TypeCalendar Type = "calendar"
	TypeUnknown  Type = "unknown"
)

// Intent is the result of classification. Exactly one payload group is
// populated, matching Type.
type Intent struct {
	Type     Type
	Question *QuestionPayload
	SaveInfo *SaveInfoPayload
	Reminder *ReminderPayload
	Calendar *CalendarPayload
}

// QuestionPayload carries a recall question.
type QuestionPayload struct {
	Query string
}

// SaveInfoPayload carries a fact to remember. Original casing is preserved.
type SaveInfoPayload struct {
	Memory string
}

// ReminderPayload carries a reminder task with its resolved due time.
type ReminderPayload struct {
	Task  string
	DueAt time.Time
}

// CalendarPayload carries a calendar event. EndAt is always set: when the
// classifier yields no end time it defaults to StartAt plus one hour
// (documented policy, see DESIGN.md).
type CalendarPayload struct {
	Title    string
	StartAt  time.Time
	EndAt    time.Time
	Location string
}

// validate enforces the one-payload-matching-type invariant.
func (i Intent) validate() error {
	populated := 0
	for _, set := range []bool{i.Question != nil, i.SaveInfo != nil, i.Reminder != nil, i.Calendar != nil} {
		if set {
			populated++
		}
	}

	switch i.Type {
	case TypeQuestion:
		if populated != 1 || i.Question == nil {
			return fmt.Errorf("%w: question intent with wrong payload", ErrUnclassifiable)
		}
	case TypeSaveInfo:
		if populated != 1 || i.SaveInfo == nil {
			return fmt.Errorf("%w: save_info intent with wrong payload", ErrUnclassifiable)
		}
	case TypeReminder:
		if populated != 1 || i.Reminder == nil || i.Reminder.DueAt.IsZero() {
			return fmt.Errorf("%w: reminder intent with wrong payload", ErrUnclassifiable)
		}
	case TypeCalendar:
		if populated != 1 || i.Calendar == nil || i.Calendar.StartAt.IsZero() {
			return fmt.Errorf("%w: calendar intent with wrong payload", ErrUnclassifiable)
		}
	default:
		return fmt.Errorf("%w: unknown intent type %q", ErrUnclassifiable, i.Type)
	}
	return nil
}
