package gcalendar

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPermissionDenied means calendar access was not granted (missing or
	// rejected credentials). Actionable by the user, unlike network failures.
	ErrPermissionDenied = errors.New("calendar access not granted")

	// ErrNoWritableCalendar means credentials work but no writable target
	// calendar exists. Deliberately distinct from ErrPermissionDenied.
	ErrNoWritableCalendar = errors.New("no writable calendar")
)

// Store is the calendar/reminder commit contract consumed by the
// conversation core.
type Store interface {
	RequestAccess(ctx context.Context) error
	CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error)
	CreateReminder(ctx context.Context, req CreateReminderRequest) (*Event, error)
}

var _ Store = (*Client)(nil)

// CreateEventRequest is the input for committing a calendar event.
type CreateEventRequest struct {
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	Timezone    string // IANA name, e.g. "Europe/Berlin"
}

// CreateReminderRequest is the input for committing a reminder.
type CreateReminderRequest struct {
	Task     string
	Notes    string
	DueTime  time.Time
	Timezone string
}

// Event is a simplified committed event or reminder.
type Event struct {
	ID        string
	Summary   string
	HtmlLink  string
	StartTime time.Time
	EndTime   time.Time
	Location  string
}
