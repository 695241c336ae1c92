package gcalendar

import "context"

// NewUnavailable returns a Store for deployments without calendar
// credentials. Every operation reports ErrPermissionDenied, which surfaces
// as the actionable grant-access message.
func NewUnavailable() Store {
	return unavailableStore{}
}

type unavailableStore struct{}

func (unavailableStore) RequestAccess(ctx context.Context) error {
	return ErrPermissionDenied
}

func (unavailableStore) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	return nil, ErrPermissionDenied
}

func (unavailableStore) CreateReminder(ctx context.Context, req CreateReminderRequest) (*Event, error) {
	return nil, ErrPermissionDenied
}
