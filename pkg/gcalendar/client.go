package gcalendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar API as the commit target for confirmed
// reminders and events.
type Client struct {
	service    *calendar.Service
	calendarID string
}

// NewClientFromCredentialsFile creates a client from a Service Account JSON
// file. A missing or unreadable credentials file means access was never
// granted, surfaced as ErrPermissionDenied.
func NewClientFromCredentialsFile(ctx context.Context, credentialsPath, calendarID string) (*Client, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read credentials: %v", ErrPermissionDenied, err)
	}
	return NewClientFromCredentialsJSON(ctx, data, calendarID)
}

// NewClientFromCredentialsJSON creates a client from raw Service Account JSON
// bytes, falling back to OAuth installed-app credentials plus token.json.
func NewClientFromCredentialsJSON(ctx context.Context, credentialsJSON []byte, calendarID string) (*Client, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, calendar.CalendarScope)
	if err == nil {
		svc, svcErr := calendar.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx)))
		if svcErr != nil {
			return nil, fmt.Errorf("failed to create calendar service: %w", svcErr)
		}
		return &Client{service: svc, calendarID: calendarID}, nil
	}

	var oauthCreds struct {
		Installed struct {
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
		} `json:"installed"`
	}
	if jsonErr := json.Unmarshal(credentialsJSON, &oauthCreds); jsonErr != nil {
		return nil, fmt.Errorf("unsupported credentials format: %w", err)
	}

	tokenData, tokenErr := os.ReadFile("token.json")
	if tokenErr != nil {
		return nil, fmt.Errorf("%w: OAuth credentials present but no token.json", ErrPermissionDenied)
	}
	var tok oauth2.Token
	if jsonErr := json.Unmarshal(tokenData, &tok); jsonErr != nil {
		return nil, fmt.Errorf("failed to parse token.json: %w", jsonErr)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     oauthCreds.Installed.ClientID,
		ClientSecret: oauthCreds.Installed.ClientSecret,
		Scopes:       []string{calendar.CalendarScope},
		Endpoint:     google.Endpoint,
	}
	svc, svcErr := calendar.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, &tok)))
	if svcErr != nil {
		return nil, fmt.Errorf("failed to create calendar service from OAuth token: %w", svcErr)
	}
	return &Client{service: svc, calendarID: calendarID}, nil
}

// NewClientFromHTTP creates a client from a pre-configured HTTP client.
// Used by tests against a stub server.
func NewClientFromHTTP(ctx context.Context, httpClient *http.Client, baseURL, calendarID string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if baseURL != "" {
		opts = append(opts, option.WithEndpoint(baseURL))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Client{service: svc, calendarID: calendarID}, nil
}

// RequestAccess verifies the credentials can write the configured calendar.
// Distinguishes denied access (ErrPermissionDenied) from a missing or
// read-only target calendar (ErrNoWritableCalendar).
func (c *Client) RequestAccess(ctx context.Context) error {
	entry, err := c.service.CalendarList.Get(c.calendarID).Context(ctx).Do()
	if err != nil {
		return mapAccessError(err)
	}
	if entry.AccessRole != "writer" && entry.AccessRole != "owner" {
		return fmt.Errorf("%w: access role is %q", ErrNoWritableCalendar, entry.AccessRole)
	}
	return nil
}

// CreateEvent commits a calendar event.
func (c *Client) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start: &calendar.EventDateTime{
			DateTime: req.StartTime.Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.EndTime.Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
	}

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, mapAccessError(err)
	}

	return &Event{
		ID:        created.Id,
		Summary:   created.Summary,
		HtmlLink:  created.HtmlLink,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
	}, nil
}

// CreateReminder commits a reminder as a calendar event with a popup alert at
// the due time.
func (c *Client) CreateReminder(ctx context.Context, req CreateReminderRequest) (*Event, error) {
	event := &calendar.Event{
		Summary:     req.Task,
		Description: req.Notes,
		Start: &calendar.EventDateTime{
			DateTime: req.DueTime.Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.DueTime.Add(15 * time.Minute).Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: 0},
			},
		},
	}

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, mapAccessError(err)
	}

	return &Event{
		ID:        created.Id,
		Summary:   created.Summary,
		HtmlLink:  created.HtmlLink,
		StartTime: req.DueTime,
		EndTime:   req.DueTime,
	}, nil
}

// mapAccessError folds googleapi status codes into the package sentinels.
func mapAccessError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNoWritableCalendar, err)
		}
	}
	return fmt.Errorf("calendar request failed: %w", err)
}
