// Package google manages game events through the Google Calendar API.
package google

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/MrJamesThe3rd/refassist/internal/calendar"
)

// Credentials authorise calendar calls. With a refresh token the access
// token is renewed as it expires; otherwise AccessToken is used as is.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
}

// Configured reports whether any credential is present.
func (c Credentials) Configured() bool {
	return c.RefreshToken != "" || c.AccessToken != ""
}

func (c Credentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	if c.RefreshToken == "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.AccessToken})
	}

	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}

	return conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
	})
}

// Client manages events in one calendar.
type Client struct {
	events     *gcal.EventsService
	calendarID string
	timeZone   string
}

// NewClient builds a client for calendarID. Auth and transport come from
// opts, typically option.WithTokenSource(creds.TokenSource(ctx)).
func NewClient(ctx context.Context, calendarID, timeZone string, opts ...option.ClientOption) (*Client, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	return &Client{
		events:     gcal.NewEventsService(svc),
		calendarID: calendarID,
		timeZone:   timeZone,
	}, nil
}

func (c *Client) resource(ev calendar.Event) *gcal.Event {
	overrides := make([]*gcal.EventReminder, 0, len(ev.Reminders))
	for _, r := range ev.Reminders {
		overrides = append(overrides, &gcal.EventReminder{Method: r.Method, Minutes: int64(r.Minutes)})
	}

	return &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: c.timeZone},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: c.timeZone},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

func (c *Client) InsertEvent(ctx context.Context, ev calendar.Event) (string, error) {
	created, err := c.events.Insert(c.calendarID, c.resource(ev)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("inserting event: %w", err)
	}

	return created.Id, nil
}

func (c *Client) UpdateEvent(ctx context.Context, eventID string, ev calendar.Event) error {
	if _, err := c.events.Update(c.calendarID, eventID, c.resource(ev)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("updating event %s: %w", eventID, err)
	}

	return nil
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event %s: %w", eventID, err)
	}

	return nil
}
