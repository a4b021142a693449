package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ozclean/submission-gateway/internal/config"
)

// A booking on the team calendar, created when a submission is approved.
type CalendarEvent struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	DurationMin int    `json:"duration_min"`
	Location    string `json:"location"`
	Notes       string `json:"notes,omitempty"`
}

type CalendarClient struct {
	baseURL    string
	calendarID string
	token      string
}

func NewCalendarClient(cfg config.CalendarConfig) *CalendarClient {
	return &CalendarClient{
		baseURL:    cfg.BaseURL,
		calendarID: cfg.CalendarID,
		token:      cfg.Token,
	}
}

func (c *CalendarClient) eventsURL() string {
	return fmt.Sprintf("%s/calendars/%s/events", c.baseURL, c.calendarID)
}

func (c *CalendarClient) CreateEvent(ctx context.Context, event CalendarEvent) (string, error) {
	if c.baseURL == "" || c.token == "" {
		return "", ErrNotConfigured
	}

	headers := map[string]string{"Authorization": "Bearer " + c.token}
	resp, err := postJSON(ctx, c.eventsURL(), headers, event)
	if err != nil {
		return "", fmt.Errorf("calendar create failed: %w", err)
	}

	var result struct {
		EventID string `json:"event_id"`
	}
	if err := decodeResponse(resp, "calendar", &result); err != nil {
		return "", err
	}

	return result.EventID, nil
}

func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	if c.baseURL == "" || c.token == "" {
		return ErrNotConfigured
	}

	url := c.eventsURL() + "/" + eventID
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar delete failed: %w", err)
	}

	return drainAndCheck(resp, "calendar")
}
