package api

import (
	"context"
	"fmt"
	"strings"
)

// minFormURLLength mirrors the backend's request schema; anything shorter
// cannot be a real form link, so reject it without a round trip.
const minFormURLLength = 10

type fillRequest struct {
	FormURL    string `json:"form_url"`
	AutoSubmit bool   `json:"auto_submit"`
}

// FillForm enqueues a fill job for the given form URL and returns the
// initial snapshot. The job runs asynchronously server-side; poll
// JobStatus with the returned id to follow it.
func (c *Client) FillForm(ctx context.Context, formURL string, autoSubmit bool) (*JobSnapshot, error) {
	formURL = strings.TrimSpace(formURL)
	if len(formURL) < minFormURLLength {
		return nil, &ValidationError{Message: "Please enter a valid form URL"}
	}

	var snap JobSnapshot
	if err := c.request(ctx, "POST", "/api/forms/fill", fillRequest{FormURL: formURL, AutoSubmit: autoSubmit}, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// JobStatus reads the current state of a fill job.
func (c *Client) JobStatus(ctx context.Context, id string) (*JobSnapshot, error) {
	var snap JobSnapshot
	if err := c.request(ctx, "GET", "/api/forms/status/"+id, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// History lists past fill jobs, newest first. Ordering is backend-defined;
// the client does not re-sort.
func (c *Client) History(ctx context.Context, skip, limit int) (*HistoryPage, error) {
	var page HistoryPage
	path := fmt.Sprintf("/api/forms/history?skip=%d&limit=%d", skip, limit)
	if err := c.request(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Mappings lists the learned question-to-field mappings.
func (c *Client) Mappings(ctx context.Context) ([]Mapping, error) {
	var mappings []Mapping
	if err := c.request(ctx, "GET", "/api/forms/mappings", nil, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

// DeleteMapping removes a learned mapping by id.
func (c *Client) DeleteMapping(ctx context.Context, id string) error {
	return c.request(ctx, "DELETE", "/api/forms/mappings/"+id, nil, nil)
}
