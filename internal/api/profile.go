package api

import (
	"context"
	"errors"
	"net/http"
)

// GetProfile fetches the stored profile. A profile that does not exist yet
// is not an error: the method returns (nil, nil) on 404 so callers can show
// an empty editor instead of a failure.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.request(ctx, "GET", "/api/profile/", nil, &profile); err != nil {
		var re *RequestError
		if errors.As(err, &re) && re.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// SaveProfile creates the profile record. The backend treats create and
// update as an idempotent upsert; the only client-side processing is
// whitespace trimming.
func (c *Client) SaveProfile(ctx context.Context, p Profile) (*Profile, error) {
	var saved Profile
	if err := c.request(ctx, "POST", "/api/profile/", p.Trimmed(), &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateProfile replaces the profile record. Calling it twice with
// identical input leaves the same stored state as calling it once.
func (c *Client) UpdateProfile(ctx context.Context, p Profile) (*Profile, error) {
	var saved Profile
	if err := c.request(ctx, "PUT", "/api/profile/", p.Trimmed(), &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
