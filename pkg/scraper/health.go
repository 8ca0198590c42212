package scraper

import (
	"context"
	"strings"
)

type healthResponse struct {
	Status string `json:"status"`
}

// CheckHealth reports whether the backend answered /health with "healthy".
// Any transport or status failure is returned as an error.
func (c *Client) CheckHealth(ctx context.Context) (bool, error) {
	var resp healthResponse
	if err := c.doGetRequest(ctx, pathHealth, &resp); err != nil {
		return false, err
	}
	return strings.EqualFold(resp.Status, "healthy"), nil
}
