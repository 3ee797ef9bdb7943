package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Bashitha07/BMS-Restaurant-System-sub001/models"
)

// Client talks to the notification event store. The store being absent
// entirely (404/501 deployments without the service) is a normal
// condition; callers degrade rather than error.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates an event-store client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Fetch returns the authenticated recipient's notification log.
func (c *Client) Fetch(ctx context.Context, token string) ([]models.Notification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/notifications/mine", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req, token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch notifications: status %d", resp.StatusCode)
	}
	var out []models.Notification
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}
	return out, nil
}

// Create writes a locally-ingested notification through to the store.
func (c *Client) Create(ctx context.Context, token string, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, token)
	return c.expectOK(req, "create notification")
}

// MarkRead flips a stored notification to READ.
func (c *Client) MarkRead(ctx context.Context, token, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/notifications/"+id+"/read", nil)
	if err != nil {
		return err
	}
	c.authorize(req, token)
	return c.expectOK(req, "mark notification read")
}

// Delete removes a stored notification.
func (c *Client) Delete(ctx context.Context, token, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/notifications/"+id, nil)
	if err != nil {
		return err
	}
	c.authorize(req, token)
	return c.expectOK(req, "delete notification")
}

func (c *Client) authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) expectOK(req *http.Request, op string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: status %d", op, resp.StatusCode)
	}
	return nil
}
