// Package client talks to the intake API on behalf of the wizards.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"greenledger/backend/models"
)

const DefaultTimeout = 15 * time.Second

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetTimeout(timeout).
			SetHeaders(map[string]string{"Content-Type": "application/json", "Accept": "application/json"}),
	}
}

// APIError is a non-2xx response. Message comes from the body's "message" or
// "error" field and may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("intake api returned status %d", e.Status)
	}
	return fmt.Sprintf("intake api returned status %d: %s", e.Status, e.Message)
}

// MessageOf returns the server supplied message carried by err, or fallback
// for transport failures and bodies without one.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) SubmitConnection(ctx context.Context, req models.CloudConnectionRequest) (models.ConnectionReceipt, error) {
	var out struct {
		Connection models.ConnectionReceipt `json:"connection"`
	}
	if err := c.post(ctx, "/api/cloud-connection", req, &out); err != nil {
		return models.ConnectionReceipt{}, err
	}
	return out.Connection, nil
}

func (c *Client) JoinWaitlist(ctx context.Context, req models.WaitlistRequest) (models.WaitlistEntry, error) {
	var out struct {
		Data models.WaitlistEntry `json:"data"`
	}
	if err := c.post(ctx, "/api/waitlist", req, &out); err != nil {
		return models.WaitlistEntry{}, err
	}
	return out.Data, nil
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	var eb errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(&eb).
		Post(path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	if resp.IsError() {
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		return &APIError{Status: resp.StatusCode(), Message: msg}
	}
	return nil
}
