// Package newsletter invokes the external send function that composes and
// dispatches the email for one queue item. Marking the item sent is the
// function's job, not the caller's.
package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"uk.co.dudmesh.pressroom/internal/model"
)

type Client struct {
	url        string
	key        string
	httpClient *http.Client
}

func New(url, key string) *Client {
	return &Client{url: url, key: key, httpClient: http.DefaultClient}
}

type sendRequest struct {
	PostID  string `json:"post_id"`
	QueueID string `json:"queue_id"`
}

func (c *Client) Send(ctx context.Context, postID, queueID string) error {
	if c.url == "" {
		return model.ErrorSenderNotConfigured
	}

	payload, err := json.Marshal(sendRequest{PostID: postID, QueueID: queueID})
	if err != nil {
		return fmt.Errorf("encoding send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling newsletter function: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("newsletter function returned %s: %s", res.Status, string(body))
	}

	return nil
}
