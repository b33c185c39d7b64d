// Package rest sends interaction replies over the remote service's HTTP API.
// Failures are request-scoped errors, never process-fatal.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/drblury/gateflow/internal/client/jsoncodec"
	loggingpkg "github.com/drblury/gateflow/internal/client/logging"
	"github.com/drblury/gateflow/internal/client/objects"
)

const defaultTimeout = 15 * time.Second

// Client posts interaction callbacks and webhook follow-ups.
type Client struct {
	base   string
	token  string
	http   *http.Client
	logger loggingpkg.ServiceLogger
}

// New constructs a reply sender for the given API base URL and bot token.
func New(baseURL, token string, log loggingpkg.ServiceLogger) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		token:  token,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: log,
	}
}

// SendInitial sends the single "initial reply" for an interaction, addressed
// by the request's id/token pair.
func (c *Client) SendInitial(ctx context.Context, interactionID, token string, msg *objects.Message) error {
	body := objects.InteractionResponse{
		Type: objects.ResponseChannelMessage,
		Data: msg,
	}
	return c.post(ctx, fmt.Sprintf("interactions/%s/%s/callback", interactionID, token), body)
}

// SendFollowUp sends one follow-up message over the webhook channel keyed by
// the application id and interaction token.
func (c *Client) SendFollowUp(ctx context.Context, applicationID, token string, msg *objects.Message) error {
	return c.post(ctx, fmt.Sprintf("webhooks/%s/%s", applicationID, token), msg)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := jsoncodec.Marshal(body)
	if err != nil {
		return fmt.Errorf("gateflow: marshalling reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("gateflow: building reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bot "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateflow: sending reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateflow: reply rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if c.logger != nil {
		c.logger.Debug("Reply delivered", loggingpkg.LogFields{
			"path":   path,
			"status": resp.StatusCode,
		})
	}
	return nil
}
