// Package webhook posts cleaning reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ccollicutt/fieldnotes/pkg/config"
	"github.com/ccollicutt/fieldnotes/pkg/logging"
	"github.com/ccollicutt/fieldnotes/pkg/output"
)

// DefaultTimeout applies when a target has no timeout of its own.
const DefaultTimeout = config.DefaultWebhookTimeout

const (
	userAgent       = "fieldnotes-webhook"
	maxResponseBody = 1 << 20
)

// Client sends run reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used by Notify.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a webhook client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Target is a single endpoint.
type Target struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Response is the outcome of one delivery.
type Response struct {
	Name       string
	StatusCode int
	Body       string
	Duration   time.Duration
	Err        error
}

// Success reports whether the endpoint answered 2xx.
func (r *Response) Success() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts report as JSON to target.
func (c *Client) Send(ctx context.Context, report *output.Report, target Target) *Response {
	start := time.Now()
	resp := &Response{}
	fail := func(err error) *Response {
		resp.Err = err
		resp.Duration = time.Since(start)
		return resp
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fail(fmt.Errorf("encoding report: %w", err))
	}

	timeout := target.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if report.Metadata.RunID != "" {
		req.Header.Set("X-Fieldnotes-Run-Id", report.Metadata.RunID)
	}
	if target.Token != "" {
		req.Header.Set("Authorization", "Bearer "+target.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("request failed: %w", err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return fail(fmt.Errorf("reading response: %w", err))
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Duration = time.Since(start)
	if resp.StatusCode >= 400 {
		resp.Err = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp
}

// ShouldFire reports whether a webhook with the given trigger fires for a
// run that did or did not null any date values.
func ShouldFire(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasIssues
	}
}

// Notify sends report to every hook whose trigger fires and returns the
// responses in hook order. Delivery failures are logged, not returned; a
// webhook never fails a run.
func (c *Client) Notify(ctx context.Context, report *output.Report, hooks []config.WebhookConfig) []*Response {
	var responses []*Response
	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, report.HasIssues()) {
			continue
		}

		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		resp := c.Send(ctx, report, Target{URL: wh.URL, Token: wh.Token, Timeout: wh.Timeout})
		resp.Name = name

		if resp.Success() {
			c.logger.Info("webhook sent",
				slog.String("webhook", name),
				slog.Int("status", resp.StatusCode),
				slog.Duration("duration", resp.Duration))
		} else {
			c.logger.Warn("webhook failed",
				slog.String("webhook", name),
				slog.Any("error", resp.Err))
		}
		responses = append(responses, resp)
	}
	return responses
}
