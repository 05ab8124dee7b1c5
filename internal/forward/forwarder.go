package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/broker-finder/internal/config"
)

// ErrorCategory classifies a failed delivery.
type ErrorCategory string

const (
	CategoryTimeout         ErrorCategory = "timeout"
	CategoryHTTP            ErrorCategory = "http_error"
	CategoryRequest         ErrorCategory = "request_error"
	CategoryInvalidResponse ErrorCategory = "invalid_response"
)

// rawBodyLimit caps how much of a non-JSON response body is captured.
const rawBodyLimit = 1000

// Result describes one delivery attempt.
type Result struct {
	Success    bool          `json:"success"`
	StatusCode int           `json:"status_code,omitempty"`
	Category   ErrorCategory `json:"error_category,omitempty"`
	Error      string        `json:"error,omitempty"`
	Data       any           `json:"data,omitempty"`
	RawBody    string        `json:"raw_body,omitempty"`
}

// Summary aggregates a batch delivery.
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// Forwarder delivers payloads to the configured webhook. Settings are read
// through the accessor on every send, so runtime updates apply to the next
// delivery without a restart.
type Forwarder struct {
	settings func() config.ForwardConfig
	client   *http.Client
}

// NewForwarder creates a Forwarder reading settings from the accessor.
func NewForwarder(settings func() config.ForwardConfig) *Forwarder {
	return &Forwarder{
		settings: settings,
		client:   &http.Client{},
	}
}

// Send delivers a single payload. Delivery problems are reported in the
// Result, never as a panic or a lost error: callers always get a category
// and a human-readable message.
func (f *Forwarder) Send(ctx context.Context, payload any) *Result {
	cfg := f.settings()
	if cfg.URL == "" {
		return &Result{
			Category: CategoryRequest,
			Error:    "webhook url not configured",
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &Result{
			Category: CategoryRequest,
			Error:    fmt.Sprintf("marshal payload: %v", err),
		}
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return &Result{
			Category: CategoryRequest,
			Error:    fmt.Sprintf("create request: %v", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "broker-finder/1.0")
	applyAuth(req, cfg)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return &Result{
				Category: CategoryTimeout,
				Error:    fmt.Sprintf("webhook timed out after %s", timeout),
			}
		}
		return &Result{
			Category: CategoryRequest,
			Error:    fmt.Sprintf("webhook request: %v", err),
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{
			StatusCode: resp.StatusCode,
			Category:   CategoryInvalidResponse,
			Error:      fmt.Sprintf("read response: %v", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Result{
			StatusCode: resp.StatusCode,
			Category:   CategoryHTTP,
			Error:      fmt.Sprintf("webhook returned status %d", resp.StatusCode),
		}
	}

	result := &Result{Success: true, StatusCode: resp.StatusCode}
	var data any
	if json.Unmarshal(respBody, &data) == nil {
		result.Data = data
	} else {
		raw := string(respBody)
		if len(raw) > rawBodyLimit {
			raw = raw[:rawBodyLimit]
		}
		result.RawBody = raw
	}
	return result
}

// SendBatch delivers each payload in order and aggregates the outcome.
func (f *Forwarder) SendBatch(ctx context.Context, payloads []map[string]any) Summary {
	summary := Summary{Total: len(payloads)}
	for i, p := range payloads {
		result := f.Send(ctx, p)
		if result.Success {
			summary.Successful++
			continue
		}
		summary.Failed++
		summary.Errors = append(summary.Errors, fmt.Sprintf("payload %d: %s", i, result.Error))
		zap.L().Warn("forward: delivery failed",
			zap.Int("index", i),
			zap.String("category", string(result.Category)),
			zap.String("error", result.Error),
		)
	}
	return summary
}

// applyAuth sets the auth header. A bearer token wins over an API key and
// gets the "Bearer " prefix when the configured value lacks it.
func applyAuth(req *http.Request, cfg config.ForwardConfig) {
	switch {
	case cfg.BearerToken != "":
		token := cfg.BearerToken
		if !strings.HasPrefix(token, "Bearer ") {
			token = "Bearer " + token
		}
		req.Header.Set("Authorization", token)
	case cfg.APIKey != "":
		req.Header.Set("X-API-Key", cfg.APIKey)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
