package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/crewsheet/internal/common"
)

const maxResponseBytes = 4 << 20

// StatusError is a non-2xx reply from the model endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %d", e.Code)
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// RetryPolicy controls how often SendJSON resends after 429, 5xx or a
// transport error. Backoff doubles after each attempt.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

var DefaultRetry = RetryPolicy{Attempts: 2, Backoff: 250 * time.Millisecond}

// SendJSON posts body as JSON to url and returns the raw reply. It is
// provider agnostic: callers pass the URL and auth headers.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger, retry RetryPolicy) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}

	ctx, reqID := common.EnsureRequestID(ctx)
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}

	backoff := retry.Backoff
	var (
		raw    []byte
		status int
	)
	for attempt := 1; ; attempt++ {
		raw, status, err = post(ctx, client, url, bs, headers, reqID, logger)
		if err == nil {
			return raw, status, nil
		}
		var se *StatusError
		retryable := !errors.As(err, &se) || se.Retryable()
		if ctx.Err() != nil || !retryable || attempt >= retry.Attempts {
			return raw, status, err
		}
		logger.Warn("llm.http.retry", "req_id", reqID, "attempt", attempt, "status", status, "err", err, "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return raw, status, ctx.Err()
		}
		backoff *= 2
	}
}

func post(ctx context.Context, client *http.Client, url string, bs []byte, headers map[string]string, reqID string, logger *slog.Logger) ([]byte, int, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	logger.Debug("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}
	return raw, resp.StatusCode, nil
}
