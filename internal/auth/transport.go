package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single token endpoint round trip.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a provider response we will read.
const maxResponseBytes = 1 << 20

// TransportError is returned when the provider answers with a non-success
// HTTP status. The body is kept for server-side logging only and must never
// be surfaced to the end user.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("token endpoint returned status %d", e.StatusCode)
}

// ErrTimeout is reported when the token endpoint does not answer within the
// configured deadline.
var ErrTimeout = errors.New("token endpoint timed out")

// PostJSON issues a single JSON POST with a bounded timeout and decodes the
// response into T. It never retries: an authorization code is single-use, so
// a failed exchange must not be replayed blindly. Retries, if ever desired,
// belong to the caller.
func PostJSON[T any](ctx context.Context, client *http.Client, url string, body any, timeout time.Duration) (T, error) {
	var zero T

	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("encoding request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return zero, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %v", ErrTimeout, timeout)
		}
		return zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return zero, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, &TransportError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decoding response: %w", err)
	}

	return out, nil
}
