package pinevoice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// newRequest builds a gateway request with the standard headers: bearer
// token, user id, user agent and a fresh request id for tracing.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.gatewayURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("X-Pine-User-Id", c.userID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// doJSON issues one create or status request and returns the raw 2xx body.
// Non-2xx responses are classified into typed errors; transport failures
// are reported with status 0.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, newError(ErrorKindAPI, "ENCODE_FAILED", "failed to encode request body", 0, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, newError(ErrorKindAPI, "REQUEST_FAILED", "failed to create request", 0, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(ErrorKindAPI, "REQUEST_FAILED", "request failed", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrorKindAPI, "RESPONSE_READ_FAILED", "failed to read response body", 0, err)
	}
	if resp.StatusCode >= 400 {
		return nil, classifyError(resp.StatusCode, data)
	}
	return data, nil
}
