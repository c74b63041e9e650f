package pinevoice

import (
	"context"
	"net/http"
	"net/url"
)

// CreateCall initiates a phone call and returns immediately with the
// gateway-assigned call id. Use [Client.GetCall] or [Client.WaitForCall] to
// track progress.
func (c *Client) CreateCall(ctx context.Context, req *CallRequest) (*CallInitiated, error) {
	if req == nil {
		return nil, newError(ErrorKindAPI, "BAD_REQUEST", "request is required", 400, nil)
	}
	body, err := c.doJSON(ctx, http.MethodPost, "/api/v2/voice/call", buildCallBody(req))
	if err != nil {
		return nil, err
	}
	return parseCallInitiated(body)
}

// GetCall fetches the current state of a call. It returns a *[CallResult]
// with the full transcript once the call has reached a terminal state, and a
// *[CallProgress] before that.
func (c *Client) GetCall(ctx context.Context, callID string) (CallUpdate, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/api/v2/voice/call/"+url.PathEscape(callID), nil)
	if err != nil {
		return nil, err
	}
	return parseCallUpdate(body)
}

// CreateCallAndWait initiates a call and blocks until it reaches a terminal
// state. See [Client.WaitForCall] for the wait behavior and [WaitOptions]
// for progress callbacks.
func (c *Client) CreateCallAndWait(ctx context.Context, req *CallRequest, opts *WaitOptions) (*CallResult, error) {
	initiated, err := c.CreateCall(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.WaitForCall(ctx, initiated.CallID, opts)
}
