package pinevoice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"
)

// DefaultPollInterval is the delay between status fetches in the polling
// fallback.
const DefaultPollInterval = 10 * time.Second

// maxStreamReconnects is the extra connection attempts allowed after a
// transport-level stream failure, before degrading to polling.
const maxStreamReconnects = 1

// errStreamEnded reports a stream that closed cleanly without delivering a
// result event.
var errStreamEnded = errors.New("event stream ended without a result")

// WaitOptions configures [Client.WaitForCall] and [Client.CreateCallAndWait].
// The zero value prefers the event stream and polls every
// [DefaultPollInterval].
type WaitOptions struct {
	// PollInterval is the delay between status fetches in the polling
	// fallback. Zero means DefaultPollInterval.
	PollInterval time.Duration

	// DisableStream forces the polling fallback without attempting the
	// event stream.
	DisableStream bool

	// OnProgress, when set, receives each non-terminal observation. It is
	// invoked synchronously from the wait's control flow, never
	// concurrently with itself. A panic in the callback unwinds through
	// the wait.
	OnProgress func(*CallProgress)
}

// WaitForCall blocks until the call reaches a terminal state and returns its
// result.
//
// The event stream is tried first: one connection plus one reconnect (the
// reconnect resumes from the last seen event id so no events are missed).
// Any stream failure degrades to polling the status endpoint; it is never
// surfaced. Polling has no upper bound — it runs until the gateway reports a
// terminal state, a status fetch fails, or ctx is cancelled. Streaming is an
// optimization, polling is the contract.
//
// Exactly one result is returned per invocation; WaitForCall never returns a
// non-terminal value.
func (c *Client) WaitForCall(ctx context.Context, callID string, opts *WaitOptions) (*CallResult, error) {
	var o WaitOptions
	if opts != nil {
		o = *opts
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}

	if !o.DisableStream {
		result, err := c.streamUntilComplete(ctx, callID, o.OnProgress)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Debug().Str("call_id", callID).Err(err).
			Msg("event stream unavailable, falling back to polling")
	}

	return c.pollUntilComplete(ctx, callID, o.PollInterval, o.OnProgress)
}

// streamUntilComplete drives the stream path: connect, read events until a
// result arrives, reconnect once on transport failure. Classified API errors
// (*Error) and a clean end without a result do not consume the reconnect
// budget; both degrade immediately.
func (c *Client) streamUntilComplete(ctx context.Context, callID string, onProgress func(*CallProgress)) (*CallResult, error) {
	var cursor string
	for attempt := 0; ; attempt++ {
		result, err := c.streamOnce(ctx, callID, &cursor, onProgress)
		if err == nil {
			return result, nil
		}

		var apiErr *Error
		if errors.As(err, &apiErr) || errors.Is(err, errStreamEnded) ||
			attempt >= maxStreamReconnects || ctx.Err() != nil {
			return nil, err
		}
		c.logger.Debug().Str("call_id", callID).Int("attempt", attempt).Err(err).
			Msg("event stream connection lost, reconnecting")
	}
}

// streamOnce is a single stream connection. It updates *cursor as events
// carrying ids arrive, so a reconnect resumes where this attempt left off.
// The connection is released on every exit path.
func (c *Client) streamOnce(ctx context.Context, callID string, cursor *string, onProgress func(*CallProgress)) (*CallResult, error) {
	stream, err := c.openStream(ctx, callID, *cursor)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	for {
		event, err := stream.readEvent()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errStreamEnded
			}
			return nil, err
		}
		if event.id != "" {
			*cursor = event.id
		}

		switch event.typ {
		case "result":
			if event.data == "" {
				continue
			}
			return resultFromEventData(event.data)
		case "status", "transcript":
			// Reserved: current gateways do not emit these. Kept for
			// forward compatibility.
			if event.data == "" || onProgress == nil {
				continue
			}
			progress, err := progressFromEventData(event.data)
			if err != nil {
				return nil, err
			}
			onProgress(progress)
		}
	}
}

// resultFromEventData parses a result event payload. A result event carrying
// a non-terminal status is malformed.
func resultFromEventData(data string) (*CallResult, error) {
	update, err := parseCallUpdate([]byte(data))
	if err != nil {
		return nil, err
	}
	result, ok := update.(*CallResult)
	if !ok {
		return nil, newError(ErrorKindMalformed, "INVALID_EVENT",
			"result event did not contain a terminal status", 200, nil)
	}
	return result, nil
}

// progressFromEventData parses a status/transcript event payload.
func progressFromEventData(data string) (*CallProgress, error) {
	var progress CallProgress
	if err := json.Unmarshal([]byte(data), &progress); err != nil {
		return nil, errEmptyResponse(err)
	}
	return &progress, nil
}

// pollUntilComplete fetches the call status every interval until a terminal
// state arrives. Errors from the status fetch propagate unmodified.
func (c *Client) pollUntilComplete(ctx context.Context, callID string, interval time.Duration, onProgress func(*CallProgress)) (*CallResult, error) {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		update, err := c.GetCall(ctx, callID)
		if err != nil {
			return nil, err
		}
		switch u := update.(type) {
		case *CallResult:
			return u, nil
		case *CallProgress:
			if onProgress != nil {
				onProgress(u)
			}
		}

		timer.Reset(interval)
	}
}
