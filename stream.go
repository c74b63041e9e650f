package pinevoice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBodySize limits how much of an error response body is read before
// classification. 4KB is sufficient for any gateway error envelope.
const maxErrorBodySize = 4096

// maxEventSize limits the size of a single stream event, guarding against
// servers that never send the empty-line delimiter.
const maxEventSize = 10 * 1024 * 1024 // 10MB

// streamEvent is one server-push event.
type streamEvent struct {
	// id is the event identifier (from "id:" lines); it becomes the new
	// stream cursor when present.
	id string

	// typ is the event type (from "event:" lines): "result", or the
	// reserved "status"/"transcript".
	typ string

	// data is the payload, multiple "data:" lines joined with newlines.
	data string
}

// eventStream is one long-lived connection to a call's event endpoint.
// It is owned by a single wait invocation and must be closed on every exit
// path.
type eventStream struct {
	resp   *http.Response
	reader *bufio.Reader
}

// openStream connects to the event endpoint for callID, presenting
// lastEventID as the resume cursor when non-empty.
//
// Connection failures are returned unwrapped so the waiter can tell a
// retryable transport fault from a classified API error (*Error).
func (c *Client) openStream(ctx context.Context, callID, lastEventID string) (*eventStream, error) {
	path := "/api/v2/voice/call/" + url.PathEscape(callID) + "/stream"
	req, err := c.newRequest(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return nil, newError(ErrorKindAPI, "REQUEST_FAILED", "failed to create stream request", 0, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if lastEventID != "" {
		req.Header.Set("Last-Event-Id", lastEventID)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		_ = resp.Body.Close()
		return nil, classifyError(resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		_ = resp.Body.Close()
		return nil, newError(ErrorKindAPI, "INVALID_RESPONSE",
			fmt.Sprintf("unexpected stream content type: %s", ct), resp.StatusCode, nil)
	}

	return &eventStream{
		resp:   resp,
		reader: bufio.NewReader(resp.Body),
	}, nil
}

// readEvent reads the next event. Records are newline-delimited; a blank
// line terminates one event; lines starting with ":" are heartbeat comments
// and are skipped. Returns io.EOF when the stream ends cleanly.
func (s *eventStream) readEvent() (*streamEvent, error) {
	event := &streamEvent{}
	hasField := false
	hasData := false
	totalSize := 0

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && hasField {
				// Server closed without the final delimiter.
				return event, nil
			}
			return nil, err
		}

		totalSize += len(line)
		if totalSize > maxEventSize {
			return nil, fmt.Errorf("event exceeds maximum size of %d bytes", maxEventSize)
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		// Empty line marks end of event.
		if line == "" {
			if hasField {
				return event, nil
			}
			continue
		}

		// Field values may or may not carry the space after the colon.
		switch {
		case strings.HasPrefix(line, "data:"):
			data, found := strings.CutPrefix(line, "data: ")
			if !found {
				data, _ = strings.CutPrefix(line, "data:")
			}
			if hasData {
				event.data += "\n" + data
			} else {
				event.data = data
			}
			hasData = true
			hasField = true
		case strings.HasPrefix(line, "event:"):
			var found bool
			event.typ, found = strings.CutPrefix(line, "event: ")
			if !found {
				event.typ, _ = strings.CutPrefix(line, "event:")
			}
			hasField = true
		case strings.HasPrefix(line, "id:"):
			var found bool
			event.id, found = strings.CutPrefix(line, "id: ")
			if !found {
				event.id, _ = strings.CutPrefix(line, "id:")
			}
			hasField = true
		}
		// "retry:" and comment lines are ignored.
	}
}

// Close releases the underlying connection. Safe to call more than once.
func (s *eventStream) Close() error {
	if s.resp != nil && s.resp.Body != nil {
		return s.resp.Body.Close()
	}
	return nil
}
