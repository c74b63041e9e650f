package pinevoice_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pinevoice "github.com/19PINE-AI/pine-voice-go"
)

const testCallID = "abc123"

// writeEvent writes one SSE record and flushes it to the client.
func writeEvent(w http.ResponseWriter, record string) {
	_, _ = fmt.Fprint(w, record)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func startStream(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
}

const resultEvent = "id: ev-final\nevent: result\ndata: " +
	`{"call_id":"abc123","status":"completed","duration_seconds":42,` +
	`"transcript":[{"speaker":"agent","text":"hi"}],"credits_charged":3}` + "\n\n"

// TestWaitForCall_StreamDeliversResult verifies the stream path wins when it
// delivers a result, and that the status endpoint is never polled.
func TestWaitForCall_StreamDeliversResult(t *testing.T) {
	var statusCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/voice/call/"+testCallID+"/stream", func(w http.ResponseWriter, r *http.Request) {
		startStream(w)
		writeEvent(w, resultEvent)
	})
	mux.HandleFunc("/api/v2/voice/call/"+testCallID, func(w http.ResponseWriter, r *http.Request) {
		statusCalls.Add(1)
		_, _ = w.Write([]byte(`{"call_id":"abc123","status":"in_progress"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.WaitForCall(context.Background(), testCallID, &pinevoice.WaitOptions{
		PollInterval: 10 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.Equal(t, pinevoice.CallStateCompleted, result.Status)
	assert.Equal(t, 42, result.DurationSeconds)
	assert.Equal(t, []pinevoice.TranscriptTurn{{Speaker: "agent", Text: "hi"}}, result.Transcript)
	assert.Equal(t, 3, result.CreditsCharged)
	assert.Equal(t, int32(0), statusCalls.Load(), "status endpoint must not be polled")
}

// TestWaitForCall_ReconnectPresentsCursor verifies a dropped stream
// reconnects exactly once, presenting the last seen event id.
func TestWaitForCall_ReconnectPresentsCursor(t *testing.T) {
	var streamCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/voice/call/"+testCallID+"/stream", func(w http.ResponseWriter, r *http.Request) {
		switch streamCalls.Add(1) {
		case 1:
			assert.Empty(t, r.Header.Get("Last-Event-Id"))
			startStream(w)
			writeEvent(w, "id: ev-7\nevent: ping\ndata: {}\n\n")
			// Drop the connection mid-stream without a clean close.
			panic(http.ErrAbortHandler)
		default:
			assert.Equal(t, "ev-7", r.Header.Get("Last-Event-Id"))
			startStream(w)
			writeEvent(w, resultEvent)
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.WaitForCall(context.Background(), testCallID, nil)

	require.NoError(t, err)
	assert.Equal(t, pinevoice.CallStateCompleted, result.Status)
	assert.Equal(t, int32(2), streamCalls.Load())
}

// TestWaitForCall_PollFallback verifies the poll loop after a stream that
// ends without a result: each iteration waits the configured interval, the
// progress callback fires on non-terminal statuses, and the terminal status
// returns.
func TestWaitForCall_PollFallback(t *testing.T) {
	const interval = 25 * time.Millisecond
	var statusCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/voice/call/"+testCallID+"/stream", func(w http.ResponseWriter, r *http.Request) {
		startStream(w)
		writeEvent(w, ": heartbeat\n\n")
		// Clean end without a result event.
	})
	mux.HandleFunc("/api/v2/voice/call/"+testCallID, func(w http.ResponseWriter, r *http.Request) {
		if statusCalls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"call_id":"abc123","status":"in_progress","duration_seconds":15}`))
			return
		}
		_, _ = w.Write([]byte(`{"call_id":"abc123","status":"completed","duration_seconds":42,"transcript":[{"speaker":"agent","text":"hi"}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var snapshots []*pinevoice.CallProgress
	client := newTestClient(t, server.URL)

	start := time.Now()
	result, err := client.WaitForCall(context.Background(), testCallID, &pinevoice.WaitOptions{
		PollInterval: interval,
		OnProgress: func(p *pinevoice.CallProgress) {
			snapshots = append(snapshots, p)
		},
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 42, result.DurationSeconds)
	assert.Len(t, result.Transcript, 1)
	assert.Equal(t, int32(2), statusCalls.Load())
	assert.GreaterOrEqual(t, elapsed, 2*interval, "each poll iteration must wait the interval")

	require.Len(t, snapshots, 1)
	assert.Equal(t, pinevoice.CallStateInProgress, snapshots[0].Status)
	assert.Equal(t, swag.Int(15), snapshots[0].DurationSeconds)
	assert.Equal(t, 15*time.Second, snapshots[0].Elapsed())
}

// TestWaitForCall_StreamErrorDegradesWithoutReconnect verifies a classified
// API failure on the stream skips the reconnect budget and goes straight to
// polling.
func TestWaitForCall_StreamErrorDegradesWithoutReconnect(t *testing.T) {
	var streamCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/voice/call/"+testCallID+"/stream", func(w http.ResponseWriter, r *http.Request) {
		streamCalls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"no such call"}}`))
	})
	mux.HandleFunc("/api/v2/voice/call/"+testCallID, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"call_id":"abc123","status":"completed","duration_seconds":1}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.WaitForCall(context.Background(), testCallID, &pinevoice.WaitOptions{
		PollInterval: 10 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.Equal(t, pinevoice.CallStateCompleted, result.Status)
	assert.Equal(t, int32(1), streamCalls.Load(), "classified errors must not consume a reconnect")
}

// TestWaitForCall_DisableStream verifies the stream endpoint is never
// contacted when streaming is disabled.
func TestWaitForCall_DisableStream(t *testing.T) {
	var streamCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/voice/call/"+testCallID+"/stream", func(w http.ResponseWriter, r *http.Request) {
		streamCalls.Add(1)
		startStream(w)
	})
	mux.HandleFunc("/api/v2/voice/call/"+testCallID, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"call_id":"abc123","status":"cancelled"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.WaitForCall(context.Background(), testCallID, &pinevoice.WaitOptions{
		PollInterval:  10 * time.Millisecond,
		DisableStream: true,
	})

	require.NoError(t, err)
	assert.Equal(t, pinevoice.CallStateCancelled, result.Status)
	assert.Equal(t, int32(0), streamCalls.Load())
}

// TestWaitForCall_ReservedProgressEvents verifies the forward-compatibility
// path: status events on the stream feed the callback before the result
// arrives.
func TestWaitForCall_ReservedProgressEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/voice/call/"+testCallID+"/stream", func(w http.ResponseWriter, r *http.Request) {
		startStream(w)
		writeEvent(w, "id: ev-1\nevent: status\ndata: "+
			`{"call_id":"abc123","status":"in_progress","phase":"dialing","duration_seconds":5,`+
			`"partial_transcript":[{"speaker":"agent","text":"hello"}]}`+"\n\n")
		writeEvent(w, resultEvent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var snapshots []*pinevoice.CallProgress
	client := newTestClient(t, server.URL)
	result, err := client.WaitForCall(context.Background(), testCallID, &pinevoice.WaitOptions{
		OnProgress: func(p *pinevoice.CallProgress) {
			snapshots = append(snapshots, p)
		},
	})

	require.NoError(t, err)
	assert.Equal(t, pinevoice.CallStateCompleted, result.Status)

	require.Len(t, snapshots, 1)
	assert.Equal(t, "dialing", snapshots[0].Phase)
	assert.Equal(t, 5*time.Second, snapshots[0].Elapsed())
	assert.Equal(t, []pinevoice.TranscriptTurn{{Speaker: "agent", Text: "hello"}}, snapshots[0].PartialTranscript)
}

// TestWaitForCall_Cancellation verifies abandoning a wait stops the polling
// loop promptly.
func TestWaitForCall_Cancellation(t *testing.T) {
	var statusCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/voice/call/"+testCallID, func(w http.ResponseWriter, r *http.Request) {
		statusCalls.Add(1)
		_, _ = w.Write([]byte(`{"call_id":"abc123","status":"in_progress"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	client := newTestClient(t, server.URL)
	result, err := client.WaitForCall(ctx, testCallID, &pinevoice.WaitOptions{
		PollInterval:  10 * time.Millisecond,
		DisableStream: true,
	})

	assert.Nil(t, result)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// No background polling may continue after the wait returns.
	seen := statusCalls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, seen, statusCalls.Load())
}

// TestWaitForCall_PollErrorPropagates verifies a failing status fetch ends
// the wait with the classified error, unmodified.
func TestWaitForCall_PollErrorPropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/voice/call/"+testCallID, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"WEIRD","message":"??"}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.WaitForCall(context.Background(), testCallID, &pinevoice.WaitOptions{
		PollInterval:  10 * time.Millisecond,
		DisableStream: true,
	})

	assert.Nil(t, result)
	var apiErr *pinevoice.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, pinevoice.ErrorKindAPI, apiErr.Kind)
	assert.Equal(t, "WEIRD", apiErr.Code)
}

// TestCreateCallAndWait composes create and wait: the id returned by the
// create call is the one waited on.
func TestCreateCallAndWait(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/voice/call", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"call_id":"abc123"}`))
	})
	mux.HandleFunc("/api/v2/voice/call/"+testCallID+"/stream", func(w http.ResponseWriter, r *http.Request) {
		startStream(w)
		writeEvent(w, resultEvent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.CreateCallAndWait(context.Background(), &pinevoice.CallRequest{
		To:        "+14155551234",
		Name:      "Dr. Smith",
		Context:   "dentist office",
		Objective: "schedule cleaning",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "abc123", result.CallID)
	assert.Equal(t, pinevoice.CallStateCompleted, result.Status)
}

// TestCreateCallAndWait_CreateError verifies a failed create propagates
// without any wait starting.
func TestCreateCallAndWait_CreateError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"TOKEN_EXPIRED","message":"expired"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.CreateCallAndWait(context.Background(), &pinevoice.CallRequest{To: "+14155551234"}, nil)

	assert.Nil(t, result)
	var apiErr *pinevoice.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, pinevoice.ErrorKindAuth, apiErr.Kind)
	assert.Equal(t, "TOKEN_EXPIRED", apiErr.Code)
}
