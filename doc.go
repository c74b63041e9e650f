// Package pinevoice provides a Go SDK for the Pine AI voice-agent gateway.
//
// The SDK places outbound phone calls through the gateway and delivers the
// call's outcome (transcript, summary, billing) either by blocking until the
// call completes or by reporting progress through a callback.
//
// # Quick Start
//
// Create a client and place a call:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    pinevoice "github.com/19PINE-AI/pine-voice-go"
//	)
//
//	func main() {
//	    // Credentials fall back to PINE_ACCESS_TOKEN / PINE_USER_ID.
//	    client, err := pinevoice.NewClient()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := client.CreateCallAndWait(context.Background(), &pinevoice.CallRequest{
//	        To:        "+14155551234",
//	        Name:      "Dr. Smith Office",
//	        Context:   "Local dentist office",
//	        Objective: "Schedule a cleaning for Tuesday",
//	    }, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Summary)
//	}
//
// # Client Configuration
//
// The client is configured with functional options:
//
//	client, err := pinevoice.NewClient(
//	    pinevoice.WithCredentials(token, userID),
//	    pinevoice.WithGatewayURL("https://gateway.example.com"),
//	    pinevoice.WithTimeout(time.Minute),
//	    pinevoice.WithLogger(logger),
//	)
//
// # Waiting for Completion
//
// [Client.CreateCallAndWait] and [Client.WaitForCall] prefer a server-push
// event stream for the final result and degrade to polling the status
// endpoint when the stream is unavailable or drops. Polling has no upper
// bound; cancel the context to abandon a wait. Both blocking and
// suspending use are served by the same method: call it directly, or run it
// in a goroutine and cancel through the context.
//
// # Error Handling
//
// All failures are reported as [Error] values carrying a machine-readable
// code, a human-readable message, and the HTTP status (0 for non-HTTP
// failures):
//
//	result, err := client.CreateCallAndWait(ctx, req, nil)
//	if err != nil {
//	    var apiErr *pinevoice.Error
//	    if errors.As(err, &apiErr) {
//	        switch apiErr.Kind {
//	        case pinevoice.ErrorKindAuth:
//	            // Refresh credentials.
//	        case pinevoice.ErrorKindRateLimit:
//	            // Back off.
//	        case pinevoice.ErrorKindCall:
//	            // Inspect apiErr.Code: INVALID_PHONE, DND_BLOCKED, ...
//	        }
//	    }
//	}
//
// # Thread Safety
//
// The [Client] is safe for concurrent use by multiple goroutines. Each wait
// owns its own stream connection and reconnect budget; nothing is shared
// between concurrent waits for different calls.
package pinevoice
