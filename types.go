package pinevoice

import (
	"time"

	"github.com/go-openapi/swag"
)

// CallState is the lifecycle state of a call as reported by the gateway.
// Transitions are server-driven; the SDK only observes them.
type CallState string

const (
	CallStateInitiated  CallState = "initiated"
	CallStateInProgress CallState = "in_progress"
	CallStateCompleted  CallState = "completed"
	CallStateFailed     CallState = "failed"
	CallStateCancelled  CallState = "cancelled"
)

// Terminal reports whether no further transition can occur from s.
func (s CallState) Terminal() bool {
	switch s {
	case CallStateCompleted, CallStateFailed, CallStateCancelled:
		return true
	}
	return false
}

// TranscriptTurn is a single turn in a call transcript.
type TranscriptTurn struct {
	// Speaker is "agent" or "user".
	Speaker string `json:"speaker"`

	// Text is what was said.
	Text string `json:"text"`
}

// CallRequest describes an outbound call to place.
//
// To, Name, Context and Objective are required by the gateway; the remaining
// fields are optional.
type CallRequest struct {
	// To is the destination number in E.164 format, e.g. "+14155551234".
	To string

	// Name is the display name of the callee, e.g. "Dr. Smith Office".
	Name string

	// Context is free-text background the agent can use during the call.
	Context string

	// Objective is what the agent should accomplish.
	Objective string

	// Instructions carries additional detailed instructions for the agent.
	Instructions string

	// Caller sets the caller-id presented to the callee.
	Caller string

	// Voice selects the agent voice.
	Voice string

	// MaxDurationMinutes bounds the call length. Zero means the gateway
	// default of 120 minutes.
	MaxDurationMinutes int

	// EnableSummary requests an LLM-generated summary after the call.
	EnableSummary bool
}

// CallInitiated is returned when a call has been accepted by the gateway.
type CallInitiated struct {
	// CallID is the gateway-assigned identifier, stable for the call's
	// lifetime.
	CallID string `json:"call_id"`

	// Status is the initial state, always [CallStateInProgress].
	Status CallState `json:"status"`
}

// CallUpdate is the result of a status fetch: either a *[CallProgress]
// (non-terminal) or a *[CallResult] (terminal). Switch on the concrete type
// or check State().Terminal():
//
//	update, err := client.GetCall(ctx, callID)
//	if err != nil {
//	    return err
//	}
//	switch u := update.(type) {
//	case *pinevoice.CallResult:
//	    fmt.Println(u.Summary)
//	case *pinevoice.CallProgress:
//	    fmt.Println("still going:", u.Status)
//	}
type CallUpdate interface {
	// State returns the reported call state.
	State() CallState

	callUpdate()
}

// CallProgress is a non-terminal view of a call. It is ephemeral and
// superseded by each new observation.
//
// Real-time intermediate updates are not currently emitted by the gateway;
// during the polling fallback a progress value carries only basic status
// information.
type CallProgress struct {
	CallID string    `json:"call_id"`
	Status CallState `json:"status"`

	// DurationSeconds is the elapsed call time, when known.
	DurationSeconds *int `json:"duration_seconds,omitempty"`

	// Phase is a server-assigned label such as "dialing", when known.
	Phase string `json:"phase,omitempty"`

	// PartialTranscript holds the turns spoken so far, in order, when known.
	PartialTranscript []TranscriptTurn `json:"partial_transcript,omitempty"`
}

func (p *CallProgress) State() CallState { return p.Status }
func (p *CallProgress) callUpdate()      {}

// Elapsed returns the elapsed call time, or zero when unknown.
func (p *CallProgress) Elapsed() time.Duration {
	return time.Duration(swag.IntValue(p.DurationSeconds)) * time.Second
}

// CallResult is the single authoritative record of a finished call.
type CallResult struct {
	CallID string `json:"call_id"`

	// Status is one of the terminal states: completed, failed, cancelled.
	Status CallState `json:"status"`

	// DurationSeconds is the total call length.
	DurationSeconds int `json:"duration_seconds"`

	// Summary is the post-call summary. Empty unless the call was created
	// with EnableSummary.
	Summary string `json:"summary,omitempty"`

	// Transcript holds the full conversation in chronological order.
	Transcript []TranscriptTurn `json:"transcript"`

	// TriageCategory is the server's post-call classification of the
	// outcome, when assigned.
	TriageCategory string `json:"triage_category,omitempty"`

	// CreditsCharged is the number of credits billed for the call.
	CreditsCharged int `json:"credits_charged"`
}

func (r *CallResult) State() CallState { return r.Status }
func (r *CallResult) callUpdate()      {}

// Duration returns the total call length.
func (r *CallResult) Duration() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}

// Credentials are access credentials returned after email verification.
// See [AuthClient].
type Credentials struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}
