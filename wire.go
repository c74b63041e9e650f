package pinevoice

import "encoding/json"

// DefaultMaxDurationMinutes is the gateway's default call-length bound,
// applied when [CallRequest.MaxDurationMinutes] is zero.
const DefaultMaxDurationMinutes = 120

// callBody is the wire shape of a create-call request.
type callBody struct {
	DialedNumber         string `json:"dialed_number"`
	CalleeName           string `json:"callee_name"`
	CalleeContext        string `json:"callee_context"`
	CallObjective        string `json:"call_objective"`
	DetailedInstructions string `json:"detailed_instructions"`
	MaxDurationMinutes   int    `json:"max_duration_minutes"`
	Caller               string `json:"caller,omitempty"`
	Voice                string `json:"voice,omitempty"`
	EnableSummary        bool   `json:"enable_summary,omitempty"`
}

// buildCallBody maps a CallRequest to the wire format. Instructions default
// to the empty string and the duration bound to DefaultMaxDurationMinutes;
// both are always serialized. Unset optional fields are omitted.
func buildCallBody(req *CallRequest) callBody {
	body := callBody{
		DialedNumber:         req.To,
		CalleeName:           req.Name,
		CalleeContext:        req.Context,
		CallObjective:        req.Objective,
		DetailedInstructions: req.Instructions,
		MaxDurationMinutes:   req.MaxDurationMinutes,
		Caller:               req.Caller,
		Voice:                req.Voice,
		EnableSummary:        req.EnableSummary,
	}
	if body.MaxDurationMinutes <= 0 {
		body.MaxDurationMinutes = DefaultMaxDurationMinutes
	}
	return body
}

// parseCallInitiated parses a create-call response body.
func parseCallInitiated(body []byte) (*CallInitiated, error) {
	if len(body) == 0 {
		return nil, errEmptyResponse(nil)
	}
	var initiated CallInitiated
	if err := json.Unmarshal(body, &initiated); err != nil {
		return nil, errEmptyResponse(err)
	}
	if initiated.CallID == "" {
		return nil, errEmptyResponse(nil)
	}
	initiated.Status = CallStateInProgress
	return &initiated, nil
}

// parseCallUpdate parses a status or result body into the
// [CallProgress] | [CallResult] union, discriminated by the status field.
// Missing fields on a terminal body default to empty/zero.
func parseCallUpdate(body []byte) (CallUpdate, error) {
	if len(body) == 0 {
		return nil, errEmptyResponse(nil)
	}
	var probe struct {
		Status CallState `json:"status"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, errEmptyResponse(err)
	}

	if probe.Status.Terminal() {
		var result CallResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, errEmptyResponse(err)
		}
		return &result, nil
	}

	var progress CallProgress
	if err := json.Unmarshal(body, &progress); err != nil {
		return nil, errEmptyResponse(err)
	}
	return &progress, nil
}
