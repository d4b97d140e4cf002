package domain

import "slices"

// CallStatus tracks the lifecycle of a single call.
type CallStatus int

const (
	// CallIncoming: scenario selected, phone ringing, nothing live yet.
	CallIncoming CallStatus = iota
	// CallActive: microphone and remote session are live.
	CallActive
	// CallEnded: torn down; the transcript and call data are final.
	CallEnded
)

// String returns a human-readable call status.
func (s CallStatus) String() string {
	switch s {
	case CallIncoming:
		return "incoming"
	case CallActive:
		return "active"
	case CallEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Speaker labels one side of the call transcript.
type Speaker string

const (
	SpeakerOperator Speaker = "operator" // the trainee
	SpeakerCaller   Speaker = "caller"   // the simulated caller
)

// TranscriptionEntry is one coalesced run of speech from a single speaker.
// Entry order is arrival order; it is the call history.
type TranscriptionEntry struct {
	Speaker Speaker
	Text    string
}

// CallData is the trainee-entered record for one call. Mutated through
// the coordinator while the call runs; a snapshot is handed off read-only
// when the call ends.
type CallData struct {
	Address     string
	Description string
	Notes       string
	Dispatched  []UnitType
}

// HasDispatched reports whether the given unit type has been committed.
func (c *CallData) HasDispatched(u UnitType) bool {
	return slices.Contains(c.Dispatched, u)
}

// Clone returns an independent copy, used for the end-of-call snapshot.
func (c *CallData) Clone() CallData {
	out := *c
	out.Dispatched = slices.Clone(c.Dispatched)
	return out
}

// CallResult is the immutable outcome of one completed call.
type CallResult struct {
	Transcript []TranscriptionEntry
	Data       CallData
}
