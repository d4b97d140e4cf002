package domain

// Feedback holds the supervisor's narrative critique, one field per
// evaluation category plus the closing summary.
type Feedback struct {
	ResponseTime      string
	DispatchAccuracy  string
	ToneManagement    string
	ProtocolAdherence string
	OverallCritique   string
}

// DebriefData is the graded performance review for one completed call.
// Immutable after creation. Audio is the synthesized spoken critique
// (raw 24 kHz mono PCM), nil when synthesis failed or was skipped.
type DebriefData struct {
	Score    int // 0..100
	Feedback Feedback
	Audio    []byte
	Degraded bool // true when analysis failed and placeholders were used
}

// Placeholder text used when the analysis request fails. The trainee can
// still continue past a degraded debrief.
const (
	FailedCritique        = "Analysis failed."
	FailedOverallCritique = "An error occurred during call analysis."
)

// DegradedDebrief returns the fixed fallback review for a failed analysis.
func DegradedDebrief() *DebriefData {
	return &DebriefData{
		Score: 0,
		Feedback: Feedback{
			ResponseTime:      FailedCritique,
			DispatchAccuracy:  FailedCritique,
			ToneManagement:    FailedCritique,
			ProtocolAdherence: FailedCritique,
			OverallCritique:   FailedOverallCritique,
		},
		Degraded: true,
	}
}
