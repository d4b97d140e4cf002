package domain

import "context"

// ScenarioSource provides incident scenarios. The built-in implementation
// is a static in-memory catalog.
type ScenarioSource interface {
	List(ctx context.Context) ([]*Scenario, error)
	Get(ctx context.Context, id string) (*Scenario, error)
	ForShift(ctx context.Context, shift int) (*Scenario, error)
}

// ProgressStore persists trainee progress across runs.
type ProgressStore interface {
	Load() (Progress, error)
	Save(p Progress) error
	Reset() error
}

// CallAnalyzer grades a completed call against its scenario.
type CallAnalyzer interface {
	Analyze(ctx context.Context, result *CallResult, scenario *Scenario) (*DebriefData, error)
}

// SpeechSynthesizer renders text as spoken audio (raw PCM). A nil payload
// with a nil error means synthesis was skipped.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
