package domain

// Shift bounds. A shift index above LastShift means every graded shift
// has been cleared.
const (
	FirstShift = 1
	LastShift  = 4
)

// Score thresholds for progression gating.
const (
	TutorialPassScore = 70
	ShiftPassScore    = 50
)

// Progress is the cross-session trainee state, persisted between runs.
type Progress struct {
	Shift          int  `json:"currentShift"`
	TutorialPassed bool `json:"tutorialPassed"`
}

// DefaultProgress returns the fresh-recruit state.
func DefaultProgress() Progress {
	return Progress{Shift: FirstShift, TutorialPassed: false}
}

// AllShiftsComplete reports whether every graded shift has been cleared.
func (p Progress) AllShiftsComplete() bool { return p.Shift > LastShift }

// Phase is the top-level screen the trainer is showing. Transitions
// happen only through the game director's named actions.
type Phase int

const (
	PhaseMainMenu Phase = iota
	PhaseTutorialIntro
	PhaseTutorialCall
	PhaseInCall
	PhaseDebrief
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseMainMenu:
		return "main_menu"
	case PhaseTutorialIntro:
		return "tutorial_intro"
	case PhaseTutorialCall:
		return "tutorial_call"
	case PhaseInCall:
		return "in_call"
	case PhaseDebrief:
		return "debrief"
	default:
		return "unknown"
	}
}
