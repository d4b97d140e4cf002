package game

import (
	"context"
	"testing"

	"priorityone/internal/domain"
	"priorityone/internal/logger"
	"priorityone/internal/scenario"
)

// memStore is an in-memory progress store for tests.
type memStore struct {
	p     domain.Progress
	saves int
}

func newMemStore() *memStore {
	return &memStore{p: domain.DefaultProgress()}
}

func (m *memStore) Load() (domain.Progress, error) { return m.p, nil }

func (m *memStore) Save(p domain.Progress) error {
	m.p = p
	m.saves++
	return nil
}

func (m *memStore) Reset() error {
	m.p = domain.DefaultProgress()
	return nil
}

func newTestDirector(t *testing.T, store *memStore) *Director {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	d, err := NewDirector(scenario.NewCatalog(log), store, log)
	if err != nil {
		t.Fatalf("NewDirector: %v", err)
	}
	return d
}

func debriefWithScore(score int) *domain.DebriefData {
	return &domain.DebriefData{Score: score}
}

func TestFreshTraineeRoutedToTutorial(t *testing.T) {
	d := newTestDirector(t, newMemStore())

	sc, err := d.StartShift(context.Background())
	if err != nil {
		t.Fatalf("StartShift: %v", err)
	}
	if sc != nil {
		t.Fatal("fresh trainee should get the briefing, not a scenario")
	}
	if d.Phase() != domain.PhaseTutorialIntro {
		t.Fatalf("phase = %s, want tutorial_intro", d.Phase())
	}

	sc, err = d.BeginTutorialCall(context.Background())
	if err != nil {
		t.Fatalf("BeginTutorialCall: %v", err)
	}
	if !sc.IsTutorial() {
		t.Fatalf("tutorial call got scenario for shift %d", sc.Shift)
	}
	if d.Phase() != domain.PhaseTutorialCall {
		t.Fatalf("phase = %s, want tutorial_call", d.Phase())
	}
}

func TestTutorialPassBoundary(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		passed   bool
		endPhase domain.Phase
	}{
		{"exact pass", domain.TutorialPassScore, true, domain.PhaseMainMenu},
		{"one below", domain.TutorialPassScore - 1, false, domain.PhaseTutorialIntro},
		{"perfect", 100, true, domain.PhaseMainMenu},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			d := newTestDirector(t, store)
			d.StartShift(context.Background())
			d.BeginTutorialCall(context.Background())

			d.FinishCall(debriefWithScore(tt.score))
			if d.Phase() != domain.PhaseDebrief {
				t.Fatalf("phase = %s, want debrief", d.Phase())
			}
			if d.Progress().TutorialPassed != tt.passed {
				t.Fatalf("tutorialPassed = %v, want %v", d.Progress().TutorialPassed, tt.passed)
			}

			d.Acknowledge()
			if d.Phase() != tt.endPhase {
				t.Fatalf("after acknowledge: phase = %s, want %s", d.Phase(), tt.endPhase)
			}
		})
	}
}

func TestShiftPassBoundary(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		wantShift int
	}{
		{"exact pass", domain.ShiftPassScore, 4},
		{"one below", domain.ShiftPassScore - 1, 3},
		{"zero", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.p = domain.Progress{Shift: 3, TutorialPassed: true}
			d := newTestDirector(t, store)

			sc, err := d.StartShift(context.Background())
			if err != nil {
				t.Fatalf("StartShift: %v", err)
			}
			if sc.Shift != 3 {
				t.Fatalf("scenario shift = %d, want 3", sc.Shift)
			}

			d.FinishCall(debriefWithScore(tt.score))
			if got := d.Progress().Shift; got != tt.wantShift {
				t.Fatalf("shift = %d, want %d", got, tt.wantShift)
			}

			d.Acknowledge()
			if d.Phase() != domain.PhaseMainMenu {
				t.Fatalf("phase = %s, want main_menu", d.Phase())
			}
		})
	}
}

func TestFinalShiftPassCompletesTraining(t *testing.T) {
	store := newMemStore()
	store.p = domain.Progress{Shift: domain.LastShift, TutorialPassed: true}
	d := newTestDirector(t, store)

	if _, err := d.StartShift(context.Background()); err != nil {
		t.Fatalf("StartShift: %v", err)
	}
	d.FinishCall(debriefWithScore(90))

	if !d.Progress().AllShiftsComplete() {
		t.Fatal("passing the last shift should complete training")
	}

	d.Acknowledge()
	if _, err := d.StartShift(context.Background()); err == nil {
		t.Fatal("starting a shift after completion should fail")
	}
}

func TestProgressSavedOnlyWhenChanged(t *testing.T) {
	store := newMemStore()
	store.p = domain.Progress{Shift: 2, TutorialPassed: true}
	d := newTestDirector(t, store)

	d.StartShift(context.Background())
	d.FinishCall(debriefWithScore(domain.ShiftPassScore - 1))
	if store.saves != 0 {
		t.Fatalf("failed shift saved progress %d times", store.saves)
	}

	d.Acknowledge()
	d.StartShift(context.Background())
	d.FinishCall(debriefWithScore(domain.ShiftPassScore))
	if store.saves != 1 {
		t.Fatalf("passed shift saved progress %d times, want 1", store.saves)
	}
	if store.p.Shift != 3 {
		t.Fatalf("persisted shift = %d, want 3", store.p.Shift)
	}
}

func TestDegradedDebriefDoesNotAdvance(t *testing.T) {
	store := newMemStore()
	store.p = domain.Progress{Shift: 2, TutorialPassed: true}
	d := newTestDirector(t, store)

	d.StartShift(context.Background())
	d.FinishCall(domain.DegradedDebrief())

	if d.Progress().Shift != 2 {
		t.Fatal("degraded debrief must not advance the shift")
	}
	if got := d.LastDebrief(); got == nil || !got.Degraded {
		t.Fatal("degraded debrief should still be shown")
	}
}

func TestStartShiftGuards(t *testing.T) {
	store := newMemStore()
	store.p = domain.Progress{Shift: 1, TutorialPassed: true}
	d := newTestDirector(t, store)

	if _, err := d.StartShift(context.Background()); err != nil {
		t.Fatalf("StartShift: %v", err)
	}
	if _, err := d.StartShift(context.Background()); err == nil {
		t.Fatal("starting a shift mid-call should fail")
	}
	if _, err := d.BeginTutorialCall(context.Background()); err == nil {
		t.Fatal("tutorial call outside the briefing should fail")
	}
}

func TestAbortCallReturnsToMenu(t *testing.T) {
	store := newMemStore()
	store.p = domain.Progress{Shift: 1, TutorialPassed: true}
	d := newTestDirector(t, store)

	d.StartShift(context.Background())
	d.AbortCall()
	if d.Phase() != domain.PhaseMainMenu {
		t.Fatalf("phase = %s, want main_menu", d.Phase())
	}
	if d.ActiveScenario() != nil {
		t.Fatal("aborted call left an active scenario")
	}
}

func TestResetProgress(t *testing.T) {
	store := newMemStore()
	store.p = domain.Progress{Shift: 4, TutorialPassed: true}
	d := newTestDirector(t, store)

	if err := d.ResetProgress(); err != nil {
		t.Fatalf("ResetProgress: %v", err)
	}
	if d.Progress() != domain.DefaultProgress() {
		t.Fatalf("progress = %+v, want defaults", d.Progress())
	}
}
