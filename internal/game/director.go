// Package game owns shift progression: which screen the trainer shows,
// which scenario comes next, and whether a debrief score unlocks the
// next shift.
package game

import (
	"context"
	"fmt"
	"sync"

	"priorityone/internal/domain"
	"priorityone/internal/logger"
)

// Director is the phase machine above the call layer. It loads progress
// once at startup and saves whenever a debrief changes it.
type Director struct {
	scenarios domain.ScenarioSource
	store     domain.ProgressStore
	log       *logger.Logger

	mu       sync.Mutex
	phase    domain.Phase
	progress domain.Progress
	active   *domain.Scenario
	debrief  *domain.DebriefData
}

// NewDirector loads saved progress and starts at the main menu.
func NewDirector(scenarios domain.ScenarioSource, store domain.ProgressStore, log *logger.Logger) (*Director, error) {
	p, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("game: load progress: %w", err)
	}
	log.Info("trainee progress: shift=%d tutorial=%v", p.Shift, p.TutorialPassed)
	return &Director{
		scenarios: scenarios,
		store:     store,
		log:       log,
		phase:     domain.PhaseMainMenu,
		progress:  p,
	}, nil
}

// Phase returns the current screen.
func (d *Director) Phase() domain.Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// Progress returns the current trainee progress.
func (d *Director) Progress() domain.Progress {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.progress
}

// ActiveScenario returns the scenario for the call in progress, nil
// outside a call.
func (d *Director) ActiveScenario() *domain.Scenario {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// LastDebrief returns the most recent graded review, nil before the
// first call ends.
func (d *Director) LastDebrief() *domain.DebriefData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.debrief
}

// StartShift leaves the main menu. A trainee who has not passed the
// tutorial is routed to the tutorial briefing first; otherwise the
// current shift's scenario comes up as an incoming call. Returns the
// scenario to stage, nil when the next screen is the briefing.
func (d *Director) StartShift(ctx context.Context) (*domain.Scenario, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseMainMenu {
		return nil, fmt.Errorf("game: cannot start a shift from %s", d.phase)
	}
	if d.progress.AllShiftsComplete() {
		return nil, fmt.Errorf("game: all shifts complete")
	}

	if !d.progress.TutorialPassed {
		d.phase = domain.PhaseTutorialIntro
		d.log.Info("routing to tutorial briefing")
		return nil, nil
	}

	sc, err := d.scenarios.ForShift(ctx, d.progress.Shift)
	if err != nil {
		return nil, fmt.Errorf("game: scenario for shift %d: %w", d.progress.Shift, err)
	}
	d.phase = domain.PhaseInCall
	d.active = sc
	d.log.Info("shift %d started: %s", sc.Shift, sc.Title)
	return sc, nil
}

// BeginTutorialCall leaves the briefing for the tutorial call itself.
func (d *Director) BeginTutorialCall(ctx context.Context) (*domain.Scenario, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseTutorialIntro {
		return nil, fmt.Errorf("game: cannot begin the tutorial from %s", d.phase)
	}

	sc, err := d.scenarios.ForShift(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("game: tutorial scenario: %w", err)
	}
	d.phase = domain.PhaseTutorialCall
	d.active = sc
	d.log.Info("tutorial call started: %s", sc.Title)
	return sc, nil
}

// FinishCall records the debrief for the call just ended and applies
// progression gating. A passed tutorial is remembered; a passed shift
// unlocks the next one. Failures leave progress untouched so the same
// call can be retried. Progress is persisted only when it changed.
func (d *Director) FinishCall(data *domain.DebriefData) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil {
		d.log.Warn("debrief with no active scenario, ignoring")
		return
	}

	before := d.progress
	if d.active.IsTutorial() {
		if data.Score >= domain.TutorialPassScore {
			d.progress.TutorialPassed = true
		}
	} else if data.Score >= domain.ShiftPassScore {
		d.progress.Shift++
	}

	if d.progress != before {
		if err := d.store.Save(d.progress); err != nil {
			// A failed save costs the trainee nothing this session.
			d.log.Error("game: save progress: %v", err)
		}
	}

	d.debrief = data
	d.phase = domain.PhaseDebrief
	d.log.Info("call debriefed: score=%d shift=%d tutorial=%v",
		data.Score, d.progress.Shift, d.progress.TutorialPassed)
}

// Acknowledge dismisses the debrief. A trainee who failed the tutorial
// goes back to the briefing to retry; everyone else returns to the menu.
func (d *Director) Acknowledge() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != domain.PhaseDebrief {
		return
	}

	retryTutorial := d.active != nil && d.active.IsTutorial() && !d.progress.TutorialPassed
	d.active = nil
	if retryTutorial {
		d.phase = domain.PhaseTutorialIntro
		return
	}
	d.phase = domain.PhaseMainMenu
}

// AbortCall returns to the menu without grading, used when a call is
// abandoned before it was answered.
func (d *Director) AbortCall() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = nil
	d.phase = domain.PhaseMainMenu
}

// ResetProgress wipes the save and returns the trainee to shift one.
func (d *Director) ResetProgress() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.store.Reset(); err != nil {
		return err
	}
	d.progress = domain.DefaultProgress()
	d.log.Info("progress reset to defaults")
	return nil
}
