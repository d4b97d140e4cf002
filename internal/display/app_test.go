package display

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"priorityone/internal/domain"
	"priorityone/internal/game"
	"priorityone/internal/logger"
	"priorityone/internal/scenario"
)

// trackStore is an in-memory progress store that counts resets.
type trackStore struct {
	p      domain.Progress
	resets int
}

func (s *trackStore) Load() (domain.Progress, error) { return s.p, nil }

func (s *trackStore) Save(p domain.Progress) error {
	s.p = p
	return nil
}

func (s *trackStore) Reset() error {
	s.p = domain.DefaultProgress()
	s.resets++
	return nil
}

func newMenuModel(t *testing.T, store *trackStore) model {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	director, err := game.NewDirector(scenario.NewCatalog(log), store, log)
	if err != nil {
		t.Fatalf("NewDirector: %v", err)
	}
	return newModel(&App{Director: director, Log: log, NoAPIKey: true})
}

func press(t *testing.T, m model, key string) model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(model)
}

func pressEnter(t *testing.T, m model) model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model)
}

func TestResetRequiresConfirmation(t *testing.T) {
	store := &trackStore{p: domain.Progress{Shift: 3, TutorialPassed: true}}
	m := newMenuModel(t, store)

	m = press(t, m, "j") // move to "Reset progress"
	m = pressEnter(t, m)
	if !m.confirmReset {
		t.Fatal("enter on reset should ask for confirmation")
	}
	if store.resets != 0 {
		t.Fatal("progress wiped before the trainee confirmed")
	}

	m = press(t, m, "n")
	if m.confirmReset {
		t.Fatal("declining should leave the confirm prompt")
	}
	if store.resets != 0 || m.app.Director.Progress().Shift != 3 {
		t.Fatal("declining must not touch progress")
	}

	m = pressEnter(t, m)
	m = press(t, m, "y")
	if store.resets != 1 {
		t.Fatalf("confirmed reset should wipe the store once, got %d", store.resets)
	}
	if got := m.app.Director.Progress(); got.Shift != domain.FirstShift || got.TutorialPassed {
		t.Fatalf("progress after reset = %+v, want defaults", got)
	}
}
