// Package display renders the dispatcher console with Bubble Tea: the
// duty menu, the tutorial briefing, the live call screen with the unit
// map, and the supervisor debrief.
package display

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"priorityone/internal/call"
	"priorityone/internal/debrief"
	"priorityone/internal/domain"
	"priorityone/internal/game"
	"priorityone/internal/logger"
)

// App bundles everything the console drives. PlayAudio and StopAudio
// voice the supervisor critique; either may be nil when audio is off.
type App struct {
	Director  *game.Director
	Calls     *call.Coordinator
	Debrief   *debrief.Service
	PlayAudio func(pcm []byte)
	StopAudio func()
	Log       *logger.Logger

	// NoAPIKey disables call screens and shows a setup notice instead.
	NoAPIKey bool
}

// Run starts the console. Blocks until the trainee quits.
func Run(app *App) error {
	p := tea.NewProgram(newModel(app), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ── Messages ─────────────────────────────────────────────────────

type tickMsg time.Time

type answerDoneMsg struct{ err error }

type debriefDoneMsg struct{ data *domain.DebriefData }

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ── Model ────────────────────────────────────────────────────────

// Field focus order on the call screen.
const (
	focusAddress = iota
	focusDescription
	focusNotes
	focusUnits
	focusCount
)

type model struct {
	app *App

	width  int
	height int

	menuCursor   int
	confirmReset bool
	briefPage    int

	focus      int
	inputs     [3]textinput.Model
	unitCursor int

	answering bool
	grading   bool
	spin      spinner.Model
	notice    string
}

func newModel(app *App) model {
	m := model{app: app}

	labels := [3]string{"ADDRESS", "DESCRIPTION", "NOTES"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = strings.ToLower(labels[i])
		ti.CharLimit = 200
		ti.Width = 40
		m.inputs[i] = ti
	}
	m.inputs[focusAddress].Focus()

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = headerStyle
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spin.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case answerDoneMsg:
		m.answering = false
		if msg.err != nil {
			m.notice = "Could not connect the call: " + msg.err.Error()
			m.app.Log.Error("display: answer: %v", msg.err)
		}
		return m, nil

	case debriefDoneMsg:
		m.grading = false
		m.app.Director.FinishCall(msg.data)
		if m.app.PlayAudio != nil && len(msg.data.Audio) > 0 {
			m.app.PlayAudio(msg.data.Audio)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.app.Calls.End()
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.app.Director.Phase() {
	case domain.PhaseMainMenu:
		return m.updateMenu(msg)
	case domain.PhaseTutorialIntro:
		return m.updateBriefing(msg)
	case domain.PhaseTutorialCall, domain.PhaseInCall:
		return m.updateCall(msg)
	case domain.PhaseDebrief:
		return m.updateDebrief(msg)
	}
	return m, nil
}

// ── Main menu ────────────────────────────────────────────────────

func (m model) menuItems() []string {
	p := m.app.Director.Progress()
	items := []string{}
	switch {
	case p.AllShiftsComplete():
		items = append(items, "Training complete")
	case !p.TutorialPassed:
		items = append(items, "Report for training")
	default:
		items = append(items, fmt.Sprintf("Start shift %d", p.Shift))
	}
	return append(items, "Reset progress", "Quit")
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Resetting wipes the save file, so it takes an explicit yes.
	if m.confirmReset {
		m.confirmReset = false
		switch msg.String() {
		case "y", "Y":
			if err := m.app.Director.ResetProgress(); err != nil {
				m.notice = "Reset failed: " + err.Error()
			} else {
				m.notice = "Progress reset."
			}
		default:
			m.notice = "Reset cancelled."
		}
		return m, nil
	}

	items := m.menuItems()
	switch msg.String() {
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(items)-1 {
			m.menuCursor++
		}
	case "enter":
		switch m.menuCursor {
		case 0:
			return m.startShift()
		case 1:
			m.confirmReset = true
			m.notice = ""
		case 2:
			return m, tea.Quit
		}
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) startShift() (tea.Model, tea.Cmd) {
	if m.app.NoAPIKey {
		m.notice = "Set GEMINI_API_KEY to take calls."
		return m, nil
	}
	if m.app.Director.Progress().AllShiftsComplete() {
		m.notice = "All shifts cleared. Reset progress to run them again."
		return m, nil
	}

	sc, err := m.app.Director.StartShift(context.Background())
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.notice = ""
	m.briefPage = 0
	if sc != nil {
		return m.stageCall(sc)
	}
	return m, nil
}

// stageCall resets the call screen for a fresh incoming call.
func (m model) stageCall(sc *domain.Scenario) (tea.Model, tea.Cmd) {
	if err := m.app.Calls.Begin(sc); err != nil {
		m.notice = err.Error()
		m.app.Director.AbortCall()
		return m, nil
	}
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.focus = focusAddress
	m.inputs[focusAddress].Focus()
	m.unitCursor = 0
	return m, nil
}

// ── Tutorial briefing ────────────────────────────────────────────

func (m model) updateBriefing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.app.Director.AbortCall()
		m.briefPage = 0
	case "left", "h":
		if m.briefPage > 0 {
			m.briefPage--
		}
	case "enter", "right", "l", " ":
		if m.briefPage < 2 {
			m.briefPage++
			return m, nil
		}
		sc, err := m.app.Director.BeginTutorialCall(context.Background())
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		return m.stageCall(sc)
	}
	return m, nil
}

// ── Call screen ──────────────────────────────────────────────────

func (m model) updateCall(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.grading {
		return m, nil
	}

	if m.app.Calls.Status() == domain.CallIncoming {
		switch msg.String() {
		case "enter":
			if m.answering {
				return m, nil
			}
			m.answering = true
			m.notice = ""
			calls := m.app.Calls
			return m, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return answerDoneMsg{err: calls.Answer(ctx)}
			}
		case "esc":
			m.app.Calls.End()
			m.app.Director.AbortCall()
		}
		return m, nil
	}

	switch msg.String() {
	case "tab":
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case "ctrl+e":
		return m.endCall()
	}

	if m.focus == focusUnits {
		switch msg.String() {
		case "left", "h":
			if m.unitCursor > 0 {
				m.unitCursor--
			}
		case "right", "l":
			if m.unitCursor < len(domain.AllUnitTypes)-1 {
				m.unitCursor++
			}
		case "enter", " ":
			m.app.Calls.ToggleUnit(domain.AllUnitTypes[m.unitCursor])
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.syncField(m.focus)
	return m, cmd
}

func (m *model) setFocus(f int) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = f
	if f < focusUnits {
		m.inputs[f].Focus()
	}
}

// syncField pushes an edited field into the call record as it is typed.
func (m *model) syncField(i int) {
	v := m.inputs[i].Value()
	switch i {
	case focusAddress:
		m.app.Calls.SetAddress(v)
	case focusDescription:
		m.app.Calls.SetDescription(v)
	case focusNotes:
		m.app.Calls.SetNotes(v)
	}
}

// endCall hangs up and hands the sealed call to the supervisor.
func (m model) endCall() (tea.Model, tea.Cmd) {
	m.grading = true
	app := m.app
	sc := app.Director.ActiveScenario()
	return m, func() tea.Msg {
		result := app.Calls.End()
		data := app.Debrief.Run(context.Background(), result, sc)
		return debriefDoneMsg{data: data}
	}
}

// ── Debrief ──────────────────────────────────────────────────────

func (m model) updateDebrief(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		if m.app.StopAudio != nil {
			m.app.StopAudio()
		}
		m.app.Director.Acknowledge()
		m.menuCursor = 0
	}
	return m, nil
}
