package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"priorityone/internal/domain"
)

func (m model) View() string {
	if m.grading {
		return m.viewGrading()
	}
	switch m.app.Director.Phase() {
	case domain.PhaseMainMenu:
		return m.viewMenu()
	case domain.PhaseTutorialIntro:
		return m.viewBriefing()
	case domain.PhaseTutorialCall, domain.PhaseInCall:
		return m.viewCall()
	case domain.PhaseDebrief:
		return m.viewDebrief()
	}
	return ""
}

// ── Main menu ────────────────────────────────────────────────────

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PRIORITY ONE"))
	b.WriteString(dimStyle.Render("  911 dispatch trainer"))
	b.WriteString("\n\n")

	p := m.app.Director.Progress()
	switch {
	case p.AllShiftsComplete():
		b.WriteString(okStyle.Render("  All shifts cleared. Outstanding work, dispatcher."))
	case !p.TutorialPassed:
		b.WriteString(primaryStyle.Render("  Status: recruit. Training with FTO Miller required."))
	default:
		b.WriteString(primaryStyle.Render(fmt.Sprintf("  Status: on duty, shift %d of %d.", p.Shift, domain.LastShift)))
	}
	b.WriteString("\n\n")

	for i, item := range m.menuItems() {
		if i == m.menuCursor {
			b.WriteString(selectedStyle.Render(" > " + item + " "))
		} else {
			b.WriteString(primaryStyle.Render("   " + item))
		}
		b.WriteByte('\n')
	}

	if m.confirmReset {
		b.WriteString("\n" + alertStyle.Render("  Erase all progress and start over? (y/n)"))
	}
	if m.app.NoAPIKey {
		b.WriteString("\n" + alertStyle.Render("  GEMINI_API_KEY is not set; calls are disabled."))
	}
	if m.notice != "" {
		b.WriteString("\n" + dimStyle.Render("  "+m.notice))
	}
	b.WriteString("\n\n" + dimStyle.Render("  up/down move · enter select · q quit"))
	return b.String()
}

// ── Tutorial briefing ────────────────────────────────────────────

var sixWs = [][2]string{
	{"WHERE", "The location of the emergency. This is the #1 priority."},
	{"WHAT", "The nature of the emergency (e.g., fire, intruder, medical)."},
	{"WHO", "Who is involved? Caller, victim, suspect details."},
	{"WHEN", "When did this happen? Is it in progress?"},
	{"WEAPONS", "Are there any weapons involved? Critical for officer safety."},
	{"WHY", "What led to the incident? (Less critical, but can provide context)."},
}

func (m model) viewBriefing() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TRAINING BRIEFING"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  page %d/3", m.briefPage+1)))
	b.WriteString("\n\n")

	switch m.briefPage {
	case 0:
		b.WriteString(headerStyle.Render("  Your Objective") + "\n")
		b.WriteString(primaryStyle.Render("  Gather critical information quickly and accurately while managing\n" +
			"  the caller's emotional state. You are graded on speed, accuracy,\n" +
			"  and professionalism. Every second counts.\n\n"))
		b.WriteString(headerStyle.Render("  The Six W's of Dispatch") + "\n")
		for _, w := range sixWs {
			b.WriteString(okStyle.Render(fmt.Sprintf("  %-8s", w[0])) + primaryStyle.Render(w[1]) + "\n")
		}
	case 1:
		b.WriteString(headerStyle.Render("  Simulation Briefing: \"Welfare Check\"") + "\n")
		b.WriteString(primaryStyle.Render("  A citizen is concerned about their neighbor. The caller is calm\n" +
			"  but worried. Reassure them, obtain the neighbor's address,\n" +
			"  understand the concern, and dispatch a Police unit.\n\n"))
		b.WriteString(headerStyle.Render("  Example") + "\n")
		b.WriteString(operatorStyle.Render("  OPERATOR: ") + primaryStyle.Render("911, what is the address of the emergency?") + "\n")
		b.WriteString(callerStyle.Render("  CALLER:   ") + primaryStyle.Render("It's not really an emergency... I'm worried about my\n            neighbor. The address is 123 Maple Street.") + "\n")
		b.WriteString(operatorStyle.Render("  OPERATOR: ") + primaryStyle.Render("Okay, 123 Maple Street. What's making you concerned?") + "\n")
	case 2:
		b.WriteString(headerStyle.Render("  Ready") + "\n")
		b.WriteString(primaryStyle.Render("  Your line is about to ring. Work the Six W's, log what you\n" +
			"  learn, and dispatch the right unit. FTO Miller is listening.\n"))
		b.WriteString(primaryStyle.Render("\n  Score ") + okStyle.Render(fmt.Sprintf("%d or higher", domain.TutorialPassScore)) +
			primaryStyle.Render(" to pass the tutorial.\n"))
	}

	if m.notice != "" {
		b.WriteString("\n" + alertStyle.Render("  "+m.notice))
	}
	action := "enter next page"
	if m.briefPage == 2 {
		action = "enter take the call"
	}
	b.WriteString("\n\n" + dimStyle.Render("  "+action+" · left back · esc abort"))
	return b.String()
}

// ── Call screen ──────────────────────────────────────────────────

func (m model) viewCall() string {
	sc := m.app.Director.ActiveScenario()
	if sc == nil {
		return ""
	}

	status := m.app.Calls.Status()
	if status == domain.CallIncoming {
		return m.viewIncoming(sc)
	}

	var header strings.Builder
	header.WriteString(titleStyle.Render("CAD"))
	header.WriteString(dimStyle.Render("  " + sc.Title))
	if sc.IsTutorial() {
		header.WriteString(dimStyle.Render(" (tutorial)"))
	} else {
		header.WriteString(dimStyle.Render(fmt.Sprintf(" (shift %d)", sc.Shift)))
	}
	header.WriteString("   ")
	header.WriteString(alertStyle.Render("● LIVE"))
	if m.app.Calls.Speaking() {
		header.WriteString(callerStyle.Render("  caller speaking..."))
	}

	left := panelStyle.Width(46).Render(
		headerStyle.Render("TRANSCRIPT") + "\n" + m.renderTranscript(44, m.contentRows()))

	board := m.app.Calls.Board()
	caller, shown := board.CallerLocation()
	right := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(headerStyle.Render("SCENE MAP")+"\n"+renderMap(caller, shown, board.Units())),
		m.renderUnitRow(),
		m.renderFields(),
	)

	footer := dimStyle.Render("  tab next field · space dispatch/recall · ctrl+e end call")
	if m.notice != "" {
		footer = alertStyle.Render("  "+m.notice) + "\n" + footer
	}

	return header.String() + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" + footer
}

func (m model) viewIncoming(sc *domain.Scenario) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("INCOMING CALL"))
	b.WriteString("\n\n")
	b.WriteString(alertStyle.Render("  ☎  line 1 ringing"))
	b.WriteString("\n\n")
	if m.answering {
		b.WriteString(m.spin.View() + primaryStyle.Render(" connecting..."))
	} else {
		b.WriteString(primaryStyle.Render("  Press enter to answer."))
	}
	if m.notice != "" {
		b.WriteString("\n\n" + alertStyle.Render("  "+m.notice))
	}
	b.WriteString("\n\n" + dimStyle.Render("  enter answer · esc decline"))
	return b.String()
}

// contentRows sizes the transcript pane to the terminal.
func (m model) contentRows() int {
	rows := m.height - 8
	if rows < 6 {
		rows = 6
	}
	return rows
}

// renderTranscript shows the newest coalesced entries that fit, wrapped
// to the pane width.
func (m model) renderTranscript(width, maxRows int) string {
	entries := m.app.Calls.Transcript()
	if len(entries) == 0 {
		return dimStyle.Render("listening...")
	}

	var lines []string
	for _, e := range entries {
		label := operatorStyle.Render("OPERATOR: ")
		if e.Speaker == domain.SpeakerCaller {
			label = callerStyle.Render("CALLER: ")
		}
		wrapped := lipgloss.NewStyle().Width(width).Render(label + primaryStyle.Render(e.Text))
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	if len(lines) > maxRows {
		lines = lines[len(lines)-maxRows:]
	}
	return strings.Join(lines, "\n")
}

func (m model) renderUnitRow() string {
	data := m.app.Calls.Data()
	var parts []string
	for i, ut := range domain.AllUnitTypes {
		label := " " + string(ut) + " "
		style := unitOffStyle
		if data.HasDispatched(ut) {
			style = unitOnStyle
		}
		cell := style.Render(label)
		if m.focus == focusUnits && i == m.unitCursor {
			cell = selectedStyle.Render(label)
		}
		parts = append(parts, cell)
	}
	title := headerStyle.Render("UNITS")
	if m.focus == focusUnits {
		title += dimStyle.Render(" (left/right, space toggles)")
	}
	return panelStyle.Render(title + "\n" + strings.Join(parts, " "))
}

func (m model) renderFields() string {
	labels := [3]string{"ADDRESS", "DESCRIPTION", "NOTES"}
	var rows []string
	for i, label := range labels {
		style := dimStyle
		if m.focus == i {
			style = headerStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%-12s", label))+m.inputs[i].View())
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}

// ── Grading / debrief ────────────────────────────────────────────

func (m model) viewGrading() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SHIFT DEBRIEF"))
	b.WriteString("\n\n")
	b.WriteString("  " + m.spin.View() + primaryStyle.Render(" FTO Miller is reviewing your call..."))
	return b.String()
}

func (m model) viewDebrief() string {
	data := m.app.Director.LastDebrief()
	if data == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("SHIFT DEBRIEF"))
	b.WriteString(dimStyle.Render("  FTO Miller"))
	b.WriteString("\n\n")

	scoreStyle := okStyle
	if data.Degraded || data.Score < domain.ShiftPassScore {
		scoreStyle = alertStyle
	}
	b.WriteString(primaryStyle.Render("  Score: ") + scoreStyle.Render(fmt.Sprintf("%d / 100", data.Score)))
	b.WriteString("\n\n")

	sections := []struct {
		title string
		text  string
	}{
		{"Response Time", data.Feedback.ResponseTime},
		{"Dispatch Accuracy", data.Feedback.DispatchAccuracy},
		{"Tone Management", data.Feedback.ToneManagement},
		{"Protocol Adherence", data.Feedback.ProtocolAdherence},
		{"Overall", data.Feedback.OverallCritique},
	}
	wrap := lipgloss.NewStyle().Width(70)
	for _, s := range sections {
		b.WriteString(headerStyle.Render("  " + s.title))
		b.WriteByte('\n')
		b.WriteString(wrap.Render(primaryStyle.Render("  " + s.text)))
		b.WriteString("\n\n")
	}

	if data.Degraded {
		b.WriteString(alertStyle.Render("  The review could not be completed. This call was not scored.") + "\n\n")
	}
	b.WriteString(dimStyle.Render("  enter continue"))
	return b.String()
}
