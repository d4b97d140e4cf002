package display

import "github.com/charmbracelet/lipgloss"

// ── Styles ───────────────────────────────────────────────────────

var (
	// BannerStyle colors the startup banner and console notices.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dd3fc"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dd3fc")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0f172a")).
			Background(lipgloss.Color("#7dd3fc")).
			Bold(true)

	operatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	callerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 1)

	unitOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0f172a")).
			Background(lipgloss.Color("#bbf7d0")).
			Bold(true)

	unitOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	mapCallerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	mapEnrouteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	mapOnSceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)
)
