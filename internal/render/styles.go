package render

import "github.com/charmbracelet/lipgloss"

var (
	// Colors meet WCAG AA contrast on dark terminals
	PrimaryColor = lipgloss.Color("#A78BFA") // Purple
	GreenColor   = lipgloss.Color("#10B981") // Green
	WarningColor = lipgloss.Color("#F59E0B") // Amber
	ErrorColor   = lipgloss.Color("#F87171") // Red
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray
	BlueColor    = lipgloss.Color("#60A5FA") // Blue
	SurfaceColor = lipgloss.Color("#1F2937") // Dark surface
	TextColor    = lipgloss.Color("#F9FAFB") // Light text
	BorderColor  = lipgloss.Color("#6B7280") // Gray

	Muted   = lipgloss.NewStyle().Foreground(MutedColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error   = lipgloss.NewStyle().Foreground(ErrorColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	TeamHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	RowLabel = lipgloss.NewStyle().
			Foreground(MutedColor)

	WarningBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(WarningColor).
			Padding(0, 1)

	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	TableCell = lipgloss.NewStyle().
			Padding(0, 1)

	// Timeline bars
	barScheduled = lipgloss.NewStyle().Foreground(SurfaceColor).Background(PrimaryColor)
	barAlternate = lipgloss.NewStyle().Foreground(SurfaceColor).Background(BlueColor)
	barDone      = lipgloss.NewStyle().Foreground(SurfaceColor).Background(GreenColor)
	barCycle     = lipgloss.NewStyle().Foreground(SurfaceColor).Background(WarningColor)
	barLate      = lipgloss.NewStyle().Foreground(SurfaceColor).Background(ErrorColor)
	barExcluded  = lipgloss.NewStyle().Foreground(TextColor).Background(BorderColor)
)
