package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - Furever brand accents.
var (
	Primary   = lipgloss.Color("#F97316") // Furever orange
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Success   = lipgloss.Color("#10B981") // Emerald
	Error     = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
)

// Text styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Secondary)
)

// Icons.
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconInfo    = "ℹ"
	IconCall    = "📞"
	IconMicOn   = "🎙"
	IconMicOff  = "🔇"
	IconCamOn   = "🎥"
	IconCamOff  = "🚫"
)

func PrintError(message string) {
	fmt.Printf("%s %s\n", ErrorStyle.Render(IconError), message)
}

func PrintInfo(message string) {
	fmt.Printf("%s %s\n", MutedStyle.Render(IconInfo), message)
}
