package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/tempo/internal/domain"
)

// Colors defines the color palette for the TUI.
var Colors = struct {
	// Base colors
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Background lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color
	DescNormal    lipgloss.Color

	// Priority colors
	High   lipgloss.Color
	Medium lipgloss.Color
	Low    lipgloss.Color

	// Timer colors
	Active  lipgloss.Color
	Pending lipgloss.Color
	Done    lipgloss.Color
}{
	Primary:    lipgloss.Color("#6C5CE7"), // Purple
	Secondary:  lipgloss.Color("#A29BFE"), // Lavender
	Muted:      lipgloss.Color("#636E72"), // Gray
	Error:      lipgloss.Color("#D63031"), // Red
	Success:    lipgloss.Color("#00B894"), // Green
	Warning:    lipgloss.Color("#FDCB6E"), // Yellow
	Background: lipgloss.Color("#2D3436"), // Dark gray

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow (selected)
	DescNormal:    lipgloss.Color("#636E72"), // Gray

	High:   lipgloss.Color("#D63031"), // Red
	Medium: lipgloss.Color("#FDCB6E"), // Yellow
	Low:    lipgloss.Color("#74B9FF"), // Light blue

	Active:  lipgloss.Color("#00B894"), // Green
	Pending: lipgloss.Color("#74B9FF"), // Light blue
	Done:    lipgloss.Color("#636E72"), // Gray
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderText lipgloss.Style
	Tab        lipgloss.Style
	TabActive  lipgloss.Style

	// Task list
	TaskSelected       lipgloss.Style
	TaskID             lipgloss.Style
	TaskTitle          lipgloss.Style
	TaskTitleDone      lipgloss.Style
	TaskDesc           lipgloss.Style
	SelectionIndicator lipgloss.Style
	Overdue            lipgloss.Style
	Elapsed            lipgloss.Style

	// Priority badges
	PriorityHigh   lipgloss.Style
	PriorityMedium lipgloss.Style
	PriorityLow    lipgloss.Style

	// Timer status badges
	StatusActive    lipgloss.Style
	StatusPending   lipgloss.Style
	StatusCompleted lipgloss.Style

	// Help
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	// Footer
	Footer    lipgloss.Style
	FooterKey lipgloss.Style
	Notice    lipgloss.Style

	// Dialog
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogPrompt lipgloss.Style

	// Input
	InputPrompt lipgloss.Style

	// Error
	ErrorMsg lipgloss.Style

	// Detail view
	DetailTitle lipgloss.Style
	DetailLabel lipgloss.Style
	DetailValue lipgloss.Style
	DetailDesc  lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		HeaderText: lipgloss.NewStyle().
			Bold(true),

		Tab: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true).
			Underline(true).
			Padding(0, 1),

		TaskSelected: lipgloss.NewStyle().
			Background(Colors.Background),

		TaskID: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TaskTitle: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TaskTitleDone: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Strikethrough(true),

		TaskDesc: lipgloss.NewStyle().
			Foreground(Colors.DescNormal),

		SelectionIndicator: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected),

		Overdue: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		Elapsed: lipgloss.NewStyle().
			Foreground(Colors.Active).
			Bold(true),

		PriorityHigh: lipgloss.NewStyle().
			Foreground(Colors.High).
			Bold(true),

		PriorityMedium: lipgloss.NewStyle().
			Foreground(Colors.Medium),

		PriorityLow: lipgloss.NewStyle().
			Foreground(Colors.Low),

		StatusActive: lipgloss.NewStyle().
			Foreground(Colors.Active).
			Bold(true),

		StatusPending: lipgloss.NewStyle().
			Foreground(Colors.Pending),

		StatusCompleted: lipgloss.NewStyle().
			Foreground(Colors.Done),

		Help: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Muted),

		HelpKey: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		FooterKey: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		Notice: lipgloss.NewStyle().
			Foreground(Colors.Success),

		Dialog: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		DialogPrompt: lipgloss.NewStyle(),

		InputPrompt: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		DetailTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		DetailLabel: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(12),

		DetailValue: lipgloss.NewStyle(),

		DetailDesc: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			MarginTop(1),
	}
}

// PriorityStyle returns the style for a given priority.
func (s Styles) PriorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityHigh:
		return s.PriorityHigh
	case domain.PriorityLow:
		return s.PriorityLow
	default:
		return s.PriorityMedium
	}
}

// StatusStyle returns the style for a continuous task status.
func (s Styles) StatusStyle(status domain.ContinuousStatus) lipgloss.Style {
	switch status {
	case domain.StatusActive:
		return s.StatusActive
	case domain.StatusCompleted:
		return s.StatusCompleted
	default:
		return s.StatusPending
	}
}

// CategoryStyle returns a style colored with the category color.
func CategoryStyle(c *domain.Category) lipgloss.Style {
	color := domain.DefaultCategoryColor
	if c != nil && c.Color != "" {
		color = c.Color
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// StatusIcon returns an icon for a continuous task status.
func StatusIcon(status domain.ContinuousStatus) string {
	switch status {
	case domain.StatusActive:
		return "▶"
	case domain.StatusPending:
		return "⏸"
	case domain.StatusCompleted:
		return "✓"
	default:
		return "?"
	}
}

// PriorityIcon returns a short marker for a priority.
func PriorityIcon(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return "!!!"
	case domain.PriorityMedium:
		return "!! "
	case domain.PriorityLow:
		return "!  "
	default:
		return "   "
	}
}
