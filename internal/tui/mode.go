// Package tui provides the terminal user interface for tempo.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal     Mode = iota // Default navigation mode
	ModeSearch                 // Title search input mode
	ModeConfirm                // Confirmation dialog mode
	ModeInputTitle             // Title input mode (for new task)
	ModeHelp                   // Help overlay mode
	ModeDetail                 // Task detail view mode
	ModeInputUser              // User id input mode (switch user)
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeSearch:
		return "search"
	case ModeConfirm:
		return "confirm"
	case ModeInputTitle:
		return "input_title"
	case ModeHelp:
		return "help"
	case ModeDetail:
		return "detail"
	case ModeInputUser:
		return "input_user"
	default:
		return "unknown"
	}
}

// IsInputMode returns true if the mode accepts text input.
func (m Mode) IsInputMode() bool {
	switch m {
	case ModeSearch, ModeInputTitle, ModeInputUser:
		return true
	case ModeNormal, ModeConfirm, ModeHelp, ModeDetail:
		return false
	}
	return false
}

// ConfirmAction represents the type of action requiring confirmation.
type ConfirmAction int

const (
	ConfirmNone   ConfirmAction = iota
	ConfirmDelete               // Delete task
	ConfirmClear                // Delete completed tasks of the partition
)

// String returns a human-readable description of the action.
func (a ConfirmAction) String() string {
	switch a {
	case ConfirmNone:
		return ""
	case ConfirmDelete:
		return "delete"
	case ConfirmClear:
		return "clear completed"
	}
	return ""
}
