package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/tempo/internal/domain"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeDetail:
		content = m.viewDetail()
	case ModeNormal, ModeSearch, ModeConfirm, ModeInputTitle, ModeInputUser:
		content = m.viewMain()
	}

	return m.styles.App.Render(content)
}

// viewMain renders the main task list view.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewFilterBar())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.ErrorMsg.Render("Error: "+m.err.Error()) + "\n\n")
	} else if m.notice != "" {
		b.WriteString(m.styles.Notice.Render(m.notice) + "\n\n")
	}

	if m.mode == ModeSearch {
		b.WriteString(m.styles.InputPrompt.Render("Search: "))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.viewTaskList())

	switch m.mode {
	case ModeNormal, ModeSearch, ModeHelp, ModeDetail:
		// No overlay for these modes
	case ModeConfirm:
		b.WriteString("\n")
		b.WriteString(m.viewConfirmDialog())
	case ModeInputTitle:
		b.WriteString("\n")
		b.WriteString(m.viewTitleInput())
	case ModeInputUser:
		b.WriteString("\n")
		b.WriteString(m.viewUserInput())
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	return b.String()
}

// viewHeader renders the partition tabs and the task count.
func (m *Model) viewHeader() string {
	tabs := []struct {
		label string
		typ   domain.TaskType
	}{
		{"Tasks", domain.TaskTypeRegular},
		{"Timers", domain.TaskTypeContinuous},
	}
	var rendered []string
	for _, tab := range tabs {
		style := m.styles.Tab
		if tab.typ == m.taskType {
			style = m.styles.TabActive
		}
		rendered = append(rendered, style.Render(tab.label))
	}
	left := m.styles.HeaderText.Render("tempo") + "  " + lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	user := m.container.Identity.CurrentUser()
	if user == "" {
		user = "signed out"
	}
	countText := fmt.Sprintf("%s · %d shown", user, len(m.tasks))
	right := lipgloss.NewStyle().Foreground(Colors.Muted).Render(countText)

	headerWidth := m.width - 6 // padding
	if headerWidth < 40 {
		headerWidth = 40
	}
	spacing := headerWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}

	return m.styles.Header.Render(left + strings.Repeat(" ", spacing) + right)
}

// viewFilterBar renders the active view, filters and sort key.
func (m *Model) viewFilterBar() string {
	var parts []string
	if m.taskType == domain.TaskTypeContinuous {
		parts = append(parts, "status: "+string(m.timerFilter))
	} else {
		var views []string
		for _, v := range domain.AllViews() {
			label := fmt.Sprintf("%s %d", v.Display(), m.views[v])
			if v == m.filters.View {
				views = append(views, m.styles.TabActive.UnsetPadding().Render(label))
			} else {
				views = append(views, label)
			}
		}
		parts = append(parts, strings.Join(views, " · "))
	}

	priority := "any"
	if m.filters.Priority != nil {
		priority = m.filters.Priority.Display()
	}
	parts = append(parts,
		"priority: "+priority,
		"category: "+m.categoryLabel(),
		"sort: "+string(m.sortBy),
	)
	if m.filters.Search != "" && m.mode != ModeSearch {
		parts = append(parts, fmt.Sprintf("search: %q", m.filters.Search))
	}
	return m.styles.Footer.Render(strings.Join(parts, "   "))
}

// viewTaskList renders the derived task list.
func (m *Model) viewTaskList() string {
	if len(m.tasks) == 0 {
		return m.viewEmptyState()
	}

	rowWidth := m.width - 6 // Account for app padding
	if rowWidth < 40 {
		rowWidth = 40
	}

	var b strings.Builder
	for i, task := range m.tasks {
		selected := i == m.cursor
		line := m.renderTaskRow(task, selected, rowWidth)
		if selected {
			b.WriteString(m.styles.TaskSelected.Width(rowWidth).Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewEmptyState() string {
	msg := "No tasks here. Press n to add one."
	if m.filters.Search != "" || m.filters.Priority != nil || m.filters.CategoryID != "" {
		msg = "No tasks match the filters."
	}
	return m.styles.Footer.Render(msg) + "\n"
}

// viewConfirmDialog renders the confirmation dialog.
func (m *Model) viewConfirmDialog() string {
	var target string
	switch m.confirmAction {
	case ConfirmNone:
		return ""
	case ConfirmDelete:
		target = "task " + domain.ShortID(m.confirmTaskID)
		if t := m.container.State.Task(m.confirmTaskID); t != nil {
			target = fmt.Sprintf("%q", t.Title)
		}
	case ConfirmClear:
		target = "all completed " + strings.ToLower(m.partitionLabel())
	}

	title := m.styles.DialogTitle.Foreground(Colors.Error).Render(fmt.Sprintf("Delete %s?", target))
	prompt := m.styles.DialogPrompt.Render("This action cannot be undone.")

	yesBtn := m.styles.HelpKey.Render("[ y ] Confirm")
	noBtn := m.styles.Footer.Render("[ n ] Cancel")
	buttons := lipgloss.JoinHorizontal(lipgloss.Left, yesBtn, "  ", noBtn)

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", prompt, "", buttons)
	return m.styles.Dialog.BorderForeground(Colors.Error).Render(content)
}

// viewTitleInput renders the title input dialog.
func (m *Model) viewTitleInput() string {
	title := m.styles.DialogTitle.Render("◆ New " + strings.TrimSuffix(m.partitionLabel(), "s"))
	label := m.styles.InputPrompt.Render("Title")
	input := m.titleInput.View()
	hint := m.styles.FooterKey.Render("enter") + m.styles.Footer.Render(" create  ") +
		m.styles.FooterKey.Render("esc") + m.styles.Footer.Render(" cancel")

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", label, input, "", hint)
	return m.styles.Dialog.Render(content)
}

// viewUserInput renders the switch user dialog.
func (m *Model) viewUserInput() string {
	title := m.styles.DialogTitle.Render("◆ Switch User")
	label := m.styles.InputPrompt.Render("User")
	hint := m.styles.FooterKey.Render("enter") + m.styles.Footer.Render(" switch  ") +
		m.styles.FooterKey.Render("esc") + m.styles.Footer.Render(" cancel")

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", label, m.userInput.View(), "", hint)
	return m.styles.Dialog.Render(content)
}

func (m *Model) partitionLabel() string {
	if m.taskType == domain.TaskTypeContinuous {
		return "Timers"
	}
	return "Tasks"
}

// viewFooter renders the footer with key hints.
func (m *Model) viewFooter() string {
	switch m.mode {
	case ModeNormal:
		return m.help.View(m.keys)
	case ModeSearch:
		return m.styles.Footer.Render("enter apply · esc cancel")
	case ModeConfirm, ModeInputTitle, ModeInputUser, ModeHelp, ModeDetail:
		// Hints are shown in the dialogs/views themselves
		return ""
	}
	return ""
}

// viewHelp renders the help view.
func (m *Model) viewHelp() string {
	title := m.styles.HeaderText.Render("KEYBOARD SHORTCUTS")
	m.help.ShowAll = true
	content := m.help.View(m.keys)
	m.help.ShowAll = false

	return m.styles.Dialog.
		BorderForeground(Colors.Primary).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content, "", m.styles.Footer.Render("[?] close")))
}

// viewDetail renders the task detail view.
func (m *Model) viewDetail() string {
	if m.SelectedTask() == nil {
		return "No task selected"
	}

	hint := "[esc] back  [space] done"
	if m.SelectedTask().IsContinuous() {
		hint += "  [s] start/stop"
	}

	return m.styles.Dialog.
		Width(m.width - 4).
		BorderForeground(Colors.Muted).
		Render(m.detailViewport.View() + "\n\n" + m.styles.Footer.Render(hint))
}
