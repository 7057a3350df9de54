package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/view"
)

// escapeNewlines replaces newline characters with spaces for single-line display.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// renderTaskRow renders one task as a single line of at most width cells.
func (m *Model) renderTaskRow(task *domain.Task, selected bool, width int) string {
	indicator := " "
	if selected {
		indicator = ">"
	}

	var mark, trailer string
	if task.IsContinuous() {
		status := task.ContinuousStatus()
		mark = m.styles.StatusStyle(status).Render(StatusIcon(status))
		trailer = m.timerTrailer(task)
	} else {
		mark = "[ ]"
		if task.Completed {
			mark = "[x]"
		}
		trailer = m.dueTrailer(task)
	}

	var badges []string
	if c := m.container.State.Category(task.CategoryID); c != nil {
		badges = append(badges, CategoryStyle(c).Render("#"+c.Name))
	}
	if done, total := task.SubtaskProgress(); total > 0 {
		badges = append(badges, m.styles.TaskDesc.Render(fmt.Sprintf("%d/%d", done, total)))
	}
	badgeText := strings.Join(badges, " ")

	prefix := "  " + m.styles.SelectionIndicator.Render(indicator) + " " +
		m.styles.TaskID.Render(domain.ShortID(task.ID)) + " " + mark + " " +
		m.styles.PriorityStyle(task.Priority).Render(PriorityIcon(task.Priority)) + " "

	reserved := lipgloss.Width(prefix) + lipgloss.Width(badgeText) + lipgloss.Width(trailer) + 3
	maxTitleLen := width - reserved
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}

	title := escapeNewlines(task.Title)
	if runewidth.StringWidth(title) > maxTitleLen {
		title = runewidth.Truncate(title, maxTitleLen-3, "...")
	}
	titleStyle := m.styles.TaskTitle
	if task.Completed {
		titleStyle = m.styles.TaskTitleDone
	}
	if selected {
		titleStyle = titleStyle.Bold(true)
	}

	line := prefix + titleStyle.Render(title)
	if badgeText != "" {
		line += " " + badgeText
	}
	if trailer != "" {
		line += "  " + trailer
	}
	return line
}

// timerTrailer renders elapsed time and progress of a running timer, or the
// tracked total of a stopped one.
func (m *Model) timerTrailer(task *domain.Task) string {
	if task.IsActive {
		text := view.FormatDuration(task.Elapsed(m.now))
		if task.DurationMinutes > 0 {
			text += fmt.Sprintf(" %3.0f%%", task.Progress(m.now))
		}
		return m.styles.Elapsed.Render(text)
	}
	text := view.FormatMinutes(task.TotalTimeSpentMinutes)
	if task.DurationMinutes > 0 {
		text += " / " + view.FormatMinutes(task.DurationMinutes)
	}
	return m.styles.TaskDesc.Render(text)
}

// dueTrailer renders the due date of a regular task relative to today.
func (m *Model) dueTrailer(task *domain.Task) string {
	switch view.DueStatusOf(task, m.today) {
	case view.DueNone:
		return ""
	case view.DueOverdue:
		if task.Completed {
			return m.styles.TaskDesc.Render(task.DueDate.String())
		}
		return m.styles.Overdue.Render(task.DueDate.String() + " overdue")
	case view.DueToday:
		return m.styles.Elapsed.Render("today")
	case view.DueTomorrow:
		return m.styles.TaskDesc.Render("tomorrow")
	case view.DueUpcoming:
		return m.styles.TaskDesc.Render(task.DueDate.String())
	}
	return ""
}
