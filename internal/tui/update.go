package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/tempo/internal/domain"
	"github.com/runoshun/tempo/internal/view"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.mode == ModeDetail {
			m.initDetailViewport()
		}
		return m, nil

	case MsgStateChanged:
		m.refresh()
		if m.mode == ModeDetail {
			m.detailViewport.SetContent(m.detailContent())
		}
		return m, m.waitForEvent()

	case MsgTick:
		// Only the clock moved; the tasks are unchanged
		m.now = msg.Time
		if m.mode == ModeDetail && m.hasActiveTimer() {
			m.detailViewport.SetContent(m.detailContent())
		}
		return m, m.tick()

	case MsgTaskCreated:
		m.mode = ModeNormal
		m.titleInput.Reset()
		m.notice = fmt.Sprintf("Created %s", msg.Title)
		m.refresh()
		m.selectTask(msg.TaskID)
		return m, nil

	case MsgTimerStarted:
		m.notice = "Timer started"
		return m, nil

	case MsgTimerStopped:
		m.notice = fmt.Sprintf("Timer stopped: +%s", view.FormatMinutes(msg.Minutes))
		return m, nil

	case MsgTaskToggled:
		switch {
		case msg.Completed && msg.Stopped:
			m.notice = "Completed, timer stopped"
		case msg.Completed:
			m.notice = "Completed"
		default:
			m.notice = "Reopened"
		}
		return m, nil

	case MsgTaskDeleted:
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		m.confirmTaskID = ""
		m.notice = "Deleted"
		return m, nil

	case MsgTasksCleared:
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		m.notice = fmt.Sprintf("Deleted %d completed task(s)", msg.Count)
		return m, nil

	case MsgUserSwitched:
		m.mode = ModeNormal
		m.userInput.Reset()
		if msg.UserID == "" {
			m.notice = "Signed out"
		} else {
			m.notice = fmt.Sprintf("Signed in as %s", msg.UserID)
		}
		// Categories belong to the previous user
		m.filters.CategoryID = ""
		m.cursor = 0
		m.refresh()
		return m, nil

	case MsgTasksReordered:
		m.refresh()
		m.selectTask(msg.TaskID)
		return m, nil

	case MsgError:
		m.err = msg.Err
		m.notice = ""
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		m.confirmTaskID = ""
		return m, nil

	case MsgClearError:
		m.err = nil
		return m, nil
	}

	return m, nil
}

// handleKeyMsg dispatches key presses by mode.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchMode(msg)
	case ModeInputTitle:
		return m.handleInputTitleMode(msg)
	case ModeInputUser:
		return m.handleInputUserMode(msg)
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Quit) {
			m.mode = ModeNormal
		}
		return m, nil
	case ModeDetail:
		return m.handleDetailMode(msg)
	case ModeNormal:
		return m.handleNormalMode(msg)
	}
	return m, nil
}

func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key press dismisses the last error and notice
	m.err = nil
	m.notice = ""

	task := m.SelectedTask()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		if m.filters.Search != "" {
			m.filters.Search = ""
			m.searchInput.Reset()
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.MoveUp):
		if task == nil {
			return m, nil
		}
		return m, m.moveTask(task.ID, -1)

	case key.Matches(msg, m.keys.MoveDown):
		if task == nil {
			return m, nil
		}
		return m, m.moveTask(task.ID, 1)

	case key.Matches(msg, m.keys.Tab):
		m.switchPartition()
		return m, nil

	case key.Matches(msg, m.keys.View):
		m.cycleView()
		return m, nil

	case key.Matches(msg, m.keys.Priority):
		m.cyclePriority()
		return m, nil

	case key.Matches(msg, m.keys.Category):
		m.cycleCategory()
		return m, nil

	case key.Matches(msg, m.keys.Sort):
		m.cycleSort()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.searchInput.SetValue(m.filters.Search)
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.New):
		m.mode = ModeInputTitle
		m.titleInput.Reset()
		m.titleInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.User):
		m.mode = ModeInputUser
		m.userInput.SetValue(m.container.Identity.CurrentUser())
		m.userInput.CursorEnd()
		m.userInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Clear):
		m.mode = ModeConfirm
		m.confirmAction = ConfirmClear
		return m, nil
	}

	if task == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggleTask(task.ID)

	case key.Matches(msg, m.keys.Start):
		if !task.IsContinuous() {
			m.err = domain.ErrNotContinuous
			return m, nil
		}
		return m, m.toggleTimer(task)

	case key.Matches(msg, m.keys.Stop):
		if !task.IsActive {
			return m, nil
		}
		return m, m.stopTimer(task.ID)

	case key.Matches(msg, m.keys.Delete):
		m.mode = ModeConfirm
		m.confirmAction = ConfirmDelete
		m.confirmTaskID = task.ID
		return m, nil

	case key.Matches(msg, m.keys.Detail):
		m.mode = ModeDetail
		m.initDetailViewport()
		return m, nil
	}

	return m, nil
}

func (m *Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue(m.filters.Search)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.mode = ModeNormal
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	// Narrow as the user types
	m.filters.Search = strings.TrimSpace(m.searchInput.Value())
	m.cursor = 0
	m.refresh()
	return m, cmd
}

func (m *Model) handleInputTitleMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.titleInput.Blur()
		m.titleInput.Reset()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		title := strings.TrimSpace(m.titleInput.Value())
		if title == "" {
			m.mode = ModeNormal
			m.titleInput.Blur()
			return m, nil
		}
		m.titleInput.Blur()
		return m, m.createTask(title)
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m *Model) handleInputUserMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.userInput.Blur()
		m.userInput.Reset()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.userInput.Blur()
		userID := strings.TrimSpace(m.userInput.Value())
		if userID == m.container.Identity.CurrentUser() {
			m.mode = ModeNormal
			return m, nil
		}
		return m, m.switchUser(userID)
	}

	var cmd tea.Cmd
	m.userInput, cmd = m.userInput.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Confirm) {
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		m.confirmTaskID = ""
		return m, nil
	}

	switch m.confirmAction {
	case ConfirmDelete:
		return m, m.deleteTask(m.confirmTaskID)
	case ConfirmClear:
		return m, m.clearCompleted()
	case ConfirmNone:
	}
	m.mode = ModeNormal
	return m, nil
}

func (m *Model) handleDetailMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Detail), key.Matches(msg, m.keys.Quit):
		m.mode = ModeNormal
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if task := m.SelectedTask(); task != nil {
			return m, m.toggleTask(task.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Start):
		if task := m.SelectedTask(); task != nil && task.IsContinuous() {
			return m, m.toggleTimer(task)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}
